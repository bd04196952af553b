package exchange

import (
	"strings"
	"testing"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
)

func rawCard() map[string]any {
	return map[string]any{
		"id": float64(1), "type": "player", "name": "A", "rarity": "rare",
	}
}

func TestNormalizeListing(t *testing.T) {
	raw := map[string]any{
		"id":              "42",
		"username":        "mario",
		"offered_card":    rawCard(),
		"wants":           "any legendary",
		"required_rarity": "EPIC",
		"status":          "open",
	}

	listing, ok := NormalizeListing(raw)
	if !ok {
		t.Fatal("NormalizeListing() ok = false, want true")
	}
	if listing.ID != "42" || listing.Username != "mario" {
		t.Errorf("listing = %+v, want id 42 user mario", listing)
	}
	if listing.RequiredRarity != cards.RarityEpic {
		t.Errorf("requiredRarity = %s, want epic (lowercased)", listing.RequiredRarity)
	}
	if listing.OfferedCard.Key() != "player:1" {
		t.Errorf("offered card = %s, want player:1", listing.OfferedCard.Key())
	}
	if listing.IsPending() {
		t.Error("server listing reported as pending")
	}
}

func TestNormalizeListingFieldPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]any
		check func(t *testing.T, l Listing)
	}{
		{
			name: "offeredCard camel case",
			raw:  map[string]any{"id": "1", "offeredCard": rawCard()},
			check: func(t *testing.T, l Listing) {
				if l.OfferedCard.Name != "A" {
					t.Errorf("card = %+v, want A", l.OfferedCard)
				}
			},
		},
		{
			name: "bare card key",
			raw:  map[string]any{"id": "1", "card": rawCard()},
			check: func(t *testing.T, l Listing) {
				if l.OfferedCard.Name != "A" {
					t.Errorf("card = %+v, want A", l.OfferedCard)
				}
			},
		},
		{
			name: "offer_id fallback",
			raw:  map[string]any{"offer_id": "abc", "card": rawCard()},
			check: func(t *testing.T, l Listing) {
				if l.ID != "abc" {
					t.Errorf("id = %q, want abc", l.ID)
				}
			},
		},
		{
			name: "uuid fallback",
			raw:  map[string]any{"uuid": "deadbeef", "card": rawCard()},
			check: func(t *testing.T, l Listing) {
				if l.ID != "deadbeef" {
					t.Errorf("id = %q, want deadbeef", l.ID)
				}
			},
		},
		{
			name: "numeric id stringified",
			raw:  map[string]any{"id": float64(7), "card": rawCard()},
			check: func(t *testing.T, l Listing) {
				if l.ID != "7" {
					t.Errorf("id = %q, want 7", l.ID)
				}
			},
		},
		{
			name: "user fallback then Collector",
			raw:  map[string]any{"id": "1", "user": "luigi", "card": rawCard()},
			check: func(t *testing.T, l Listing) {
				if l.Username != "luigi" {
					t.Errorf("username = %q, want luigi", l.Username)
				}
			},
		},
		{
			name: "anonymous collector",
			raw:  map[string]any{"id": "1", "card": rawCard()},
			check: func(t *testing.T, l Listing) {
				if l.Username != "Collector" {
					t.Errorf("username = %q, want Collector", l.Username)
				}
			},
		},
		{
			name: "invalid required rarity falls back to card rarity",
			raw:  map[string]any{"id": "1", "card": rawCard(), "required_rarity": "mythic"},
			check: func(t *testing.T, l Listing) {
				if l.RequiredRarity != cards.RarityRare {
					t.Errorf("requiredRarity = %s, want rare (card's own)", l.RequiredRarity)
				}
			},
		},
		{
			name: "card_type fallback for untyped card",
			raw: map[string]any{"id": "1", "card_type": "goalkeeper",
				"card": map[string]any{"id": float64(5), "name": "G"}},
			check: func(t *testing.T, l Listing) {
				if l.OfferedCard.Type != cards.TypeGoalkeeper {
					t.Errorf("card type = %s, want goalkeeper", l.OfferedCard.Type)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing, ok := NormalizeListing(tt.raw)
			if !ok {
				t.Fatal("NormalizeListing() ok = false, want true")
			}
			tt.check(t, listing)
		})
	}
}

func TestNormalizeListingRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"nil record", nil},
		{"no card", map[string]any{"id": "1", "username": "mario"}},
		{"card without id", map[string]any{"id": "1", "card": map[string]any{"type": "player"}}},
		{"card without type", map[string]any{"id": "1", "card": map[string]any{"id": float64(1)}}},
		{"no offer id", map[string]any{"card": rawCard()}},
		{"card wrong shape", map[string]any{"id": "1", "card": "not-a-map"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := NormalizeListing(tt.raw); ok {
				t.Error("NormalizeListing() ok = true, want rejection")
			}
		})
	}
}

func TestNormalizeListingsDropsRejects(t *testing.T) {
	raws := []map[string]any{
		{"id": "1", "card": rawCard()},
		nil,
		{"username": "orphan"},
		{"id": "2", "offeredCard": rawCard()},
	}

	listings := NormalizeListings(raws)
	if len(listings) != 2 {
		t.Fatalf("listings = %d, want 2 with rejects dropped", len(listings))
	}
	if listings[0].ID != "1" || listings[1].ID != "2" {
		t.Errorf("ids = %s %s, want 1 2", listings[0].ID, listings[1].ID)
	}
}

func TestNewOptimisticListing(t *testing.T) {
	card := cards.Card{ID: 1, Type: cards.TypePlayer, Name: "A", Rarity: cards.RarityEpic, Quantity: 2}

	listing := NewOptimisticListing("mario", card, "any rare")
	if !listing.IsPending() || !listing.Optimistic {
		t.Errorf("listing = %+v, want pending optimistic", listing)
	}
	if !strings.HasPrefix(listing.ID, "pending-") {
		t.Errorf("id = %q, want pending- prefix", listing.ID)
	}
	if listing.RequiredRarity != cards.RarityEpic {
		t.Errorf("requiredRarity = %s, want the card's epic", listing.RequiredRarity)
	}

	anonymous := NewOptimisticListing("", card, "")
	if anonymous.Username != "Collector" {
		t.Errorf("username = %q, want Collector fallback", anonymous.Username)
	}
}
