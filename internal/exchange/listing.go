package exchange

import (
	"fmt"
	"strings"
	"time"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
)

// Offer lifecycle states as reported by the backend.
const (
	StatusOpen      = "open"
	StatusRequested = "requested"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Listing is a trade offer: either the current user's outgoing proposal or
// another user's offer from the community feed.
type Listing struct {
	// ID is server-issued, or a locally generated "pending-" placeholder for
	// optimistic entries awaiting confirmation.
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	OfferedCard cards.Card `json:"offered_card"`
	// Wants is the free-text ask; empty means "any card of RequiredRarity".
	Wants          string       `json:"wants,omitempty"`
	RequiredRarity cards.Rarity `json:"required_rarity"`
	Status         string       `json:"status,omitempty"`
	RequestedBy    string       `json:"requested_by,omitempty"`
	// Optimistic marks client-created placeholders not yet confirmed by a
	// refresh against the backend.
	Optimistic bool `json:"optimistic,omitempty"`
}

const optimisticIDPrefix = "pending-"

// IsPending reports whether the listing is a local optimistic placeholder.
func (l Listing) IsPending() bool {
	return l.Optimistic || strings.HasPrefix(l.ID, optimisticIDPrefix)
}

// NewOptimisticListing builds the local placeholder appended to the outgoing
// list immediately after a proposal is submitted, before the backend confirms.
func NewOptimisticListing(username string, card cards.Card, wants string) Listing {
	if username == "" {
		username = "Collector"
	}
	return Listing{
		ID:             fmt.Sprintf("%s%d", optimisticIDPrefix, time.Now().UnixNano()),
		Username:       username,
		OfferedCard:    card,
		Wants:          wants,
		RequiredRarity: card.Rarity,
		Status:         StatusOpen,
		Optimistic:     true,
	}
}

// NormalizeListing converts one raw offer record into a Listing. The backend
// is inconsistent about field names, so each concept is resolved through a
// precedence chain. Returns false for records that cannot identify an offer
// or its card; it never panics on malformed input.
func NormalizeListing(raw map[string]any) (Listing, bool) {
	if raw == nil {
		return Listing{}, false
	}

	cardRaw := mapField(raw, "offered_card", "offeredCard", "card")
	fallbackType := cards.Type(stringField(raw, "card_type"))
	card, ok := cards.NormalizeRaw(cardRaw, fallbackType)
	if !ok {
		return Listing{}, false
	}

	id := stringField(raw, "id", "offer_id", "uuid")
	if id == "" {
		return Listing{}, false
	}

	username := stringField(raw, "username", "user")
	if username == "" {
		username = "Collector"
	}

	required := cards.Rarity(strings.ToLower(stringField(raw, "required_rarity")))
	if !required.Valid() {
		required = card.Rarity
	}

	return Listing{
		ID:             id,
		Username:       username,
		OfferedCard:    card,
		Wants:          stringField(raw, "wants"),
		RequiredRarity: required,
		Status:         stringField(raw, "status"),
		RequestedBy:    stringField(raw, "requested_by"),
	}, true
}

// NormalizeListings maps NormalizeListing over a batch, silently dropping
// rejected records so one malformed entry never fails a whole fetch.
func NormalizeListings(raws []map[string]any) []Listing {
	listings := make([]Listing, 0, len(raws))
	for _, raw := range raws {
		if listing, ok := NormalizeListing(raw); ok {
			listings = append(listings, listing)
		}
	}
	return listings
}

func mapField(raw map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if m, ok := raw[k].(map[string]any); ok {
			return m
		}
	}
	return nil
}

// stringField resolves the first usable value among keys, stringifying
// numeric ids the way the backend sometimes sends them.
func stringField(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
