// Package packs turns raw pack-purchase results into normalized opened-pack
// summaries.
package packs

import (
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/backend"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
)

// OpenedPack is the client-side view of one purchase: the drawn cards in
// draw order and the credit balance after payment.
type OpenedPack struct {
	PurchaseID int          `json:"purchase_id"`
	CreatedAt  string       `json:"created_at"`
	Credits    int          `json:"credits"`
	Cards      []cards.Card `json:"cards"`
	// Dropped counts raw card records the server sent but the client could
	// not make sense of.
	Dropped int `json:"dropped,omitempty"`
}

// FromPurchase normalizes a purchase response. Malformed card records are
// dropped and counted rather than failing the whole pack, so a buggy draw
// never hides the rest of the result.
func FromPurchase(purchase *backend.PackPurchase) OpenedPack {
	opened := OpenedPack{
		PurchaseID: purchase.Purchase.ID,
		CreatedAt:  purchase.Purchase.CreatedAt,
		Credits:    purchase.Credits,
		Cards:      make([]cards.Card, 0, len(purchase.Cards)),
	}
	for _, raw := range purchase.Cards {
		card, ok := cards.NormalizeRaw(raw, cards.TypePlayer)
		if !ok {
			opened.Dropped++
			continue
		}
		opened.Cards = append(opened.Cards, card)
	}
	return opened
}

// RaritySummary counts the drawn cards per rarity.
func (p OpenedPack) RaritySummary() map[cards.Rarity]int {
	summary := make(map[cards.Rarity]int)
	for _, card := range p.Cards {
		summary[card.Rarity]++
	}
	return summary
}

// Best returns the highest-rarity card of the pack, with ok=false for an
// empty pack.
func (p OpenedPack) Best() (cards.Card, bool) {
	if len(p.Cards) == 0 {
		return cards.Card{}, false
	}
	best := p.Cards[0]
	for _, card := range p.Cards[1:] {
		if card.Rarity.Priority() > best.Rarity.Priority() {
			best = card
		}
	}
	return best, true
}
