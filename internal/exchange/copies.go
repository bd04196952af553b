// Package exchange implements the trade-offer domain: spare-copy expansion,
// reservation against outstanding offers, and normalization of the loosely
// shaped offer records the backend returns.
package exchange

import (
	"fmt"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
)

// TradeableCopy is one spare, offerable unit of an owned card. A card with
// quantity n contributes n-1 copies; the first copy of a card is always
// retained and never offerable.
type TradeableCopy struct {
	// Key is "type:id#slot", slot in 1..quantity-1.
	Key string `json:"key"`
	// Card is the owning normalized card, shared across its copies.
	Card cards.Card `json:"card"`
	// Slot numbers the copy within its card, starting at 1.
	Slot int `json:"slot"`
	// TotalAvailable is quantity-1, the number of copies for the card.
	TotalAvailable int `json:"total_available"`
}

// CopyKey builds the key of one spare copy.
func CopyKey(t cards.Type, id, slot int) string {
	return fmt.Sprintf("%s#%d", cards.Key(t, id), slot)
}

// BuildTradeableCopies expands cards with spare copies into individual
// offerable units. Output order follows the input card order; within a card,
// slots ascend.
func BuildTradeableCopies(cs []cards.Card) []TradeableCopy {
	var copies []TradeableCopy
	for _, card := range cs {
		if card.Quantity <= 1 {
			continue
		}
		available := card.Quantity - 1
		for slot := 1; slot <= available; slot++ {
			copies = append(copies, TradeableCopy{
				Key:            CopyKey(card.Type, card.ID, slot),
				Card:           card,
				Slot:           slot,
				TotalAvailable: available,
			})
		}
	}
	return copies
}

// FilterReserved removes copies already committed to an outstanding outgoing
// offer. For each base card, the number of offers referencing it counts as
// reserved; the first totalAvailable-reserved copies (in input order) pass
// through, the rest are dropped. Filtering an already-filtered set with the
// same offers yields the same result.
func FilterReserved(copies []TradeableCopy, outgoing []Listing) []TradeableCopy {
	reserved := make(map[string]int)
	for _, offer := range outgoing {
		reserved[offer.OfferedCard.Key()]++
	}
	if len(reserved) == 0 {
		return copies
	}

	passed := make(map[string]int)
	var out []TradeableCopy
	for _, tc := range copies {
		key := tc.Card.Key()
		taken := reserved[key]
		if taken == 0 {
			out = append(out, tc)
			continue
		}
		limit := tc.TotalAvailable - taken
		if limit < 0 {
			limit = 0
		}
		if passed[key] < limit {
			out = append(out, tc)
			passed[key]++
		}
	}
	return out
}
