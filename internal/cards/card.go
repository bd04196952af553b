// Package cards defines the card domain model and the catalog/collection
// normalizer used across the companion.
package cards

import "fmt"

// Rarity is the ordinal quality tier of a card.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Priority returns the sort priority of a rarity (common lowest).
func (r Rarity) Priority() int {
	switch r {
	case RarityRare:
		return 1
	case RarityEpic:
		return 2
	case RarityLegendary:
		return 3
	default:
		return 0
	}
}

// Valid reports whether r is one of the four known rarities.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

// Type is the category of a card. It determines which stat group is
// meaningful on the card.
type Type string

const (
	TypePlayer     Type = "player"
	TypeGoalkeeper Type = "goalkeeper"
	TypeCoach      Type = "coach"
	TypeBonusMalus Type = "bonusMalus"
)

// Valid reports whether t is one of the four known card types.
func (t Type) Valid() bool {
	switch t {
	case TypePlayer, TypeGoalkeeper, TypeCoach, TypeBonusMalus:
		return true
	}
	return false
}

// baseID is the fallback identifier offset per type, used when the server
// sends a corrupt or missing id. Offsets keep fallback ids unique per type.
func (t Type) baseID() int {
	switch t {
	case TypeGoalkeeper:
		return 500
	case TypeCoach:
		return 1000
	case TypeBonusMalus:
		return 2000
	default:
		return 1
	}
}

// fallbackName is the display name used when the server omits one.
func (t Type) fallbackName() string {
	switch t {
	case TypeGoalkeeper:
		return "Portiere"
	case TypeCoach:
		return "Allenatore"
	case TypeBonusMalus:
		return "Bonus/Malus"
	default:
		return "Giocatore"
	}
}

// Card is a card as perceived by the client after normalization. Exactly one
// stat group is populated depending on Type; the others stay nil/empty.
type Card struct {
	ID       int    `json:"id"`
	Type     Type   `json:"type"`
	Name     string `json:"name"`
	Team     string `json:"team,omitempty"`
	Season   string `json:"season,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Rarity   Rarity `json:"rarity"`
	Quantity int    `json:"quantity"`
	Owned    bool   `json:"owned"`

	// player
	Attack  *int `json:"attack,omitempty"`
	Defense *int `json:"defense,omitempty"`
	// goalkeeper
	Save *int `json:"save,omitempty"`
	// coach
	AttackBonus  *int `json:"attack_bonus,omitempty"`
	DefenseBonus *int `json:"defense_bonus,omitempty"`
	// bonusMalus
	Effect   string `json:"effect,omitempty"`
	Duration *int   `json:"duration,omitempty"`
}

// Key returns the composite identity of the card, unique across the catalog.
func (c Card) Key() string {
	return Key(c.Type, c.ID)
}

// Key builds the composite "type:id" identity for a card.
func Key(t Type, id int) string {
	return fmt.Sprintf("%s:%d", t, id)
}
