package cards

import (
	"sort"
	"strings"
)

// RawSet is the wire shape shared by the public catalog endpoint and the
// authenticated collection endpoint: one array of loosely-typed records per
// card type. Collection records additionally carry a quantity.
type RawSet struct {
	PlayerCards     []map[string]any `json:"player_cards"`
	GoalkeeperCards []map[string]any `json:"goalkeeper_cards"`
	CoachCards      []map[string]any `json:"coach_cards"`
	BonusMalusCards []map[string]any `json:"bonus_malus_cards"`
}

func (s *RawSet) listFor(t Type) []map[string]any {
	if s == nil {
		return nil
	}
	switch t {
	case TypePlayer:
		return s.PlayerCards
	case TypeGoalkeeper:
		return s.GoalkeeperCards
	case TypeCoach:
		return s.CoachCards
	case TypeBonusMalus:
		return s.BonusMalusCards
	}
	return nil
}

var allTypes = []Type{TypePlayer, TypeGoalkeeper, TypeCoach, TypeBonusMalus}

// Normalize merges the catalog with the user's collection into a single
// ordered card list. Collection fields win when present; the catalog fills in
// descriptive fields the collection record lacks; cards appearing in only one
// source still appear exactly once. The result is sorted by rarity priority,
// then by name.
func Normalize(catalog, collection *RawSet) []Card {
	normalized := make([]Card, 0)
	included := make(map[string]bool)
	owned := make(map[string]Card)

	for _, t := range allTypes {
		for index, raw := range collection.listFor(t) {
			card := buildCard(raw, t, t.baseID()+index)
			owned[card.Key()] = card
		}
	}

	for _, t := range allTypes {
		for index, raw := range catalog.listFor(t) {
			id := coerceID(raw["id"], t.baseID()+index)
			key := Key(t, id)
			if cached, ok := owned[key]; ok {
				normalized = append(normalized, fillFromCatalog(cached, raw, t))
				included[key] = true
				continue
			}
			normalized = append(normalized, buildCard(raw, t, id))
			included[key] = true
		}
	}

	// Collection-only cards the catalog never mentioned.
	for _, t := range allTypes {
		for index, raw := range collection.listFor(t) {
			id := coerceID(raw["id"], t.baseID()+index)
			key := Key(t, id)
			if included[key] {
				continue
			}
			normalized = append(normalized, owned[key])
			included[key] = true
		}
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		if d := normalized[i].Rarity.Priority() - normalized[j].Rarity.Priority(); d != 0 {
			return d < 0
		}
		return strings.Compare(normalized[i].Name, normalized[j].Name) < 0
	})
	return normalized
}

// buildCard converts one raw record into a Card, using fallbackID when the
// record's id is unusable.
func buildCard(raw map[string]any, t Type, fallbackID int) Card {
	quantity := parseQuantity(raw["quantity"])
	card := Card{
		ID:       coerceID(raw["id"], fallbackID),
		Type:     t,
		Name:     firstString(raw, t.fallbackName(), "name"),
		Team:     parseString(raw["team"]),
		Season:   parseString(raw["season"]),
		ImageURL: parseImageURL(raw["image_url"]),
		Rarity:   normalizeRarity(raw["rarity"]),
		Quantity: quantity,
		Owned:    quantity > 0,
	}
	enrichStats(&card, raw)
	return card
}

// fillFromCatalog completes a collection card with catalog-side descriptive
// fields the collection record left empty. Ownership fields stay untouched.
func fillFromCatalog(cached Card, raw map[string]any, t Type) Card {
	if cached.Name == "" || cached.Name == t.fallbackName() {
		if name := parseString(raw["name"]); name != "" {
			cached.Name = name
		}
	}
	if cached.Team == "" {
		cached.Team = parseString(raw["team"])
	}
	if cached.ImageURL == "" {
		cached.ImageURL = parseImageURL(raw["image_url"])
	}
	if cached.Season == "" {
		cached.Season = parseString(raw["season"])
	}
	return cached
}

// enrichStats copies the stat group matching the card type from the raw
// record. Other groups stay empty.
func enrichStats(card *Card, raw map[string]any) {
	switch card.Type {
	case TypePlayer:
		card.Attack = parseOptionalInt(raw["attack"])
		card.Defense = parseOptionalInt(raw["defense"])
	case TypeGoalkeeper:
		save := raw["save"]
		if save == nil {
			save = raw["saves"]
		}
		card.Save = parseOptionalInt(save)
	case TypeCoach:
		card.AttackBonus = parseOptionalInt(raw["attack_bonus"])
		card.DefenseBonus = parseOptionalInt(raw["defense_bonus"])
	case TypeBonusMalus:
		card.Effect = parseString(raw["effect"])
		card.Duration = parseOptionalInt(raw["duration"])
	}
}

func firstString(raw map[string]any, fallback string, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// NormalizeRaw converts a single loosely-shaped card record into a Card. It
// is total: malformed records yield (zero, false) instead of panicking. The
// fallback type covers records that omit their own type tag; pass an empty
// Type to require one.
func NormalizeRaw(raw map[string]any, fallback Type) (Card, bool) {
	if raw == nil {
		return Card{}, false
	}
	t := Type(parseString(raw["type"]))
	if t == "" {
		t = Type(parseString(raw["card_type"]))
	}
	if t == "bonus" || t == "bonusmalus" {
		t = TypeBonusMalus
	}
	if !t.Valid() {
		t = fallback
	}
	if !t.Valid() {
		return Card{}, false
	}
	id, ok := rawID(raw["id"])
	if !ok {
		return Card{}, false
	}

	quantity := parseQuantity(raw["quantity"])
	if quantity == 0 {
		quantity = parseQuantity(raw["total"])
	}
	ownedVal, hasOwned := raw["owned"].(bool)
	owned := quantity > 0
	if hasOwned {
		owned = ownedVal
	} else if isOwned, ok := raw["is_owned"].(bool); ok && isOwned {
		owned = true
	}

	imageURL := parseImageURL(raw["imageUrl"])
	if imageURL == "" {
		imageURL = parseImageURL(raw["image_url"])
	}

	name := parseString(raw["name"])
	if name == "" {
		name = "Unknown card"
	}

	card := Card{
		ID:       id,
		Type:     t,
		Name:     name,
		Team:     parseString(raw["team"]),
		Season:   parseString(raw["season"]),
		ImageURL: imageURL,
		Rarity:   normalizeRarity(raw["rarity"]),
		Quantity: quantity,
		Owned:    owned,
	}
	enrichStats(&card, raw)
	return card, true
}

// rawID parses an id with no fallback available.
func rawID(value any) (int, bool) {
	if n, ok := coerceNumber(value); ok {
		return int(n), true
	}
	return 0, false
}

// FilterTradeable returns the cards with at least one spare copy.
func FilterTradeable(cs []Card) []Card {
	var out []Card
	for _, c := range cs {
		if c.Quantity > 1 {
			out = append(out, c)
		}
	}
	return out
}

// FilterMissing returns the cards the user does not own.
func FilterMissing(cs []Card) []Card {
	var out []Card
	for _, c := range cs {
		if !c.Owned {
			out = append(out, c)
		}
	}
	return out
}
