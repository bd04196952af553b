package cards

import (
	"math"
	"strconv"
	"strings"
)

// The backend is loose about payload shapes: ids arrive as numbers or
// strings, stats as floats, rarities in mixed case. Every raw field goes
// through one of these coercion helpers before it reaches a Card.

// coerceID converts a raw id value to an int, falling back when the value is
// missing, non-finite or unparseable.
func coerceID(value any, fallback int) int {
	if n, ok := coerceNumber(value); ok {
		return int(n)
	}
	return fallback
}

// coerceNumber extracts a finite float from a raw JSON value.
func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err == nil && !math.IsNaN(parsed) && !math.IsInf(parsed, 0) {
			return parsed, true
		}
	}
	return 0, false
}

// parseQuantity clamps a raw quantity to a non-negative integer count.
func parseQuantity(value any) int {
	if n, ok := coerceNumber(value); ok {
		if n < 0 {
			return 0
		}
		return int(math.Floor(n))
	}
	return 0
}

// parseOptionalInt returns a stat value, or nil when the field is absent or
// malformed.
func parseOptionalInt(value any) *int {
	if n, ok := coerceNumber(value); ok {
		v := int(n)
		return &v
	}
	return nil
}

// parseString returns a raw string field or the empty string.
func parseString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

// parseImageURL trims a raw image url, treating blank values as absent.
func parseImageURL(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// normalizeRarity lowercases and validates a raw rarity, defaulting to common.
func normalizeRarity(value any) Rarity {
	s, ok := value.(string)
	if !ok {
		return RarityCommon
	}
	r := Rarity(strings.ToLower(s))
	if r.Valid() {
		return r
	}
	return RarityCommon
}
