// Package handlers implements the HTTP handlers of the local API server.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/api/response"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/session"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/storage"
)

// CollectionHandler serves the normalized card collection.
type CollectionHandler struct {
	session *session.Controller
	store   *storage.Store
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(controller *session.Controller, store *storage.Store) *CollectionHandler {
	return &CollectionHandler{session: controller, store: store}
}

// GetCollection returns the normalized card list, optionally filtered by
// type/rarity/owned and paginated.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	list := h.session.Cards()

	query := r.URL.Query()
	if t := query.Get("type"); t != "" {
		list = filterCards(list, func(c cards.Card) bool { return string(c.Type) == t })
	}
	if rarity := query.Get("rarity"); rarity != "" {
		list = filterCards(list, func(c cards.Card) bool { return string(c.Rarity) == rarity })
	}
	if query.Get("owned") == "true" {
		list = filterCards(list, func(c cards.Card) bool { return c.Owned })
	}

	page := queryInt(query.Get("page"), 1)
	pageSize := queryInt(query.Get("page_size"), 0)
	if pageSize <= 0 {
		response.Success(w, list)
		return
	}

	total := len(list)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	response.Paginated(w, list[start:end], page, pageSize, total)
}

// GetCollectionStats returns ownership counts per rarity.
func (h *CollectionHandler) GetCollectionStats(w http.ResponseWriter, r *http.Request) {
	type rarityStats struct {
		Total  int `json:"total"`
		Owned  int `json:"owned"`
		Copies int `json:"copies"`
	}
	stats := make(map[string]*rarityStats)
	for _, card := range h.session.Cards() {
		s := stats[string(card.Rarity)]
		if s == nil {
			s = &rarityStats{}
			stats[string(card.Rarity)] = s
		}
		s.Total++
		if card.Owned {
			s.Owned++
		}
		s.Copies += card.Quantity
	}

	response.Success(w, stats)
}

// GetHistory returns recent collection quantity changes from the cache.
func (h *CollectionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		response.Error(w, http.StatusServiceUnavailable, errors.New("cache not configured"))
		return
	}

	limit := queryInt(r.URL.Query().Get("limit"), 50)
	changes, err := h.store.Cards.History(r.Context(), limit)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, changes)
}

func filterCards(list []cards.Card, keep func(cards.Card) bool) []cards.Card {
	out := list[:0]
	for _, card := range list {
		if keep(card) {
			out = append(out, card)
		}
	}
	return out
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}
