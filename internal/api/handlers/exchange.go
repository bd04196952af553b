package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/api/response"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/backend"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/cards"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/session"
)

// ExchangeHandler serves offers, spare copies and the trade actions.
type ExchangeHandler struct {
	session *session.Controller
}

// NewExchangeHandler creates a new ExchangeHandler.
func NewExchangeHandler(controller *session.Controller) *ExchangeHandler {
	return &ExchangeHandler{session: controller}
}

// GetMyOffers returns the user's outgoing offers, optimistic ones included.
func (h *ExchangeHandler) GetMyOffers(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.session.MyOffers())
}

// GetFeed returns the community offers feed.
func (h *ExchangeHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.session.FeedOffers())
}

// GetAvailableCopies returns the spare copies still free to offer.
func (h *ExchangeHandler) GetAvailableCopies(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.session.AvailableCopies())
}

type createOfferRequest struct {
	CardID   int    `json:"card_id"`
	CardType string `json:"card_type"`
	Wants    string `json:"wants"`
}

// CreateOffer proposes a trade for one spare copy.
func (h *ExchangeHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req createOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	cardType := cards.Type(req.CardType)
	if !cardType.Valid() {
		response.BadRequest(w, errors.New("invalid card_type"))
		return
	}

	// The controller needs the full card for the optimistic entry.
	var offered cards.Card
	found := false
	for _, card := range h.session.Cards() {
		if card.Type == cardType && card.ID == req.CardID {
			offered = card
			found = true
			break
		}
	}
	if !found {
		response.NotFound(w, errors.New("card not in collection"))
		return
	}

	if err := h.session.Propose(r.Context(), offered, req.Wants); err != nil {
		writeBackendError(w, err)
		return
	}

	response.Created(w, h.session.MyOffers())
}

// JoinOffer accepts another user's offer.
func (h *ExchangeHandler) JoinOffer(w http.ResponseWriter, r *http.Request) {
	offerID := chi.URLParam(r, "offerID")
	if err := h.session.Join(r.Context(), offerID); err != nil {
		writeBackendError(w, err)
		return
	}
	response.Success(w, map[string]string{"status": "joined"})
}

// DeleteOffer cancels one of the user's offers.
func (h *ExchangeHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	offerID := chi.URLParam(r, "offerID")
	if err := h.session.Delete(r.Context(), offerID); err != nil {
		writeBackendError(w, err)
		return
	}
	response.NoContent(w)
}

// Refresh triggers a full re-sync against the backend.
func (h *ExchangeHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Refresh(r.Context()); err != nil {
		writeBackendError(w, err)
		return
	}
	response.Success(w, map[string]any{
		"state":     h.session.State(),
		"last_sync": h.session.LastSync(),
	})
}

// writeBackendError maps game-backend failures onto local API statuses.
func writeBackendError(w http.ResponseWriter, err error) {
	var notFound *backend.NotFoundError
	if errors.As(err, &notFound) {
		response.NotFound(w, err)
		return
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		response.BadGateway(w, err)
		return
	}
	response.InternalError(w, err)
}
