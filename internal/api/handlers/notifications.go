package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/api/response"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/notifications"
)

// NotificationsHandler serves pending exchange notifications.
type NotificationsHandler struct {
	poller *notifications.Poller
}

// NewNotificationsHandler creates a new NotificationsHandler.
func NewNotificationsHandler(poller *notifications.Poller) *NotificationsHandler {
	return &NotificationsHandler{poller: poller}
}

// GetPending returns notifications delivered but not yet marked read.
func (h *NotificationsHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	if h.poller == nil {
		response.Error(w, http.StatusServiceUnavailable, errors.New("notifications not configured"))
		return
	}
	response.Success(w, h.poller.Pending())
}

// Poll forces an immediate notification fetch.
func (h *NotificationsHandler) Poll(w http.ResponseWriter, r *http.Request) {
	if h.poller == nil {
		response.Error(w, http.StatusServiceUnavailable, errors.New("notifications not configured"))
		return
	}
	if err := h.poller.Poll(r.Context()); err != nil {
		writeBackendError(w, err)
		return
	}
	response.Success(w, h.poller.Pending())
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

// MarkRead marks the given notification ids as read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h.poller == nil {
		response.Error(w, http.StatusServiceUnavailable, errors.New("notifications not configured"))
		return
	}

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if len(req.IDs) == 0 {
		response.BadRequest(w, errors.New("ids must not be empty"))
		return
	}

	if err := h.poller.MarkRead(r.Context(), req.IDs); err != nil {
		writeBackendError(w, err)
		return
	}
	response.NoContent(w)
}
