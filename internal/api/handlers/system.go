package handlers

import (
	"net/http"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/api/response"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/session"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/version"
)

// SystemHandler serves status and version endpoints.
type SystemHandler struct {
	session *session.Controller
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(controller *session.Controller) *SystemHandler {
	return &SystemHandler{session: controller}
}

// GetStatus returns the sync state and error overlay.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"state":     h.session.State(),
		"last_sync": h.session.LastSync(),
		"cards":     len(h.session.Cards()),
	}
	if err := h.session.Err(); err != nil {
		status["error"] = err.Error()
	}
	response.Success(w, status)
}

// GetVersion returns the build version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"version": version.Version,
		"commit":  version.Commit,
		"service": "cartecalcio-companion-api",
	})
}
