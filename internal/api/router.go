package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MicheleMeloni29/cartecalcio-companion/internal/api/handlers"
	"github.com/MicheleMeloni29/cartecalcio-companion/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		collectionHandler := handlers.NewCollectionHandler(s.session, s.store)
		r.Route("/collection", func(r chi.Router) {
			r.Get("/", collectionHandler.GetCollection)
			r.Get("/stats", collectionHandler.GetCollectionStats)
			r.Get("/history", collectionHandler.GetHistory)
		})

		exchangeHandler := handlers.NewExchangeHandler(s.session)
		r.Route("/exchange", func(r chi.Router) {
			r.Get("/offers/mine", exchangeHandler.GetMyOffers)
			r.Get("/offers/feed", exchangeHandler.GetFeed)
			r.Get("/copies", exchangeHandler.GetAvailableCopies)
			r.Post("/offers", exchangeHandler.CreateOffer)
			r.Post("/offers/{offerID}/join", exchangeHandler.JoinOffer)
			r.Delete("/offers/{offerID}", exchangeHandler.DeleteOffer)
			r.Post("/refresh", exchangeHandler.Refresh)
		})

		notificationsHandler := handlers.NewNotificationsHandler(s.poller)
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationsHandler.GetPending)
			r.Post("/poll", notificationsHandler.Poll)
			r.Post("/read", notificationsHandler.MarkRead)
		})

		systemHandler := handlers.NewSystemHandler(s.session)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandler.GetStatus)
			r.Get("/version", systemHandler.GetVersion)
		})
	})
}

// healthCheck responds to health check requests.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
