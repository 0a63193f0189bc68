// internal/server/router.go
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"listing-analytics/internal/handlers/analysis"
	"listing-analytics/internal/handlers/autocomplete"
	"listing-analytics/internal/handlers/payment"
	"listing-analytics/internal/handlers/subscription"
)

// newRouter wires the five API operations plus health and metrics. Routes
// match by path suffix: callers reach this service through varying gateway
// prefixes, so /fn/places-autocomplete and /places-autocomplete are the same
// operation.
func (s *Server) newRouter() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc(`/{prefix:.*}places-autocomplete`, s.handleAutocomplete).Methods(http.MethodPost)
	r.HandleFunc(`/{prefix:.*}create-payment-intent`, s.handleCreatePaymentIntent).Methods(http.MethodPost)
	r.HandleFunc(`/{prefix:.*}verify-payment`, s.handleVerifyPayment).Methods(http.MethodPost)
	r.HandleFunc(`/{prefix:.*}check-subscription`, s.handleCheckSubscription).Methods(http.MethodPost)
	r.HandleFunc(`/{prefix:.*}analyze-listing`, s.handleAnalyzeListing).Methods(http.MethodPost)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Unmatched paths and wrong methods both get the 404 envelope; the
	// frontend treats anything else as a routing bug.
	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleNotFound)

	chain := recoveryMiddleware(s.logger)(r)
	chain = corsMiddleware(chain)
	chain = accessLogMiddleware(s.logger, s.obs)(chain)

	return chain
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorEnvelope{Error: "Route not found"})
}

// ==========================
// Route Handlers
// ==========================

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	var input autocomplete.Input
	readInput(r, &input)

	out, err := s.autocomplete.Execute(r.Context(), &input)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var input payment.CreateIntentInput
	readInput(r, &input)

	out, err := s.payment.CreateIntent(r.Context(), &input)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var input payment.VerifyInput
	readInput(r, &input)

	out, err := s.payment.Verify(r.Context(), &input)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCheckSubscription(w http.ResponseWriter, r *http.Request) {
	var input subscription.Input
	readInput(r, &input)

	out, err := s.subscription.Execute(r.Context(), &input)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAnalyzeListing(w http.ResponseWriter, r *http.Request) {
	var input analysis.Input
	readInput(r, &input)

	out, err := s.analysis.Execute(r.Context(), &input)
	if err != nil {
		writeError(w, err, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleHealthz reports process liveness, store reachability and which
// providers have credentials. It never calls the providers.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.pingStore != nil {
		if err := s.pingStore(r.Context()); err != nil {
			status = "degraded"
			s.logger.Warn("Health check store ping failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"providers": map[string]bool{
			"places":   s.health.Places,
			"rentcast": s.health.RentCast,
			"gemini":   s.health.Gemini,
			"stripe":   s.health.Stripe,
		},
	})
}
