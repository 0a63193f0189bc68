// internal/server/server.go
package server

import (
	"context"
	"net/http"

	"listing-analytics/internal/common/config"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/common/observability"
	"listing-analytics/internal/handlers/analysis"
	"listing-analytics/internal/handlers/autocomplete"
	"listing-analytics/internal/handlers/payment"
	"listing-analytics/internal/handlers/subscription"
)

// ProviderHealth reports which external credentials are present, for the
// health endpoint.
type ProviderHealth struct {
	Places   bool
	RentCast bool
	Gemini   bool
	Stripe   bool
}

// Server owns the HTTP surface and delegates each operation to its handler.
type Server struct {
	autocomplete *autocomplete.Handler
	payment      *payment.Handler
	subscription *subscription.Handler
	analysis     *analysis.Handler
	health       ProviderHealth
	pingStore    func(ctx context.Context) error

	logger logger.Logger
	obs    *observability.Observability
	httpd  *http.Server
}

// Deps carries everything the server needs wired in.
type Deps struct {
	Autocomplete  *autocomplete.Handler
	Payment       *payment.Handler
	Subscription  *subscription.Handler
	Analysis      *analysis.Handler
	Health        ProviderHealth
	PingStore     func(ctx context.Context) error
	Logger        logger.Logger
	Observability *observability.Observability
}

func New(cfg config.ServerConfig, deps Deps) *Server {
	s := &Server{
		autocomplete: deps.Autocomplete,
		payment:      deps.Payment,
		subscription: deps.Subscription,
		analysis:     deps.Analysis,
		health:       deps.Health,
		pingStore:    deps.PingStore,
		logger:       deps.Logger,
		obs:          deps.Observability,
	}

	// Every request carries a deadline so a stuck provider cannot pin a
	// connection past the write timeout.
	requestTimeout := config.GetDuration(cfg.RequestTimeout)
	handler := s.newRouter()
	bounded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		handler.ServeHTTP(w, r.WithContext(ctx))
	})

	s.httpd = &http.Server{
		Addr:         cfg.Address,
		Handler:      bounded,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}

	return s
}

// Handler exposes the middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpd.Handler
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{
		"address": s.httpd.Addr,
	})
	return s.httpd.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpd.Shutdown(ctx)
}
