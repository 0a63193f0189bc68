// internal/server/middleware.go
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/common/metrics"
	"listing-analytics/internal/common/observability"
)

const requestIDHeader = "X-Request-Id"

// corsHeaders are applied to every response, errors included. The frontend is
// served from a different origin and the browser enforces these.
func corsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
}

// corsMiddleware stamps CORS headers and short-circuits preflight requests
// with a bare 200.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corsHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// accessLogMiddleware assigns each request an ID and logs its outcome with
// latency and status.
func accessLogMiddleware(log logger.Logger, obs *observability.Observability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			recorder := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(recorder, r)

			elapsed := time.Since(start)
			status := recorder.status
			if status == 0 {
				status = http.StatusOK
			}

			route := r.URL.Path
			metrics.APIRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			metrics.APIRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
			obs.RecordRequest(r.Context(), route, strconv.Itoa(status))
			obs.RecordRequestDuration(r.Context(), elapsed, route)

			log.Info("Request handled", map[string]interface{}{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"elapsed_ms": elapsed.Milliseconds(),
			})
		})
	}
}

// recoveryMiddleware converts panics into the uniform 500 envelope so a bug
// in one handler can never take the process down.
func recoveryMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("Panic recovered", map[string]interface{}{
						"path":  r.URL.Path,
						"panic": rec,
					})
					writeJSON(w, http.StatusInternalServerError, errorEnvelope{
						Error:   "Internal server error",
						Details: "unexpected failure",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
