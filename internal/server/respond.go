// internal/server/respond.go
package server

import (
	"encoding/json"
	"net/http"

	"listing-analytics/internal/common/errors"
	"listing-analytics/internal/common/logger"
)

// errorEnvelope is the uniform error body: an error message plus optional
// diagnostics.
type errorEnvelope struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps an error to the response envelope. Structured payloads win
// over detail strings so provider diagnostics reach the caller intact.
func writeError(w http.ResponseWriter, err error, log logger.Logger) {
	stdErr := errors.AsStandardError(err)
	status := errors.HTTPStatus(stdErr.Code)

	envelope := errorEnvelope{Error: stdErr.Message}
	if stdErr.Payload != nil {
		envelope.Details = stdErr.Payload
	} else if stdErr.Details != "" {
		envelope.Details = stdErr.Details
	}

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", map[string]interface{}{
			"code":    string(stdErr.Code),
			"message": stdErr.Message,
			"details": stdErr.Details,
		})
	}

	writeJSON(w, status, envelope)
}

// readInput decodes a request body into input, tolerating malformed or empty
// bodies: the zero input flows into handler validation, which produces the
// proper 400 for the missing field. The body is capped at 1 MiB.
func readInput(r *http.Request, input interface{}) {
	const maxBody = 1 << 20

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody))
	_ = decoder.Decode(input)
}
