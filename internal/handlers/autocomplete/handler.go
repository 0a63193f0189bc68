// internal/handlers/autocomplete/handler.go
package autocomplete

import (
	"context"
	"strings"

	"listing-analytics/internal/common/errors"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/integrations/places"
)

// PlacesAPI is the provider surface the handler needs.
type PlacesAPI interface {
	Configured() bool
	Autocomplete(ctx context.Context, input string) (*places.AutocompleteResponse, error)
}

// Handler serves address autocomplete requests.
type Handler struct {
	places PlacesAPI
	logger logger.Logger
}

func NewHandler(placesClient PlacesAPI, log logger.Logger) *Handler {
	return &Handler{
		places: placesClient,
		logger: log,
	}
}

// Execute validates the input and relays provider suggestions.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Input) == "" {
		return nil, errors.NewValidationError("Input required")
	}

	if !h.places.Configured() {
		h.logger.Error("Places API key not configured", nil)
		return nil, errors.NewCredentialMissingError("Places API key missing")
	}

	resp, err := h.places.Autocomplete(ctx, input.Input)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Autocomplete served", map[string]interface{}{
		"predictions": len(resp.Predictions),
		"status":      resp.Status,
	})

	return &Output{
		Predictions: resp.Predictions,
		Status:      resp.Status,
	}, nil
}
