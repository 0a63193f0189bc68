// internal/handlers/analysis/handler.go
package analysis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"listing-analytics/internal/common/errors"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/integrations/gemini"
	"listing-analytics/internal/integrations/rentcast"
	"listing-analytics/internal/models"
)

const persistTimeout = 10 * time.Second

// ListingSource provides structured listing facts. Optional: the analysis
// proceeds without it.
type ListingSource interface {
	Configured() bool
	FirstSaleListing(ctx context.Context, address string) (*rentcast.Listing, error)
}

// PhotoSource resolves a place ID to a property photo URL, best effort.
type PhotoSource interface {
	PhotoURL(ctx context.Context, placeID string) string
}

// ModelAPI generates the analysis text. Required: without it the request
// fails.
type ModelAPI interface {
	Configured() bool
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// AnalysisWriter persists completed analyses.
type AnalysisWriter interface {
	SaveAnalysis(ctx context.Context, address string, rec *models.CachedAnalysis) error
}

// Handler orchestrates the full listing analysis pipeline: gather facts,
// prompt the model, repair its output, persist, respond.
type Handler struct {
	listings ListingSource
	photos   PhotoSource
	model    ModelAPI
	store    AnalysisWriter
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(listings ListingSource, photos PhotoSource, model ModelAPI, store AnalysisWriter, log logger.Logger) *Handler {
	return &Handler{
		listings: listings,
		photos:   photos,
		model:    model,
		store:    store,
		logger:   log,
		now:      time.Now,
	}
}

// Execute runs the analysis pipeline for one address.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.Address) == "" {
		return nil, errors.NewValidationError("Address required")
	}
	address := strings.TrimSpace(input.Address)

	if !h.model.Configured() {
		h.logger.Error("Gemini API key not configured", nil)
		return nil, errors.NewCredentialMissingError("Gemini API key missing")
	}

	photoURL := h.photos.PhotoURL(ctx, strings.TrimSpace(input.PlaceID))
	facts := h.fetchListingFacts(ctx, address)

	prompt := BuildPrompt(facts, address)

	text, err := h.model.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, mapModelError(err)
	}

	parsed, err := ExtractJSONObject(text)
	if err != nil {
		h.logger.Error("Model output was not parseable JSON", map[string]interface{}{
			"error":      err.Error(),
			"raw_length": len(text),
			"raw_head":   truncate(text, 500),
		})
		// Only the head and tail of the raw text go back to the caller, the
		// full completion can be large.
		return nil, errors.NewUpstreamError(errors.ErrCodeModelInvalidJSON, "AI response was not valid JSON", err.Error()).
			WithPayload(map[string]interface{}{
				"rawResponseStart":  truncate(text, 500),
				"rawResponseEnd":    tail(text, 500),
				"rawResponseLength": len(text),
			})
	}

	checkModelOutput(parsed, h.logger)

	result := Reconcile(facts, parsed, photoURL)

	h.persistAsync(address, result)

	h.logger.Info("Listing analysis completed", map[string]interface{}{
		"address":         address,
		"has_real_data":   facts.HasRealData(),
		"estimated_value": result.EstimatedValue,
		"days_on_market":  result.DaysOnMarket,
	})

	return &Output{Result: result}, nil
}

// fetchListingFacts pulls provider data when configured. Any failure logs a
// warning and yields empty facts.
func (h *Handler) fetchListingFacts(ctx context.Context, address string) models.ListingFacts {
	if !h.listings.Configured() {
		h.logger.Warn("RentCast API key not set, skipping listing lookup", nil)
		return models.DefaultListingFacts()
	}

	listing, err := h.listings.FirstSaleListing(ctx, address)
	if err != nil {
		h.logger.Warn("Listing lookup failed (non-critical)", map[string]interface{}{
			"error": err.Error(),
		})
		return models.DefaultListingFacts()
	}
	if listing == nil {
		return models.DefaultListingFacts()
	}

	return listing.Facts()
}

// persistAsync writes the analysis record without blocking the response. The
// write uses a fresh context so a finished request cannot cancel it.
func (h *Handler) persistAsync(address string, result *models.AnalysisResult) {
	rec := &models.CachedAnalysis{
		Result:    result,
		CreatedAt: h.now().UTC().Format(time.RFC3339),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := h.store.SaveAnalysis(ctx, address, rec); err != nil {
			h.logger.Warn("Analysis persistence failed (non-critical)", map[string]interface{}{
				"address": address,
				"error":   err.Error(),
			})
		}
	}()
}

// mapModelError converts model client failures into response errors, keeping
// the provider diagnostics the frontend surfaces to the user.
func mapModelError(err error) *errors.StandardError {
	var httpErr *gemini.HTTPError
	if stderrors.As(err, &httpErr) {
		var payload interface{}
		if jsonErr := json.Unmarshal([]byte(httpErr.Body), &payload); jsonErr != nil {
			payload = map[string]interface{}{"error": httpErr.Body}
		}
		return errors.NewUpstreamError(errors.ErrCodeModelRequestFailed,
			fmt.Sprintf("Gemini API error (%d)", httpErr.StatusCode), "").
			WithPayload(payload)
	}

	var apiErr *gemini.APIError
	if stderrors.As(err, &apiErr) {
		return errors.NewUpstreamError(errors.ErrCodeModelErrorPayload,
			fmt.Sprintf("Gemini API error: %s", apiErr.Message), "")
	}

	var emptyErr *gemini.EmptyResponseError
	if stderrors.As(err, &emptyErr) {
		return errors.NewUpstreamError(errors.ErrCodeModelEmptyResponse,
			"No response from AI. Please check the API key and try again.", emptyErr.Debug)
	}

	return errors.NewUpstreamError(errors.ErrCodeModelRequestFailed, "AI analysis failed", err.Error())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
