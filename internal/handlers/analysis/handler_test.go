// internal/handlers/analysis/handler_test.go
package analysis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-analytics/internal/common/errors"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/integrations/gemini"
	"listing-analytics/internal/integrations/rentcast"
	"listing-analytics/internal/models"
)

// ==========================
// Mocks
// ==========================

type mockListings struct {
	configured bool
	listing    *rentcast.Listing
	err        error
}

func (m *mockListings) Configured() bool { return m.configured }

func (m *mockListings) FirstSaleListing(ctx context.Context, address string) (*rentcast.Listing, error) {
	return m.listing, m.err
}

type mockPhotos struct {
	url        string
	gotPlaceID string
}

func (m *mockPhotos) PhotoURL(ctx context.Context, placeID string) string {
	m.gotPlaceID = placeID
	return m.url
}

type mockModel struct {
	configured bool
	text       string
	err        error
	gotPrompt  string
}

func (m *mockModel) Configured() bool { return m.configured }

func (m *mockModel) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.gotPrompt = prompt
	return m.text, m.err
}

type mockWriter struct {
	mu      sync.Mutex
	saves   int
	gotAddr string
	gotRec  *models.CachedAnalysis
	saveErr error
}

func (m *mockWriter) SaveAnalysis(ctx context.Context, address string, rec *models.CachedAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.gotAddr = address
	m.gotRec = rec
	return m.saveErr
}

func (m *mockWriter) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func newTestHandler(t *testing.T, listings *mockListings, photos *mockPhotos, model *mockModel, writer *mockWriter) *Handler {
	t.Helper()
	return NewHandler(listings, photos, model, writer, logger.NewTestLogger(t))
}

const modelJSON = `{
  "propertyType": "Single Family",
  "estimatedValue": 450000,
  "estimatedPrice": 450000,
  "beds": 3,
  "baths": 2,
  "sqft": 1800,
  "daysOnMarket": 45,
  "marketTrend": "Buyer's Market",
  "keyFeatures": ["renovated kitchen", "large backyard", "close to schools"],
  "recommendations": ["Reduce price by 5%", "Refresh photos", "Stage living room", "Boost online ads"],
  "riskFactors": ["45 days on market"],
  "pricingInsight": "Reduce price by 5% ($22,500) to $427,500 to accelerate sale",
  "sellingSpeedPrediction": "Likely to sell in 30-45 days with current strategy"
}`

// ==========================
// Pipeline Tests
// ==========================

func TestExecuteFullPipeline(t *testing.T) {
	listings := &mockListings{
		configured: true,
		listing: &rentcast.Listing{
			Price:         500000,
			Bedrooms:      4,
			Bathrooms:     2.5,
			SquareFootage: 2200,
			DaysOnMarket:  45,
			PropertyType:  "Single Family",
		},
	}
	model := &mockModel{configured: true, text: modelJSON}
	writer := &mockWriter{}
	photos := &mockPhotos{url: "https://photo.example/1"}
	handler := newTestHandler(t, listings, photos, model, writer)

	out, err := handler.Execute(context.Background(), &Input{Address: "123 Main St", PlaceID: "place-9"})
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	assert.Equal(t, "place-9", photos.gotPlaceID)

	// Provider facts beat model output.
	assert.Equal(t, float64(500000), out.Result.EstimatedValue)
	assert.Equal(t, float64(4), out.Result.Beds)
	assert.Equal(t, "Buyer's Market", out.Result.MarketTrend)
	assert.Equal(t, "https://photo.example/1", out.Result.PropertyImageURL)

	assert.Contains(t, model.gotPrompt, "Current List Price: $500,000")
	assert.Contains(t, model.gotPrompt, "WARNING")

	require.Eventually(t, func() bool { return writer.saveCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "123 Main St", writer.gotAddr)
	assert.NotEmpty(t, writer.gotRec.CreatedAt)
}

func TestExecuteNoListingProvider(t *testing.T) {
	model := &mockModel{configured: true, text: `{
		"propertyType": "Condo",
		"estimatedPrice": 0,
		"beds": 0,
		"baths": 0,
		"sqft": 0,
		"daysOnMarket": 45,
		"marketTrend": "Stable",
		"keyFeatures": ["a", "b", "c"],
		"recommendations": ["r1", "r2", "r3", "r4"],
		"riskFactors": [],
		"pricingInsight": "Reduce 5%",
		"sellingSpeedPrediction": "20-30 days"
	}`}
	writer := &mockWriter{}
	handler := newTestHandler(t, &mockListings{configured: false}, &mockPhotos{}, model, writer)

	out, err := handler.Execute(context.Background(), &Input{Address: "123 Main St, Austin, TX"})
	require.NoError(t, err)

	// All-zero facts plus a zeroed model answer exercise every default.
	assert.Equal(t, "Condo", out.Result.PropertyType)
	assert.Equal(t, float64(250000), out.Result.EstimatedValue)
	assert.Equal(t, float64(250000), out.Result.EstimatedPrice)
	assert.Equal(t, float64(3), out.Result.Beds)
	assert.Equal(t, float64(2), out.Result.Baths)
	assert.Equal(t, float64(2400), out.Result.Sqft)
	assert.Equal(t, float64(45), out.Result.DaysOnMarket)
	assert.Equal(t, "Stable", out.Result.MarketTrend)
	assert.Equal(t, []string{"a", "b", "c"}, out.Result.KeyFeatures)
	assert.Equal(t, []string{"r1", "r2", "r3", "r4"}, out.Result.Recommendations)
	assert.Equal(t, []string{}, out.Result.RiskFactors)
	require.NotNil(t, out.Result.PricingInsight)
	assert.Equal(t, "Reduce 5%", *out.Result.PricingInsight)

	assert.Contains(t, model.gotPrompt, "No listing data available")
}

func TestExecuteListingLookupFailureIsNonCritical(t *testing.T) {
	listings := &mockListings{configured: true, err: fmt.Errorf("rentcast status 500")}
	model := &mockModel{configured: true, text: modelJSON}
	handler := newTestHandler(t, listings, &mockPhotos{}, model, &mockWriter{})

	out, err := handler.Execute(context.Background(), &Input{Address: "789 Pine Rd"})
	require.NoError(t, err)
	assert.Equal(t, float64(450000), out.Result.EstimatedValue)
}

func TestExecutePersistFailureDoesNotFailRequest(t *testing.T) {
	model := &mockModel{configured: true, text: modelJSON}
	writer := &mockWriter{saveErr: fmt.Errorf("connection refused")}
	handler := newTestHandler(t, &mockListings{}, &mockPhotos{}, model, writer)

	out, err := handler.Execute(context.Background(), &Input{Address: "123 Main St"})
	require.NoError(t, err)
	require.NotNil(t, out.Result)

	require.Eventually(t, func() bool { return writer.saveCount() == 1 }, time.Second, 10*time.Millisecond)
}

// ==========================
// Validation and Credential Tests
// ==========================

func TestExecuteValidation(t *testing.T) {
	handler := newTestHandler(t, &mockListings{}, &mockPhotos{}, &mockModel{configured: true}, &mockWriter{})

	for _, input := range []*Input{nil, {}, {Address: "   "}} {
		_, err := handler.Execute(context.Background(), input)
		require.Error(t, err)

		stdErr := errors.AsStandardError(err)
		assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
		assert.Equal(t, "Address required", stdErr.Message)
	}
}

func TestExecuteModelNotConfigured(t *testing.T) {
	handler := newTestHandler(t, &mockListings{}, &mockPhotos{}, &mockModel{configured: false}, &mockWriter{})

	_, err := handler.Execute(context.Background(), &Input{Address: "123 Main St"})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeCredentialMissing, stdErr.Code)
	assert.Equal(t, "Gemini API key missing", stdErr.Message)
}

// ==========================
// Model Failure Mapping Tests
// ==========================

func TestExecuteModelHTTPError(t *testing.T) {
	model := &mockModel{
		configured: true,
		err:        &gemini.HTTPError{StatusCode: 429, Body: `{"error":{"message":"quota exceeded"}}`},
	}
	handler := newTestHandler(t, &mockListings{}, &mockPhotos{}, model, &mockWriter{})

	_, err := handler.Execute(context.Background(), &Input{Address: "123 Main St"})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeModelRequestFailed, stdErr.Code)
	assert.Equal(t, "Gemini API error (429)", stdErr.Message)
	assert.NotNil(t, stdErr.Payload)
}

func TestExecuteModelAPIError(t *testing.T) {
	model := &mockModel{
		configured: true,
		err:        &gemini.APIError{Message: "API key not valid"},
	}
	handler := newTestHandler(t, &mockListings{}, &mockPhotos{}, model, &mockWriter{})

	_, err := handler.Execute(context.Background(), &Input{Address: "123 Main St"})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeModelErrorPayload, stdErr.Code)
	assert.Equal(t, "Gemini API error: API key not valid", stdErr.Message)
}

func TestExecuteModelEmptyResponse(t *testing.T) {
	model := &mockModel{
		configured: true,
		err:        &gemini.EmptyResponseError{Debug: `{"candidates":[]}`},
	}
	handler := newTestHandler(t, &mockListings{}, &mockPhotos{}, model, &mockWriter{})

	_, err := handler.Execute(context.Background(), &Input{Address: "123 Main St"})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeModelEmptyResponse, stdErr.Code)
	assert.Equal(t, "No response from AI. Please check the API key and try again.", stdErr.Message)
}

func TestExecuteModelNetworkError(t *testing.T) {
	model := &mockModel{configured: true, err: fmt.Errorf("dial tcp: connection refused")}
	handler := newTestHandler(t, &mockListings{}, &mockPhotos{}, model, &mockWriter{})

	_, err := handler.Execute(context.Background(), &Input{Address: "123 Main St"})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeModelRequestFailed, stdErr.Code)
	assert.Equal(t, "AI analysis failed", stdErr.Message)
}

func TestExecuteModelInvalidJSON(t *testing.T) {
	model := &mockModel{configured: true, text: "I am unable to analyze this listing right now."}
	writer := &mockWriter{}
	handler := newTestHandler(t, &mockListings{}, &mockPhotos{}, model, writer)

	_, err := handler.Execute(context.Background(), &Input{Address: "123 Main St"})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeModelInvalidJSON, stdErr.Code)
	assert.Equal(t, "AI response was not valid JSON", stdErr.Message)

	payload, ok := stdErr.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, payload["rawResponseStart"], "unable to analyze")
	assert.Contains(t, payload["rawResponseEnd"], "right now.")

	// Nothing persisted on failure.
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, writer.saveCount())
}
