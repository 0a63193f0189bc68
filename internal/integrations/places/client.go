// internal/integrations/places/client.go
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"listing-analytics/internal/common/config"
	"listing-analytics/internal/common/errors"
	"listing-analytics/internal/common/httpclient"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/common/metrics"
)

// Client calls the Google Places web service for address autocomplete and
// property photo lookup.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  logger.Logger
}

// Prediction is a single autocomplete suggestion. The raw provider fields are
// passed through to the caller untouched.
type Prediction map[string]interface{}

// AutocompleteResponse is the provider payload relayed to the caller.
type AutocompleteResponse struct {
	Predictions []Prediction    `json:"predictions"`
	Status      string          `json:"status"`
	Raw         json.RawMessage `json:"-"`
}

func NewClient(cfg config.PlacesConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		logger:  log,
	}
}

// Configured reports whether an API key is present. Checked per request, not
// at startup.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Autocomplete returns US address suggestions for a partial input.
func (c *Client) Autocomplete(ctx context.Context, input string) (*AutocompleteResponse, error) {
	endpoint := fmt.Sprintf(
		"%s/place/autocomplete/json?input=%s&types=address&components=country:us&key=%s",
		c.baseURL, url.QueryEscape(input), url.QueryEscape(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewUpstreamError(errors.ErrCodePlacesRequestFailed, "Failed to fetch Places API", err.Error())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("places", "error").Inc()
		return nil, errors.NewUpstreamError(errors.ErrCodePlacesRequestFailed, "Failed to fetch Places API", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("places", "error").Inc()
		return nil, errors.NewUpstreamError(errors.ErrCodePlacesRequestFailed, "Failed to fetch Places API", err.Error())
	}

	var parsed AutocompleteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("places", "error").Inc()
		return nil, errors.NewUpstreamError(errors.ErrCodePlacesRequestFailed, "Failed to fetch Places API", err.Error())
	}
	parsed.Raw = body

	// The provider reports failures through its own status field, with HTTP
	// 200. ZERO_RESULTS is a valid empty answer, not an error.
	if parsed.Status != "" && parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		metrics.UpstreamCallsTotal.WithLabelValues("places", "status_error").Inc()
		c.logger.Error("Places API reported an error status", map[string]interface{}{
			"provider_status": parsed.Status,
		})
		var payload interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			payload = string(body)
		}
		return nil, errors.NewUpstreamError(errors.ErrCodePlacesStatusError, "Places API error", parsed.Status).
			WithPayload(payload)
	}

	if parsed.Predictions == nil {
		parsed.Predictions = []Prediction{}
	}
	if parsed.Status == "" {
		parsed.Status = "OK"
	}

	metrics.UpstreamCallsTotal.WithLabelValues("places", "success").Inc()
	return &parsed, nil
}

// detailsResponse covers only the photo references we care about.
type detailsResponse struct {
	Result struct {
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"result"`
	Status string `json:"status"`
}

// PhotoURL resolves a place ID to a static photo URL via the place details
// endpoint. Best effort: any failure, and an empty place ID, return an empty
// URL so analysis can proceed without an image.
func (c *Client) PhotoURL(ctx context.Context, placeID string) string {
	if placeID == "" || !c.Configured() {
		return ""
	}

	endpoint := fmt.Sprintf(
		"%s/place/details/json?place_id=%s&fields=photos&key=%s",
		c.baseURL, url.QueryEscape(placeID), url.QueryEscape(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("places_photo", "error").Inc()
		c.logger.Warn("Property photo lookup failed (non-critical)", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamCallsTotal.WithLabelValues("places_photo", "http_error").Inc()
		return ""
	}

	var parsed detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return ""
	}

	if len(parsed.Result.Photos) == 0 {
		return ""
	}

	metrics.UpstreamCallsTotal.WithLabelValues("places_photo", "success").Inc()
	return fmt.Sprintf("%s/place/photo?maxwidth=800&photo_reference=%s&key=%s",
		c.baseURL, url.QueryEscape(parsed.Result.Photos[0].PhotoReference), url.QueryEscape(c.apiKey))
}
