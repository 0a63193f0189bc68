// internal/integrations/rentcast/client.go
package rentcast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"listing-analytics/internal/common/config"
	"listing-analytics/internal/common/httpclient"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/common/metrics"
	"listing-analytics/internal/models"
)

// Client fetches active sale listings from the RentCast API. The integration
// is optional and best effort: analysis proceeds without it.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(cfg config.RentCastConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		logger:  log,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Listing mirrors the provider record. Field names vary between RentCast
// response shapes, so every attribute carries its known aliases.
type Listing struct {
	Price       float64 `json:"price"`
	ListPrice   float64 `json:"listPrice"`
	AskingPrice float64 `json:"askingPrice"`

	Bedrooms float64 `json:"bedrooms"`
	Beds     float64 `json:"beds"`
	Bed      float64 `json:"bed"`

	Bathrooms float64 `json:"bathrooms"`
	Baths     float64 `json:"baths"`
	Bath      float64 `json:"bath"`

	SquareFootage float64 `json:"squareFootage"`
	Sqft          float64 `json:"sqft"`
	LivingArea    float64 `json:"livingArea"`

	DaysOnMarket float64 `json:"daysOnMarket"`
	DOM          float64 `json:"dom"`
	DaysOld      float64 `json:"daysOld"`

	PropertyType    string `json:"propertyType"`
	Type            string `json:"type"`
	PropertySubType string `json:"propertySubType"`
}

// Facts maps the provider record to canonical listing facts, taking the first
// non-zero alias for each attribute.
func (l *Listing) Facts() models.ListingFacts {
	return models.ListingFacts{
		Price:        firstNonZero(l.Price, l.ListPrice, l.AskingPrice),
		Beds:         firstNonZero(l.Bedrooms, l.Beds, l.Bed),
		Baths:        firstNonZero(l.Bathrooms, l.Baths, l.Bath),
		Sqft:         firstNonZero(l.SquareFootage, l.Sqft, l.LivingArea),
		DaysOnMarket: firstNonZero(l.DaysOnMarket, l.DOM, l.DaysOld),
		PropertyType: firstNonEmpty(l.PropertyType, l.Type, l.PropertySubType, "Residential"),
	}
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// FirstSaleListing returns the first active sale listing for an address, or
// nil when the provider has nothing. Errors are returned for the caller to
// log; they never abort an analysis.
func (c *Client) FirstSaleListing(ctx context.Context, address string) (*Listing, error) {
	endpoint := fmt.Sprintf(
		"%s/listings/sale?address=%s&status=Active&limit=5",
		c.baseURL, url.QueryEscape(address),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("rentcast", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("rentcast", "error").Inc()
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamCallsTotal.WithLabelValues("rentcast", "http_error").Inc()
		return nil, fmt.Errorf("rentcast status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	listing, err := decodeFirst(body)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("rentcast", "error").Inc()
		return nil, err
	}

	metrics.UpstreamCallsTotal.WithLabelValues("rentcast", "success").Inc()
	return listing, nil
}

// decodeFirst handles both response shapes the provider is known to return:
// a JSON array of listings or a single listing object.
func decodeFirst(body []byte) (*Listing, error) {
	var list []Listing
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}

	var single Listing
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, fmt.Errorf("unexpected rentcast payload: %w", err)
	}
	return &single, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
