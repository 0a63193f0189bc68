// internal/integrations/gemini/client.go
package gemini

import (
	"bytes"
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
)

// Generation parameters are fixed: the analysis prompt expects deterministic
// enough JSON output and the response MIME type pins the model to JSON mode.
const (
	temperature     = 0.5
	maxOutputTokens = 8192
	responseMIME    = "application/json"
)

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *httpclient.Client
	logger  logger.Logger
}

func NewClient(cfg config.GeminiConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		logger:  log,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ==========================
// Request/Response Shapes
// ==========================

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ==========================
// Error Types
// ==========================

// HTTPError is a non-2xx response from the model endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("gemini http %d", e.StatusCode)
}

// APIError is a 2xx response carrying an error object instead of candidates.
type APIError struct {
	Message string
	Raw     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini api error: %s", e.Message)
}

// EmptyResponseError is a well-formed response with no usable text part.
type EmptyResponseError struct {
	Debug string
}

func (e *EmptyResponseError) Error() string {
	return "gemini returned no text"
}

// ==========================
// Client
// ==========================

// GenerateContent sends a prompt and returns the first candidate's text.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      temperature,
			MaxOutputTokens:  maxOutputTokens,
			ResponseMimeType: responseMIME,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("gemini", "error").Inc()
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("gemini", "error").Inc()
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamCallsTotal.WithLabelValues("gemini", "http_error").Inc()
		c.logger.Error("Gemini request failed", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   truncate(string(body), 500),
		})
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(body), 2000)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("gemini", "error").Inc()
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if parsed.Error != nil {
		metrics.UpstreamCallsTotal.WithLabelValues("gemini", "api_error").Inc()
		return "", &APIError{Message: parsed.Error.Message, Raw: truncate(string(body), 2000)}
	}

	text := firstText(parsed)
	if text == "" {
		metrics.UpstreamCallsTotal.WithLabelValues("gemini", "empty").Inc()
		return "", &EmptyResponseError{Debug: truncate(string(body), 1000)}
	}

	metrics.UpstreamCallsTotal.WithLabelValues("gemini", "success").Inc()
	return text, nil
}

func firstText(resp generateResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
