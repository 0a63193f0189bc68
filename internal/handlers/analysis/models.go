// internal/handlers/analysis/models.go
package analysis

import "listing-analytics/internal/models"

// Input is the request body for /analyze-listing. PlaceID is optional and
// only drives the property photo lookup.
type Input struct {
	Address string `json:"address"`
	PlaceID string `json:"placeId"`
}

// Output wraps the analysis result the way the frontend consumes it.
type Output struct {
	Result *models.AnalysisResult `json:"result"`
}
