// internal/handlers/autocomplete/models.go
package autocomplete

import "listing-analytics/internal/integrations/places"

// Input is the request body for address autocomplete.
type Input struct {
	Input string `json:"input"`
}

// Output relays the provider payload untouched.
type Output struct {
	Predictions []places.Prediction `json:"predictions"`
	Status      string              `json:"status"`
}
