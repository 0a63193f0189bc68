// internal/handlers/subscription/models.go
package subscription

import "listing-analytics/internal/models"

// Input is the request body for /check-subscription. Either field can key the
// lookup; address takes precedence when both are present.
type Input struct {
	Address         string `json:"address"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// Output reports whether an active subscription exists for the key. A
// missing record serializes as subscription:null, which the frontend relies
// on.
type Output struct {
	HasSubscription bool                 `json:"hasSubscription"`
	Subscription    *models.Subscription `json:"subscription"`
}
