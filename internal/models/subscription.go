// internal/models/subscription.go
package models

// Subscription is the record persisted after a successful payment
// confirmation. It is never updated once created and has no expiry.
type Subscription struct {
	Status          string `json:"status"`
	PaymentIntentID string `json:"paymentIntentId"`
	CreatedAt       string `json:"createdAt"`
	Address         string `json:"address"`
}
