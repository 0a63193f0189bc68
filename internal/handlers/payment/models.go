// internal/handlers/payment/models.go
package payment

// CreateIntentInput is the request body for /create-payment-intent. Amount is
// in dollars.
type CreateIntentInput struct {
	Amount  float64 `json:"amount"`
	Address string  `json:"address"`
}

// CreateIntentOutput carries the client secret the frontend confirms with.
type CreateIntentOutput struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// VerifyInput is the request body for /verify-payment.
type VerifyInput struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// VerifyOutput reports the processor's view of the intent.
type VerifyOutput struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}
