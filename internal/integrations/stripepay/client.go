// internal/integrations/stripepay/client.go
package stripepay

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"listing-analytics/internal/common/logger"
)

// ServiceTag marks payment intents created by this backend.
const ServiceTag = "listing-analytics-premium"

// Intent is the subset of a Stripe payment intent the handlers need.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Address      string
}

// PaymentProvider abstracts the payment processor for handler tests.
type PaymentProvider interface {
	Configured() bool
	CreateIntent(ctx context.Context, amountCents int64, address string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
}

// Client is the Stripe-backed PaymentProvider.
type Client struct {
	api    *client.API
	logger logger.Logger
}

func NewClient(secretKey string, log logger.Logger) *Client {
	c := &Client{logger: log}
	if secretKey != "" {
		c.api = &client.API{}
		c.api.Init(secretKey, nil)
	}
	return c
}

func (c *Client) Configured() bool {
	return c.api != nil
}

// CreateIntent creates a USD payment intent with automatic payment methods.
// The listing address rides along in metadata so verification can key the
// subscription record.
func (c *Client) CreateIntent(ctx context.Context, amountCents int64, address string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("address", address)
	params.AddMetadata("service", ServiceTag)

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Payment intent created", map[string]interface{}{
		"payment_intent_id": pi.ID,
		"amount_cents":      amountCents,
	})

	return fromStripe(pi), nil
}

// RetrieveIntent loads a payment intent by ID.
func (c *Client) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Address:      pi.Metadata["address"],
	}
}
