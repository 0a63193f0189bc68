// internal/handlers/payment/handler.go
package payment

import (
	"context"
	"math"
	"strings"
	"time"

	"listing-analytics/internal/common/errors"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/integrations/stripepay"
	"listing-analytics/internal/models"
)

// SubscriptionWriter persists subscription records after confirmed payments.
type SubscriptionWriter interface {
	SaveSubscription(ctx context.Context, key string, sub *models.Subscription) error
}

// Handler serves payment intent creation and verification.
type Handler struct {
	provider stripepay.PaymentProvider
	store    SubscriptionWriter
	logger   logger.Logger
	now      func() time.Time
}

func NewHandler(provider stripepay.PaymentProvider, store SubscriptionWriter, log logger.Logger) *Handler {
	return &Handler{
		provider: provider,
		store:    store,
		logger:   log,
		now:      time.Now,
	}
}

// CreateIntent creates a payment intent for the given dollar amount. The
// amount is converted to cents with round-half-up semantics.
func (h *Handler) CreateIntent(ctx context.Context, input *CreateIntentInput) (*CreateIntentOutput, error) {
	if input == nil || input.Amount <= 0 {
		return nil, errors.NewValidationError("Amount is required")
	}

	if !h.provider.Configured() {
		h.logger.Error("Stripe secret key not configured", nil)
		return nil, errors.NewCredentialMissingError("Stripe secret key missing")
	}

	amountCents := int64(math.Round(input.Amount * 100))

	intent, err := h.provider.CreateIntent(ctx, amountCents, strings.TrimSpace(input.Address))
	if err != nil {
		h.logger.WithError(err).Error("Payment intent creation failed", map[string]interface{}{
			"amount_cents": amountCents,
		})
		return nil, errors.NewUpstreamError(errors.ErrCodePaymentCreateFailed, "Failed to create payment intent", err.Error())
	}

	return &CreateIntentOutput{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// Verify checks the processor status of a payment intent. On success a
// subscription record is persisted, keyed by the intent's address metadata
// or by the intent ID when no address was attached. A store failure here is
// a hard error: the caller paid and must not be told verification succeeded
// when the entitlement was not recorded.
func (h *Handler) Verify(ctx context.Context, input *VerifyInput) (*VerifyOutput, error) {
	if input == nil || strings.TrimSpace(input.PaymentIntentID) == "" {
		return nil, errors.NewValidationError("Payment intent ID is required")
	}

	if !h.provider.Configured() {
		return nil, errors.NewCredentialMissingError("Stripe secret key missing")
	}

	intent, err := h.provider.RetrieveIntent(ctx, input.PaymentIntentID)
	if err != nil {
		h.logger.WithError(err).Error("Payment intent retrieval failed", map[string]interface{}{
			"payment_intent_id": input.PaymentIntentID,
		})
		return nil, errors.NewUpstreamError(errors.ErrCodePaymentVerifyFailed, "Failed to verify payment", err.Error())
	}

	if intent.Status != "succeeded" {
		h.logger.Info("Payment not yet succeeded", map[string]interface{}{
			"payment_intent_id": intent.ID,
			"status":            intent.Status,
		})
		return &VerifyOutput{Success: false, Status: intent.Status}, nil
	}

	key := intent.Address
	if key == "" {
		key = intent.ID
	}

	sub := &models.Subscription{
		Status:          "active",
		PaymentIntentID: intent.ID,
		CreatedAt:       h.now().UTC().Format(time.RFC3339),
		Address:         intent.Address,
	}

	if err := h.store.SaveSubscription(ctx, key, sub); err != nil {
		h.logger.WithError(err).Error("Subscription persistence failed", map[string]interface{}{
			"payment_intent_id": intent.ID,
		})
		return nil, err
	}

	return &VerifyOutput{Success: true, Status: intent.Status}, nil
}
