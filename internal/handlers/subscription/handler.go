// internal/handlers/subscription/handler.go
package subscription

import (
	"context"
	"strings"

	"listing-analytics/internal/common/errors"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/models"
)

// SubscriptionReader loads subscription records.
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, key string) (*models.Subscription, bool, error)
}

// Handler serves subscription lookups.
type Handler struct {
	store  SubscriptionReader
	logger logger.Logger
}

func NewHandler(store SubscriptionReader, log logger.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: log,
	}
}

// Execute looks up a subscription by address or payment intent ID. A store
// failure is reported as an error, never as "no subscription": a paying
// customer must not be locked out by a transient outage.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	key := ""
	if input != nil {
		key = strings.TrimSpace(input.Address)
		if key == "" {
			key = strings.TrimSpace(input.PaymentIntentID)
		}
	}
	if key == "" {
		return nil, errors.NewValidationError("Address is required")
	}

	sub, found, err := h.store.GetSubscription(ctx, key)
	if err != nil {
		h.logger.WithError(err).Error("Subscription lookup failed", map[string]interface{}{
			"key": key,
		})
		return nil, err
	}

	if !found {
		return &Output{HasSubscription: false}, nil
	}

	return &Output{
		HasSubscription: true,
		Subscription:    sub,
	}, nil
}
