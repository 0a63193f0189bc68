// internal/handlers/payment/handler_test.go
package payment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-analytics/internal/common/errors"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/integrations/stripepay"
	"listing-analytics/internal/models"
)

// ==========================
// Mocks
// ==========================

type mockProvider struct {
	configured  bool
	created     *stripepay.Intent
	createErr   error
	retrieved   *stripepay.Intent
	retrieveErr error

	gotAmountCents int64
	gotAddress     string
	gotIntentID    string
}

func (m *mockProvider) Configured() bool { return m.configured }

func (m *mockProvider) CreateIntent(ctx context.Context, amountCents int64, address string) (*stripepay.Intent, error) {
	m.gotAmountCents = amountCents
	m.gotAddress = address
	return m.created, m.createErr
}

func (m *mockProvider) RetrieveIntent(ctx context.Context, id string) (*stripepay.Intent, error) {
	m.gotIntentID = id
	return m.retrieved, m.retrieveErr
}

type mockStore struct {
	saveErr   error
	gotKey    string
	gotSub    *models.Subscription
	saveCalls int
}

func (m *mockStore) SaveSubscription(ctx context.Context, key string, sub *models.Subscription) error {
	m.saveCalls++
	m.gotKey = key
	m.gotSub = sub
	return m.saveErr
}

func newTestHandler(t *testing.T, provider *mockProvider, store *mockStore) *Handler {
	t.Helper()
	return NewHandler(provider, store, logger.NewTestLogger(t))
}

// ==========================
// CreateIntent Tests
// ==========================

func TestCreateIntentSuccess(t *testing.T) {
	provider := &mockProvider{
		configured: true,
		created:    &stripepay.Intent{ID: "pi_1", ClientSecret: "pi_1_secret", Status: "requires_payment_method"},
	}
	handler := newTestHandler(t, provider, &mockStore{})

	out, err := handler.CreateIntent(context.Background(), &CreateIntentInput{Amount: 29.99, Address: "123 Main St"})
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", out.ClientSecret)
	assert.Equal(t, "pi_1", out.PaymentIntentID)
	assert.Equal(t, int64(2999), provider.gotAmountCents)
	assert.Equal(t, "123 Main St", provider.gotAddress)
}

func TestCreateIntentAmountRounding(t *testing.T) {
	tests := []struct {
		amount float64
		cents  int64
	}{
		{29.99, 2999},
		{10, 1000},
		{5.1, 510},
		{0.5, 50},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.amount), func(t *testing.T) {
			provider := &mockProvider{
				configured: true,
				created:    &stripepay.Intent{ClientSecret: "cs"},
			}
			handler := newTestHandler(t, provider, &mockStore{})

			_, err := handler.CreateIntent(context.Background(), &CreateIntentInput{Amount: tt.amount})
			require.NoError(t, err)
			assert.Equal(t, tt.cents, provider.gotAmountCents)
		})
	}
}

func TestCreateIntentValidation(t *testing.T) {
	handler := newTestHandler(t, &mockProvider{configured: true}, &mockStore{})

	for _, input := range []*CreateIntentInput{nil, {Amount: 0}, {Amount: -5}} {
		_, err := handler.CreateIntent(context.Background(), input)
		require.Error(t, err)

		stdErr := errors.AsStandardError(err)
		assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
		assert.Equal(t, "Amount is required", stdErr.Message)
	}
}

func TestCreateIntentMissingCredential(t *testing.T) {
	handler := newTestHandler(t, &mockProvider{configured: false}, &mockStore{})

	_, err := handler.CreateIntent(context.Background(), &CreateIntentInput{Amount: 10})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeCredentialMissing, stdErr.Code)
	assert.Equal(t, "Stripe secret key missing", stdErr.Message)
}

func TestCreateIntentProviderFailure(t *testing.T) {
	provider := &mockProvider{configured: true, createErr: fmt.Errorf("card network down")}
	handler := newTestHandler(t, provider, &mockStore{})

	_, err := handler.CreateIntent(context.Background(), &CreateIntentInput{Amount: 10})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodePaymentCreateFailed, stdErr.Code)
	assert.Equal(t, "Failed to create payment intent", stdErr.Message)
}

// ==========================
// Verify Tests
// ==========================

func TestVerifySucceededSavesSubscription(t *testing.T) {
	provider := &mockProvider{
		configured: true,
		retrieved:  &stripepay.Intent{ID: "pi_2", Status: "succeeded", Address: "456 Oak Ave"},
	}
	store := &mockStore{}
	handler := newTestHandler(t, provider, store)

	out, err := handler.Verify(context.Background(), &VerifyInput{PaymentIntentID: "pi_2"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "succeeded", out.Status)

	require.Equal(t, 1, store.saveCalls)
	assert.Equal(t, "456 Oak Ave", store.gotKey)
	assert.Equal(t, "active", store.gotSub.Status)
	assert.Equal(t, "pi_2", store.gotSub.PaymentIntentID)
	assert.Equal(t, "456 Oak Ave", store.gotSub.Address)
	assert.NotEmpty(t, store.gotSub.CreatedAt)
}

func TestVerifyFallsBackToIntentIDKey(t *testing.T) {
	provider := &mockProvider{
		configured: true,
		retrieved:  &stripepay.Intent{ID: "pi_3", Status: "succeeded"},
	}
	store := &mockStore{}
	handler := newTestHandler(t, provider, store)

	out, err := handler.Verify(context.Background(), &VerifyInput{PaymentIntentID: "pi_3"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "pi_3", store.gotKey)
}

func TestVerifyNotSucceeded(t *testing.T) {
	provider := &mockProvider{
		configured: true,
		retrieved:  &stripepay.Intent{ID: "pi_4", Status: "requires_payment_method"},
	}
	store := &mockStore{}
	handler := newTestHandler(t, provider, store)

	out, err := handler.Verify(context.Background(), &VerifyInput{PaymentIntentID: "pi_4"})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "requires_payment_method", out.Status)
	assert.Zero(t, store.saveCalls)
}

func TestVerifyValidation(t *testing.T) {
	handler := newTestHandler(t, &mockProvider{configured: true}, &mockStore{})

	for _, input := range []*VerifyInput{nil, {PaymentIntentID: ""}, {PaymentIntentID: "  "}} {
		_, err := handler.Verify(context.Background(), input)
		require.Error(t, err)

		stdErr := errors.AsStandardError(err)
		assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
		assert.Equal(t, "Payment intent ID is required", stdErr.Message)
	}
}

func TestVerifyRetrieveFailure(t *testing.T) {
	provider := &mockProvider{configured: true, retrieveErr: fmt.Errorf("no such payment_intent")}
	handler := newTestHandler(t, provider, &mockStore{})

	_, err := handler.Verify(context.Background(), &VerifyInput{PaymentIntentID: "pi_missing"})
	require.Error(t, err)

	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodePaymentVerifyFailed, stdErr.Code)
	assert.Equal(t, "Failed to verify payment", stdErr.Message)
}

func TestVerifyStoreFailureIsHardError(t *testing.T) {
	provider := &mockProvider{
		configured: true,
		retrieved:  &stripepay.Intent{ID: "pi_5", Status: "succeeded", Address: "789 Pine Rd"},
	}
	store := &mockStore{saveErr: errors.NewStoreError(errors.ErrCodeStoreWriteFailed, fmt.Errorf("connection refused"))}
	handler := newTestHandler(t, provider, store)

	_, err := handler.Verify(context.Background(), &VerifyInput{PaymentIntentID: "pi_5"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStoreWriteFailed, errors.AsStandardError(err).Code)
}
