package stripe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourhub/internal/app/policies"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return New("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend}, nil)
}

func TestCreateIntentSendsMinorUnitsAndMetadata(t *testing.T) {
	var form url.Values
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"pi_1","object":"payment_intent","client_secret":"pi_1_secret","status":"requires_payment_method","amount":30000,"currency":"usd","metadata":{"booking_id":"bk-1"}}`)
	})

	intent, err := gw.CreateIntent(context.Background(), policies.IntentRequest{
		AmountMinor: 30000, Currency: "usd", Metadata: map[string]string{"booking_id": "bk-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "30000", form.Get("amount"))
	assert.Equal(t, "bk-1", form.Get("metadata[booking_id]"))
	assert.Equal(t, policies.Intent{
		ID: "pi_1", ClientSecret: "pi_1_secret", Status: "requires_payment_method",
		AmountMinor: 30000, Currency: "usd", Metadata: map[string]string{"booking_id": "bk-1"},
	}, intent)
}

func TestRetrieveIntentMapsMissingIntent(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such payment_intent: 'pi_x'"}}`)
	})
	_, err := gw.RetrieveIntent(context.Background(), "pi_x")
	require.Error(t, err)
	assert.ErrorIs(t, err, policies.ErrIntentNotFound)
}

func TestProviderMessageIsKept(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","code":"amount_too_small","message":"Amount must be at least $0.50 usd"}}`)
	})
	_, err := gw.CreateIntent(context.Background(), policies.IntentRequest{AmountMinor: 10, Currency: "usd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Amount must be at least $0.50 usd")
}
