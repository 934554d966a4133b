// Package fake provides an in-process payment gateway for local runs and tests.
package fake

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"tourhub/internal/app/policies"
)

// Gateway stores intents in memory. Intents report succeeded once retrieved
// unless Decline marked them.
type Gateway struct {
	mu       sync.Mutex
	intents  map[string]policies.Intent
	declined map[string]bool
}

func New() *Gateway {
	return &Gateway{intents: make(map[string]policies.Intent), declined: make(map[string]bool)}
}

func (g *Gateway) CreateIntent(_ context.Context, req policies.IntentRequest) (policies.Intent, error) {
	id := "pi_" + uuid.NewString()
	intent := policies.Intent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%s", id, uuid.NewString()[:8]),
		Status:       "requires_payment_method",
		AmountMinor:  req.AmountMinor,
		Currency:     req.Currency,
		Metadata:     maps.Clone(req.Metadata),
	}
	g.mu.Lock()
	g.intents[id] = intent
	g.mu.Unlock()
	return intent, nil
}

func (g *Gateway) RetrieveIntent(_ context.Context, id string) (policies.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return policies.Intent{}, policies.ErrIntentNotFound
	}
	if g.declined[id] {
		intent.Status = "requires_payment_method"
	} else {
		intent.Status = policies.IntentSucceeded
	}
	g.intents[id] = intent
	return intent, nil
}

// Decline keeps the intent from ever succeeding.
func (g *Gateway) Decline(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.declined[id] = true
}

var _ policies.PaymentGateway = (*Gateway)(nil)
