package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct{ text string }

func (echo) Key() string { return "test.echo" }

type other struct{}

func (other) Key() string { return "test.other" }

func TestDispatchTyped(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[echo, string](bus, "test.echo", HandlerFunc[echo, string](func(_ context.Context, cmd echo) (string, error) {
		return cmd.text, nil
	}))

	out, err := Dispatch[echo, string](context.Background(), bus, echo{text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = Dispatch[echo, int](context.Background(), bus, echo{text: "hi"})
	assert.ErrorIs(t, err, ErrResultType)

	_, err = Dispatch[other, string](context.Background(), bus, other{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	_, err = Dispatch[echo, string](context.Background(), nil, echo{})
	assert.ErrorIs(t, err, ErrNilBus)
}

func TestRegisterTwicePanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[echo, string](func(context.Context, echo) (string, error) { return "", nil })
	RegisterHandler[echo, string](bus, "test.echo", h)
	assert.Panics(t, func() { RegisterHandler[echo, string](bus, "test.echo", h) })
}
