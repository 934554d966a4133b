package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNormalizesSpelling(t *testing.T) {
	for raw, want := range map[string]Status{
		"Pending":   Pending,
		"CONFIRMED": Confirmed,
		" accepted": Accepted,
		"canceled":  Cancelled,
		"completed": Completed,
	} {
		got, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := Parse("paid")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestMachineCheck(t *testing.T) {
	m := Machine{Pending: {Accepted}, Accepted: {Completed}}

	assert.NoError(t, m.Check(Pending, Accepted))
	assert.NoError(t, m.Check(Accepted, Accepted))
	assert.ErrorIs(t, m.Check(Pending, Completed), ErrInvalidTransition)
	assert.ErrorIs(t, m.Check(Completed, Pending), ErrInvalidTransition)
}
