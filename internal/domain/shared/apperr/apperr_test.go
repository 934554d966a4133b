package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := errors.New("listing: not found")
	err := fmt.Errorf("load: %w", NotFound("listing not found", base))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, kind)
	assert.ErrorIs(t, err, base)
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindConflict))
}

func TestIsMatchesByKindAndCode(t *testing.T) {
	err := State("payment has not succeeded", nil).WithCode("payment_not_succeeded")

	assert.ErrorIs(t, err, &Error{Kind: KindState})
	assert.ErrorIs(t, err, &Error{Kind: KindState, Code: "payment_not_succeeded"})
	assert.NotErrorIs(t, err, &Error{Kind: KindState, Code: "other"})
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := ExternalProvider("payment provider failed", errors.New("card_declined"))
	assert.Equal(t, "payment provider failed: card_declined", err.Error())
	assert.Equal(t, "invalid room index", Validation("invalid room index").Error())
}
