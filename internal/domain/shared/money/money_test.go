package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualUsesOneCentTolerance(t *testing.T) {
	assert.True(t, Equal(300, 300))
	assert.True(t, Equal(300, 300.01))
	assert.True(t, Equal(299.99, 300))
	assert.False(t, Equal(300, 300.02))
	assert.False(t, Equal(250, 300))
}

func TestMinorUnitsRounds(t *testing.T) {
	assert.Equal(t, int64(30000), MinorUnits(300))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
	assert.Equal(t, int64(50), MinorUnits(0.5))
}
