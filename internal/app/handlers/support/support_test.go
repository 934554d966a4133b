package support

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourhub/internal/domain/shared/apperr"
)

func TestParseDate(t *testing.T) {
	got, fe := ParseDate("checkInDate", "2025-03-01")
	require.Nil(t, fe)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, fe = ParseDate("checkInDate", "2025-03-01T14:00:00+02:00")
	require.Nil(t, fe)
	assert.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), got)

	_, fe = ParseDate("checkInDate", "tomorrow")
	require.NotNil(t, fe)
	assert.Equal(t, "checkInDate", fe.Field)
}

func TestParseDatesReportsBothFields(t *testing.T) {
	_, _, err := ParseDates("a", "x", "b", "y")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Fields, 2)
}
