package support

import (
	"time"

	"github.com/google/uuid"
)

// Now returns clock() or the wall clock when clock is nil.
func Now(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

func NewID(gen func() string) string {
	if gen != nil {
		return gen()
	}
	return uuid.NewString()
}
