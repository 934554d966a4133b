// Package lifecycle holds the single status vocabulary shared by hotel
// bookings and vehicle orders.
package lifecycle

import (
	"errors"
	"strings"
)

var (
	ErrUnknownStatus     = errors.New("lifecycle: unknown status")
	ErrInvalidTransition = errors.New("lifecycle: invalid status transition")
)

type Status string

const (
	Pending   Status = "pending"
	Accepted  Status = "accepted"
	Confirmed Status = "confirmed"
	Completed Status = "completed"
	Cancelled Status = "cancelled"
)

// Parse accepts any casing and the legacy "Pending"/"Confirmed" spellings used by
// vehicle orders.
func Parse(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case Pending:
		return Pending, nil
	case Accepted:
		return Accepted, nil
	case Confirmed:
		return Confirmed, nil
	case Completed:
		return Completed, nil
	case Cancelled, "canceled":
		return Cancelled, nil
	}
	return "", ErrUnknownStatus
}

// Machine lists the statuses reachable from each status.
type Machine map[Status][]Status

// Check returns nil when moving from -> to is allowed. Re-applying the current
// status is always allowed so repeated requests converge on the same state.
func (m Machine) Check(from, to Status) error {
	if from == to {
		return nil
	}
	for _, next := range m[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}
