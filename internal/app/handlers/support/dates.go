package support

import (
	"strings"
	"time"

	"tourhub/internal/domain/shared/apperr"
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate accepts calendar dates and RFC 3339 timestamps.
func ParseDate(field, raw string) (time.Time, *apperr.FieldError) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &apperr.FieldError{Field: field, Message: "must be a date (YYYY-MM-DD) or RFC 3339 timestamp"}
}

// ParseDates parses a start/end pair and reports both fields when invalid.
func ParseDates(startField, startRaw, endField, endRaw string) (time.Time, time.Time, error) {
	var fields []apperr.FieldError
	start, fe := ParseDate(startField, startRaw)
	if fe != nil {
		fields = append(fields, *fe)
	}
	end, fe := ParseDate(endField, endRaw)
	if fe != nil {
		fields = append(fields, *fe)
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, apperr.Validation("validation failed", fields...)
	}
	return start, end, nil
}
