package models

import (
	"strings"
	"time"
)

var pickupLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParsePickup accepts RFC 3339 timestamps and zone-less datetime-local values,
// the latter interpreted in loc.
func ParsePickup(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if loc == nil {
		loc = time.UTC
	}
	var lastErr error
	for _, layout := range pickupLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
