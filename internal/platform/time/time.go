// Package time holds the timestamp helpers shared by the JSON payloads
package time

import "time"

// Ptr returns &t, or nil for the zero time so omitempty drops it
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Stamp formats t as RFC 3339 in UTC, the form every payload timestamp uses
func Stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
