package time

import (
	"testing"
	"time"
)

func TestPtr(t *testing.T) {
	if Ptr(time.Time{}) != nil {
		t.Fatalf("zero time should map to nil")
	}

	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	if p := Ptr(now); p == nil || !now.Equal(*p) {
		t.Fatalf("Ptr(now) = %v", p)
	}
}

func TestStamp(t *testing.T) {
	cest := time.FixedZone("CEST", 2*60*60)
	if got := Stamp(time.Date(2026, 10, 17, 9, 0, 0, 0, cest)); got != "2026-10-17T07:00:00Z" {
		t.Fatalf("Stamp = %q", got)
	}
}
