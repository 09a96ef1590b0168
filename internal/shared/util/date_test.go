package util

import (
	"testing"
	"time"
)

func TestParseCalendarDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-03-01", " 2025-03-01 ", "2025-03-01T23:59:00Z", "2025-03-01T08:00:00-05:00", "2025-03-01 10:30:00"} {
		got, ok := ParseCalendarDate(in)
		if !ok {
			t.Fatalf("ParseCalendarDate(%q) failed", in)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseCalendarDate(%q) = %s, want %s", in, got, want)
		}
	}

	for _, in := range []string{"", "not a date", "03/01/2025", "2025-13-01"} {
		if _, ok := ParseCalendarDate(in); ok {
			t.Fatalf("ParseCalendarDate(%q) expected failure", in)
		}
	}
}
