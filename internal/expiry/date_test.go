package expiry

import (
	"testing"
	"time"
)

func TestParseDateAcceptedLayouts(t *testing.T) {
	want := time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"iso", "2025-01-08"},
		{"slashes", "08/01/2025"},
		{"dashes", "08-01-2025"},
		{"iso single digits", "2025-1-8"},
		{"slashes single digits", "8/1/2025"},
		{"surrounding space", "  2025-01-08 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			if !ok {
				t.Fatalf("ParseDate(%q) reported unparseable", tt.raw)
			}
			if !got.Equal(want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.raw, got, want)
			}
		})
	}
}

func TestParseDateRejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"not-a-date",
		"2025/01/08",
		"01-08",
		"31/02/2025",
		"2025-13-01",
		"28 nov 2025",
		"2025-01-08T10:00:00Z",
		"25-01-08",
	} {
		if got, ok := ParseDate(raw); ok {
			t.Errorf("ParseDate(%q) = %v, expected unparseable", raw, got)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	expiry := time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		now  time.Time
		want int
	}{
		{time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), 7},
		{time.Date(2025, time.January, 5, 23, 59, 0, 0, time.UTC), 3},
		{time.Date(2025, time.January, 8, 12, 0, 0, 0, time.UTC), 0},
		{time.Date(2025, time.January, 9, 1, 0, 0, 0, time.UTC), -1},
		// Calendar date is taken in now's own location.
		{time.Date(2025, time.January, 7, 23, 30, 0, 0, time.FixedZone("CET", 3600)), 1},
		{time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), 8},
	}

	for _, tt := range tests {
		if got := DaysUntil(expiry, tt.now); got != tt.want {
			t.Errorf("DaysUntil(%v) = %d, want %d", tt.now, got, tt.want)
		}
	}
}

func TestNormalizeForStorage(t *testing.T) {
	tests := map[string]string{
		"2025-01-08":  "2025-01-08",
		"08/01/2025":  "2025-01-08",
		"8-1-2025":    "2025-01-08",
		"28 nov 2025": "2025-11-28",
		"1 Gen 2026":  "2026-01-01",
		"3 mag. 2025": "2025-05-03",
		"31 feb 2025": "",
		"28 foo 2025": "",
		"":            "",
		"domani":      "",
		"28 nov 25":   "",
	}

	for raw, want := range tests {
		if got := NormalizeForStorage(raw); got != want {
			t.Errorf("NormalizeForStorage(%q) = %q, want %q", raw, got, want)
		}
	}
}
