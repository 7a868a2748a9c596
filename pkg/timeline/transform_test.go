package timeline

import (
	"math"
	"testing"
)

func TestToRemaining(t *testing.T) {
	if got := ToRemaining(50, 200); got != 150 {
		t.Errorf("ToRemaining(50, 200) = %v, want 150", got)
	}
	if got := ToRemaining(250, 200); got != -50 {
		t.Errorf("ToRemaining(250, 200) = %v, want -50", got)
	}
}

func TestFromRemaining(t *testing.T) {
	tests := []struct {
		name      string
		remaining float64
		total     float64
		expected  float64
	}{
		{"middle of window", 150, 200, 50},
		{"exactly at floor", 198, 200, MinElapsed},
		{"above total clamps to floor", 500, 200, MinElapsed},
		{"whole window clamps to floor", 200, 200, MinElapsed},
		{"negative remaining maps past the end", -10, 200, 210},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromRemaining(tt.remaining, tt.total); got != tt.expected {
				t.Errorf("FromRemaining(%v, %v) = %v, want %v", tt.remaining, tt.total, got, tt.expected)
			}
		})
	}
}

func TestRemainingRoundTrip(t *testing.T) {
	totals := []float64{10, 95, 210, 600}
	for _, total := range totals {
		for r := -20.0; r <= total+20; r += 0.5 {
			got := ToRemaining(FromRemaining(r, total), total)
			want := math.Min(r, total-MinElapsed)
			if math.Abs(got-want) > 1e-9 {
				t.Fatalf("round trip r=%v total=%v: got %v, want %v", r, total, got, want)
			}
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{65, "1:05"},
		{65.5, "1:05.500"},
		{59.999, "0:59.999"},
		{59.9996, "1:00"},
		{3600, "60:00"},
		{754.25, "12:34.250"},
		{-5, "-0:05"},
		{-75.125, "-1:15.125"},
		{-0.0001, "0:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatClock(tt.seconds); got != tt.expected {
				t.Errorf("FormatClock(%v) = %q, want %q", tt.seconds, got, tt.expected)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"1:30", 90, false},
		{"0:05.250", 5.25, false},
		{"-1:15.125", -75.125, false},
		{"42", 42, false},
		{" 12.5 ", 12.5, false},
		{"60:00", 3600, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1:75", 0, true},
		{"x:10", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseClock(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) unexpected error: %v", tt.input, err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ParseClock(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseClockInvertsFormat(t *testing.T) {
	for _, v := range []float64{0, 2, 61.5, 754.25, -30, 3599.999} {
		got, err := ParseClock(FormatClock(v))
		if err != nil {
			t.Fatalf("ParseClock(FormatClock(%v)): %v", v, err)
		}
		if math.Abs(got-v) > 0.0005 {
			t.Errorf("ParseClock(FormatClock(%v)) = %v", v, got)
		}
	}
}
