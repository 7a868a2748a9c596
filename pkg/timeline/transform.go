package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToRemaining converts elapsed seconds into seconds left on the countdown.
func ToRemaining(elapsed, total float64) float64 {
	return total - elapsed
}

// FromRemaining converts a remaining time back into an elapsed start.
// The result is floored at MinElapsed so it is always a usable start value.
func FromRemaining(remaining, total float64) float64 {
	return math.Max(MinElapsed, total-remaining)
}

// FormatClock renders seconds as M:SS, or M:SS.mmm when there is a sub-second part.
// Negative values get a leading '-'. Minutes are not wrapped.
func FormatClock(seconds float64) string {
	neg := seconds < 0
	ms := int64(math.Round(math.Abs(seconds) * 1000))

	minutes := ms / 60000
	secs := (ms % 60000) / 1000
	millis := ms % 1000

	sign := ""
	if neg && ms != 0 {
		sign = "-"
	}
	if millis == 0 {
		return fmt.Sprintf("%s%d:%02d", sign, minutes, secs)
	}
	return fmt.Sprintf("%s%d:%02d.%03d", sign, minutes, secs, millis)
}

// ParseClock parses the output of FormatClock. Bare numbers are read as seconds.
func ParseClock(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty clock value")
	}

	neg := false
	body := s
	if strings.HasPrefix(body, "-") {
		neg = true
		body = body[1:]
	}

	minPart, secPart, hasColon := strings.Cut(body, ":")
	if !hasColon {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid clock value %q: %w", s, err)
		}
		return v, nil
	}

	minutes, err := strconv.ParseUint(minPart, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", s, err)
	}
	secs, err := strconv.ParseFloat(secPart, 64)
	if err != nil || secs < 0 || secs >= 60 {
		return 0, fmt.Errorf("invalid seconds in %q", s)
	}

	v := float64(minutes)*60 + secs
	if neg {
		v = -v
	}
	return v, nil
}
