package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// DurationToSeconds parses an HH:MM:SS duration. Hours are unbounded.
func DurationToSeconds(text string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q: expected HH:MM:SS", text)
	}

	hours, err := parseField(parts[0], -1)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: hours: %w", text, err)
	}
	minutes, err := parseField(parts[1], 59)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: minutes: %w", text, err)
	}
	seconds, err := parseField(parts[2], 59)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: seconds: %w", text, err)
	}

	return hours*3600 + minutes*60 + seconds, nil
}

// ParseDurationOrZero treats blank text as a zero duration.
func ParseDurationOrZero(text string) (int64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	return DurationToSeconds(text)
}

func SecondsToDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func parseField(raw string, max int64) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty field")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit in %q", raw)
		}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if max >= 0 && value > max {
		return 0, fmt.Errorf("%d out of range", value)
	}
	return value, nil
}
