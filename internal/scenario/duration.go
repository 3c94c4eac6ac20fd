package scenario

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

var durationPattern = regexp.MustCompile(`^(\d+)(s|m|h|d)$`)

// ParseDuration parses duration strings like "90m", "2h", "1d"
func ParseDuration(s string) (time.Duration, error) {
	matches := durationPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", s)
	}

	unit := matches[2]
	var scale time.Duration
	switch unit {
	case "s":
		scale = time.Second
	case "m":
		scale = time.Minute
	case "h":
		scale = time.Hour
	case "d":
		scale = 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}

	if value > math.MaxInt64/int64(scale) {
		return 0, fmt.Errorf("duration out of range: %s", s)
	}
	return time.Duration(value) * scale, nil
}

// ParseElapsedHours parses a duration that must be a whole number of hours
func ParseElapsedHours(s string) (int, error) {
	d, err := ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d%time.Hour != 0 {
		return 0, fmt.Errorf("%s is not a whole number of hours", s)
	}
	return int(d / time.Hour), nil
}
