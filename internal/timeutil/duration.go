package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNegativeDuration is returned when a negative minute count is formatted.
var ErrNegativeDuration = errors.New("negative duration")

var (
	durationLabel = regexp.MustCompile(`^(?:(\d+)h )?(\d+)m$`)
	durationInput = regexp.MustCompile(`^(?:(\d+)h)?\s*(?:(\d+)m)?$`)
)

// FormatDuration renders a minute count as "Ym" below an hour and "Xh Ym"
// otherwise (90 -> "1h 30m", 60 -> "1h 0m", 5 -> "5m").
func FormatDuration(minutes int) (string, error) {
	if minutes < 0 {
		return "", fmt.Errorf("format %d minutes: %w", minutes, ErrNegativeDuration)
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins), nil
	}
	return fmt.Sprintf("%dh %dm", hours, mins), nil
}

// ParseDuration reads a label produced by FormatDuration back into minutes.
func ParseDuration(label string) (int, error) {
	m := durationLabel.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, fmt.Errorf("invalid duration label %q", label)
	}

	hours := 0
	if m[1] != "" {
		h, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("invalid hours %q: %w", m[1], err)
		}
		hours = h
	}
	mins, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes %q: %w", m[2], err)
	}
	return hours*60 + mins, nil
}

// ParseDurationInput is ParseDuration for typed input: either part may be
// left out and the space is optional ("1h", "90m", "1h30m", "1h 30m").
func ParseDurationInput(input string) (int, error) {
	input = strings.TrimSpace(input)
	m := durationInput.FindStringSubmatch(input)
	if input == "" || m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("invalid duration %q", input)
	}

	total := 0
	if m[1] != "" {
		h, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("invalid hours %q: %w", m[1], err)
		}
		total += h * 60
	}
	if m[2] != "" {
		mins, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, fmt.Errorf("invalid minutes %q: %w", m[2], err)
		}
		total += mins
	}
	return total, nil
}
