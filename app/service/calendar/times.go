package calendar

import (
	"fmt"
	"strings"
	"time"
)

// tokenLayout accepts both a trailing Z and a numeric ±hhmm offset.
const (
	tokenLayout  = "20060102T150405Z0700"
	outputLayout = "20060102T150405"
)

// NormalizeDates converts a model-provided date token into the UTC range
// syntax the calendar link expects. A "start/end" token shifts both ends
// backward by shift; a single instant is widened into a one-hour window
// starting at the shifted instant.
func NormalizeDates(token string, shift time.Duration) (string, error) {
	if start, end, found := strings.Cut(token, "/"); found {
		startTime, err := parseToken(start)
		if err != nil {
			return "", err
		}

		endTime, err := parseToken(end)
		if err != nil {
			return "", err
		}

		return formatUTC(startTime.Add(-shift)) + "/" + formatUTC(endTime.Add(-shift)), nil
	}

	instant, err := parseToken(token)
	if err != nil {
		return "", err
	}

	startTime := instant.Add(-shift)

	return formatUTC(startTime) + "/" + formatUTC(startTime.Add(time.Hour)), nil
}

func parseToken(token string) (time.Time, error) {
	parsed, err := time.Parse(tokenLayout, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeToken, token)
	}

	return parsed, nil
}

func formatUTC(t time.Time) string {
	return t.Format(outputLayout) + "Z"
}
