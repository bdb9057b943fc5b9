// Package timeutil provides parsing and formatting helpers for the time
// syntax ffmpeg accepts in -ss style parameters.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidTimestamp is returned when a string is not a valid ffmpeg
// time position.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// clockRe matches the [HH:]MM:SS[.mmm] form. Minutes and seconds must stay
// below 60 when an hour or minute field precedes them.
var clockRe = regexp.MustCompile(`^(?:(\d+):)?([0-5]?\d):([0-5]?\d(?:\.\d{1,3})?)$`)

// secondsRe matches the plain seconds form, e.g. "5" or "12.5".
var secondsRe = regexp.MustCompile(`^\d+(?:\.\d{1,3})?$`)

// ParseTimestamp converts an ffmpeg time position ("HH:MM:SS.mmm",
// "MM:SS" or plain seconds) to seconds. It returns ErrInvalidTimestamp
// for anything ffmpeg would reject.
func ParseTimestamp(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidTimestamp)
	}

	if secondsRe.MatchString(s) {
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		return secs, nil
	}

	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}

	var hours float64
	if m[1] != "" {
		h, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
		}
		hours = h
	}
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)

	return hours*3600 + minutes*60 + seconds, nil
}

// FormatSeconds converts seconds to the HH:MM:SS.mmm form used in ffmpeg
// time parameters.
//
// Example:
//
//	FormatSeconds(0)     // "00:00:00.000"
//	FormatSeconds(90)    // "00:01:30.000"
//	FormatSeconds(3661.5) // "01:01:01.500"
func FormatSeconds(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}
