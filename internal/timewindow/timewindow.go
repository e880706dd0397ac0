// Package timewindow evaluates recurring "HH:MM" time-of-day windows,
// including windows that wrap past midnight.
package timewindow

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidClockTime = errors.New("invalid_clock_time")

// Minutes parses an "HH:MM" value into minutes since midnight.
func Minutes(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, ErrInvalidClockTime
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, ErrInvalidClockTime
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, ErrInvalidClockTime
	}
	return hour*60 + minute, nil
}

// Contains reports whether at falls inside [start, end]. A start after
// end means the window wraps midnight (e.g. 22:00-02:00).
func Contains(start, end string, at time.Time) (bool, error) {
	startMin, err := Minutes(start)
	if err != nil {
		return false, err
	}
	endMin, err := Minutes(end)
	if err != nil {
		return false, err
	}

	nowMin := at.Hour()*60 + at.Minute()
	if startMin <= endMin {
		return nowMin >= startMin && nowMin <= endMin, nil
	}
	return nowMin >= startMin || nowMin <= endMin, nil
}
