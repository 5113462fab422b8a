// internal/timeframe/timeframe.go
package timeframe

import (
	"time"

	custom_errors "oss-tldr/internal/errors"
)

// Timeframe is one of the fixed report windows.
type Timeframe string

const (
	LastDay   Timeframe = "last_day"
	LastWeek  Timeframe = "last_week"
	LastMonth Timeframe = "last_month"
	LastYear  Timeframe = "last_year"
)

const day = 24 * time.Hour

// All lists every supported timeframe, shortest first.
var All = []Timeframe{LastDay, LastWeek, LastMonth, LastYear}

// Range is a half-open UTC interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Parse validates a timeframe token.
func Parse(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if tf.Duration() == 0 {
		return "", &custom_errors.InvalidTimeframeError{Value: s}
	}
	return tf, nil
}

// Duration is the length of the window, or zero for an unknown token.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case LastDay:
		return day
	case LastWeek:
		return 7 * day
	case LastMonth:
		return 30 * day
	case LastYear:
		return 365 * day
	default:
		return 0
	}
}

// Resolve anchors the window at the start of now's UTC day, so every call
// within the same calendar day yields the same interval.
func (t Timeframe) Resolve(now time.Time) Range {
	end := now.UTC().Truncate(day)
	return Range{Start: end.Add(-t.Duration()), End: end}
}

// Resolve parses token and resolves it against now.
func Resolve(token string, now time.Time) (Range, error) {
	tf, err := Parse(token)
	if err != nil {
		return Range{}, err
	}
	return tf.Resolve(now), nil
}
