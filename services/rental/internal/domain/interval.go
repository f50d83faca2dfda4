package domain

import (
	"errors"
	"time"
)

var ErrEmptyInterval = errors.New("start date must be before end date")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval normalises both bounds to UTC with microsecond precision, the
// resolution the database stores.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: Normalize(start), End: Normalize(end)}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return ErrEmptyInterval
	}
	return nil
}

// Overlaps reports whether the ranges share an instant. Touching ranges,
// where one ends exactly when the other starts, do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}
