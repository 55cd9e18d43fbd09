package model

import (
	"time"

	"github.com/LimeMojito/trading-data-stream/pkg/errors"
)

// AssertBeforeStart validates that after is not before start.
func AssertBeforeStart(start, after time.Time) error {
	if start.After(after) {
		return errors.NewCoded(errors.InvalidArgumentError,
			"Instant %s must be before %s", FormatInstant(start), FormatInstant(after))
	}
	return nil
}

// RoundEndSecond ensures an instant represents the last nanosecond of its
// second. An instant exactly on a second boundary is expanded forward to the
// last nanosecond of that second so ranges stay inclusive to end-of-second.
func RoundEndSecond(end time.Time) time.Time {
	if end.Nanosecond() == 0 {
		return end.Add(time.Second - time.Nanosecond)
	}
	return end
}

// RoundEndInstant rounds an end instant up to the inclusive end of the bar
// that contains it: advance by one period, round down to the bar start, then
// subtract one second and expand to the end of that second.
func RoundEndInstant(period Period, end time.Time) time.Time {
	updatedEnd := period.RoundInstant(end.Add(period.Duration()))
	// if 12:45:33 we need to expand to cover the end of a second.
	return RoundEndSecond(updatedEnd.Add(-time.Second))
}

// RoundStart rounds a start instant down to the start of the bar containing it.
func RoundStart(period Period, start time.Time) time.Time {
	return period.RoundInstant(start)
}

// TickCriteria is a validated symbol and inclusive time window for tick
// retrieval. The end instant is normalized to the last nanosecond of its
// second.
type TickCriteria struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// NewTickCriteria validates the window and normalizes the end instant.
func NewTickCriteria(symbol string, start, end time.Time) (TickCriteria, error) {
	if err := AssertBeforeStart(start, end); err != nil {
		return TickCriteria{}, err
	}
	return TickCriteria{
		Symbol: symbol,
		Start:  start.UTC(),
		End:    RoundEndSecond(end.UTC()),
	}, nil
}

// BarCriteria is a validated symbol, period and time window for bar retrieval.
// Start and end are aligned to whole bars and an inclusive day range is
// derived for day-by-day processing, which day-organized caches rely on.
type BarCriteria struct {
	Symbol   string
	Period   Period
	Start    time.Time
	End      time.Time
	DayStart time.Time
	DayEnd   time.Time
	NumDays  int
}

// NewBarCriteria validates the window and rounds it onto bar boundaries.
func NewBarCriteria(symbol string, period Period, start, end time.Time) (BarCriteria, error) {
	if err := AssertBeforeStart(start, end); err != nil {
		return BarCriteria{}, err
	}
	dayStart := start.UTC().Truncate(24 * time.Hour)
	dayEnd := end.UTC().Add(24 * time.Hour).Truncate(24 * time.Hour).Add(-time.Nanosecond)
	return BarCriteria{
		Symbol:   symbol,
		Period:   period,
		Start:    RoundStart(period, start.UTC()),
		End:      RoundEndInstant(period, end.UTC()),
		DayStart: dayStart,
		DayEnd:   dayEnd,
		NumDays:  int(dayEnd.Sub(dayStart)/(24*time.Hour)) + 1,
	}, nil
}

// DayStartAt returns the start instant (inclusive) of the i-th day within the
// criteria's day range. Day 0 is the day of the requested start instant.
func (c BarCriteria) DayStartAt(incrementDays int) time.Time {
	return c.DayStart.Add(time.Duration(incrementDays) * 24 * time.Hour)
}

// DayEndAt returns the inclusive end instant of the i-th day within the
// criteria's day range, at 23:59:59.999999999.
func (c BarCriteria) DayEndAt(incrementDays int) time.Time {
	return c.DayStart.Add(time.Duration(incrementDays+1) * 24 * time.Hour).Add(-time.Nanosecond)
}
