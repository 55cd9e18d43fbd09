package model

import (
	"fmt"
	"time"
)

// Period represents a fixed bar aggregation period.
type Period string

// Supported aggregation periods for bars.
const (
	M5  Period = "M5"
	M10 Period = "M10"
	M15 Period = "M15"
	M30 Period = "M30"
	H1  Period = "H1"
	H4  Period = "H4"
	D1  Period = "D1"
)

// AllPeriods lists the supported periods in ascending duration order.
var AllPeriods = []Period{M5, M10, M15, M30, H1, H4, D1}

var periodDurations = map[Period]time.Duration{
	M5:  5 * time.Minute,
	M10: 10 * time.Minute,
	M15: 15 * time.Minute,
	M30: 30 * time.Minute,
	H1:  time.Hour,
	H4:  4 * time.Hour,
	D1:  24 * time.Hour,
}

var periodOrdinals = map[Period]int{}

func init() {
	for i, period := range AllPeriods {
		periodOrdinals[period] = i
	}
}

// GetPeriod returns a period by name.
func GetPeriod(name string) (Period, error) {
	period := Period(name)
	if _, ok := periodDurations[period]; !ok {
		return "", fmt.Errorf("unsupported period: %s", name)
	}
	return period, nil
}

// Duration of one bar of this period.
func (p Period) Duration() time.Duration {
	return periodDurations[p]
}

// DurationMilliseconds of one bar of this period.
func (p Period) DurationMilliseconds() int64 {
	return p.Duration().Milliseconds()
}

// Ordinal is the position of the period in ascending duration order.
func (p Period) Ordinal() int {
	return periodOrdinals[p]
}

// Round rounds the supplied epoch milliseconds down to the start of the period.
func (p Period) Round(epochMillis int64) int64 {
	periodMillis := p.DurationMilliseconds()
	return (epochMillis / periodMillis) * periodMillis
}

// RoundInstant rounds the supplied time down to the start of the period.
func (p Period) RoundInstant(instant time.Time) time.Time {
	return ToInstant(p.Round(ToEpochMillis(instant)))
}

// PeriodsIn computes the number of periods that fit in a larger period.
func (p Period) PeriodsIn(largerPeriod Period) int {
	return int(p.PeriodsInDuration(largerPeriod.Duration()))
}

// PeriodsInDuration computes the number of periods required to fill the duration.
func (p Period) PeriodsInDuration(largeDuration time.Duration) int64 {
	periods := int64(largeDuration.Seconds()) / int64(p.Duration().Seconds())
	return max(periods, 0)
}

// PeriodsBetween computes the number of periods between times, end exclusive.
func (p Period) PeriodsBetween(start, end time.Time) int64 {
	return p.PeriodsInDuration(end.Sub(start))
}

// Smallest returns the finest period from the given set.
func Smallest(periods []Period) (Period, error) {
	return reducePeriods(periods, func(a, b Period) Period {
		if a.Ordinal() < b.Ordinal() {
			return a
		}
		return b
	})
}

// Largest returns the coarsest period from the given set.
func Largest(periods []Period) (Period, error) {
	return reducePeriods(periods, func(a, b Period) Period {
		if a.Ordinal() > b.Ordinal() {
			return a
		}
		return b
	})
}

func reducePeriods(periods []Period, pick func(a, b Period) Period) (Period, error) {
	if len(periods) == 0 {
		return "", fmt.Errorf("supplied period list must not be empty")
	}
	result := periods[0]
	for _, period := range periods[1:] {
		result = pick(result, period)
	}
	return result, nil
}
