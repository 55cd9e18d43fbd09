// Package dukascopy locates, decodes and searches the Dukascopy historical
// tick archive: hour-resolution bi5 files addressed by vendor paths.
package dukascopy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/market"
)

// PathGenerator maps a symbol and time window onto the ordered list of hourly
// archive paths covering the window. Months and hours are zero-indexed and two
// digits wide, as the bank's feed lays files out.
type PathGenerator struct {
	market *market.MarketStatus
}

// NewPathGenerator creates a generator that filters closed-market hours using
// the supplied market status.
func NewPathGenerator(marketStatus *market.MarketStatus) *PathGenerator {
	return &PathGenerator{market: marketStatus}
}

// GeneratePaths produces the hourly paths covering [start, end], omitting
// hours whose start instant is outside the global FX trading week.
func (g *PathGenerator) GeneratePaths(symbol string, start, end time.Time) []string {
	var paths []string
	lastHour := end.UTC().Truncate(time.Hour)
	for hour := start.UTC().Truncate(time.Hour); !hour.After(lastHour); hour = hour.Add(time.Hour) {
		if g.market.IsOpen(hour) == market.Open {
			paths = append(paths, HourPath(symbol, hour))
		}
	}
	return paths
}

// GeneratePathsGroupedByDay produces one inner list per covered UTC day, each
// holding that day's 24 hourly paths. No market filtering is applied; callers
// may filter downstream.
func (g *PathGenerator) GeneratePathsGroupedByDay(symbol string, start, end time.Time) [][]string {
	var grouped [][]string
	lastDay := end.UTC().Truncate(24 * time.Hour)
	for day := start.UTC().Truncate(24 * time.Hour); !day.After(lastDay); day = day.Add(24 * time.Hour) {
		dayOfPaths := make([]string, 0, 24)
		for hour := 0; hour < 24; hour++ {
			dayOfPaths = append(dayOfPaths, HourPath(symbol, day.Add(time.Duration(hour)*time.Hour)))
		}
		grouped = append(grouped, dayOfPaths)
	}
	return grouped
}

// HourPath renders the vendor path for one UTC hour:
// <SYMBOL>/<YYYY>/<MM0>/<DD>/<HH0>h_ticks.bi5 with month zero-indexed.
func HourPath(symbol string, hourStart time.Time) string {
	utc := hourStart.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%02dh_ticks.bi5",
		strings.ToUpper(symbol),
		utc.Year(),
		int(utc.Month())-1,
		utc.Day(),
		utc.Hour())
}

// ParseHourPath recovers the symbol and UTC hour start from a vendor path.
func ParseHourPath(path string) (symbol string, hourStart time.Time, err error) {
	parts := strings.Split(path, "/")
	if len(parts) != 5 || !strings.HasSuffix(parts[4], "h_ticks.bi5") {
		return "", time.Time{}, errors.NewCoded(errors.InvalidArgumentError,
			"not a dukascopy tick path: %s", path)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", time.Time{}, errors.WrapCoded(errors.InvalidArgumentError, err)
	}
	monthZero, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", time.Time{}, errors.WrapCoded(errors.InvalidArgumentError, err)
	}
	day, err := strconv.Atoi(parts[3])
	if err != nil {
		return "", time.Time{}, errors.WrapCoded(errors.InvalidArgumentError, err)
	}
	hour, err := strconv.Atoi(strings.TrimSuffix(parts[4], "h_ticks.bi5"))
	if err != nil {
		return "", time.Time{}, errors.WrapCoded(errors.InvalidArgumentError, err)
	}
	return parts[0], time.Date(year, time.Month(monthZero+1), day, hour, 0, 0, 0, time.UTC), nil
}
