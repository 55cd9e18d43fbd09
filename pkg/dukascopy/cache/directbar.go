package cache

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/LimeMojito/trading-data-stream/pkg/aggregate"
	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stats"
)

// hoursInDay is the expected number of hourly tick paths covering one UTC day.
const hoursInDay = 24

// DirectBarNoCache computes a day of bars by aggregating the day's tick stream
// on the fly. It is the leaf of every bar cache chain.
type DirectBarNoCache struct {
	validate   *validator.Validate
	source     TickSource
	cacheStats *stats.SimpleStats
}

// NewDirectBarNoCache creates the bar leaf over a tick source.
func NewDirectBarNoCache(validate *validator.Validate, source TickSource) *DirectBarNoCache {
	return &DirectBarNoCache{
		validate:   validate,
		source:     source,
		cacheStats: stats.NewSimpleStats("DirectBarNoCache"),
	}
}

// Statistics for the leaf: every day computed is a miss.
func (c *DirectBarNoCache) Statistics() stats.CacheStatistics {
	return c.cacheStats
}

// OneDayOfBars aggregates one UTC day of hourly tick files into bars of the
// criteria's period, trimmed to the day window.
func (c *DirectBarNoCache) OneDayOfBars(ctx context.Context, criteria model.BarCriteria, dayPaths []string) ([]model.Bar, error) {
	if len(dayPaths) != hoursInDay {
		return nil, errors.NewCoded(errors.InvalidArgumentError,
			"Paths for Day of 1H Tick files is not 24! %d", len(dayPaths))
	}
	ticks, err := c.source.DayOfTicks(ctx, criteria, dayPaths)
	if err != nil {
		return nil, err
	}
	defer ticks.Close()
	bars, err := aggregate.TickToBarList(c.validate, criteria.Period, ticks, nil)
	if err != nil {
		return nil, err
	}
	c.cacheStats.Increment(stats.StatMiss)
	return bars, nil
}
