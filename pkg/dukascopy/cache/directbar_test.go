package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stream"
)

// fixedTickSource serves a canned day of ticks regardless of paths.
type fixedTickSource struct {
	ticks []model.Tick
}

func (s *fixedTickSource) DayOfTicks(context.Context, model.BarCriteria, []string) (stream.Stream[model.Tick], error) {
	return stream.FromSlice(s.ticks, nil), nil
}

func minuteTicks(day time.Time, count int) []model.Tick {
	ticks := make([]model.Tick, 0, count)
	for minute := 0; minute < count; minute++ {
		bid := 11700 + minute
		ticks = append(ticks, model.Tick{
			MillisecondsUTC: day.Add(4*time.Hour + time.Duration(minute)*time.Minute).UnixMilli(),
			StreamID:        model.RealtimeUUID,
			Symbol:          "EURUSD",
			Ask:             bid + 2,
			Bid:             bid,
			Source:          model.SourceHistorical,
		})
	}
	return ticks
}

func TestDirectBarNoCache_AggregatesOneDay(t *testing.T) {
	day := time.Date(2019, 6, 7, 0, 0, 0, 0, time.UTC)
	source := &fixedTickSource{ticks: minuteTicks(day, 60)}
	direct := cache.NewDirectBarNoCache(model.NewValidator(), source)

	bars, err := direct.OneDayOfBars(context.Background(), m10Criteria(t), dayOfPaths(t))

	require.NoError(t, err)
	assert.Len(t, bars, 6)
	assert.Equal(t, int64(0), direct.Statistics().HitCount())
	assert.Equal(t, int64(1), direct.Statistics().MissCount())
	assert.Equal(t, "DirectBarNoCache: retrieve: 1, hit: 0, miss: 1", direct.Statistics().CacheStats())
}

func TestDirectBarNoCache_RejectsWrongDayOfPathsCount(t *testing.T) {
	direct := cache.NewDirectBarNoCache(model.NewValidator(), &fixedTickSource{})
	extraPaths := append(dayOfPaths(t), dayOfPaths(t)...)

	_, err := direct.OneDayOfBars(context.Background(), m10Criteria(t), extraPaths)

	require.Error(t, err)
	assert.Equal(t, "Paths for Day of 1H Tick files is not 24! 48", err.Error())
}

func TestBarPath_AnchorsOnFirstDayPath(t *testing.T) {
	barPath, err := cache.BarPath(m10Criteria(t), "EURUSD/2019/05/07/00h_ticks.bi5")

	require.NoError(t, err)
	assert.Equal(t, "bars/M10/EURUSD/2019/05/07.json", barPath)
}
