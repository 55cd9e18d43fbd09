// Package cache layers read-through tiers in front of the Dukascopy data feed.
// Each tier decorates a fallback tier: the local filesystem and S3 tiers check
// their own storage first and persist what the fallback returns; the leaf tier
// fetches directly from the bank with rate limiting and retry.
package cache

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stats"
	"github.com/LimeMojito/trading-data-stream/pkg/stream"
)

// TickCache retrieves raw hourly tick archives, taking advantage of a cache
// configuration.
//
//go:generate mockgen -destination=mock/cache_mock.go -package=cache_mock github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache ObjectStore,TickCache,BarCache
type TickCache interface {
	// Statistics for the cache tree rooted at this tier.
	Statistics() stats.CacheStatistics
	// Stream opens the tick data for the supplied dukascopy path.
	Stream(ctx context.Context, dukascopyPath string) (io.ReadCloser, error)
	// CreateBarCache creates a bar cache of the same tier configuration as
	// this cache.
	CreateBarCache(validate *validator.Validate, source TickSource) BarCache
}

// BarCache retrieves a day's worth of bars from a cache or, at the leaf, from
// direct tick aggregation.
type BarCache interface {
	// Statistics for the cache tree rooted at this tier.
	Statistics() stats.CacheStatistics
	// OneDayOfBars retrieves the bars of one UTC day. dayPaths holds the 24
	// hourly paths covering the day; the first path anchors the cache key.
	OneDayOfBars(ctx context.Context, criteria model.BarCriteria, dayPaths []string) ([]model.Bar, error)
}

// TickSource opens a combined tick stream over one day of hourly paths,
// filtered to the criteria's day window. It decouples the bar leaf from the
// search machinery that knows how to decode and combine hour files.
type TickSource interface {
	DayOfTicks(ctx context.Context, criteria model.BarCriteria, dayPaths []string) (stream.Stream[model.Tick], error)
}

// BarPath derives the storage key for a day of bars from the criteria and the
// day's first hour path: bars/<PERIOD>/<SYMBOL>/<YYYY>/<MM0>/<DD>.json.
func BarPath(criteria model.BarCriteria, firstDayPath string) (string, error) {
	parts := strings.Split(firstDayPath, "/")
	if len(parts) != 5 {
		return "", errors.NewCoded(errors.InvalidArgumentError,
			"not a dukascopy tick path: %s", firstDayPath)
	}
	return fmt.Sprintf("bars/%s/%s/%s/%s/%s.json",
		criteria.Period,
		strings.ToUpper(criteria.Symbol),
		parts[1],
		parts[2],
		parts[3]), nil
}
