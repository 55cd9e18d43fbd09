package cache

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/LimeMojito/trading-data-stream/pkg/logger"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stats"
)

// ByteTier is the storage hook pair implemented by concrete tick tiers.
type ByteTier interface {
	// Check returns an open reader when the path is present in this tier.
	Check(ctx context.Context, path string) (io.ReadCloser, bool, error)
	// Exists re-checks presence without opening, used as the TOCTOU guard
	// before persisting.
	Exists(ctx context.Context, path string) (bool, error)
	// Save persists the payload under the path.
	Save(ctx context.Context, path string, data []byte) error
}

// fallbackTickCache adds a read-through caching layer in front of another
// TickCache. On miss the fallback is consulted, the payload buffered, persisted
// in this tier and returned. Persists are serialized by a per-tier mutex and
// re-check existence first so racing misses do not write twice; the race only
// duplicates fetches, which are idempotent reads.
type fallbackTickCache struct {
	tier        ByteTier
	fallback    TickCache
	directStats *stats.SimpleStats
	combined    stats.CacheStatistics
	saveMu      sync.Mutex
	log         logger.Interface
}

func newFallbackTickCache(name string, tier ByteTier, fallback TickCache, log logger.Interface) *fallbackTickCache {
	directStats := stats.NewSimpleStats(name)
	return &fallbackTickCache{
		tier:        tier,
		fallback:    fallback,
		directStats: directStats,
		combined:    stats.Combine(directStats, fallback.Statistics()),
		log:         log,
	}
}

// Statistics for this tier combined with its fallback tree.
func (c *fallbackTickCache) Statistics() stats.CacheStatistics {
	return c.combined
}

// Stream serves the path from this tier, falling back and persisting on miss.
func (c *fallbackTickCache) Stream(ctx context.Context, dukascopyPath string) (io.ReadCloser, error) {
	found, ok, err := c.tier.Check(ctx, dukascopyPath)
	if err != nil {
		return nil, err
	}
	if ok {
		c.log.Debug("cache hit", logger.NewField("path", dukascopyPath))
		c.directStats.Increment(stats.StatHit)
		return found, nil
	}
	c.log.Debug("cache miss", logger.NewField("path", dukascopyPath))
	c.directStats.Increment(stats.StatMiss)
	data, err := c.saveDataFromFallback(ctx, dukascopyPath)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (c *fallbackTickCache) saveDataFromFallback(ctx context.Context, dukascopyPath string) ([]byte, error) {
	fallbackStream, err := c.fallback.Stream(ctx, dukascopyPath)
	if err != nil {
		return nil, err
	}
	defer fallbackStream.Close()
	data, err := io.ReadAll(fallbackStream)
	if err != nil {
		return nil, err
	}

	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	present, err := c.tier.Exists(ctx, dukascopyPath)
	if err != nil {
		return nil, err
	}
	if present {
		c.log.Warn("skipped saving to cache as it already exists",
			logger.NewField("path", dukascopyPath))
		return data, nil
	}
	if err := c.tier.Save(ctx, dukascopyPath, data); err != nil {
		// the buffered payload is still valid, a failed persist is not fatal
		c.log.Warn("failed to persist to cache",
			logger.NewField("path", dukascopyPath),
			logger.NewField("error", err.Error()))
	}
	return data, nil
}

// BarTier is the storage hook pair implemented by concrete bar tiers.
type BarTier interface {
	// Check returns the cached day of bars when present in this tier.
	Check(ctx context.Context, barPath string) ([]model.Bar, bool, error)
	// Exists re-checks presence before persisting.
	Exists(ctx context.Context, barPath string) (bool, error)
	// Save persists one day of bars under the path.
	Save(ctx context.Context, barPath string, oneDayOfBars []model.Bar) error
}

// fallbackBarCache mirrors fallbackTickCache for day-of-bars payloads, keyed
// on the first hour path of the day.
type fallbackBarCache struct {
	tier        BarTier
	fallback    BarCache
	directStats *stats.SimpleStats
	combined    stats.CacheStatistics
	saveMu      sync.Mutex
	log         logger.Interface
}

func newFallbackBarCache(name string, tier BarTier, fallback BarCache, log logger.Interface) *fallbackBarCache {
	directStats := stats.NewSimpleStats(name)
	return &fallbackBarCache{
		tier:        tier,
		fallback:    fallback,
		directStats: directStats,
		combined:    stats.Combine(directStats, fallback.Statistics()),
		log:         log,
	}
}

// Statistics for this tier combined with its fallback tree.
func (c *fallbackBarCache) Statistics() stats.CacheStatistics {
	return c.combined
}

// OneDayOfBars serves the day from this tier, falling back and persisting on miss.
func (c *fallbackBarCache) OneDayOfBars(ctx context.Context, criteria model.BarCriteria, dayPaths []string) ([]model.Bar, error) {
	if len(dayPaths) == 0 {
		return nil, nil
	}
	barPath, err := BarPath(criteria, dayPaths[0])
	if err != nil {
		return nil, err
	}
	bars, ok, err := c.tier.Check(ctx, barPath)
	if err != nil {
		return nil, err
	}
	if ok {
		c.directStats.Increment(stats.StatHit)
		return bars, nil
	}
	c.directStats.Increment(stats.StatMiss)
	return c.saveDataFromFallback(ctx, criteria, barPath, dayPaths)
}

func (c *fallbackBarCache) saveDataFromFallback(ctx context.Context,
	criteria model.BarCriteria, barPath string, dayPaths []string) ([]model.Bar, error) {
	data, err := c.fallback.OneDayOfBars(ctx, criteria, dayPaths)
	if err != nil {
		return nil, err
	}

	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	present, err := c.tier.Exists(ctx, barPath)
	if err != nil {
		return nil, err
	}
	if !present {
		if err := c.tier.Save(ctx, barPath, data); err != nil {
			c.log.Warn("failed to persist bars to cache",
				logger.NewField("path", barPath),
				logger.NewField("error", err.Error()))
		}
	}
	return data, nil
}
