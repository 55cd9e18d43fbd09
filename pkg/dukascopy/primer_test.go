package dukascopy

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache"
	"github.com/LimeMojito/trading-data-stream/pkg/logger"
	"github.com/LimeMojito/trading-data-stream/pkg/market"
	"github.com/LimeMojito/trading-data-stream/pkg/stats"
)

// countingCache records the paths pulled through it.
type countingCache struct {
	mu      sync.Mutex
	streams []string
	failOn  string
}

func (c *countingCache) Statistics() stats.CacheStatistics {
	return stats.NewSimpleStats("countingCache")
}

func (c *countingCache) Stream(_ context.Context, dukascopyPath string) (io.ReadCloser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dukascopyPath == c.failOn {
		return nil, assert.AnError
	}
	c.streams = append(c.streams, dukascopyPath)
	return io.NopCloser(bytes.NewReader([]byte("payload"))), nil
}

func (c *countingCache) CreateBarCache(*validator.Validate, cache.TickSource) cache.BarCache {
	return nil
}

func (c *countingCache) streamed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.streams...)
}

func newPrimerFixture(t *testing.T, tickCache cache.TickCache) *Primer {
	t.Helper()
	log, err := logger.NewLogger(logger.WithOutputPaths([]string{"stderr"}))
	require.NoError(t, err)
	marketStatus, err := market.NewMarketStatus()
	require.NoError(t, err)
	return NewPrimer(tickCache, NewPathGenerator(marketStatus), log)
}

func TestPrimer_LoadsEveryGeneratedPath(t *testing.T) {
	tickCache := &countingCache{}
	primer := newPrimerFixture(t, tickCache)
	defer primer.Shutdown()

	loadID := primer.NewLoad()
	assert.NotEmpty(t, loadID)
	primer.Load("EURUSD",
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 2, 59, 59, 0, time.UTC))
	primer.WaitForCompletion()

	streamed := tickCache.streamed()
	assert.Len(t, streamed, 3)
	assert.Contains(t, streamed, "EURUSD/2020/00/02/00h_ticks.bi5")
	assert.Contains(t, streamed, "EURUSD/2020/00/02/02h_ticks.bi5")
}

func TestPrimer_FailuresAreLoggedNotPropagated(t *testing.T) {
	tickCache := &countingCache{failOn: "EURUSD/2020/00/02/01h_ticks.bi5"}
	primer := newPrimerFixture(t, tickCache)
	defer primer.Shutdown()

	primer.NewLoad()
	primer.Load("EURUSD",
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 2, 59, 59, 0, time.UTC))
	primer.WaitForCompletion()

	assert.Len(t, tickCache.streamed(), 2)
}

func TestPrimer_NewLoadResetsTracking(t *testing.T) {
	tickCache := &countingCache{}
	primer := newPrimerFixture(t, tickCache)
	defer primer.Shutdown()

	first := primer.NewLoad()
	second := primer.NewLoad()

	assert.NotEqual(t, first, second)
	// nothing pending, returns immediately
	primer.WaitForCompletion()
}
