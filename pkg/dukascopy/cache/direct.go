package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/logger"
	"github.com/LimeMojito/trading-data-stream/pkg/stats"
)

// DirectConfig tunes the rate-limited leaf fetch to the Dukascopy servers.
type DirectConfig struct {
	// PermitsPerSecond defaults to 3.0 which plays nicely with Dukascopy.
	// Otherwise they simply stop responding (50X) if you hit the servers too
	// hard, or they do a sneaky 30s delay before data is returned.
	PermitsPerSecond float64 `env:"PERMITS_PER_SECOND" envDefault:"3.0"`
	// RetrySeconds is the base pause when a rate-limited response is
	// encountered. The wait grows linearly with the attempt number.
	RetrySeconds float64 `env:"RETRY_SECONDS" envDefault:"30.0"`
	// RetryCount is the maximum number of retry attempts.
	RetryCount int `env:"RETRY_COUNT" envDefault:"3"`
	// RateLimitedMarker is the substring of a fetch error diagnostic that
	// marks the response as rate limited, the HTTP 503 status by default.
	RateLimitedMarker string `env:"RATE_LIMITED_MARKER" envDefault:"503"`
	// BaseURL is the data feed root. Note the slash on the end is required.
	BaseURL string `env:"BASE_URL" envDefault:"https://datafeed.dukascopy.com/datafeed/"`
}

// DataSource fetches the bytes behind a URL. Exposed for testing.
type DataSource interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// httpDataSource fetches over the default HTTP transport.
type httpDataSource struct {
	client *http.Client
}

func (s *httpDataSource) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapCoded(errors.IoFailureError, err)
	}
	response, err := s.client.Do(request)
	if err != nil {
		return nil, errors.WrapCoded(errors.IoFailureError, err)
	}
	if response.StatusCode != http.StatusOK {
		io.Copy(io.Discard, response.Body)
		response.Body.Close()
		// the status text carries the rate-limited marker for retry matching
		return nil, errors.NewCoded(errors.TransientFetchError,
			"fetch %s: %s", url, response.Status)
	}
	return response.Body, nil
}

// DirectNoCache is no caching and a direct call to dukascopy, rate limited to
// work with the bank's free data servers.
type DirectNoCache struct {
	config     DirectConfig
	limiter    *rate.Limiter
	source     DataSource
	cacheStats *stats.SimpleStats
	log        logger.Interface
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewDirectNoCache creates the leaf fetch tier with its own rate limiter. The
// limiter lives as long as the fetcher; share the instance, not a global.
func NewDirectNoCache(config DirectConfig, log logger.Interface) *DirectNoCache {
	direct := newDirect(config, log)
	direct.source = &httpDataSource{client: http.DefaultClient}
	return direct
}

// NewDirectNoCacheWithSource creates the leaf tier over a custom data source.
func NewDirectNoCacheWithSource(config DirectConfig, source DataSource, log logger.Interface) *DirectNoCache {
	direct := newDirect(config, log)
	direct.source = source
	return direct
}

func newDirect(config DirectConfig, log logger.Interface) *DirectNoCache {
	log.Info("DirectNoCache configured",
		logger.NewField("permitsPerSecond", config.PermitsPerSecond),
		logger.NewField("retrySeconds", config.RetrySeconds),
		logger.NewField("retryCount", config.RetryCount),
		logger.NewField("url", config.BaseURL))
	return &DirectNoCache{
		config:     config,
		limiter:    rate.NewLimiter(rate.Limit(config.PermitsPerSecond), 1),
		cacheStats: stats.NewSimpleStats("DirectNoCache", stats.StatRetry),
		log:        log,
		sleep: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
}

// Statistics for the leaf fetch: every retrieve is a miss, retries are counted.
func (c *DirectNoCache) Statistics() stats.CacheStatistics {
	return c.cacheStats
}

// Stream opens the remote resource identified by the path, honoring the rate
// limiter and retry policy for transient server errors.
func (c *DirectNoCache) Stream(ctx context.Context, dukascopyPath string) (io.ReadCloser, error) {
	// play nice with Dukascopy's free data. And if you don't, they stop sending data.
	body, err := c.fetchWithRetry(ctx, c.config.BaseURL+dukascopyPath, 1)
	if err != nil {
		return nil, err
	}
	c.cacheStats.Increment(stats.StatMiss)
	return body, nil
}

// CreateBarCache creates a bar cache that does no caching and aggregates one
// day of ticks directly.
func (c *DirectNoCache) CreateBarCache(validate *validator.Validate, source TickSource) BarCache {
	return NewDirectBarNoCache(validate, source)
}

func (c *DirectNoCache) fetchWithRetry(ctx context.Context, url string, callCount int) (io.ReadCloser, error) {
	// keep the rate limit here as extra insurance during retries
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.WrapCoded(errors.IoFailureError, err)
	}
	c.log.Info("loading from data feed", logger.NewField("url", url))
	body, err := c.source.Open(ctx, url)
	if err == nil {
		return body, nil
	}
	if strings.Contains(err.Error(), c.config.RateLimitedMarker) && callCount <= c.config.RetryCount {
		if waitErr := c.waitForRetry(ctx, err, callCount); waitErr != nil {
			// an interrupted wait surfaces the original fetch error
			return nil, err
		}
		c.cacheStats.Increment(stats.StatRetry)
		return c.fetchWithRetry(ctx, url, callCount+1)
	}
	return nil, err
}

func (c *DirectNoCache) waitForRetry(ctx context.Context, cause error, callCount int) error {
	pause := time.Duration(c.config.RetrySeconds*float64(callCount)*1000) * time.Millisecond
	c.log.Info("dukascopy server error", logger.NewField("error", cause.Error()))
	c.log.Warn(fmt.Sprintf("pausing for %s to retry", pause))
	return c.sleep(ctx, pause)
}
