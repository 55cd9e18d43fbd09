// Command datastream searches the Dukascopy archive and logs the aggregated
// bars for a symbol, period and time window:
//
//	datastream EURUSD M5 2020-01-02T00:00:00Z 2020-01-02T00:59:59Z
//
// The cache chain is assembled from configuration: local filesystem always,
// S3 and redis tiers when enabled, with the rate-limited direct fetch at the
// leaf.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	"github.com/LimeMojito/trading-data-stream/pkg/config"
	"github.com/LimeMojito/trading-data-stream/pkg/dukascopy"
	"github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache"
	"github.com/LimeMojito/trading-data-stream/pkg/logger"
	"github.com/LimeMojito/trading-data-stream/pkg/market"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stream"
)

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintln(os.Stderr, "usage: datastream SYMBOL PERIOD START END")
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2], os.Args[3], os.Args[4]); err != nil {
		log.Fatalf("datastream failed: %v", err)
	}
}

func run(symbol, periodName, startArg, endArg string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appLogger, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	period, err := model.GetPeriod(periodName)
	if err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, startArg)
	if err != nil {
		return err
	}
	end, err := time.Parse(time.RFC3339, endArg)
	if err != nil {
		return err
	}

	marketStatus, err := market.NewMarketStatus()
	if err != nil {
		return err
	}
	tickCache, err := buildChain(cfg, appLogger)
	if err != nil {
		return err
	}
	validate := model.NewValidator()
	opener := dukascopy.NewTickStreamOpener(tickCache)
	barCache := tickCache.CreateBarCache(validate, dukascopy.NewDayTickSource(opener))
	search := dukascopy.NewSearch(validate, marketStatus, opener, barCache, appLogger)

	ctx := context.Background()
	bars, err := search.AggregateFromTicks(ctx, symbol, period, start, end, nil)
	if err != nil {
		return err
	}
	defer bars.Close()
	if err := stream.ForEach(bars, func(bar model.Bar) {
		appLogger.Info("bar",
			logger.NewField("start", bar.StartInstant()),
			logger.NewField("open", bar.Open),
			logger.NewField("high", bar.High),
			logger.NewField("low", bar.Low),
			logger.NewField("close", bar.Close))
	}); err != nil {
		return err
	}
	appLogger.Info(tickCache.Statistics().CacheStats())
	return nil
}

// buildChain assembles local -> redis -> s3 -> direct with the optional tiers
// included only when enabled.
func buildChain(cfg *config.Config, appLogger logger.Interface) (cache.TickCache, error) {
	var chain cache.TickCache = cache.NewDirectNoCache(cfg.Fetcher, appLogger)
	if cfg.S3.Enabled {
		store, err := newObjectStore()
		if err != nil {
			return nil, err
		}
		chain = cache.NewS3TickCache(store, cfg.S3.Bucket, chain, appLogger)
	}
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		chain = cache.NewRedisTickCache(client, cfg.Redis.TTL, chain, appLogger)
	}
	dir, err := cfg.LocalCache.ResolveDir()
	if err != nil {
		return nil, err
	}
	return cache.NewLocalTickCache(dir, chain, appLogger), nil
}

func newObjectStore() (cache.ObjectStore, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}
	return cache.NewAWSObjectStore(s3.NewFromConfig(awsConfig)), nil
}
