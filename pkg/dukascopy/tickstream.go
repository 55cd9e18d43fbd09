package dukascopy

import (
	"context"
	"io"
	"time"

	"github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache"
	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stream"
)

// TickStreamOpener opens the decoded tick stream behind one hourly vendor
// path. The production opener reads through the cache chain and decodes; tests
// substitute synthetic streams.
type TickStreamOpener interface {
	Open(ctx context.Context, dukascopyPath string, visitor stream.Visitor[model.Tick]) (stream.Stream[model.Tick], error)
}

// cachedTickOpener decodes hour archives served by a tick cache chain.
type cachedTickOpener struct {
	cache cache.TickCache
}

// NewTickStreamOpener creates the production opener over a cache chain.
func NewTickStreamOpener(tickCache cache.TickCache) TickStreamOpener {
	return &cachedTickOpener{cache: tickCache}
}

// Open fetches the archive bytes through the cache chain and decodes them.
// The hour file is buffered whole; archives are small (tens of KB packed).
func (o *cachedTickOpener) Open(ctx context.Context, dukascopyPath string, visitor stream.Visitor[model.Tick]) (stream.Stream[model.Tick], error) {
	symbol, hourStart, err := ParseHourPath(dukascopyPath)
	if err != nil {
		return nil, err
	}
	source, err := o.cache.Stream(ctx, dukascopyPath)
	if err != nil {
		return nil, err
	}
	defer source.Close()
	payload, err := io.ReadAll(source)
	if err != nil {
		return nil, errors.WrapCoded(errors.IoFailureError, err)
	}
	ticks, err := DecodeTicks(symbol, hourStart, payload)
	if err != nil {
		return nil, err
	}
	return stream.FromSlice(ticks, visitor), nil
}

// CombineHourStreams lazily concatenates the per-hour streams for the supplied
// paths, opening each only when the previous is exhausted, with an element
// filter applied across the combined stream. The visitor sees only ticks that
// pass the filter.
func CombineHourStreams(ctx context.Context,
	opener TickStreamOpener,
	paths []string,
	filter func(model.Tick) bool,
	visitor stream.Visitor[model.Tick]) stream.Stream[model.Tick] {
	accept := func(tick model.Tick) bool {
		if filter != nil && !filter(tick) {
			return false
		}
		if visitor != nil {
			visitor(tick)
		}
		return true
	}
	index := 0
	return stream.CombineSupplier(func() (stream.Stream[model.Tick], bool) {
		if index >= len(paths) {
			return nil, false
		}
		path := paths[index]
		index++
		ticks, err := opener.Open(ctx, path, nil)
		if err != nil {
			return stream.Error[model.Tick](err), true
		}
		return ticks, true
	}, accept)
}

// DayTickSource adapts an opener to the bar cache leaf contract: a combined
// tick stream over one day of paths, trimmed to the criteria's day window.
type DayTickSource struct {
	opener TickStreamOpener
}

// NewDayTickSource wraps the opener for use by DirectBarNoCache.
func NewDayTickSource(opener TickStreamOpener) *DayTickSource {
	return &DayTickSource{opener: opener}
}

// DayOfTicks opens the day's combined stream filtered to [dayStart, dayEnd].
func (s *DayTickSource) DayOfTicks(ctx context.Context, criteria model.BarCriteria, dayPaths []string) (stream.Stream[model.Tick], error) {
	if len(dayPaths) == 0 {
		return stream.FromSlice[model.Tick](nil, nil), nil
	}
	_, dayStart, err := ParseHourPath(dayPaths[0])
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.Add(24 * time.Hour).Add(-time.Nanosecond)
	filter := func(tick model.Tick) bool {
		instant := tick.Instant()
		return !instant.Before(dayStart) && !instant.After(dayEnd)
	}
	return CombineHourStreams(ctx, s.opener, dayPaths, filter, nil), nil
}
