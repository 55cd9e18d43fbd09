package dukascopy

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache"
	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/logger"
	"github.com/LimeMojito/trading-data-stream/pkg/market"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stream"
)

// DefaultBeginningOfTime bounds searches to 2020, putting a limit on
// recursive searching into history the archive cannot serve.
const DefaultBeginningOfTime = "2020-01-01T00:00:00Z"

// Search locates tick and bar data in the Dukascopy archive over a requested
// symbol and time window, optionally extending forwards or backwards until a
// requested bar count is reached.
type Search struct {
	validate        *validator.Validate
	pathGen         *PathGenerator
	opener          TickStreamOpener
	barCache        cache.BarCache
	beginningOfTime time.Time
	log             logger.Interface
	now             func() time.Time
}

// NewSearch creates a search engine over the supplied collaborators. The bar
// cache should mirror the tick cache chain, typically built with
// TickCache.CreateBarCache and NewDayTickSource(opener).
func NewSearch(validate *validator.Validate,
	marketStatus *market.MarketStatus,
	opener TickStreamOpener,
	barCache cache.BarCache,
	log logger.Interface) *Search {
	return &Search{
		validate:        validate,
		pathGen:         NewPathGenerator(marketStatus),
		opener:          opener,
		barCache:        barCache,
		beginningOfTime: mustParseInstant(DefaultBeginningOfTime),
		log:             log,
		now:             time.Now,
	}
}

// TheBeginningOfTime is the lower bound instant for all searches.
func (s *Search) TheBeginningOfTime() time.Time {
	return s.beginningOfTime
}

// SetTheBeginningOfTime moves the lower search bound.
func (s *Search) SetTheBeginningOfTime(instant time.Time) {
	s.beginningOfTime = instant.UTC()
}

// Search streams ticks for a symbol within the given inclusive time range.
// The end instant is normalized to the last nanosecond of its second. The
// optional visitor is invoked for each produced tick.
func (s *Search) Search(ctx context.Context, symbol string, startTime, endTime time.Time,
	tickVisitor stream.Visitor[model.Tick]) (stream.Stream[model.Tick], error) {
	if err := s.assertCriteriaTimes(startTime, endTime); err != nil {
		return nil, err
	}
	if err := s.assertSymbol(symbol); err != nil {
		return nil, err
	}
	criteria, err := model.NewTickCriteria(symbol, startTime, endTime)
	if err != nil {
		return nil, err
	}
	s.log.Debug("forming tick stream",
		logger.NewField("symbol", criteria.Symbol),
		logger.NewField("start", criteria.Start),
		logger.NewField("end", criteria.End))
	paths := s.pathGen.GeneratePaths(symbol, startTime, endTime)
	ticks := CombineHourStreams(ctx, s.opener, paths, func(tick model.Tick) bool {
		instant := tick.Instant()
		return !instant.Before(criteria.Start) && !instant.After(criteria.End)
	}, tickVisitor)
	s.log.Info("returning tick stream",
		logger.NewField("symbol", criteria.Symbol),
		logger.NewField("paths", len(paths)))
	return ticks, nil
}

// AggregateFromTicks streams bars of the period aggregated from ticks over the
// inclusive window. Day-granularity results are served through the bar cache
// chain; each day must yield no more bars than fit in a day.
func (s *Search) AggregateFromTicks(ctx context.Context, symbol string, period model.Period,
	startTime, endTime time.Time, barVisitor stream.Visitor[model.Bar]) (stream.Stream[model.Bar], error) {
	if err := s.assertCriteriaTimes(startTime, endTime); err != nil {
		return nil, err
	}
	if err := s.assertSymbol(symbol); err != nil {
		return nil, err
	}
	criteria, err := model.NewBarCriteria(symbol, period, startTime, endTime)
	if err != nil {
		return nil, err
	}
	s.log.Debug("forming bar stream",
		logger.NewField("symbol", criteria.Symbol),
		logger.NewField("period", criteria.Period),
		logger.NewField("start", criteria.Start),
		logger.NewField("end", criteria.End))
	groupedPaths := s.pathGen.GeneratePathsGroupedByDay(symbol, startTime, endTime)
	maxBarsPerDay := model.BarsIn(period, criteria.DayStartAt(0), criteria.DayStartAt(1))

	index := 0
	days := stream.CombineSupplier(func() (stream.Stream[model.Bar], bool) {
		if index >= len(groupedPaths) {
			return nil, false
		}
		dayOfPaths := groupedPaths[index]
		index++
		oneDayOfBars, err := s.barCache.OneDayOfBars(ctx, criteria, dayOfPaths)
		if err != nil {
			return stream.Error[model.Bar](err), true
		}
		if int64(len(oneDayOfBars)) > maxBarsPerDay {
			return stream.Error[model.Bar](errors.NewCoded(errors.IllegalStateError,
				"Unexpected number of bars %d", len(oneDayOfBars))), true
		}
		return stream.FromSlice(oneDayOfBars, nil), true
	}, func(bar model.Bar) bool {
		start := bar.StartInstant()
		if start.Before(startTime) || start.After(endTime) {
			return false
		}
		if barVisitor != nil {
			barVisitor(bar)
		}
		return true
	})
	return days, nil
}

// AggregateFromTicksForward streams the first barCountAfter bars whose start
// is at or after startTime, paging repeated window searches forward across
// no-data spans such as weekends.
func (s *Search) AggregateFromTicksForward(ctx context.Context, symbol string, period model.Period,
	startTime time.Time, barCountAfter int, barVisitor stream.Visitor[model.Bar]) (stream.Stream[model.Bar], error) {
	if err := s.assertCriteriaTime(startTime, "Start"); err != nil {
		return nil, err
	}
	strategy := &forwardSearch{
		search:     s,
		ctx:        ctx,
		symbol:     symbol,
		period:     period,
		startTime:  startTime,
		window:     period.Duration() * time.Duration(barCountAfter),
		barVisitor: nil,
	}
	result, err := stream.MaterializeForwards(barCountAfter, emptySearchLimit(strategy.window), strategy)
	if err != nil {
		return nil, err
	}
	bars, err := stream.Collect(result)
	if err != nil {
		return nil, err
	}
	return stream.FromSlice(bars, barVisitor), nil
}

// AggregateFromTicksBackward streams the last barCountBefore bars whose start
// is strictly before endTime, paging repeated window searches backwards and
// stopping at the beginning of time with whatever was found.
func (s *Search) AggregateFromTicksBackward(ctx context.Context, symbol string, period model.Period,
	barCountBefore int, endTime time.Time, barVisitor stream.Visitor[model.Bar]) (stream.Stream[model.Bar], error) {
	if err := s.assertCriteriaTime(endTime, "End"); err != nil {
		return nil, err
	}
	strategy := &backwardSearch{
		search:     s,
		ctx:        ctx,
		symbol:     symbol,
		period:     period,
		endTime:    endTime,
		window:     period.Duration() * time.Duration(barCountBefore),
		barVisitor: nil,
	}
	result, err := stream.MaterializeBackwards(barCountBefore, emptySearchLimit(strategy.window), strategy)
	if err != nil {
		return nil, err
	}
	bars, err := stream.Collect(result)
	if err != nil {
		return nil, err
	}
	return stream.FromSlice(bars, barVisitor), nil
}

func (s *Search) assertCriteriaTimes(startTime, endTime time.Time) error {
	if err := s.assertCriteriaTime(startTime, "Start"); err != nil {
		return err
	}
	if err := s.assertCriteriaTime(endTime, "End"); err != nil {
		return err
	}
	return model.AssertBeforeStart(startTime, endTime)
}

func (s *Search) assertCriteriaTime(instant time.Time, fieldName string) error {
	if instant.Before(s.beginningOfTime) {
		return errors.NewCoded(errors.InvalidArgumentError, "%s %s must be after %s",
			fieldName, model.FormatInstant(instant), model.FormatInstant(s.beginningOfTime))
	}
	return nil
}

func (s *Search) assertSymbol(symbol string) error {
	if err := s.validate.Var(symbol, "min=6"); err != nil {
		return errors.NewCoded(errors.InvalidArgumentError,
			"Symbol %s must be at least %d characters", symbol, model.SymbolMinSize)
	}
	return nil
}

// forwardSearch pages bounded window searches forward in time.
type forwardSearch struct {
	search     *Search
	ctx        context.Context
	symbol     string
	period     model.Period
	startTime  time.Time
	window     time.Duration
	barVisitor stream.Visitor[model.Bar]
	sliceStart time.Time
	sliceEnd   time.Time
}

func (f *forwardSearch) Prepare(searchCount int) bool {
	f.sliceStart = f.startTime.Add(f.window * time.Duration(searchCount))
	f.sliceEnd = f.startTime.Add(f.window * time.Duration(searchCount+1)).Add(-time.Nanosecond)
	// past now there is no more archive data to page into
	return f.sliceEnd.After(f.search.now())
}

func (f *forwardSearch) Perform() (stream.Stream[model.Bar], error) {
	return f.search.AggregateFromTicks(f.ctx, f.symbol, f.period, f.sliceStart, f.sliceEnd, f.barVisitor)
}

func (f *forwardSearch) Sort(data []model.Bar) {
	sortBarsAscending(data)
}

// backwardSearch pages bounded window searches backwards in time, clamping the
// final slice at the beginning of time.
type backwardSearch struct {
	search     *Search
	ctx        context.Context
	symbol     string
	period     model.Period
	endTime    time.Time
	window     time.Duration
	barVisitor stream.Visitor[model.Bar]
	sliceStart time.Time
	sliceEnd   time.Time
}

func (b *backwardSearch) Prepare(searchCount int) bool {
	sliceEnd := b.endTime.Add(-b.window * time.Duration(searchCount))
	sliceStart := b.endTime.Add(-b.window * time.Duration(searchCount+1))
	finalSearch := false
	bound := b.search.TheBeginningOfTime()
	if !sliceStart.After(bound) {
		// we have fallen off the end of the data map at the beginning of time
		sliceStart = bound
		finalSearch = true
	}
	b.sliceStart = sliceStart
	b.sliceEnd = sliceEnd.Add(-time.Nanosecond)
	return finalSearch
}

func (b *backwardSearch) Perform() (stream.Stream[model.Bar], error) {
	if b.sliceEnd.Before(b.sliceStart) {
		return stream.FromSlice[model.Bar](nil, nil), nil
	}
	return b.search.AggregateFromTicks(b.ctx, b.symbol, b.period, b.sliceStart, b.sliceEnd, b.barVisitor)
}

func (b *backwardSearch) Sort(data []model.Bar) {
	sortBarsAscending(data)
}

func sortBarsAscending(data []model.Bar) {
	sort.Slice(data, func(i, j int) bool {
		return data[i].Compare(data[j]) < 0
	})
}

// emptySearchLimit tolerates enough consecutive empty slices to cross a full
// week of closed market before an extension is treated as exhausted.
func emptySearchLimit(window time.Duration) int {
	limit := int(7*24*time.Hour/window) + 1
	return max(limit, 2)
}

func mustParseInstant(value string) time.Time {
	instant, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return instant.UTC()
}
