// Package aggregate folds a totally-ordered tick stream into OHLC bars of a
// fixed period, emitting each bar as tick time crosses a period boundary.
package aggregate

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/LimeMojito/trading-data-stream/pkg/model"
)

// Notifier receives completed bars. Implementations may buffer and flush.
type Notifier interface {
	// Notify is invoked when a bar completes and is ready to be consumed.
	Notify(bar model.Bar) error
	// Flush is invoked after all in-flight bars have been emitted at end of load.
	Flush() error
}

// NotifierFunc adapts a plain function to a Notifier with a no-op Flush.
type NotifierFunc func(bar model.Bar) error

// Notify invokes the function.
func (f NotifierFunc) Notify(bar model.Bar) error { return f(bar) }

// Flush does nothing.
func (f NotifierFunc) Flush() error { return nil }

// PriceSelector picks the price that contributes to bar OHLC values. The data
// feed aggregates on the bid side only; supply an alternative selector to
// aggregate on ask or mid prices.
type PriceSelector func(tick model.Tick) int

// BidPrice is the default PriceSelector.
func BidPrice(tick model.Tick) int { return tick.Bid }

// Aggregator consumes an ordered tick stream and notifies completed bars.
// One in-flight bar is maintained per partition key (stream id and symbol),
// all at the same configured period. Callers must feed a given partition from
// a single goroutine; the partition map itself is safe for concurrent use.
type Aggregator struct {
	mu        sync.Mutex
	inflight  map[string]*barBuilder
	notifier  Notifier
	period    model.Period
	validate  *validator.Validate
	selectFor PriceSelector
}

// NewAggregator creates an aggregator producing bars of the given period.
func NewAggregator(validate *validator.Validate, notifier Notifier, period model.Period) *Aggregator {
	return NewAggregatorWithSelector(validate, notifier, period, BidPrice)
}

// NewAggregatorWithSelector creates an aggregator with a custom price selector.
func NewAggregatorWithSelector(validate *validator.Validate, notifier Notifier, period model.Period, selector PriceSelector) *Aggregator {
	return &Aggregator{
		inflight:  make(map[string]*barBuilder),
		notifier:  notifier,
		period:    period,
		validate:  validate,
		selectFor: selector,
	}
}

// LoadStart signals the start of a bulk load.
func (a *Aggregator) LoadStart() {
	// pause any timing processes, etc for the bulk load.
}

// Add folds a tick into the appropriate in-flight bar, emitting the completed
// bar first when the tick has moved past the current period boundary.
func (a *Aggregator) Add(tick model.Tick) error {
	builder, completed := a.fetchReplacingFinished(tick)
	if completed != nil {
		if err := a.send(*completed); err != nil {
			return err
		}
	}
	builder.add(tick, a.selectFor(tick))
	return nil
}

// LoadEnd emits any remaining in-flight bars and flushes the notifier.
func (a *Aggregator) LoadEnd() error {
	a.mu.Lock()
	remaining := make([]*barBuilder, 0, len(a.inflight))
	for key, builder := range a.inflight {
		remaining = append(remaining, builder)
		delete(a.inflight, key)
	}
	a.mu.Unlock()
	for _, builder := range remaining {
		if err := a.send(builder.toBar()); err != nil {
			return err
		}
	}
	return a.notifier.Flush()
}

// fetchReplacingFinished returns the in-flight builder for the tick's grid
// cell. When the tick is past the current builder's end, the entry is swapped
// for a fresh builder and the finished bar is returned for emission.
func (a *Aggregator) fetchReplacingFinished(tick model.Tick) (*barBuilder, *model.Bar) {
	key := tick.PartitionKey()

	a.mu.Lock()
	defer a.mu.Unlock()
	builder, ok := a.inflight[key]
	if !ok {
		builder = a.newBuilder(tick.StreamID, tick.Symbol, tick.MillisecondsUTC)
		a.inflight[key] = builder
		return builder, nil
	}
	if tick.MillisecondsUTC > builder.endMillisecondsUTC {
		// ordered processing means the previous bar is now done
		replacement := a.newBuilder(tick.StreamID, tick.Symbol, tick.MillisecondsUTC)
		if current := a.inflight[key]; current == builder {
			a.inflight[key] = replacement
			finished := builder.toBar()
			return replacement, &finished
		}
		return builder, nil
	}
	return builder, nil
}

func (a *Aggregator) send(bar model.Bar) error {
	if err := model.ValidateModel(a.validate, bar); err != nil {
		return err
	}
	return a.notifier.Notify(bar)
}

// newBuilder starts an in-flight bar on the grid cell containing tickMillis.
func (a *Aggregator) newBuilder(streamID uuid.UUID, symbol string, tickMillis int64) *barBuilder {
	return &barBuilder{
		streamID:             streamID,
		symbol:               symbol,
		period:               a.period,
		startMillisecondsUTC: model.StartMillisecondsFor(a.period, tickMillis),
		endMillisecondsUTC:   model.EndMillisecondsFor(a.period, tickMillis),
	}
}

// barBuilder is the mutable in-flight bar state for one partition key.
type barBuilder struct {
	streamID             uuid.UUID
	symbol               string
	period               model.Period
	startMillisecondsUTC int64
	endMillisecondsUTC   int64
	open                 int
	high                 int
	low                  int
	close                int
	source               model.StreamSource
	tickCount            int
}

func (b *barBuilder) add(tick model.Tick, price int) {
	if b.tickCount == 0 {
		b.open = price
		b.high = price
		b.low = price
		b.source = tick.Source
	} else {
		b.high = max(b.high, price)
		b.low = min(b.low, price)
		b.source = model.AggregateSource(b.source, tick.Source)
	}
	b.close = price
	b.tickCount++
}

func (b *barBuilder) toBar() model.Bar {
	return model.Bar{
		StartMillisecondsUTC: b.startMillisecondsUTC,
		StreamID:             b.streamID,
		Period:               b.period,
		Symbol:               b.symbol,
		Open:                 b.open,
		High:                 b.high,
		Low:                  b.low,
		Close:                b.close,
		Source:               b.source,
		Version:              model.ModelVersion,
	}
}
