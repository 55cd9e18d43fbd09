package aggregate

import (
	"github.com/go-playground/validator/v10"

	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stream"
)

// TickToBarList drains a tick stream into a list of bars of the configured
// period. Bars are visited via an optional visitor as they are produced.
func TickToBarList(validate *validator.Validate,
	period model.Period,
	ticks stream.Stream[model.Tick],
	visitor stream.Visitor[model.Bar]) ([]model.Bar, error) {
	if visitor == nil {
		visitor = stream.NoVisitor[model.Bar]
	}
	var bars []model.Bar
	aggregator := NewAggregator(validate, NotifierFunc(func(bar model.Bar) error {
		bars = append(bars, bar)
		visitor(bar)
		return nil
	}), period)

	aggregator.LoadStart()
	for ticks.HasNext() {
		tick, err := ticks.Next()
		if err != nil {
			return nil, err
		}
		if err := aggregator.Add(tick); err != nil {
			return nil, err
		}
	}
	if err := aggregator.LoadEnd(); err != nil {
		return nil, err
	}
	return bars, nil
}

// tickToBarStream adapts a tick stream to a bar stream, aggregating lazily on
// first access. The whole source is consumed and buffered at that point, so
// memory grows with the source tick count; bound the input window or use the
// Aggregator directly for unbounded feeds.
type tickToBarStream struct {
	validate  *validator.Validate
	period    model.Period
	ticks     stream.Stream[model.Tick]
	visitor   stream.Visitor[model.Bar]
	converted stream.Stream[model.Bar]
	err       error
}

// NewTickToBarStream creates the lazy tick-to-bar adapter.
func NewTickToBarStream(validate *validator.Validate,
	period model.Period,
	visitor stream.Visitor[model.Bar],
	ticks stream.Stream[model.Tick]) stream.Stream[model.Bar] {
	return &tickToBarStream{
		validate: validate,
		period:   period,
		ticks:    ticks,
		visitor:  visitor,
	}
}

func (s *tickToBarStream) HasNext() bool {
	s.lazyConvert()
	if s.err != nil {
		return true
	}
	return s.converted.HasNext()
}

func (s *tickToBarStream) Next() (model.Bar, error) {
	s.lazyConvert()
	if s.err != nil {
		return model.Bar{}, s.err
	}
	return s.converted.Next()
}

func (s *tickToBarStream) Close() error {
	if s.converted != nil {
		s.converted = stream.FromSlice[model.Bar](nil, nil)
	}
	return s.ticks.Close()
}

func (s *tickToBarStream) lazyConvert() {
	if s.converted != nil || s.err != nil {
		return
	}
	bars, err := TickToBarList(s.validate, s.period, s.ticks, s.visitor)
	if err != nil {
		s.err = err
		return
	}
	s.converted = stream.FromSlice(bars, nil)
}
