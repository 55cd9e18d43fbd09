package aggregate

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stream"
)

var hourStart = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

// oneHourOfTicks produces one tick per minute for the hour, bid climbing one
// point per minute so OHLC values are deterministic.
func oneHourOfTicks(symbol string) []model.Tick {
	ticks := make([]model.Tick, 0, 60)
	for minute := 0; minute < 60; minute++ {
		bid := 11700 + minute
		ticks = append(ticks, model.Tick{
			MillisecondsUTC: hourStart.Add(time.Duration(minute) * time.Minute).UnixMilli(),
			StreamID:        model.RealtimeUUID,
			Symbol:          symbol,
			Ask:             bid + 2,
			Bid:             bid,
			AskVolume:       1.25,
			BidVolume:       2.5,
			Source:          model.SourceHistorical,
		})
	}
	return ticks
}

func newTestValidator() *validator.Validate {
	return model.NewValidator()
}

func TestTickToBarList_AggregationCounts(t *testing.T) {
	testCases := []struct {
		period   model.Period
		expected int
	}{
		{period: model.M5, expected: 12},
		{period: model.M10, expected: 6},
		{period: model.M15, expected: 4},
		{period: model.M30, expected: 2},
		{period: model.H1, expected: 1},
		// a partial bar still emits
		{period: model.H4, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(string(tc.period), func(t *testing.T) {
			ticks := stream.FromSlice(oneHourOfTicks("USDCHF"), nil)
			bars, err := TickToBarList(newTestValidator(), tc.period, ticks, nil)
			require.NoError(t, err)
			assert.Len(t, bars, tc.expected)
		})
	}
}

func TestTickToBarList_BarShape(t *testing.T) {
	ticks := stream.FromSlice(oneHourOfTicks("USDCHF"), nil)

	bars, err := TickToBarList(newTestValidator(), model.M30, ticks, nil)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	first := bars[0]
	assert.Equal(t, hourStart.UnixMilli(), first.StartMillisecondsUTC)
	assert.Equal(t, 11700, first.Open)
	assert.Equal(t, 11729, first.High)
	assert.Equal(t, 11700, first.Low)
	assert.Equal(t, 11729, first.Close)
	assert.Equal(t, model.SourceHistorical, first.Source)
	assert.Equal(t, model.ModelVersion, first.Version)

	second := bars[1]
	assert.Equal(t, hourStart.Add(30*time.Minute).UnixMilli(), second.StartMillisecondsUTC)
	assert.Greater(t, second.StartMillisecondsUTC, first.StartMillisecondsUTC)
}

func TestTickToBarList_SkipsEmptyGridSlots(t *testing.T) {
	// ticks in the first and fourth M5 slots only
	ticks := []model.Tick{
		tickAt(0, 11700), tickAt(2, 11710),
		tickAt(16, 11720), tickAt(17, 11705),
	}

	bars, err := TickToBarList(newTestValidator(), model.M5, stream.FromSlice(ticks, nil), nil)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, hourStart.UnixMilli(), bars[0].StartMillisecondsUTC)
	assert.Equal(t, hourStart.Add(15*time.Minute).UnixMilli(), bars[1].StartMillisecondsUTC)
	assert.Greater(t, bars[1].StartMillisecondsUTC, bars[0].StartMillisecondsUTC)
}

func TestTickToBarList_UsesBidOnly(t *testing.T) {
	ticks := []model.Tick{tickAt(0, 11700), tickAt(1, 11710)}
	// a huge ask should not leak into OHLC
	ticks[1].Ask = 99999

	bars, err := TickToBarList(newTestValidator(), model.H1, stream.FromSlice(ticks, nil), nil)
	require.NoError(t, err)

	require.Len(t, bars, 1)
	assert.Equal(t, 11710, bars[0].High)
}

func TestAggregator_PriceSelectorHook(t *testing.T) {
	var bars []model.Bar
	aggregator := NewAggregatorWithSelector(newTestValidator(), NotifierFunc(func(bar model.Bar) error {
		bars = append(bars, bar)
		return nil
	}), model.H1, func(tick model.Tick) int { return tick.Ask })

	require.NoError(t, aggregator.Add(tickAt(0, 11700)))
	require.NoError(t, aggregator.Add(tickAt(1, 11710)))
	require.NoError(t, aggregator.LoadEnd())

	require.Len(t, bars, 1)
	assert.Equal(t, 11702, bars[0].Open)
	assert.Equal(t, 11712, bars[0].Close)
}

func TestAggregator_PartitionsByStreamAndSymbol(t *testing.T) {
	backtest := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	var bars []model.Bar
	aggregator := NewAggregator(newTestValidator(), NotifierFunc(func(bar model.Bar) error {
		bars = append(bars, bar)
		return nil
	}), model.H1)

	realtimeTick := tickAt(0, 11700)
	backtestTick := tickAt(0, 11800)
	backtestTick.StreamID = backtest
	otherSymbol := tickAt(0, 10100)
	otherSymbol.Symbol = "USDJPY"

	require.NoError(t, aggregator.Add(realtimeTick))
	require.NoError(t, aggregator.Add(backtestTick))
	require.NoError(t, aggregator.Add(otherSymbol))
	require.NoError(t, aggregator.LoadEnd())

	assert.Len(t, bars, 3)
	keys := map[string]bool{}
	for _, bar := range bars {
		keys[bar.PartitionKey()] = true
	}
	assert.Len(t, keys, 3)
}

func TestAggregator_SourceContamination(t *testing.T) {
	var bars []model.Bar
	aggregator := NewAggregator(newTestValidator(), NotifierFunc(func(bar model.Bar) error {
		bars = append(bars, bar)
		return nil
	}), model.H1)

	live := tickAt(0, 11700)
	live.Source = model.SourceLive
	historical := tickAt(1, 11710)

	require.NoError(t, aggregator.Add(live))
	require.NoError(t, aggregator.Add(historical))
	require.NoError(t, aggregator.LoadEnd())

	require.Len(t, bars, 1)
	assert.Equal(t, model.SourceHistorical, bars[0].Source)
}

func TestAggregator_FlushInvokedAtLoadEnd(t *testing.T) {
	notifier := &countingNotifier{}
	aggregator := NewAggregator(newTestValidator(), notifier, model.M5)

	require.NoError(t, aggregator.Add(tickAt(0, 11700)))
	require.NoError(t, aggregator.Add(tickAt(6, 11710)))
	require.NoError(t, aggregator.LoadEnd())

	assert.Equal(t, 2, notifier.notified)
	assert.Equal(t, 1, notifier.flushed)
}

func TestTickToBarStream_LazyAndCloseable(t *testing.T) {
	ticks := stream.FromSlice(oneHourOfTicks("USDCHF"), nil)
	var visited int
	bars := NewTickToBarStream(newTestValidator(), model.M10, func(model.Bar) { visited++ }, ticks)

	collected, err := stream.Collect(bars)
	require.NoError(t, err)
	assert.Len(t, collected, 6)
	assert.Equal(t, 6, visited)
	assert.NoError(t, bars.Close())
	assert.NoError(t, bars.Close())
}

type countingNotifier struct {
	notified int
	flushed  int
}

func (n *countingNotifier) Notify(model.Bar) error {
	n.notified++
	return nil
}

func (n *countingNotifier) Flush() error {
	n.flushed++
	return nil
}

func tickAt(minute int, bid int) model.Tick {
	return model.Tick{
		MillisecondsUTC: hourStart.Add(time.Duration(minute) * time.Minute).UnixMilli(),
		StreamID:        model.RealtimeUUID,
		Symbol:          "EURUSD",
		Ask:             bid + 2,
		Bid:             bid,
		Source:          model.SourceHistorical,
	}
}
