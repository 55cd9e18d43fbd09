package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Bar is an immutable OHLC bar aggregating tick data over a fixed period for a
// single symbol and stream. Start and end times are UTC and inclusive. Prices
// are integer points as quoted by the data feed.
type Bar struct {
	StartMillisecondsUTC int64        `json:"startMillisecondsUtc" validate:"min=0"`
	StreamID             uuid.UUID    `json:"streamId"`
	Period               Period       `json:"period" validate:"required"`
	Symbol               string       `json:"symbol" validate:"min=6"`
	Open                 int          `json:"open" validate:"min=1"`
	High                 int          `json:"high" validate:"min=1"`
	Low                  int          `json:"low" validate:"min=1"`
	Close                int          `json:"close" validate:"min=1"`
	Source               StreamSource `json:"source" validate:"required"`
	// Version of the model contract, emitted on write and ignored on read.
	Version string `json:"modelVersion,omitempty"`
}

// StartMillisecondsFor computes the UTC start millisecond of the bar of the
// given period that contains the supplied epoch time.
func StartMillisecondsFor(period Period, epochMillis int64) int64 {
	return period.Round(epochMillis)
}

// EndMillisecondsFor computes the inclusive UTC end millisecond of the bar of
// the given period that contains the supplied epoch time.
func EndMillisecondsFor(period Period, epochMillis int64) int64 {
	return period.Round(epochMillis) + period.DurationMilliseconds() - 1
}

// BarsIn calculates how many bars of the supplied period fit between two
// instants, end exclusive.
func BarsIn(period Period, start, end time.Time) int64 {
	return period.PeriodsBetween(start, end)
}

// EndMillisecondsUTC is the end of this bar window in epoch milliseconds, inclusive.
func (b Bar) EndMillisecondsUTC() int64 {
	return EndMillisecondsFor(b.Period, b.StartMillisecondsUTC)
}

// StartInstant is the start of this bar window as a UTC time.
func (b Bar) StartInstant() time.Time {
	return ToInstant(b.StartMillisecondsUTC)
}

// EndInstant is the inclusive end of this bar window as a UTC time.
func (b Bar) EndInstant() time.Time {
	return ToInstant(b.EndMillisecondsUTC())
}

// PartitionKey combines stream id, symbol and period for grouping bars by origin.
func (b Bar) PartitionKey() string {
	return b.StreamID.String() + "-" + b.Symbol + "-" + string(b.Period)
}

// IsInSameStream is true when this bar belongs to the same stream and symbol as
// the other bar. Does not compare period or time window.
func (b Bar) IsInSameStream(other Bar) bool {
	return b.StreamID == other.StreamID && b.Symbol == other.Symbol
}

// Equal compares the identity of two bars: start, stream, period and symbol.
func (b Bar) Equal(other Bar) bool {
	return b.StartMillisecondsUTC == other.StartMillisecondsUTC &&
		b.StreamID == other.StreamID &&
		b.Period == other.Period &&
		b.Symbol == other.Symbol
}

// Within is true if this bar lies entirely within the time window of the
// supplied bar and shares the same stream and symbol. The supplied bar must be
// the same or a larger period than this bar.
func (b Bar) Within(biggerBar Bar) bool {
	return b.IsInSameStream(biggerBar) &&
		biggerBar.Period.Ordinal() >= b.Period.Ordinal() &&
		biggerBar.StartMillisecondsUTC <= b.StartMillisecondsUTC &&
		biggerBar.EndMillisecondsUTC() >= b.EndMillisecondsUTC()
}

// Surrounds is true if this bar entirely surrounds the time window of the
// supplied bar and shares the same stream and symbol. The supplied bar must be
// the same or a smaller period than this bar.
func (b Bar) Surrounds(smallerBar Bar) bool {
	return b.IsInSameStream(smallerBar) &&
		smallerBar.Period.Ordinal() <= b.Period.Ordinal() &&
		smallerBar.StartMillisecondsUTC >= b.StartMillisecondsUTC &&
		smallerBar.EndMillisecondsUTC() <= b.EndMillisecondsUTC()
}

// Compare orders bars by stream type, symbol, period ordinal, start then end.
func (b Bar) Compare(other Bar) int {
	rv := CompareStream(b.StreamID, other.StreamID)
	if rv == 0 {
		rv = strings.Compare(b.Symbol, other.Symbol)
		if rv == 0 {
			rv = b.Period.Ordinal() - other.Period.Ordinal()
			if rv == 0 {
				rv = compareInt64(b.StartMillisecondsUTC, other.StartMillisecondsUTC)
				if rv == 0 {
					rv = compareInt64(b.EndMillisecondsUTC(), other.EndMillisecondsUTC())
				}
			}
		}
	}
	return rv
}
