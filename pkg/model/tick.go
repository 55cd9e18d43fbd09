package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SymbolMinSize is the minimum length of an instrument symbol.
const SymbolMinSize = 6

// Tick is an immutable market tick with bid/ask prices and volumes at a
// specific UTC instant for a symbol and stream.
type Tick struct {
	// MillisecondsUTC is the quote timestamp in epoch milliseconds.
	MillisecondsUTC int64 `json:"millisecondsUtc" validate:"min=0"`
	// StreamID identifies the realtime or backtest stream this tick belongs to.
	StreamID uuid.UUID `json:"streamId"`
	Symbol   string    `json:"symbol" validate:"min=6"`
	// Ask price for parcel size, so 100,000 for Forex.
	Ask int `json:"ask" validate:"min=1"`
	// Bid price for parcel size, so 100,000 for Forex.
	Bid int `json:"bid" validate:"min=1"`
	// AskVolume in the liquidity pool, in millions. (ie 1.23 is 1,230,000)
	AskVolume float32 `json:"askVolume" validate:"min=0"`
	// BidVolume in the liquidity pool, in millions. (ie 1.23 is 1,230,000)
	BidVolume float32      `json:"bidVolume" validate:"min=0"`
	Source    StreamSource `json:"source" validate:"required"`
}

// Instant returns the timestamp as a UTC time.
func (t Tick) Instant() time.Time {
	return ToInstant(t.MillisecondsUTC)
}

// PartitionKey combines stream id and symbol, useful for sharding.
func (t Tick) PartitionKey() string {
	return t.StreamID.String() + "-" + t.Symbol
}

// IsInSameStream is true when both ticks belong to the same logical stream.
func (t Tick) IsInSameStream(other Tick) bool {
	return t.StreamID == other.StreamID && t.Symbol == other.Symbol
}

// Equal compares the identity of two ticks: timestamp, stream and symbol.
func (t Tick) Equal(other Tick) bool {
	return t.MillisecondsUTC == other.MillisecondsUTC &&
		t.StreamID == other.StreamID &&
		t.Symbol == other.Symbol
}

// Compare orders ticks by stream type, then symbol, then timestamp.
func (t Tick) Compare(other Tick) int {
	rv := CompareStream(t.StreamID, other.StreamID)
	if rv == 0 {
		rv = strings.Compare(t.Symbol, other.Symbol)
		if rv == 0 {
			rv = compareInt64(t.MillisecondsUTC, other.MillisecondsUTC)
		}
	}
	return rv
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
