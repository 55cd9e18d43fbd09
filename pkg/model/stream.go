// Package model holds the market data value objects: ticks, bars, aggregation
// periods and the retrieval criteria that normalize requested time windows.
package model

import (
	"time"

	"github.com/google/uuid"
)

// ModelVersion is the version of the model contract emitted on serialized data.
const ModelVersion = "1.0"

// RealtimeUUID is the reserved stream id that marks items as belonging to the
// realtime stream. Any other id is a backtest stream.
var RealtimeUUID = uuid.Nil

// StreamType classifies a stream identity.
type StreamType int

const (
	// Backtest stream identity.
	Backtest StreamType = iota
	// Realtime stream identity.
	Realtime
)

// StreamSource is the origin of a data item.
type StreamSource string

const (
	// SourceLive marks live market data.
	SourceLive StreamSource = "Live"
	// SourceHistorical marks historical (archived) data.
	SourceHistorical StreamSource = "Historical"
)

// AggregateSource combines two sources. Live is displaced by historical data:
// we value Live more but Historical contaminates Live.
func AggregateSource(left, right StreamSource) StreamSource {
	if left == SourceLive && right == SourceHistorical {
		return SourceHistorical
	}
	return left
}

// TypeOf classifies a stream id into a StreamType.
func TypeOf(streamID uuid.UUID) StreamType {
	if IsRealtime(streamID) {
		return Realtime
	}
	return Backtest
}

// IsRealtime checks whether a given stream id represents the realtime stream.
func IsRealtime(streamID uuid.UUID) bool {
	return streamID == RealtimeUUID
}

// CompareStream compares two stream identifiers by their type (realtime vs backtest).
func CompareStream(streamID, other uuid.UUID) int {
	if streamID == other {
		return 0
	}
	return int(TypeOf(streamID)) - int(TypeOf(other))
}

// ToInstant creates a UTC time from epoch milliseconds.
func ToInstant(epochMillis int64) time.Time {
	return time.UnixMilli(epochMillis).UTC()
}

// ToEpochMillis converts a time to epoch milliseconds.
func ToEpochMillis(instant time.Time) int64 {
	return instant.UnixMilli()
}

// FormatInstant renders a time the way instants appear in failure messages,
// UTC with a Z suffix and no trailing zero fraction.
func FormatInstant(instant time.Time) string {
	return instant.UTC().Format(time.RFC3339Nano)
}
