package dukascopy

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/ulikunitz/xz/lzma"

	"github.com/LimeMojito/trading-data-stream/pkg/errors"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
)

// tickRecordSize is the packed size of one tick in a bi5 archive: millisecond
// offset, ask, bid (uint32) then ask and bid volumes (float32), big endian.
const tickRecordSize = 20

// DecodeTicks decompresses one hourly archive and unpacks its ticks. Output is
// ordered non-decreasing by timestamp with all timestamps inside the hour. An
// empty payload is a market-closed hour and yields no ticks.
func DecodeTicks(symbol string, hourStart time.Time, payload []byte) ([]model.Tick, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	reader, err := lzma.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, errors.WrapCoded(errors.IoFailureError, err)
	}
	unpacked, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.WrapCoded(errors.IoFailureError, err)
	}
	return unpackTicks(symbol, hourStart, unpacked)
}

// unpackTicks parses the decompressed fixed-width records.
func unpackTicks(symbol string, hourStart time.Time, data []byte) ([]model.Tick, error) {
	if len(data)%tickRecordSize != 0 {
		return nil, errors.NewCoded(errors.IoFailureError,
			"tick data for %s %s is %d bytes, not a multiple of %d",
			symbol, model.FormatInstant(hourStart), len(data), tickRecordSize)
	}
	hourMillis := hourStart.UnixMilli()
	ticks := make([]model.Tick, 0, len(data)/tickRecordSize)
	for offset := 0; offset < len(data); offset += tickRecordSize {
		record := data[offset : offset+tickRecordSize]
		millisOffset := binary.BigEndian.Uint32(record[0:4])
		ask := binary.BigEndian.Uint32(record[4:8])
		bid := binary.BigEndian.Uint32(record[8:12])
		askVolume := math.Float32frombits(binary.BigEndian.Uint32(record[12:16]))
		bidVolume := math.Float32frombits(binary.BigEndian.Uint32(record[16:20]))
		ticks = append(ticks, model.Tick{
			MillisecondsUTC: hourMillis + int64(millisOffset),
			StreamID:        model.RealtimeUUID,
			Symbol:          symbol,
			Ask:             int(ask),
			Bid:             int(bid),
			AskVolume:       askVolume,
			BidVolume:       bidVolume,
			Source:          model.SourceHistorical,
		})
	}
	return ticks, nil
}
