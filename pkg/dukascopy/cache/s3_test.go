package cache_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache"
	cache_mock "github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache/mock"
	"github.com/LimeMojito/trading-data-stream/pkg/model"
	"github.com/LimeMojito/trading-data-stream/pkg/stats"
	"github.com/LimeMojito/trading-data-stream/pkg/stream"
)

const bucketName = "bucketName"

type capturedPut struct {
	bucket             string
	key                string
	data               []byte
	contentType        string
	contentDisposition string
	contentLength      int64
}

func TestS3TickCache_PullsFromS3(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := cache_mock.NewMockObjectStore(ctrl)
	fallback := newFallbackMock(t, ctrl)
	payload := []byte("packed tick data")
	store.EXPECT().Get(gomock.Any(), bucketName, tickPath).Return(payload, true, nil)

	s3Cache := cache.NewS3TickCache(store, bucketName, fallback, testLogger(t))

	body, err := s3Cache.Stream(context.Background(), tickPath)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, payload, data)
	assert.Equal(t, int64(1), s3Cache.Statistics().HitCount())
	assert.Equal(t, int64(0), s3Cache.Statistics().MissCount())
	assert.Equal(t,
		"S3TickCache: retrieve: 1, hit: 1, miss: 0, mockCache: retrieve: 0, hit: 0, miss: 0",
		s3Cache.Statistics().CacheStats())
}

func TestS3TickCache_MissFallsBackAndPuts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := cache_mock.NewMockObjectStore(ctrl)
	fallback := newFallbackMock(t, ctrl)
	// a representative packed hour is well over 33KB
	payload := bytes.Repeat([]byte{0xAB}, 34_000)

	store.EXPECT().Get(gomock.Any(), bucketName, tickPath).Return(nil, false, nil)
	fallback.EXPECT().Stream(gomock.Any(), tickPath).
		Return(io.NopCloser(bytes.NewReader(payload)), nil)
	store.EXPECT().Head(gomock.Any(), bucketName, tickPath).Return(false, nil)

	var captured capturedPut
	store.EXPECT().
		Put(gomock.Any(), bucketName, tickPath, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, bucket, key string, data []byte,
			contentType, contentDisposition string, contentLength int64) error {
			captured = capturedPut{bucket, key, data, contentType, contentDisposition, contentLength}
			return nil
		})

	s3Cache := cache.NewS3TickCache(store, bucketName, fallback, testLogger(t))

	body, err := s3Cache.Stream(context.Background(), tickPath)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, payload, data)
	assert.Equal(t, int64(0), s3Cache.Statistics().HitCount())
	assert.Equal(t, int64(1), s3Cache.Statistics().MissCount())
	assert.Equal(t, int64(1), s3Cache.Statistics().RetrieveCount())

	assert.Equal(t, bucketName, captured.bucket)
	assert.Equal(t, tickPath, captured.key)
	assert.Equal(t, "application/octet-stream", captured.contentType)
	assert.Equal(t, tickPath, captured.contentDisposition)
	assert.Greater(t, captured.contentLength, int64(33_000))
	assert.Equal(t, payload, captured.data)
}

func TestS3BarCache_FetchesBarsFromS3(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := cache_mock.NewMockObjectStore(ctrl)
	fallback := newFallbackMock(t, ctrl)
	fallbackBars := cache_mock.NewMockBarCache(ctrl)
	fallbackBars.EXPECT().Statistics().Return(stats.NewSimpleStats("mockBarCache")).AnyTimes()
	fallback.EXPECT().CreateBarCache(gomock.Any(), gomock.Any()).Return(fallbackBars)

	criteria := m10Criteria(t)
	paths := dayOfPaths(t)
	expected := oneDayOfBars()
	var encoded bytes.Buffer
	require.NoError(t, stream.WriteSliceAsJSONArray(expected, &encoded))
	store.EXPECT().Get(gomock.Any(), bucketName, "bars/M10/EURUSD/2019/05/07.json").
		Return(encoded.Bytes(), true, nil)

	s3Cache := cache.NewS3TickCache(store, bucketName, fallback, testLogger(t))
	barCache := s3Cache.CreateBarCache(model.NewValidator(), nil)

	bars, err := barCache.OneDayOfBars(context.Background(), criteria, paths)
	require.NoError(t, err)

	assert.Equal(t, expected, bars)
	assert.Equal(t, int64(1), barCache.Statistics().HitCount())
	assert.Equal(t, int64(0), barCache.Statistics().MissCount())
	assert.Equal(t, int64(1), barCache.Statistics().RetrieveCount())
}

func TestS3BarCache_SavesBarsOnMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := cache_mock.NewMockObjectStore(ctrl)
	fallback := newFallbackMock(t, ctrl)
	fallbackBars := cache_mock.NewMockBarCache(ctrl)
	fallbackBars.EXPECT().Statistics().Return(stats.NewSimpleStats("mockBarCache")).AnyTimes()
	fallback.EXPECT().CreateBarCache(gomock.Any(), gomock.Any()).Return(fallbackBars)

	criteria := m10Criteria(t)
	paths := dayOfPaths(t)
	expected := oneDayOfBars()
	barPath := "bars/M10/EURUSD/2019/05/07.json"

	store.EXPECT().Get(gomock.Any(), bucketName, barPath).Return(nil, false, nil)
	fallbackBars.EXPECT().OneDayOfBars(gomock.Any(), criteria, paths).Return(expected, nil)
	store.EXPECT().Head(gomock.Any(), bucketName, barPath).Return(false, nil)

	var captured capturedPut
	store.EXPECT().
		Put(gomock.Any(), bucketName, barPath, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, bucket, key string, data []byte,
			contentType, contentDisposition string, contentLength int64) error {
			captured = capturedPut{bucket, key, data, contentType, contentDisposition, contentLength}
			return nil
		})

	s3Cache := cache.NewS3TickCache(store, bucketName, fallback, testLogger(t))
	barCache := s3Cache.CreateBarCache(model.NewValidator(), nil)

	bars, err := barCache.OneDayOfBars(context.Background(), criteria, paths)
	require.NoError(t, err)

	assert.Equal(t, expected, bars)
	assert.Equal(t, "application/json", captured.contentType)
	assert.Equal(t, barPath, captured.contentDisposition)
	assert.Equal(t, int64(len(captured.data)), captured.contentLength)
	assert.Equal(t, int64(0), barCache.Statistics().HitCount())
	assert.Equal(t, int64(1), barCache.Statistics().MissCount())

	// the persisted payload decodes back to the same bars
	decoded, err := stream.FromJSONArray[model.Bar](bytes.NewReader(captured.data), nil)
	require.NoError(t, err)
	restored, err := stream.Collect(decoded)
	require.NoError(t, err)
	assert.Equal(t, expected, restored)
}

func TestS3TickCache_PersistFailureStillServesPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := cache_mock.NewMockObjectStore(ctrl)
	fallback := newFallbackMock(t, ctrl)
	payload := []byte("packed tick data")

	store.EXPECT().Get(gomock.Any(), bucketName, tickPath).Return(nil, false, nil)
	fallback.EXPECT().Stream(gomock.Any(), tickPath).
		Return(io.NopCloser(bytes.NewReader(payload)), nil)
	store.EXPECT().Head(gomock.Any(), bucketName, tickPath).Return(false, nil)
	store.EXPECT().
		Put(gomock.Any(), bucketName, tickPath, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(assert.AnError)

	s3Cache := cache.NewS3TickCache(store, bucketName, fallback, testLogger(t))

	body, err := s3Cache.Stream(context.Background(), tickPath)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, payload, data)
}

func TestS3TickCache_SkipsPutWhenAnotherWriterWonTheRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := cache_mock.NewMockObjectStore(ctrl)
	fallback := newFallbackMock(t, ctrl)
	payload := []byte("packed tick data")

	store.EXPECT().Get(gomock.Any(), bucketName, tickPath).Return(nil, false, nil)
	fallback.EXPECT().Stream(gomock.Any(), tickPath).
		Return(io.NopCloser(bytes.NewReader(payload)), nil)
	// the re-check sees the object, so no put is issued
	store.EXPECT().Head(gomock.Any(), bucketName, tickPath).Return(true, nil)

	s3Cache := cache.NewS3TickCache(store, bucketName, fallback, testLogger(t))

	body, err := s3Cache.Stream(context.Background(), tickPath)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, payload, data)
}
