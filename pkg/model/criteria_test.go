package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickCriteria_NormalizesEndOfSecond(t *testing.T) {
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		end         time.Time
		expectedEnd time.Time
	}{
		{
			name:        "end on second boundary expands to last nanosecond",
			end:         time.Date(2020, 1, 2, 0, 59, 59, 0, time.UTC),
			expectedEnd: time.Date(2020, 1, 2, 0, 59, 59, 999999999, time.UTC),
		},
		{
			name:        "end inside second is untouched",
			end:         time.Date(2020, 1, 2, 0, 59, 59, 999000000, time.UTC),
			expectedEnd: time.Date(2020, 1, 2, 0, 59, 59, 999000000, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			criteria, err := NewTickCriteria("EURUSD", start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, start, criteria.Start)
			assert.Equal(t, tc.expectedEnd, criteria.End)
		})
	}
}

func TestTickCriteria_RejectsEndBeforeStart(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 59, 59, 0, time.UTC)
	end := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := NewTickCriteria("EURUSD", start, end)

	require.Error(t, err)
	assert.Equal(t, "Instant 2024-01-02T00:59:59Z must be before 2021-01-02T00:00:00Z", err.Error())
}

func TestBarCriteria_RoundsOntoBarBoundaries(t *testing.T) {
	criteria, err := NewBarCriteria("EURUSD", M10,
		time.Date(2019, 6, 7, 4, 3, 21, 0, time.UTC),
		time.Date(2019, 6, 7, 5, 4, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2019, 6, 7, 4, 0, 0, 0, time.UTC), criteria.Start)
	assert.Equal(t, time.Date(2019, 6, 7, 5, 9, 59, 999999999, time.UTC), criteria.End)
	assert.Equal(t, 1, criteria.NumDays)
	assert.Equal(t, time.Date(2019, 6, 7, 0, 0, 0, 0, time.UTC), criteria.DayStart)
	assert.Equal(t, time.Date(2019, 6, 7, 23, 59, 59, 999999999, time.UTC), criteria.DayEnd)
}

func TestBarCriteria_DayIndexing(t *testing.T) {
	criteria, err := NewBarCriteria("EURUSD", H1,
		time.Date(2020, 1, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 4, 2, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, criteria.NumDays)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), criteria.DayStartAt(0))
	assert.Equal(t, time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC), criteria.DayStartAt(1))
	assert.Equal(t, time.Date(2020, 1, 2, 23, 59, 59, 999999999, time.UTC), criteria.DayEndAt(0))
	assert.Equal(t, time.Date(2020, 1, 4, 23, 59, 59, 999999999, time.UTC), criteria.DayEndAt(2))
}

func TestRoundEndInstant_ExpandsToEndOfContainingBar(t *testing.T) {
	end := time.Date(2018, 7, 6, 12, 45, 33, 0, time.UTC)

	rounded := RoundEndInstant(M5, end)

	assert.Equal(t, time.Date(2018, 7, 6, 12, 49, 59, 999999999, time.UTC), rounded)
}

func TestRoundEndInstant_OnBoundaryCoversWholeBar(t *testing.T) {
	end := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	rounded := RoundEndInstant(H1, end)

	assert.Equal(t, time.Date(2020, 1, 2, 0, 59, 59, 999999999, time.UTC), rounded)
}
