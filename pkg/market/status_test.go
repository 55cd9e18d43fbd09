package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketStatus_IsOpen(t *testing.T) {
	marketStatus, err := NewMarketStatus()
	require.NoError(t, err)

	sydney, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		instant  time.Time
		expected Status
	}{
		{
			name:     "closed before sydney monday open",
			instant:  time.Date(2019, 6, 3, 8, 0, 0, 0, sydney),
			expected: Closed,
		},
		{
			name:     "open at sydney monday open",
			instant:  time.Date(2019, 6, 3, 9, 0, 0, 0, sydney),
			expected: Open,
		},
		{
			name:     "open just before new york friday close",
			instant:  time.Date(2019, 6, 7, 16, 59, 59, 0, newYork),
			expected: Open,
		},
		{
			name:     "closed after new york friday close",
			instant:  time.Date(2019, 6, 7, 17, 1, 0, 0, newYork),
			expected: Closed,
		},
		{
			name:     "open at sydney monday open in daylight savings",
			instant:  time.Date(2019, 2, 4, 9, 0, 0, 0, sydney),
			expected: Open,
		},
		{
			name:     "closed one second before sydney monday open in daylight savings",
			instant:  time.Date(2019, 2, 4, 8, 59, 59, 0, sydney),
			expected: Closed,
		},
		{
			name:     "open midweek",
			instant:  time.Date(2019, 6, 5, 12, 0, 0, 0, time.UTC),
			expected: Open,
		},
		{
			name:     "closed saturday utc",
			instant:  time.Date(2019, 6, 8, 12, 0, 0, 0, time.UTC),
			expected: Closed,
		},
		{
			name:     "open sunday 22:00 utc which is monday 9am sydney",
			instant:  time.Date(2020, 1, 5, 22, 0, 0, 0, time.UTC),
			expected: Open,
		},
		{
			name:     "closed sunday 21:00 utc which is monday 8am sydney",
			instant:  time.Date(2020, 1, 5, 21, 0, 0, 0, time.UTC),
			expected: Closed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, marketStatus.IsOpen(tc.instant))
		})
	}
}

func TestMarketStatus_StatusString(t *testing.T) {
	assert.Equal(t, "OPEN", Open.String())
	assert.Equal(t, "CLOSED", Closed.String())
}
