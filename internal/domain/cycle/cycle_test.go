package cycle

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singapore(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func weekly(t *testing.T) Config {
	t.Helper()
	cfg, err := NewConfig("2024-01-01", 7, singapore(t))
	require.NoError(t, err)
	return cfg
}

func TestNewConfig(t *testing.T) {
	loc := singapore(t)

	t.Run("valid", func(t *testing.T) {
		cfg, err := NewConfig("2024-01-01", 7, loc)
		require.NoError(t, err)
		assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Equal(cfg.StartDate))
		assert.Equal(t, 7*24*time.Hour, cfg.Length())
	})

	t.Run("zero duration", func(t *testing.T) {
		_, err := NewConfig("2024-01-01", 0, loc)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("negative duration", func(t *testing.T) {
		_, err := NewConfig("2024-01-01", -3, loc)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := NewConfig("01/01/2024", 7, loc)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing timezone", func(t *testing.T) {
		_, err := NewConfig("2024-01-01", 7, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestCurrent_Scenarios(t *testing.T) {
	cfg := weekly(t)
	loc := cfg.Location

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"exactly at start", time.Date(2024, 1, 1, 0, 0, 0, 0, loc), 1},
		{"one second into cycle 2", time.Date(2024, 1, 8, 0, 0, 1, 0, loc), 2},
		{"one second before start", time.Date(2023, 12, 31, 23, 59, 59, 0, loc), 1},
		{"last instant of cycle 1", time.Date(2024, 1, 7, 23, 59, 59, 999999999, loc), 1},
		{"boundary of cycle 2", time.Date(2024, 1, 8, 0, 0, 0, 0, loc), 2},
		{"far before start", time.Date(2020, 6, 1, 12, 0, 0, 0, loc), 1},
		{"tenth cycle", time.Date(2024, 3, 4, 10, 0, 0, 0, loc), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Current(cfg, tt.now))
		})
	}
}

func TestCurrent_ConvertsNowIntoReferenceTimezone(t *testing.T) {
	cfg := weekly(t)

	// 2024-01-07T16:00:00Z is 2024-01-08T00:00:00 in Singapore (UTC+8).
	assert.Equal(t, 2, Current(cfg, time.Date(2024, 1, 7, 16, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, Current(cfg, time.Date(2024, 1, 7, 15, 59, 59, 0, time.UTC)))

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 2024-01-07T11:00 in New York is 2024-01-08T00:00 in Singapore.
	assert.Equal(t, 2, Current(cfg, time.Date(2024, 1, 7, 11, 0, 0, 0, ny)))
}

func TestCurrent_DurationIsInDays(t *testing.T) {
	cfg, err := NewConfig("2024-01-01", 1, singapore(t))
	require.NoError(t, err)

	assert.Equal(t, 1, Current(cfg, time.Date(2024, 1, 1, 23, 0, 0, 0, cfg.Location)))
	assert.Equal(t, 2, Current(cfg, time.Date(2024, 1, 2, 0, 0, 0, 0, cfg.Location)))
	assert.Equal(t, 8, Current(cfg, time.Date(2024, 1, 8, 0, 0, 0, 0, cfg.Location)))
}

func TestCurrent_MonotonicAndStepsByOne(t *testing.T) {
	cfg := weekly(t)
	now := cfg.StartDate.Add(-48 * time.Hour)
	prev := Current(cfg, now)
	require.Equal(t, 1, prev)

	for i := 0; i < 24*7*12; i++ {
		now = now.Add(time.Hour)
		got := Current(cfg, now)
		require.GreaterOrEqual(t, got, 1)
		require.GreaterOrEqual(t, got, prev)
		require.LessOrEqual(t, got-prev, 1)
		if got != prev {
			assert.True(t, StartOf(cfg, got).Equal(now), "cycle %d should begin exactly on its boundary", got)
		}
		prev = got
	}
	assert.Equal(t, 12, prev)
}

func TestCurrent_DaylightSavingZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	cfg, err := NewConfig("2024-03-04", 7, ny)
	require.NoError(t, err)

	// DST begins 2024-03-10; cycle 2 still starts at local midnight on 2024-03-11.
	assert.Equal(t, 1, Current(cfg, time.Date(2024, 3, 10, 23, 59, 59, 0, ny)))
	assert.Equal(t, 2, Current(cfg, time.Date(2024, 3, 11, 0, 0, 0, 0, ny)))
}

func TestStartOf(t *testing.T) {
	cfg := weekly(t)
	loc := cfg.Location

	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Equal(StartOf(cfg, 1)))
	assert.True(t, time.Date(2024, 1, 8, 0, 0, 0, 0, loc).Equal(StartOf(cfg, 2)))
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Equal(StartOf(cfg, 0)))
	assert.Equal(t, 5, Current(cfg, StartOf(cfg, 5)))
}
