package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aherelle/afriweather/internal/weather"
)

func tempStore(t *testing.T) *CSVStore {
	t.Helper()
	return NewCSVStore(filepath.Join(t.TempDir(), "weather_data.csv"))
}

func sampleRows() []weather.Reading {
	return []weather.Reading{
		{Timestamp: 1700002800, City: "Cape Town", Temperature: 18.2, Humidity: 72},
		{Timestamp: 1700002800, City: "Kigali", Temperature: 21.5, Humidity: 60},
	}
}

func fileLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestCSVStoreAppend(t *testing.T) {
	t.Run("creates file with header on first append", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, s.Append(sampleRows()))

		lines := fileLines(t, s.Path())
		require.Len(t, lines, 3)
		assert.Equal(t, "timestamp,city,temperature,humidity", lines[0])
		assert.Equal(t, "1700002800,Cape Town,18.2,72", lines[1])
		assert.Equal(t, "1700002800,Kigali,21.5,60", lines[2])
	})

	t.Run("appends without repeating the header", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, s.Append(sampleRows()))
		require.NoError(t, s.Append([]weather.Reading{
			{Timestamp: 1700006400, City: "Kampala", Temperature: 24, Humidity: 55},
		}))

		lines := fileLines(t, s.Path())
		require.Len(t, lines, 4)
		assert.Equal(t, "timestamp,city,temperature,humidity", lines[0])
		for _, line := range lines[1:] {
			assert.NotContains(t, line, "timestamp")
		}
	})

	t.Run("appending nothing touches nothing", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, s.Append(nil))

		_, err := os.Stat(s.Path())
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestCSVStoreReadAll(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := tempStore(t)
		rows := sampleRows()
		require.NoError(t, s.Append(rows))

		got, err := s.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("missing file reads as empty", func(t *testing.T) {
		s := tempStore(t)
		got, err := s.ReadAll()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("duplicate rows survive as separate samples", func(t *testing.T) {
		s := tempStore(t)
		rows := sampleRows()
		require.NoError(t, s.Append(rows))
		require.NoError(t, s.Append(rows))

		got, err := s.ReadAll()
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("malformed row is an error", func(t *testing.T) {
		s := tempStore(t)
		require.NoError(t, os.WriteFile(s.Path(),
			[]byte("timestamp,city,temperature,humidity\nnot-a-number,Kigali,20,50\n"), 0o644))

		_, err := s.ReadAll()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid timestamp")
	})
}

func TestCache(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, s.Append(sampleRows()))

	cache := NewCache(s)

	first, err := cache.Readings()
	require.NoError(t, err)
	assert.Len(t, first, 2)

	// New rows are invisible until the cache is invalidated.
	require.NoError(t, s.Append([]weather.Reading{
		{Timestamp: 1700006400, City: "Kampala", Temperature: 24, Humidity: 55},
	}))

	stale, err := cache.Readings()
	require.NoError(t, err)
	assert.Len(t, stale, 2)

	cache.Invalidate()

	fresh, err := cache.Readings()
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}
