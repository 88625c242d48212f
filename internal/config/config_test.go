package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aherelle/afriweather/internal/weather"
)

func TestLoad(t *testing.T) {
	t.Run("defaults with api key set", func(t *testing.T) {
		t.Setenv("OPENWEATHER_API_KEY", "test-key")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-key", cfg.OpenWeatherAPIKey)
		assert.Equal(t, "weather_data.csv", cfg.DataFile)
		assert.Equal(t, 3, cfg.SampleAttempts)
		assert.Equal(t, 500*time.Millisecond, cfg.SamplePause)
		assert.Equal(t, time.Second, cfg.CityPause)
		assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, time.Hour, cfg.FetchInterval)
		assert.Equal(t, []weather.Location{
			{City: "Cape Town", Country: "ZA"},
			{City: "Kigali", Country: "RW"},
			{City: "Kampala", Country: "UG"},
		}, cfg.Locations)
	})

	t.Run("missing api key fails the credential check only", func(t *testing.T) {
		t.Setenv("OPENWEATHER_API_KEY", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.ErrorIs(t, cfg.RequireCredentials(), ErrMissingAPIKey)
	})

	t.Run("mismatched city and country lists are rejected", func(t *testing.T) {
		t.Setenv("OPENWEATHER_API_KEY", "test-key")
		t.Setenv("WEATHER_CITIES", "Cape Town,Kigali")
		t.Setenv("WEATHER_COUNTRIES", "ZA")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("custom locations and intervals", func(t *testing.T) {
		t.Setenv("OPENWEATHER_API_KEY", "test-key")
		t.Setenv("WEATHER_CITIES", "Nairobi, Lagos")
		t.Setenv("WEATHER_COUNTRIES", "KE, NG")
		t.Setenv("SAMPLE_ATTEMPTS", "5")
		t.Setenv("SAMPLE_PAUSE", "100ms")
		t.Setenv("FETCH_INTERVAL", "30m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, []weather.Location{
			{City: "Nairobi", Country: "KE"},
			{City: "Lagos", Country: "NG"},
		}, cfg.Locations)
		assert.Equal(t, 5, cfg.SampleAttempts)
		assert.Equal(t, 100*time.Millisecond, cfg.SamplePause)
		assert.Equal(t, 30*time.Minute, cfg.FetchInterval)
	})

	t.Run("invalid duration is rejected", func(t *testing.T) {
		t.Setenv("OPENWEATHER_API_KEY", "test-key")
		t.Setenv("HTTP_TIMEOUT", "soon")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
	})
}
