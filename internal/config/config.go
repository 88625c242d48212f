package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aherelle/afriweather/internal/weather"
)

var validate = validator.New()

// ErrMissingAPIKey makes the collector refuse to start before any
// network call. The dashboard reads the CSV only and never needs the
// credential.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY is not set")

// AppConfig holds everything both entrypoints need, loaded from the
// environment. The API key is the only setting without a default.
type AppConfig struct {
	OpenWeatherAPIKey string

	// Locations to collect, in fixed iteration order.
	Locations []weather.Location `validate:"min=1,dive"`

	// DataFile is the append-only CSV acting as system of record.
	DataFile string `validate:"required"`

	// SampleAttempts is the number of point-in-time queries reduced
	// into one stable reading.
	SampleAttempts int `validate:"min=1"`

	// SamplePause is the pause between successive sample attempts;
	// CityPause the pause between cities. Both are rate-limit courtesy.
	SamplePause time.Duration `validate:"min=0"`
	CityPause   time.Duration `validate:"min=0"`

	// HTTPTimeout bounds every outbound request.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// FetchInterval controls the daemon-mode collection schedule.
	FetchInterval time.Duration `validate:"gt=0"`

	Port     string
	LogLevel string
}

// Load reads configuration from the environment with defaults matching
// the deployed topology: three African cities, hourly collection.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		DataFile:          getenvDefault("DATA_FILE", "weather_data.csv"),
		SampleAttempts:    getenvInt("SAMPLE_ATTEMPTS", 3),
		Port:              getenvDefault("PORT", "8080"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.SamplePause, err = getenvDuration("SAMPLE_PAUSE", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.CityPause, err = getenvDuration("CITY_PAUSE", time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	locs, err := loadLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// RequireCredentials checks the settings only the collection process
// needs. Absence of the upstream API key is a fatal startup condition.
func (c *AppConfig) RequireCredentials() error {
	if c.OpenWeatherAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func loadLocations() ([]weather.Location, error) {
	cities := strings.Split(getenvDefault("WEATHER_CITIES", "Cape Town,Kigali,Kampala"), ",")
	countries := strings.Split(getenvDefault("WEATHER_COUNTRIES", "ZA,RW,UG"), ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}

	var locs []weather.Location
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
