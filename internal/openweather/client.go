package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aherelle/afriweather/internal/weather"
)

const (
	defaultGeocodingURL   = "http://api.openweathermap.org/geo/1.0/direct"
	defaultTimemachineURL = "https://api.openweathermap.org/data/3.0/onecall/timemachine"
)

var (
	// ErrNoMatch is returned when the geocoding service finds no city
	// for the requested name/country pair.
	ErrNoMatch = errors.New("no geocoding match for location")

	errUnexpectedStatus = errors.New("unexpected status code")
	errEmptyData        = errors.New("response contains no data records")
)

// Client talks to the two OpenWeatherMap endpoints this system depends
// on: forward geocoding and the historical point-in-time lookup. Each
// endpoint gets its own circuit breaker so a flapping geocoder does not
// shut down weather queries. The client performs no retries; repetition
// is the sampler's job.
type Client struct {
	client         *http.Client
	apiKey         string
	geocodingURL   string
	timemachineURL string
	geoCircuit     *gobreaker.CircuitBreaker
	weatherCircuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client using the given shared HTTP client. The
// caller is expected to have set an explicit timeout on it.
func NewClient(client *http.Client, apiKey string) *Client {
	return &Client{
		client:         client,
		apiKey:         apiKey,
		geocodingURL:   defaultGeocodingURL,
		timemachineURL: defaultTimemachineURL,
		geoCircuit:     newCircuit("openweather-geocoding"),
		weatherCircuit: newCircuit("openweather-timemachine"),
	}
}

func newCircuit(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// ResolveCoordinates looks up the coordinates of a city, constrained to
// the single best match. Transport errors, non-2xx responses and empty
// result sets all fail the resolution; the empty set is distinguished
// with ErrNoMatch.
func (c *Client) ResolveCoordinates(ctx context.Context, loc weather.Location) (weather.Coordinates, error) {
	values := url.Values{}
	values.Set("q", fmt.Sprintf("%s,%s", loc.City, loc.Country))
	values.Set("limit", "1")
	values.Set("appid", c.apiKey)

	resp, err := c.doGet(ctx, c.geoCircuit, fmt.Sprintf("%s?%s", c.geocodingURL, values.Encode()))
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("geocoding request for %s: %w", loc.Key(), err)
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(payload) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: %s", ErrNoMatch, loc.Key())
	}

	return weather.Coordinates{Lat: payload[0].Lat, Lon: payload[0].Lon}, nil
}

// Observation is one raw point-in-time record from the historical
// endpoint, before any stabilization.
type Observation struct {
	Timestamp   int64
	Temperature float64
	Humidity    float64
}

// FetchHourly queries the historical endpoint for the given position
// and hour timestamp and returns the first record. The endpoint is
// observed to return slightly jittery values for a nominally fixed past
// hour, which is why callers sample it repeatedly.
func (c *Client) FetchHourly(ctx context.Context, coords weather.Coordinates, timestamp int64) (Observation, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", coords.Lat))
	values.Set("lon", fmt.Sprintf("%f", coords.Lon))
	values.Set("dt", fmt.Sprintf("%d", timestamp))
	values.Set("units", "metric")
	values.Set("appid", c.apiKey)

	resp, err := c.doGet(ctx, c.weatherCircuit, fmt.Sprintf("%s?%s", c.timemachineURL, values.Encode()))
	if err != nil {
		return Observation{}, fmt.Errorf("timemachine request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Data []struct {
			Dt       int64   `json:"dt"`
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Observation{}, fmt.Errorf("failed to decode timemachine response: %w", err)
	}

	if len(payload.Data) == 0 {
		return Observation{}, errEmptyData
	}

	record := payload.Data[0]
	return Observation{
		Timestamp:   record.Dt,
		Temperature: record.Temp,
		Humidity:    record.Humidity,
	}, nil
}

// doGet executes a single GET through the endpoint's circuit breaker.
// If the circuit is open the call fails fast without touching the wire.
func (c *Client) doGet(ctx context.Context, cb *gobreaker.CircuitBreaker, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}
