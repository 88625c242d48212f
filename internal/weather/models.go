package weather

import "time"

// Location represents a logical place for which we collect weather.
// City/Country must be provided; Country is an ISO-3166 alpha-2 code.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Key returns a canonical string key for this location, used in logs.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Coordinates is a resolved geographic position in floating-point degrees.
// Transient: resolved fresh on every collection run, never persisted.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Reading is one durable row of the collection output: a stabilized
// temperature/humidity pair for one city at one hour boundary.
type Reading struct {
	Timestamp   int64   `json:"timestamp"` // Unix seconds, aligned to an hour
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // percent
}

// Time returns the reading's timestamp as UTC time.
func (r Reading) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}
