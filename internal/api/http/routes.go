package httpapi

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/aherelle/afriweather/internal/store"
	"github.com/aherelle/afriweather/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the dashboard read API into the Fiber app. The
// API serves the append-only store's contents; it never writes rows.
func RegisterRoutes(app *fiber.App, cache *store.Cache, locations []weather.Location) {
	v1 := app.Group("/api/v1")

	v1.Get("/readings", func(c *fiber.Ctx) error {
		var req readingsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		readings, err := cache.Readings()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load weather data")
		}

		filtered := req.filter(readings)
		return c.JSON(fiber.Map{
			"count":    len(filtered),
			"readings": filtered,
		})
	})

	v1.Get("/readings/latest", func(c *fiber.Ctx) error {
		readings, err := cache.Readings()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load weather data")
		}

		latest := latestPerCity(readings, locations)
		if len(latest) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no weather data collected yet")
		}

		var lastUpdate int64
		for _, r := range latest {
			if r.Timestamp > lastUpdate {
				lastUpdate = r.Timestamp
			}
		}

		return c.JSON(fiber.Map{
			"lastUpdate": time.Unix(lastUpdate, 0).UTC(),
			"readings":   latest,
		})
	})

	v1.Get("/series", func(c *fiber.Ctx) error {
		req := seriesQuery{Metric: c.Query("metric", "temperature")}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		readings, err := cache.Readings()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load weather data")
		}

		return c.JSON(pivot(readings, req.Metric))
	})

	v1.Post("/cache/invalidate", func(c *fiber.Ctx) error {
		cache.Invalidate()
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// readingsQuery holds the optional filters of the readings endpoint.
type readingsQuery struct {
	City string
	From int64
	To   int64
}

func (q *readingsQuery) bind(c *fiber.Ctx) error {
	q.City = c.Query("city")

	if s := c.Query("from"); s != "" {
		ts, err := parseTime(s)
		if err != nil {
			return err
		}
		q.From = ts
	}
	if s := c.Query("to"); s != "" {
		ts, err := parseTime(s)
		if err != nil {
			return err
		}
		q.To = ts
	}
	if q.From != 0 && q.To != 0 && q.To < q.From {
		return errors.New("to must not be before from")
	}
	return nil
}

func (q *readingsQuery) filter(readings []weather.Reading) []weather.Reading {
	filtered := make([]weather.Reading, 0, len(readings))
	for _, r := range readings {
		if q.City != "" && r.City != q.City {
			continue
		}
		if q.From != 0 && r.Timestamp < q.From {
			continue
		}
		if q.To != 0 && r.Timestamp > q.To {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// seriesQuery selects which metric to pivot into chart series.
type seriesQuery struct {
	Metric string `validate:"required,oneof=temperature humidity"`
}

// SeriesPoint is one chart row: a timestamp and one value per city.
// Duplicate (city, timestamp) rows are served as-is; the last one wins
// within a point, matching how the store tolerates duplicates.
type SeriesPoint struct {
	Timestamp time.Time          `json:"timestamp"`
	Values    map[string]float64 `json:"values"`
}

// pivot turns the flat reading list into per-timestamp rows keyed by
// city, ready for a multi-line chart.
func pivot(readings []weather.Reading, metric string) []SeriesPoint {
	byTS := make(map[int64]map[string]float64)
	for _, r := range readings {
		row, ok := byTS[r.Timestamp]
		if !ok {
			row = make(map[string]float64)
			byTS[r.Timestamp] = row
		}
		if metric == "humidity" {
			row[r.City] = r.Humidity
		} else {
			row[r.City] = r.Temperature
		}
	}

	timestamps := make([]int64, 0, len(byTS))
	for ts := range byTS {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	points := make([]SeriesPoint, 0, len(timestamps))
	for _, ts := range timestamps {
		points = append(points, SeriesPoint{
			Timestamp: time.Unix(ts, 0).UTC(),
			Values:    byTS[ts],
		})
	}
	return points
}

func latestPerCity(readings []weather.Reading, locations []weather.Location) []weather.Reading {
	byCity := make(map[string]weather.Reading)
	for _, r := range readings {
		if cur, ok := byCity[r.City]; !ok || r.Timestamp >= cur.Timestamp {
			byCity[r.City] = r
		}
	}

	latest := make([]weather.Reading, 0, len(locations))
	for _, loc := range locations {
		if r, ok := byCity[loc.City]; ok {
			latest = append(latest, r)
		}
	}
	return latest
}

// parseTime accepts either RFC3339 or Unix seconds.
func parseTime(s string) (int64, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Unix(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return unix, nil
	}
	return 0, errors.New("invalid time format; use RFC3339 or unix seconds")
}
