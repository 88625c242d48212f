package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aherelle/afriweather/internal/weather"
)

// Resolver maps a city to coordinates. Looked up fresh on every run.
type Resolver interface {
	ResolveCoordinates(ctx context.Context, loc weather.Location) (weather.Coordinates, error)
}

// Sampler produces one stable reading for a location and target hour.
type Sampler interface {
	Sample(ctx context.Context, loc weather.Location, coords weather.Coordinates, targetHour int64) (weather.Reading, error)
}

// Appender is the write side of the system of record.
type Appender interface {
	Append(rows []weather.Reading) error
}

// Stage identifies where a city's collection gave up.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageSample  Stage = "sample"
	StageOK      Stage = "ok"
)

// CityResult is the explicit per-city outcome of a run. Failed cities
// carry the error and the stage it occurred in; they are skipped, never
// abort the batch.
type CityResult struct {
	Location weather.Location
	Stage    Stage
	Reading  weather.Reading
	Err      error
}

// Collector iterates the fixed city list once per trigger, resolving
// and sampling each city and appending the successful readings as one
// batch. It holds no state across runs.
type Collector struct {
	resolver  Resolver
	sampler   Sampler
	store     Appender
	locations []weather.Location
	cityPause time.Duration
	log       *logrus.Entry
}

// New creates a Collector over the given fixed, ordered location list.
func New(resolver Resolver, sampler Sampler, store Appender, locations []weather.Location, cityPause time.Duration, log *logrus.Entry) *Collector {
	return &Collector{
		resolver:  resolver,
		sampler:   sampler,
		store:     store,
		locations: locations,
		cityPause: cityPause,
		log:       log,
	}
}

// TargetHour computes the most recently completed hour strictly before
// now: truncate to the hour boundary, then subtract one hour. The
// upstream historical endpoint only has settled data for fully elapsed
// hours.
func TargetHour(now time.Time) int64 {
	return now.Truncate(time.Hour).Unix() - 3600
}

// RunOnce executes one collection pass and returns the number of rows
// written. An empty batch performs no store write; a store write
// failure is fatal to the run.
func (c *Collector) RunOnce(ctx context.Context, now time.Time) (int, error) {
	runLog := c.log.WithField("run_id", uuid.NewString())
	targetHour := TargetHour(now)

	runLog.WithField("target_hour", time.Unix(targetHour, 0).UTC().Format(time.RFC3339)).
		Info("starting collection run")

	results, err := c.Collect(ctx, targetHour, runLog)
	if err != nil {
		return 0, err
	}

	batch := make([]weather.Reading, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			batch = append(batch, res.Reading)
		}
	}

	if len(batch) == 0 {
		runLog.Warn("no weather data was collected; skipping store write")
		return 0, nil
	}

	if err := c.store.Append(batch); err != nil {
		return 0, fmt.Errorf("failed to append batch to store: %w", err)
	}

	runLog.WithField("rows", len(batch)).Info("collection run complete")
	return len(batch), nil
}

// Collect resolves and samples every configured city for the target
// hour and returns one CityResult per city, in configuration order.
// Only a cancelled context aborts the loop early.
func (c *Collector) Collect(ctx context.Context, targetHour int64, runLog *logrus.Entry) ([]CityResult, error) {
	results := make([]CityResult, 0, len(c.locations))

	for i, loc := range c.locations {
		if i > 0 {
			if err := sleepCtx(ctx, c.cityPause); err != nil {
				return nil, err
			}
		}

		runLog.WithField("location", loc.Key()).Info("collecting city")
		results = append(results, c.collectCity(ctx, loc, targetHour, runLog))
	}

	return results, nil
}

func (c *Collector) collectCity(ctx context.Context, loc weather.Location, targetHour int64, runLog *logrus.Entry) CityResult {
	coords, err := c.resolver.ResolveCoordinates(ctx, loc)
	if err != nil {
		runLog.WithField("location", loc.Key()).Warnf("skipping city, resolution failed: %v", err)
		return CityResult{Location: loc, Stage: StageResolve, Err: err}
	}

	reading, err := c.sampler.Sample(ctx, loc, coords, targetHour)
	if err != nil {
		runLog.WithField("location", loc.Key()).Warnf("skipping city, sampling failed: %v", err)
		return CityResult{Location: loc, Stage: StageSample, Err: err}
	}

	return CityResult{Location: loc, Stage: StageOK, Reading: reading}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
