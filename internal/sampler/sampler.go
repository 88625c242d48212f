package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aherelle/afriweather/internal/openweather"
	"github.com/aherelle/afriweather/internal/weather"
)

// HourlyFetcher is the single upstream call the sampler repeats.
type HourlyFetcher interface {
	FetchHourly(ctx context.Context, coords weather.Coordinates, timestamp int64) (openweather.Observation, error)
}

// Sampler turns a jittery historical endpoint into one stable reading
// per (city, hour) by issuing a fixed number of queries and reducing
// them to the per-metric median. The repetition is statistical
// stabilization, not failure recovery: attempts are never re-issued.
type Sampler struct {
	fetcher  HourlyFetcher
	attempts int
	pause    time.Duration
	log      *logrus.Entry
}

// New creates a Sampler. attempts below 1 is coerced to the default of 3.
func New(fetcher HourlyFetcher, attempts int, pause time.Duration, log *logrus.Entry) *Sampler {
	if attempts < 1 {
		attempts = 3
	}
	return &Sampler{
		fetcher:  fetcher,
		attempts: attempts,
		pause:    pause,
		log:      log,
	}
}

// Sample performs the configured number of sequential queries for the
// same (coords, targetHour) and reduces the collected values to their
// medians. Individual query failures are logged and swallowed; they
// never abort the remaining attempts. Sample fails only when zero
// queries succeed. A single successful query out of many still yields a
// reading equal to that sample.
func (s *Sampler) Sample(ctx context.Context, loc weather.Location, coords weather.Coordinates, targetHour int64) (weather.Reading, error) {
	var batch weather.SampleBatch

	for attempt := 1; attempt <= s.attempts; attempt++ {
		obs, err := s.fetcher.FetchHourly(ctx, coords, targetHour)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"location": loc.Key(),
				"attempt":  attempt,
			}).Debugf("sample attempt failed: %v", err)
		} else {
			batch.Add(obs.Temperature, obs.Humidity)
		}

		// Pause between attempts, not after the last one.
		if attempt < s.attempts {
			if err := sleepCtx(ctx, s.pause); err != nil {
				return weather.Reading{}, err
			}
		}
	}

	temp, hum, err := batch.Reduce()
	if err != nil {
		return weather.Reading{}, fmt.Errorf("no stable reading for %s: %w", loc.Key(), err)
	}

	s.log.WithFields(logrus.Fields{
		"location": loc.Key(),
		"samples":  len(batch.Temperatures),
	}).Debug("reduced sample batch to stable reading")

	return weather.Reading{
		Timestamp:   targetHour,
		City:        loc.City,
		Temperature: temp,
		Humidity:    hum,
	}, nil
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
