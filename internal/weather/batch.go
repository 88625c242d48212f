package weather

import (
	"errors"

	"github.com/montanaflynn/stats"
)

// ErrEmptyBatch is returned when a batch with no collected samples is reduced.
var ErrEmptyBatch = errors.New("no samples collected")

// SampleBatch accumulates raw temperature and humidity values collected
// across repeated queries for one (city, hour). The two metrics are kept
// in independent accumulators: each is reduced by its own median, so the
// resulting pair may originate from different underlying samples.
type SampleBatch struct {
	Temperatures []float64
	Humidities   []float64
}

// Add records one successful query's temperature and humidity values.
func (b *SampleBatch) Add(temperature, humidity float64) {
	b.Temperatures = append(b.Temperatures, temperature)
	b.Humidities = append(b.Humidities, humidity)
}

// Empty reports whether no query contributed any sample.
func (b *SampleBatch) Empty() bool {
	return len(b.Temperatures) == 0 && len(b.Humidities) == 0
}

// Reduce collapses the batch into a single stable temperature/humidity
// pair, taking the median of each metric independently. Even-count
// accumulators yield the mean of the two middle values.
func (b *SampleBatch) Reduce() (temperature, humidity float64, err error) {
	if b.Empty() {
		return 0, 0, ErrEmptyBatch
	}

	temperature, err = stats.Median(b.Temperatures)
	if err != nil {
		return 0, 0, err
	}

	humidity, err = stats.Median(b.Humidities)
	if err != nil {
		return 0, 0, err
	}

	return temperature, humidity, nil
}
