package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aherelle/afriweather/internal/weather"
)

// header is the fixed column layout of the system of record. The
// dashboard side depends on these exact names.
var header = []string{"timestamp", "city", "temperature", "humidity"}

// CSVStore is the append-only system of record: a flat CSV file with
// one header line. Rows are never mutated or deleted; running the
// collector twice for the same hour produces duplicate rows by design.
// The deployed topology has exactly one writer, so no locking.
type CSVStore struct {
	path string
}

// NewCSVStore creates a store over the given file path. The file is not
// touched until the first Append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Append writes the given rows to the backing file, creating it with a
// header line first if it does not exist yet. The data is flushed and
// synced before returning so a reader never observes a half-written row.
func (s *CSVStore) Append(rows []weather.Reading) error {
	if len(rows) == 0 {
		return nil
	}

	_, statErr := os.Stat(s.path)
	writeHeader := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.Timestamp, 10),
			row.City,
			strconv.FormatFloat(row.Temperature, 'f', -1, 64),
			strconv.FormatFloat(row.Humidity, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}

	return f.Sync()
}

// ReadAll scans and parses the whole file. A missing file is an empty
// store, not an error; a malformed row is.
func (s *CSVStore) ReadAll() ([]weather.Reading, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	// Skip the header line.
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var readings []weather.Reading
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		reading, err := parseRecord(record)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

func parseRecord(record []string) (weather.Reading, error) {
	ts, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("invalid timestamp %q: %w", record[0], err)
	}
	temp, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("invalid temperature %q: %w", record[2], err)
	}
	hum, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("invalid humidity %q: %w", record[3], err)
	}

	return weather.Reading{
		Timestamp:   ts,
		City:        record[1],
		Temperature: temp,
		Humidity:    hum,
	}, nil
}
