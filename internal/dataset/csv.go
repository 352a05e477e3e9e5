package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// pickupTimeLayout matches the raw Kaggle export, e.g.
// "2013-07-02 19:54:00 UTC".
const pickupTimeLayout = "2006-01-02 15:04:05 MST"

// LoadOptions configures CSV loading behavior.
type LoadOptions struct {
	// DropKey skips the record key column, which carries no signal for the
	// training set (it duplicates the pickup timestamp).
	DropKey bool
	// RequireFare errors on rows without a fare_amount column value.
	// Test-set exports have no fare column at all.
	RequireFare bool
}

// LoadCSV reads trip records from a raw CSV export. The header row decides
// the column layout; unknown columns are ignored. Each parsed record is
// validated against the schema before it is accepted.
func LoadCSV(path string, opts LoadOptions, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	records, err := ReadCSV(file, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	logger.Info("loaded records from csv",
		slog.String("path", path),
		slog.Int("records", len(records)))
	return records, nil
}

// ReadCSV parses trip records from an open CSV stream.
func ReadCSV(r io.Reader, opts LoadOptions, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	if _, ok := cols["pickup_datetime"]; !ok {
		return nil, fmt.Errorf("missing required column pickup_datetime")
	}
	_, hasFare := cols["fare_amount"]
	if opts.RequireFare && !hasFare {
		return nil, fmt.Errorf("missing required column fare_amount")
	}

	var records []Record
	skipped := 0
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := parseRow(row, cols, opts, hasFare)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		// Out-of-range coordinates are known bad records in the raw
		// exports, not malformed input. Drop them here rather than
		// failing the whole load.
		if err := rec.Validate(); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		logger.Warn("skipped records failing schema validation",
			slog.Int("skipped", skipped))
	}
	return records, nil
}

func parseRow(row []string, cols map[string]int, opts LoadOptions, hasFare bool) (Record, error) {
	var rec Record

	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	if !opts.DropKey {
		if v, ok := field("key"); ok {
			rec.Key = v
		}
	}

	raw, _ := field("pickup_datetime")
	t, err := time.Parse(pickupTimeLayout, raw)
	if err != nil {
		return rec, fmt.Errorf("parse pickup_datetime %q: %w", raw, err)
	}
	rec.PickupTime = t.UTC()

	numeric := []struct {
		name string
		dst  *float64
	}{
		{"pickup_latitude", &rec.PickupLat},
		{"pickup_longitude", &rec.PickupLon},
		{"dropoff_latitude", &rec.DropoffLat},
		{"dropoff_longitude", &rec.DropoffLon},
	}
	for _, nc := range numeric {
		raw, ok := field(nc.name)
		if !ok {
			return rec, fmt.Errorf("missing column %s", nc.name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, fmt.Errorf("parse %s %q: %w", nc.name, raw, err)
		}
		*nc.dst = v
	}

	if hasFare {
		raw, _ := field("fare_amount")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, fmt.Errorf("parse fare_amount %q: %w", raw, err)
		}
		rec.FareAmount = v
	}

	if raw, ok := field("passenger_count"); ok && raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return rec, fmt.Errorf("parse passenger_count %q: %w", raw, err)
		}
		rec.PassengerCount = v
	}

	return rec, nil
}
