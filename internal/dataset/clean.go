package dataset

import (
	"log/slog"

	"nytf/internal/geo"
)

// CleanConfig controls which records Clean rejects.
type CleanConfig struct {
	// FareMin and FareMax bound the fare amount (exclusive). Negative
	// fares and the handful of four-digit outliers carry no usable signal.
	FareMin float64
	FareMax float64
	// Bounds rejects records whose pickup or dropoff coordinates fall
	// outside the box. A zero box disables the filter.
	Bounds geo.Bounds
	// CheckFare disables fare filtering for test-set records, which have
	// no fare column.
	CheckFare bool
}

// CleanStats counts records dropped per reason during a Clean pass.
type CleanStats struct {
	In           int
	Kept         int
	NonFinite    int
	FareOutliers int
	OutOfBounds  int
}

// Clean removes bad records: rows with NaN/Inf fields, fares outside the
// configured bounds, and coordinates outside the bounding box. The input
// slice is not modified.
func Clean(records []Record, cfg CleanConfig, logger *slog.Logger) ([]Record, CleanStats) {
	if logger == nil {
		logger = slog.Default()
	}

	stats := CleanStats{In: len(records)}
	kept := make([]Record, 0, len(records))

	for _, rec := range records {
		if !rec.HasFiniteFields() {
			stats.NonFinite++
			continue
		}
		if cfg.CheckFare && (rec.FareAmount <= cfg.FareMin || rec.FareAmount >= cfg.FareMax) {
			stats.FareOutliers++
			continue
		}
		if !cfg.Bounds.IsZero() {
			if !cfg.Bounds.Contains(rec.PickupLat, rec.PickupLon) ||
				!cfg.Bounds.Contains(rec.DropoffLat, rec.DropoffLon) {
				stats.OutOfBounds++
				continue
			}
		}
		kept = append(kept, rec)
	}

	stats.Kept = len(kept)
	logger.Info("cleaned records",
		slog.Int("in", stats.In),
		slog.Int("kept", stats.Kept),
		slog.Int("non_finite", stats.NonFinite),
		slog.Int("fare_outliers", stats.FareOutliers),
		slog.Int("out_of_bounds", stats.OutOfBounds))

	return kept, stats
}
