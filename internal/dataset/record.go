package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// Record is one taxi trip observation. Coordinates are in decimal degrees
// and the pickup time is timezone-aware (normalized to UTC on load).
type Record struct {
	Key            string    `validate:"-"`
	PickupTime     time.Time `validate:"required"`
	PickupLat      float64   `validate:"gte=-90,lte=90"`
	PickupLon      float64   `validate:"gte=-180,lte=180"`
	DropoffLat     float64   `validate:"gte=-90,lte=90"`
	DropoffLon     float64   `validate:"gte=-180,lte=180"`
	FareAmount     float64   `validate:"-"`
	PassengerCount int       `validate:"gte=0"`
}

var validate = validator.New()

// Validate checks the record against the schema constraints.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid record %q: %w", r.Key, err)
	}
	return nil
}

// HasFiniteFields reports whether all numeric fields are finite (no NaN or
// ±Inf). Raw training CSVs contain a handful of such rows.
func (r Record) HasFiniteFields() bool {
	for _, v := range []float64{r.PickupLat, r.PickupLon, r.DropoffLat, r.DropoffLon, r.FareAmount} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PickupTimes extracts the pickup timestamps of a record batch.
func PickupTimes(records []Record) []time.Time {
	out := make([]time.Time, len(records))
	for i, r := range records {
		out[i] = r.PickupTime
	}
	return out
}

// Fares extracts the fare amounts of a record batch.
func Fares(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.FareAmount
	}
	return out
}
