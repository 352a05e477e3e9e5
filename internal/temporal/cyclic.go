package temporal

import (
	"errors"
	"fmt"
	"math"

	"nytf/internal/dataset"
)

// ErrInvalidRange is returned when a cyclic encoder is configured with
// max <= min.
var ErrInvalidRange = errors.New("cyclic range max must exceed min")

// Cyclic maps a bounded periodic feature onto the unit circle:
// θ = 2π·(v−min)/(max−min), emitted as (cos θ, sin θ). Values at min and
// max land on the same point, so wraparound discontinuities (23:59 → 00:00)
// disappear. Values outside [min, max) are not clamped; the mapping is
// periodic and simply wraps.
func Cyclic(values []float64, min, max float64) (cosOut, sinOut []float64, err error) {
	if max <= min {
		return nil, nil, fmt.Errorf("%w: [%g, %g)", ErrInvalidRange, min, max)
	}

	cosOut = make([]float64, len(values))
	sinOut = make([]float64, len(values))
	for i, v := range values {
		theta := 2 * math.Pi * (v - min) / (max - min)
		cosOut[i] = math.Cos(theta)
		sinOut[i] = math.Sin(theta)
	}
	return cosOut, sinOut, nil
}

// EncodeCyclic adds name_cos and name_sin columns to the frame, encoding
// the named column over [min, max).
func EncodeCyclic(frame *dataset.Frame, name string, min, max float64) error {
	values, err := frame.Column(name)
	if err != nil {
		return err
	}
	cosCol, sinCol, err := Cyclic(values, min, max)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := frame.AddColumn(name+"_cos", cosCol); err != nil {
		return err
	}
	return frame.AddColumn(name+"_sin", sinCol)
}
