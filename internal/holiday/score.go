package holiday

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"nytf/internal/dataset"
)

// Output columns emitted by Estimator.Transform.
const (
	ColScore       = "holiday_score"
	ColPrevSeconds = "prev_holiday_seconds"
	ColPrevScore   = "prev_holiday_score"
	ColNextSeconds = "next_holiday_seconds"
	ColNextScore   = "next_holiday_score"
)

var (
	// ErrNoNormalDays is returned when the fit data contains no ordinary
	// days to normalize against. Scores are ratios over the normal-day
	// average; without it every score would be a division by zero.
	ErrNoNormalDays = errors.New("fit data contains no normal days")
	// ErrLengthMismatch is returned when dates and interest values differ
	// in length.
	ErrLengthMismatch = errors.New("dates and interest values differ in length")
	// ErrNotFitted is returned when Transform runs before Fit.
	ErrNotFitted = errors.New("estimator has not been fitted")
)

// ScoreTable maps holiday labels to relative-importance scores: the
// average interest value on days carrying the label divided by the average
// on normal days. The normal label itself always scores exactly 1.
type ScoreTable map[string]float64

// Estimator computes holiday-proximity scores against an immutable
// proximity index. Fit builds the score table once; Transform may then be
// called any number of times, concurrently if desired.
type Estimator struct {
	index  *Index
	table  ScoreTable
	logger *slog.Logger
}

// NewEstimator creates an estimator over the given proximity index.
func NewEstimator(index *Index, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{index: index, logger: logger}
}

// Table returns the fitted score table, or nil before Fit.
func (e *Estimator) Table() ScoreTable {
	return e.table
}

// Fit groups the interest values by the holiday label of their date,
// averages each group, and normalizes by the normal-day average. An empty
// normal group is surfaced as ErrNoNormalDays rather than silently
// producing NaN scores.
func (e *Estimator) Fit(dates []time.Time, interest []float64) error {
	return e.fitRefs(e.resolve(dates), interest)
}

func (e *Estimator) fitRefs(refs []DayRef, interest []float64) error {
	if len(refs) != len(interest) {
		return fmt.Errorf("%w: %d dates, %d values", ErrLengthMismatch, len(refs), len(interest))
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, ref := range refs {
		if ref.Label == "" {
			continue
		}
		sums[ref.Label] += interest[i]
		counts[ref.Label]++
	}

	if counts[NormalLabel] == 0 {
		return ErrNoNormalDays
	}
	normalMean := sums[NormalLabel] / float64(counts[NormalLabel])

	table := make(ScoreTable, len(sums))
	for label, sum := range sums {
		table[label] = sum / float64(counts[label]) / normalMean
	}
	e.table = table

	e.logger.Info("fitted holiday score table",
		slog.Int("labels", len(table)),
		slog.Int("observations", len(refs)))
	return nil
}

// Transform emits, for each date: the score of its own label, the signed
// distance in seconds to the previous holiday (noon-pinned) and that
// holiday's score, and the same pair for the next holiday. Labels never
// seen during fit, edge days with no previous or next holiday, and dates
// outside the indexed span all propagate NaN.
func (e *Estimator) Transform(dates []time.Time) (*dataset.Frame, error) {
	return e.transformRefs(dates, e.resolve(dates))
}

// FitTransform fits the estimator and transforms the same data in one
// pass, reusing the per-date index lookups from the fit phase.
func (e *Estimator) FitTransform(dates []time.Time, interest []float64) (*dataset.Frame, error) {
	refs := e.resolve(dates)
	if err := e.fitRefs(refs, interest); err != nil {
		return nil, err
	}
	return e.transformRefs(dates, refs)
}

// resolve looks every date up in the proximity index. Dates outside the
// indexed span resolve to a zero DayRef, which scoring turns into an
// all-NaN row rather than a failure.
func (e *Estimator) resolve(dates []time.Time) []DayRef {
	refs := make([]DayRef, len(dates))
	var missing int
	for i, t := range dates {
		ref, ok := e.index.Lookup(t)
		if !ok {
			missing++
			continue
		}
		refs[i] = ref
	}
	if missing > 0 {
		e.logger.Warn("dates outside holiday index span",
			slog.Int("count", missing),
			slog.Int("total", len(dates)))
	}
	return refs
}

func (e *Estimator) transformRefs(dates []time.Time, refs []DayRef) (*dataset.Frame, error) {
	if e.table == nil {
		return nil, ErrNotFitted
	}

	n := len(refs)
	own := make([]float64, n)
	prevSec := make([]float64, n)
	prevScore := make([]float64, n)
	nextSec := make([]float64, n)
	nextScore := make([]float64, n)

	for i, ref := range refs {
		own[i] = e.score(ref.Label)

		if ref.Prev != nil {
			prevSec[i] = dates[i].Sub(ref.Prev.At).Seconds()
			prevScore[i] = e.score(ref.Prev.Label)
		} else {
			prevSec[i] = math.NaN()
			prevScore[i] = math.NaN()
		}

		if ref.Next != nil {
			nextSec[i] = ref.Next.At.Sub(dates[i]).Seconds()
			nextScore[i] = e.score(ref.Next.Label)
		} else {
			nextSec[i] = math.NaN()
			nextScore[i] = math.NaN()
		}
	}

	frame := dataset.NewFrame(n)
	for _, col := range []struct {
		name   string
		values []float64
	}{
		{ColScore, own},
		{ColPrevSeconds, prevSec},
		{ColPrevScore, prevScore},
		{ColNextSeconds, nextSec},
		{ColNextScore, nextScore},
	} {
		if err := frame.AddColumn(col.name, col.values); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// score resolves a label against the fitted table, defaulting to NaN for
// labels absent from the fit data.
func (e *Estimator) score(label string) float64 {
	if s, ok := e.table[label]; ok {
		return s
	}
	return math.NaN()
}
