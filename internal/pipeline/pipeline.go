package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"nytf/internal/dataset"
	"nytf/internal/geo"
	"nytf/internal/holiday"
	"nytf/internal/temporal"
)

// Geo output columns. Distances are in kilometers, matching the default
// sphere radius.
const (
	ColFlyingDistance = "flying_distance_km"
	ColL1Distance     = "l1_distance_km"
	ColFareAmount     = "fare_amount"
)

// Options configures a feature pipeline run.
type Options struct {
	// Timezone gives local calendar semantics for temporal and holiday
	// features. The raw timestamps themselves are UTC.
	Timezone string `validate:"required"`
	// TemporalFeatures selects deriver output columns; empty means all.
	TemporalFeatures []string
	// BusinessFlags adds night_hour and peak_hour indicator columns.
	BusinessFlags bool
	// CyclicHour adds hour_cos and hour_sin columns.
	CyclicHour bool
	// GeoDistances adds flying and L1 distance columns.
	GeoDistances bool
	// AngleUnit is the unit of the record coordinates.
	AngleUnit string `validate:"required"`
	// SphereRadiusKm sets the sphere radius for distance calculations.
	SphereRadiusKm float64 `validate:"gt=0"`
	// PlaneRotation aligns the L1 axes with the street grid, in radians.
	PlaneRotation float64
	// HolidayScores adds holiday proximity score columns.
	HolidayScores bool
	// HolidayState selects state observances for the built-in calendar.
	HolidayState string
	// Calendar overrides the built-in US calendar when set.
	Calendar holiday.Calendar `validate:"-"`
	// IncludeFare passes the fare amount through as a label column.
	IncludeFare bool
	// Workers bounds the parallelism of per-row transforms.
	Workers int `validate:"gte=0"`
}

// DefaultOptions returns the standard NYC configuration.
func DefaultOptions() Options {
	return Options{
		Timezone:       "America/New_York",
		BusinessFlags:  true,
		CyclicHour:     true,
		GeoDistances:   true,
		AngleUnit:      "deg",
		SphereRadiusKm: geo.EarthRadiusKm,
		HolidayScores:  true,
		HolidayState:   "NY",
		IncludeFare:    true,
		Workers:        4,
	}
}

var validate = validator.New()

// Pipeline assembles temporal, geographic, and holiday features into one
// frame. Fit builds the immutable holiday structures once; Transform is
// then safe to call repeatedly and concurrently.
type Pipeline struct {
	opts        Options
	loc         *time.Location
	deriver     *temporal.Deriver
	hourDeriver *temporal.Deriver
	estimator   *holiday.Estimator
	logger      *slog.Logger
}

// New validates the options and prepares a pipeline. The holiday score
// table is not built until Fit.
func New(opts Options, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("validate options: %w", err)
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}

	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", opts.Timezone, err)
	}

	deriver, err := temporal.NewDeriver(loc, opts.TemporalFeatures, logger)
	if err != nil {
		return nil, fmt.Errorf("configure temporal deriver: %w", err)
	}

	p := &Pipeline{
		opts:    opts,
		loc:     loc,
		deriver: deriver,
		logger:  logger,
	}

	// Cyclic and business columns feed off the hour, which the caller may
	// not have requested as an output column. A one-column deriver keeps
	// the projection contract intact.
	if opts.BusinessFlags || opts.CyclicHour {
		p.hourDeriver, err = temporal.NewDeriver(loc, []string{temporal.FeatureHour}, logger)
		if err != nil {
			return nil, fmt.Errorf("configure hour deriver: %w", err)
		}
	}

	return p, nil
}

// Fit builds the holiday proximity index over the span of the records and
// fits the score estimator against their fares.
func (p *Pipeline) Fit(ctx context.Context, records []dataset.Record) error {
	if !p.opts.HolidayScores {
		return nil
	}
	estimator, err := p.fitHoliday(ctx, records)
	if err != nil {
		return err
	}
	return estimator.Fit(dataset.PickupTimes(records), dataset.Fares(records))
}

func (p *Pipeline) fitHoliday(ctx context.Context, records []dataset.Record) (*holiday.Estimator, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to fit")
	}

	start := time.Now()
	min, max := timeSpan(records)

	// Pad the span to whole calendar years so that a fitted pipeline can
	// score later batches whose dates fall near, but outside, the fit
	// data's own range.
	fromYear := min.In(p.loc).Year()
	toYear := max.In(p.loc).Year()
	indexMin := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, p.loc)
	indexMax := time.Date(toYear, time.December, 31, 0, 0, 0, 0, p.loc)

	cal := p.opts.Calendar
	if cal == nil {
		cal = holiday.NewUSCalendar(p.opts.HolidayState, fromYear, toYear)
	}
	index := holiday.BuildIndex(indexMin, indexMax, cal, p.loc)
	estimator := holiday.NewEstimator(index, p.logger)
	p.estimator = estimator

	p.logger.InfoContext(ctx, "built holiday proximity index",
		slog.String("from", indexMin.Format("2006-01-02")),
		slog.String("to", indexMax.Format("2006-01-02")),
		slog.Int("days", index.Days()),
		slog.Duration("elapsed", time.Since(start)))
	return estimator, nil
}

// Transform derives the configured feature columns for the records.
func (p *Pipeline) Transform(ctx context.Context, records []dataset.Record) (*dataset.Frame, error) {
	return p.transform(ctx, records, false, nil)
}

// FitTransform fits the holiday estimator and transforms the same records
// in one pass, reusing the fit phase's index lookups.
func (p *Pipeline) FitTransform(ctx context.Context, records []dataset.Record) (*dataset.Frame, error) {
	var estimator *holiday.Estimator
	if p.opts.HolidayScores {
		var err error
		estimator, err = p.fitHoliday(ctx, records)
		if err != nil {
			return nil, err
		}
	}
	return p.transform(ctx, records, true, estimator)
}

func (p *Pipeline) transform(ctx context.Context, records []dataset.Record, fitting bool, estimator *holiday.Estimator) (*dataset.Frame, error) {
	start := time.Now()
	times := dataset.PickupTimes(records)

	frame, err := p.deriver.Transform(times)
	if err != nil {
		return nil, fmt.Errorf("temporal features: %w", err)
	}

	if p.hourDeriver != nil {
		hourFrame, err := p.hourDeriver.Transform(times)
		if err != nil {
			return nil, fmt.Errorf("hour column: %w", err)
		}
		hours, err := hourFrame.Column(temporal.FeatureHour)
		if err != nil {
			return nil, err
		}
		if p.opts.BusinessFlags {
			night, peak := temporal.BusinessFlags(hours)
			if err := frame.AddColumn("night_hour", night); err != nil {
				return nil, err
			}
			if err := frame.AddColumn("peak_hour", peak); err != nil {
				return nil, err
			}
		}
		if p.opts.CyclicHour {
			hourCos, hourSin, err := temporal.Cyclic(hours, 0, 24)
			if err != nil {
				return nil, fmt.Errorf("cyclic hour: %w", err)
			}
			if err := frame.AddColumn("hour_cos", hourCos); err != nil {
				return nil, err
			}
			if err := frame.AddColumn("hour_sin", hourSin); err != nil {
				return nil, err
			}
		}
	}

	if p.opts.GeoDistances {
		flying, l1, err := p.distances(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("geo distances: %w", err)
		}
		if err := frame.AddColumn(ColFlyingDistance, flying); err != nil {
			return nil, err
		}
		if err := frame.AddColumn(ColL1Distance, l1); err != nil {
			return nil, err
		}
	}

	if p.opts.HolidayScores {
		if estimator == nil {
			estimator = p.estimator
		}
		if estimator == nil {
			return nil, fmt.Errorf("holiday scores requested: %w", holiday.ErrNotFitted)
		}
		var scores *dataset.Frame
		if fitting {
			scores, err = estimator.FitTransform(times, dataset.Fares(records))
		} else {
			scores, err = estimator.Transform(times)
		}
		if err != nil {
			return nil, fmt.Errorf("holiday features: %w", err)
		}
		if err := frame.Join(scores); err != nil {
			return nil, err
		}
	}

	if p.opts.IncludeFare {
		if err := frame.AddColumn(ColFareAmount, dataset.Fares(records)); err != nil {
			return nil, err
		}
	}

	p.logger.InfoContext(ctx, "derived feature frame",
		slog.Int("records", len(records)),
		slog.Int("columns", len(frame.Columns())),
		slog.Duration("elapsed", time.Since(start)))
	return frame, nil
}

// distances computes flying and L1 distances for every record. Rows are
// independent, so the work is split into worker-sized chunks.
func (p *Pipeline) distances(ctx context.Context, records []dataset.Record) (flying, l1 []float64, err error) {
	n := len(records)
	flying = make([]float64, n)
	l1 = make([]float64, n)

	workers := p.opts.Workers
	if workers > n {
		workers = 1
	}
	chunk := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				rec := records[i]
				d, err := geo.FlyingDistance(rec.PickupLat, rec.PickupLon,
					rec.DropoffLat, rec.DropoffLon, p.opts.AngleUnit, p.opts.SphereRadiusKm)
				if err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
				flying[i] = d

				m, err := geo.L1Distance(rec.PickupLat, rec.PickupLon,
					rec.DropoffLat, rec.DropoffLon, p.opts.AngleUnit,
					p.opts.SphereRadiusKm, p.opts.PlaneRotation)
				if err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
				l1[i] = m
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return flying, l1, nil
}

// timeSpan returns the earliest and latest pickup times in the batch.
func timeSpan(records []dataset.Record) (min, max time.Time) {
	min = records[0].PickupTime
	max = records[0].PickupTime
	for _, rec := range records[1:] {
		if rec.PickupTime.Before(min) {
			min = rec.PickupTime
		}
		if rec.PickupTime.After(max) {
			max = rec.PickupTime
		}
	}
	return min, max
}
