package temporal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nytf/internal/dataset"
)

// Feature names understood by the Deriver.
const (
	FeatureTimestamp     = "timestamp"
	FeatureMinute        = "minute"
	FeatureHour          = "hour"
	FeatureDay           = "day"
	FeatureMonth         = "month"
	FeatureYear          = "year"
	FeatureDayOfWeek     = "dayofweek"
	FeatureDayOfYear     = "dayofyear"
	FeatureDaysInMonth   = "days_in_month"
	FeatureIsLeapYear    = "is_leap_year"
	FeatureDayProgress   = "day_progress"
	FeatureWeekProgress  = "week_progress"
	FeatureMonthProgress = "month_progress"
	FeatureYearProgress  = "year_progress"
)

// ErrUnknownFeature is returned when a requested feature name is not in
// the implemented set.
var ErrUnknownFeature = errors.New("unknown temporal feature")

// prerequisites maps each derived feature to the raw fields it needs.
// Requesting a progress ratio pulls in its inputs even when the caller did
// not ask for them; only the requested columns are projected at the end.
var prerequisites = map[string][]string{
	FeatureDayProgress:   {FeatureHour, FeatureMinute},
	FeatureWeekProgress:  {FeatureDayProgress, FeatureDayOfWeek},
	FeatureMonthProgress: {FeatureDayProgress, FeatureDay, FeatureDaysInMonth},
	FeatureYearProgress:  {FeatureDayProgress, FeatureDayOfYear, FeatureIsLeapYear},
}

// ImplementedFeatures returns every feature name the Deriver can compute,
// in the canonical output order.
func ImplementedFeatures() []string {
	return []string{
		FeatureTimestamp, FeatureMinute, FeatureHour, FeatureDay,
		FeatureMonth, FeatureYear, FeatureDayOfWeek, FeatureDayOfYear,
		FeatureDaysInMonth, FeatureIsLeapYear, FeatureDayProgress,
		FeatureWeekProgress, FeatureMonthProgress, FeatureYearProgress,
	}
}

// Deriver computes calendar features from timezone-aware timestamps.
// Calendar fields come out in the configured location; the epoch timestamp
// is taken on the instant itself and is location-independent.
type Deriver struct {
	loc       *time.Location
	requested []string
	compute   map[string]bool
	logger    *slog.Logger
}

// NewDeriver creates a deriver for the given local timezone and feature
// set. An empty feature list requests every implemented feature. Unknown
// names fail with ErrUnknownFeature.
func NewDeriver(loc *time.Location, features []string, logger *slog.Logger) (*Deriver, error) {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(features) == 0 {
		features = ImplementedFeatures()
	}

	implemented := make(map[string]bool, len(ImplementedFeatures()))
	for _, name := range ImplementedFeatures() {
		implemented[name] = true
	}

	var unknown []string
	for _, name := range features {
		if !implemented[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, strings.Join(unknown, ", "))
	}

	// Resolve prerequisites transitively. The map is shallow enough that a
	// single pass per requested feature settles it.
	compute := make(map[string]bool, len(features))
	var mark func(name string)
	mark = func(name string) {
		if compute[name] {
			return
		}
		compute[name] = true
		for _, dep := range prerequisites[name] {
			mark(dep)
		}
	}
	for _, name := range features {
		mark(name)
	}

	requested := make([]string, len(features))
	copy(requested, features)

	return &Deriver{
		loc:       loc,
		requested: requested,
		compute:   compute,
		logger:    logger,
	}, nil
}

// FeatureNames returns the requested output columns in caller order.
func (d *Deriver) FeatureNames() []string {
	out := make([]string, len(d.requested))
	copy(out, d.requested)
	return out
}

// Transform derives the configured features for each timestamp and returns
// them as a frame with one row per input, columns in requested order.
func (d *Deriver) Transform(times []time.Time) (*dataset.Frame, error) {
	n := len(times)
	cols := make(map[string][]float64, len(d.compute))
	for name := range d.compute {
		cols[name] = make([]float64, n)
	}

	for i, t := range times {
		local := t.In(d.loc)

		if d.compute[FeatureTimestamp] {
			cols[FeatureTimestamp][i] = float64(t.Unix())
		}
		if d.compute[FeatureMinute] {
			cols[FeatureMinute][i] = float64(local.Minute())
		}
		if d.compute[FeatureHour] {
			cols[FeatureHour][i] = float64(local.Hour())
		}
		if d.compute[FeatureDay] {
			cols[FeatureDay][i] = float64(local.Day())
		}
		if d.compute[FeatureMonth] {
			cols[FeatureMonth][i] = float64(local.Month())
		}
		if d.compute[FeatureYear] {
			cols[FeatureYear][i] = float64(local.Year())
		}
		if d.compute[FeatureDayOfWeek] {
			cols[FeatureDayOfWeek][i] = float64(mondayIndexed(local.Weekday()))
		}
		if d.compute[FeatureDayOfYear] {
			cols[FeatureDayOfYear][i] = float64(local.YearDay())
		}
		if d.compute[FeatureDaysInMonth] {
			cols[FeatureDaysInMonth][i] = float64(daysInMonth(local.Year(), local.Month()))
		}
		if d.compute[FeatureIsLeapYear] {
			if isLeapYear(local.Year()) {
				cols[FeatureIsLeapYear][i] = 1
			}
		}
		if d.compute[FeatureDayProgress] {
			dayProgress := (float64(local.Hour()) + float64(local.Minute())/60) / 24
			cols[FeatureDayProgress][i] = dayProgress

			if d.compute[FeatureWeekProgress] {
				cols[FeatureWeekProgress][i] = (float64(mondayIndexed(local.Weekday())) + dayProgress) / 7
			}
			if d.compute[FeatureMonthProgress] {
				cols[FeatureMonthProgress][i] = (float64(local.Day()) - 1 + dayProgress) /
					float64(daysInMonth(local.Year(), local.Month()))
			}
			if d.compute[FeatureYearProgress] {
				denom := 365.0
				if isLeapYear(local.Year()) {
					denom = 366
				}
				cols[FeatureYearProgress][i] = (float64(local.YearDay()) - 1 + dayProgress) / denom
			}
		}
	}

	frame := dataset.NewFrame(n)
	for _, name := range d.requested {
		if err := frame.AddColumn(name, cols[name]); err != nil {
			return nil, fmt.Errorf("assemble %s: %w", name, err)
		}
	}
	return frame, nil
}

// mondayIndexed converts Go's Sunday-indexed weekday to Monday=0..Sunday=6,
// matching the progress-ratio formulas.
func mondayIndexed(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
