package pipeline

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nytf/internal/dataset"
	"nytf/internal/temporal"
)

// julyFourthCalendar labels only Independence Day 2024.
type julyFourthCalendar struct{}

func (julyFourthCalendar) Lookup(t time.Time) (string, bool) {
	if t.Month() == time.July && t.Day() == 4 && t.Year() == 2024 {
		return "Independence Day", true
	}
	return "", false
}

func sampleRecords() []dataset.Record {
	return []dataset.Record{
		{
			PickupTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			PickupLat:  40.7580, PickupLon: -73.9855,
			DropoffLat: 40.6413, DropoffLon: -73.7781,
			FareAmount:     1.0,
			PassengerCount: 1,
		},
		{
			PickupTime: time.Date(2024, 7, 4, 16, 0, 0, 0, time.UTC),
			PickupLat:  40.7128, PickupLon: -74.0060,
			DropoffLat: 40.7580, DropoffLon: -73.9855,
			FareAmount:     5.0,
			PassengerCount: 2,
		},
	}
}

func scenarioOptions() Options {
	opts := DefaultOptions()
	opts.Timezone = "UTC"
	opts.TemporalFeatures = []string{temporal.FeatureHour, temporal.FeatureDayProgress}
	opts.Calendar = julyFourthCalendar{}
	opts.Workers = 2
	return opts
}

func TestPipelineFitTransformScenario(t *testing.T) {
	p, err := New(scenarioOptions(), nil)
	require.NoError(t, err)

	frame, err := p.FitTransform(context.Background(), sampleRecords())
	require.NoError(t, err)
	require.Equal(t, 2, frame.Len())

	hour, err := frame.Column(temporal.FeatureHour)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 16}, hour)

	dayProgress, err := frame.Column(temporal.FeatureDayProgress)
	require.NoError(t, err)
	assert.Equal(t, 0.0, dayProgress[0])
	assert.InDelta(t, 0.6667, dayProgress[1], 1e-4)

	score, err := frame.Column("holiday_score")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score[0], "ordinary day scores exactly 1")
	assert.Greater(t, score[1], 1.0, "holiday with above-average fares scores above 1")

	flying, err := frame.Column(ColFlyingDistance)
	require.NoError(t, err)
	l1, err := frame.Column(ColL1Distance)
	require.NoError(t, err)
	for i := range flying {
		assert.Greater(t, flying[i], 0.0)
		assert.GreaterOrEqual(t, l1[i], flying[i]-1e-9)
	}

	fares, err := frame.Column(ColFareAmount)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 5.0}, fares)
}

func TestPipelineTransformReusesFit(t *testing.T) {
	p, err := New(scenarioOptions(), nil)
	require.NoError(t, err)

	records := sampleRecords()
	require.NoError(t, p.Fit(context.Background(), records))

	frame, err := p.Transform(context.Background(), records[:1])
	require.NoError(t, err)

	score, err := frame.Column("holiday_score")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score[0])
}

func TestPipelineCyclicAndBusinessColumns(t *testing.T) {
	p, err := New(scenarioOptions(), nil)
	require.NoError(t, err)

	frame, err := p.FitTransform(context.Background(), sampleRecords())
	require.NoError(t, err)

	hourCos, err := frame.Column("hour_cos")
	require.NoError(t, err)
	hourSin, err := frame.Column("hour_sin")
	require.NoError(t, err)
	// Midnight sits at angle zero on the clock circle.
	assert.InDelta(t, 1.0, hourCos[0], 1e-12)
	assert.InDelta(t, 0.0, hourSin[0], 1e-12)

	night, err := frame.Column("night_hour")
	require.NoError(t, err)
	peak, err := frame.Column("peak_hour")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, night, "midnight is a night hour")
	assert.Equal(t, []float64{0, 0}, peak, "16:00 is on the peak boundary, not inside it")
}

func TestPipelineOptionValidation(t *testing.T) {
	t.Run("missing timezone", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Timezone = ""
		_, err := New(opts, nil)
		assert.Error(t, err)
	})

	t.Run("bad timezone name", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Timezone = "Mars/Olympus_Mons"
		_, err := New(opts, nil)
		assert.Error(t, err)
	})

	t.Run("unknown temporal feature", func(t *testing.T) {
		opts := scenarioOptions()
		opts.TemporalFeatures = []string{"sidereal_time"}
		_, err := New(opts, nil)
		assert.ErrorIs(t, err, temporal.ErrUnknownFeature)
	})

	t.Run("non-positive sphere radius", func(t *testing.T) {
		opts := DefaultOptions()
		opts.SphereRadiusKm = 0
		_, err := New(opts, nil)
		assert.Error(t, err)
	})
}

func TestPipelineTransformWithoutFit(t *testing.T) {
	p, err := New(scenarioOptions(), nil)
	require.NoError(t, err)

	_, err = p.Transform(context.Background(), sampleRecords())
	assert.Error(t, err)
}

func TestPipelineTransformPastFitSpan(t *testing.T) {
	p, err := New(scenarioOptions(), nil)
	require.NoError(t, err)

	records := sampleRecords()
	require.NoError(t, p.Fit(context.Background(), records))

	// The fit data ends on July 4 but the index covers the whole calendar
	// year, so later dates in the same year still resolve.
	later := records[:1]
	later[0].PickupTime = time.Date(2024, 7, 5, 9, 0, 0, 0, time.UTC)

	frame, err := p.Transform(context.Background(), later)
	require.NoError(t, err)

	score, err := frame.Column("holiday_score")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score[0])

	prevSec, err := frame.Column("prev_holiday_seconds")
	require.NoError(t, err)
	require.False(t, math.IsNaN(prevSec[0]))
	assert.Greater(t, prevSec[0], 0.0)

	// A date beyond the indexed years degrades to missing values instead
	// of failing the batch.
	later[0].PickupTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	frame, err = p.Transform(context.Background(), later)
	require.NoError(t, err)

	score, err = frame.Column("holiday_score")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(score[0]))
}

func TestPipelineHolidayColumnsCarryDistances(t *testing.T) {
	p, err := New(scenarioOptions(), nil)
	require.NoError(t, err)

	frame, err := p.FitTransform(context.Background(), sampleRecords())
	require.NoError(t, err)

	// January 1 precedes the only holiday in span: no previous pointer.
	prevSec, err := frame.Column("prev_holiday_seconds")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(prevSec[0]))

	nextSec, err := frame.Column("next_holiday_seconds")
	require.NoError(t, err)
	assert.False(t, math.IsNaN(nextSec[0]))
	assert.Greater(t, nextSec[0], 0.0)
}
