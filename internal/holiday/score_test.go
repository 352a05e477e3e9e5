package holiday

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func independenceIndex(t *testing.T) *Index {
	t.Helper()
	cal := stubCalendar{"2024-07-04": "Independence Day"}
	return BuildIndex(day(2024, time.January, 1), day(2024, time.December, 31), cal, time.UTC)
}

func TestEstimatorFit(t *testing.T) {
	ix := independenceIndex(t)

	t.Run("normal days score exactly one", func(t *testing.T) {
		est := NewEstimator(ix, nil)
		dates := []time.Time{
			day(2024, time.March, 1),
			day(2024, time.March, 2),
			time.Date(2024, time.July, 4, 16, 0, 0, 0, time.UTC),
		}
		require.NoError(t, est.Fit(dates, []float64{2, 4, 9}))

		table := est.Table()
		assert.Equal(t, 1.0, table[NormalLabel])
		assert.InDelta(t, 3.0, table["Independence Day"], 1e-12) // 9 / mean(2,4)
	})

	t.Run("no normal days", func(t *testing.T) {
		est := NewEstimator(ix, nil)
		err := est.Fit(
			[]time.Time{day(2024, time.July, 4)},
			[]float64{5},
		)
		assert.ErrorIs(t, err, ErrNoNormalDays)
	})

	t.Run("length mismatch", func(t *testing.T) {
		est := NewEstimator(ix, nil)
		err := est.Fit([]time.Time{day(2024, time.March, 1)}, []float64{1, 2})
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("dates outside span are excluded", func(t *testing.T) {
		est := NewEstimator(ix, nil)
		dates := []time.Time{
			day(2024, time.March, 1),
			day(2031, time.March, 1),
		}
		require.NoError(t, est.Fit(dates, []float64{2, 100}))

		table := est.Table()
		assert.Equal(t, 1.0, table[NormalLabel])
		assert.Len(t, table, 1)
	})
}

func TestEstimatorTransform(t *testing.T) {
	ix := independenceIndex(t)
	est := NewEstimator(ix, nil)

	fitDates := []time.Time{
		day(2024, time.March, 1),
		day(2024, time.March, 2),
		time.Date(2024, time.July, 4, 16, 0, 0, 0, time.UTC),
	}
	require.NoError(t, est.Fit(fitDates, []float64{2, 4, 9}))

	t.Run("own label score", func(t *testing.T) {
		frame, err := est.Transform([]time.Time{
			day(2024, time.March, 1),
			day(2024, time.July, 4),
		})
		require.NoError(t, err)

		score, err := frame.Column(ColScore)
		require.NoError(t, err)
		assert.Equal(t, 1.0, score[0])
		assert.InDelta(t, 3.0, score[1], 1e-12)
	})

	t.Run("noon adjusted distances", func(t *testing.T) {
		at := time.Date(2024, time.July, 10, 12, 0, 0, 0, time.UTC)
		frame, err := est.Transform([]time.Time{at})
		require.NoError(t, err)

		prevSec, err := frame.Column(ColPrevSeconds)
		require.NoError(t, err)
		// Noon July 10 minus noon July 4 is exactly six days.
		assert.Equal(t, 6*24*3600.0, prevSec[0])

		prevScore, err := frame.Column(ColPrevScore)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, prevScore[0], 1e-12)
	})

	t.Run("edges propagate missing values", func(t *testing.T) {
		// Every day in this span precedes the only holiday, so the
		// previous pointer is undefined; past it, the next one is.
		frame, err := est.Transform([]time.Time{
			day(2024, time.January, 15),
			day(2024, time.November, 1),
		})
		require.NoError(t, err)

		prevSec, err := frame.Column(ColPrevSeconds)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(prevSec[0]))

		nextSec, err := frame.Column(ColNextSeconds)
		require.NoError(t, err)
		assert.False(t, math.IsNaN(nextSec[0]))
		assert.True(t, math.IsNaN(nextSec[1]))
	})

	t.Run("unseen label scores are missing", func(t *testing.T) {
		// An index with a second holiday the fit data never covered.
		cal := stubCalendar{
			"2024-07-04": "Independence Day",
			"2024-11-28": "Thanksgiving",
		}
		wideIx := BuildIndex(day(2024, time.January, 1), day(2024, time.December, 31), cal, time.UTC)
		wideEst := NewEstimator(wideIx, nil)
		require.NoError(t, wideEst.Fit(fitDates, []float64{2, 4, 9}))

		frame, err := wideEst.Transform([]time.Time{day(2024, time.November, 28)})
		require.NoError(t, err)

		score, err := frame.Column(ColScore)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(score[0]))
	})

	t.Run("dates outside span are missing values", func(t *testing.T) {
		frame, err := est.Transform([]time.Time{
			day(2025, time.January, 1),
			day(2024, time.March, 1),
		})
		require.NoError(t, err)

		for _, name := range []string{ColScore, ColPrevSeconds, ColPrevScore, ColNextSeconds, ColNextScore} {
			col, err := frame.Column(name)
			require.NoError(t, err)
			assert.True(t, math.IsNaN(col[0]), name)
		}
		score, err := frame.Column(ColScore)
		require.NoError(t, err)
		assert.Equal(t, 1.0, score[1])
	})

	t.Run("transform before fit", func(t *testing.T) {
		unfitted := NewEstimator(ix, nil)
		_, err := unfitted.Transform([]time.Time{day(2024, time.March, 1)})
		assert.ErrorIs(t, err, ErrNotFitted)
	})
}

func TestEstimatorFitTransform(t *testing.T) {
	ix := independenceIndex(t)

	dates := []time.Time{
		day(2024, time.March, 1),
		day(2024, time.March, 2),
		time.Date(2024, time.July, 4, 16, 0, 0, 0, time.UTC),
	}
	interest := []float64{2, 4, 9}

	combined := NewEstimator(ix, nil)
	combinedFrame, err := combined.FitTransform(dates, interest)
	require.NoError(t, err)

	separate := NewEstimator(ix, nil)
	require.NoError(t, separate.Fit(dates, interest))
	separateFrame, err := separate.Transform(dates)
	require.NoError(t, err)

	assert.Equal(t, separateFrame.Columns(), combinedFrame.Columns())
	for _, name := range separateFrame.Columns() {
		want, err := separateFrame.Column(name)
		require.NoError(t, err)
		got, err := combinedFrame.Column(name)
		require.NoError(t, err)
		for i := range want {
			if math.IsNaN(want[i]) {
				assert.True(t, math.IsNaN(got[i]), "%s row %d", name, i)
				continue
			}
			assert.Equal(t, want[i], got[i], "%s row %d", name, i)
		}
	}
}
