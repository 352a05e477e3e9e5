package temporal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nytf/internal/dataset"
)

func TestCyclic(t *testing.T) {
	t.Run("wraparound continuity", func(t *testing.T) {
		cosOut, sinOut, err := Cyclic([]float64{0, 24}, 0, 24)
		require.NoError(t, err)
		assert.InDelta(t, cosOut[0], cosOut[1], 1e-12)
		assert.InDelta(t, sinOut[0], sinOut[1], 1e-12)
		assert.InDelta(t, 1.0, cosOut[0], 1e-12)
		assert.InDelta(t, 0.0, sinOut[0], 1e-12)
	})

	t.Run("quarter points", func(t *testing.T) {
		cosOut, sinOut, err := Cyclic([]float64{6, 12, 18}, 0, 24)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, cosOut[0], 1e-12)
		assert.InDelta(t, 1.0, sinOut[0], 1e-12)
		assert.InDelta(t, -1.0, cosOut[1], 1e-12)
		assert.InDelta(t, 0.0, sinOut[1], 1e-12)
		assert.InDelta(t, 0.0, cosOut[2], 1e-12)
		assert.InDelta(t, -1.0, sinOut[2], 1e-12)
	})

	t.Run("out of range values wrap", func(t *testing.T) {
		inRange, inSin, err := Cyclic([]float64{1}, 0, 24)
		require.NoError(t, err)
		wrapped, wrappedSin, err := Cyclic([]float64{25}, 0, 24)
		require.NoError(t, err)
		assert.InDelta(t, inRange[0], wrapped[0], 1e-12)
		assert.InDelta(t, inSin[0], wrappedSin[0], 1e-12)
	})

	t.Run("points stay on the unit circle", func(t *testing.T) {
		cosOut, sinOut, err := Cyclic([]float64{0, 3.7, 11.2, 19.9, 23.99}, 0, 24)
		require.NoError(t, err)
		for i := range cosOut {
			norm := math.Hypot(cosOut[i], sinOut[i])
			assert.InDelta(t, 1.0, norm, 1e-12)
		}
	})

	t.Run("invalid range", func(t *testing.T) {
		_, _, err := Cyclic([]float64{1}, 24, 0)
		assert.ErrorIs(t, err, ErrInvalidRange)
		_, _, err = Cyclic([]float64{1}, 5, 5)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestEncodeCyclic(t *testing.T) {
	frame := dataset.NewFrame(3)
	require.NoError(t, frame.AddColumn("hour", []float64{0, 6, 12}))

	require.NoError(t, EncodeCyclic(frame, "hour", 0, 24))
	assert.Equal(t, []string{"hour", "hour_cos", "hour_sin"}, frame.Columns())

	cosCol, err := frame.Column("hour_cos")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cosCol[0], 1e-12)

	t.Run("missing column", func(t *testing.T) {
		err := EncodeCyclic(frame, "minute", 0, 60)
		assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
	})
}

func TestBusinessFlags(t *testing.T) {
	hours := []float64{0, 5, 6, 12, 16, 17, 19, 20, 21, 23}
	night, peak := BusinessFlags(hours)

	assert.Equal(t, []float64{1, 1, 0, 0, 0, 0, 0, 0, 1, 1}, night)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 1, 1, 0, 0, 0}, peak)
}
