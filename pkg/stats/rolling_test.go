package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscriber-drivers/pkg/models"
)

func TestRollingSum(t *testing.T) {
	got := RollingSum([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, got, 5)
	assert.False(t, got[0].Valid)
	assert.False(t, got[1].Valid)
	assert.Equal(t, models.Some(6), got[2])
	assert.Equal(t, models.Some(9), got[3])
	assert.Equal(t, models.Some(12), got[4])
}

func TestRollingSum_WindowLargerThanSeries(t *testing.T) {
	for _, v := range RollingSum([]float64{1, 2}, 4) {
		assert.False(t, v.Valid)
	}
}

func TestRollingMean(t *testing.T) {
	got := RollingMean([]float64{0.1, 0.1, 0.3, 0.3}, 2)
	assert.False(t, got[0].Valid)
	assert.InDelta(t, 0.1, got[1].Float64, 1e-12)
	assert.InDelta(t, 0.2, got[2].Float64, 1e-12)
	assert.InDelta(t, 0.3, got[3].Float64, 1e-12)
}

func TestRollingCorr_ScalarMultiple(t *testing.T) {
	y := []float64{100, 105, 110, 108, 112, 115, 120, 118}
	x := make([]float64, len(y))
	for i := range y {
		x[i] = 0.2 * y[i]
	}
	got := RollingCorr(x, y, 4)
	for i := 0; i < 3; i++ {
		assert.False(t, got[i].Valid, "position %d", i)
	}
	for i := 3; i < len(y); i++ {
		require.True(t, got[i].Valid, "position %d", i)
		assert.InDelta(t, 1.0, got[i].Float64, 1e-9)
	}
}

func TestRollingCorr_Inverse(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{8, 6, 4, 2}
	got := RollingCorr(x, y, 4)
	assert.InDelta(t, -1.0, got[3].Float64, 1e-12)
}

func TestRollingCorr_FlatShareAfterVariedHistory(t *testing.T) {
	share := []float64{0.05, 0.3, 0.7}
	for i := 0; i < 11; i++ {
		share = append(share, 0.1)
	}
	means := RollingMean(share, 4)

	smoothed := make([]float64, 0, len(means))
	adds := make([]float64, 0, len(means))
	for i, m := range means {
		if !m.Valid {
			continue
		}
		smoothed = append(smoothed, m.Float64)
		adds = append(adds, float64(100+10*i))
	}
	for i := 4; i < len(smoothed); i++ {
		assert.Equal(t, smoothed[3], smoothed[i], "flat window %d", i)
	}

	got := RollingCorr(smoothed, adds, 6)
	last := got[len(got)-1]
	assert.False(t, last.Valid, "flat share window should have no correlation, got %v", last.Float64)
	assert.True(t, got[5].Valid, "window covering the varied history should be defined")
}

func TestPearson_ConstantIsUndefined(t *testing.T) {
	assert.False(t, Pearson([]float64{3, 3, 3}, []float64{1, 2, 3}).Valid)
	assert.False(t, Pearson([]float64{1}, []float64{1}).Valid)
	assert.False(t, Pearson([]float64{1, 2}, []float64{1}).Valid)
}

func TestPearson_Partial(t *testing.T) {
	got := Pearson([]float64{1, 2, 3, 4}, []float64{2, 1, 4, 3})
	require.True(t, got.Valid)
	assert.InDelta(t, 0.6, got.Float64, 1e-12)
}

func TestMeanOf(t *testing.T) {
	assert.Equal(t, models.Some(2.5), MeanOf([]float64{1, 2, 3, 4}))
	assert.False(t, MeanOf(nil).Valid)
}

func TestMean_SkipsNulls(t *testing.T) {
	got := Mean([]models.NullFloat{models.Null(), models.Some(1), models.Some(3)})
	assert.Equal(t, models.Some(2), got)
	assert.False(t, Mean([]models.NullFloat{models.Null()}).Valid)
	assert.False(t, Mean(nil).Valid)
}

func TestSafeDiv(t *testing.T) {
	assert.False(t, SafeDiv(5, 0).Valid)
	assert.Equal(t, models.Some(0.5), SafeDiv(1, 2))
}

func TestTail(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{4, 5}, Tail(s, 2))
	assert.Equal(t, s, Tail(s, 10))
	assert.Empty(t, Tail(s, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.3, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.7, 0, 1))
	assert.Equal(t, 0.4, Clamp(0.4, 0, 1))
}
