package imaging

import (
	"math"
	"math/rand"
	"testing"

	"github.com/yigitozgenc/image-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics(t *testing.T) {
	tests := []struct {
		name     string
		samples  []uint8
		expected domain.Statistics
	}{
		{"constant frame", repeat(128, 200), domain.Statistics{Min: 128, Max: 128, Mean: 128, Std: 0}},
		{"three values", []uint8{0, 128, 255}, domain.Statistics{Min: 0, Max: 255, Mean: 127.66666666666667, Std: 104.10358089689113}},
		{"single element", []uint8{42}, domain.Statistics{Min: 42, Max: 42, Mean: 42, Std: 0}},
		{"two values", []uint8{0, 2}, domain.Statistics{Min: 0, Max: 2, Mean: 1, Std: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := Statistics(tt.samples)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Min, stats.Min)
			assert.Equal(t, tt.expected.Max, stats.Max)
			assert.InDelta(t, tt.expected.Mean, stats.Mean, 1e-9)
			assert.InDelta(t, tt.expected.Std, stats.Std, 1e-9)
		})
	}
}

func TestStatistics_PopulationStd(t *testing.T) {
	// при делении на N-1 было бы sqrt(2) ≈ 1.414
	stats, err := Statistics([]uint8{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(2.0/3.0), stats.Std, 1e-12)
}

func TestStatistics_Empty(t *testing.T) {
	_, err := Statistics(nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStatistics_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		samples := make([]uint8, 1+rng.Intn(500))
		rng.Read(samples)

		stats, err := Statistics(samples)
		require.NoError(t, err)
		assert.True(t, 0 <= stats.Min && stats.Min <= stats.Mean+1e-9)
		assert.True(t, stats.Mean <= stats.Max+1e-9 && stats.Max <= 255)
		assert.GreaterOrEqual(t, stats.Std, 0.0)
	}
}

func repeat(v uint8, n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = v
	}
	return out
}
