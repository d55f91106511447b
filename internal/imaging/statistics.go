package imaging

import (
	"fmt"
	"math"

	"github.com/yigitozgenc/image-api/internal/domain"
)

// Statistics считает min, max, среднее и стандартное отклонение по всей выборке.
// Отклонение популяционное (делим на N, а не на N-1).
func Statistics(samples []uint8) (domain.Statistics, error) {
	if len(samples) == 0 {
		return domain.Statistics{}, fmt.Errorf("%w: statistics of empty sample array", domain.ErrValidation)
	}

	minValue, maxValue := samples[0], samples[0]
	var sum uint64
	for _, v := range samples {
		if v < minValue {
			minValue = v
		}
		if v > maxValue {
			maxValue = v
		}
		sum += uint64(v)
	}

	n := float64(len(samples))
	mean := float64(sum) / n

	var sq float64
	for _, v := range samples {
		d := float64(v) - mean
		sq += d * d
	}

	return domain.Statistics{
		Min:  float64(minValue),
		Max:  float64(maxValue),
		Mean: mean,
		Std:  math.Sqrt(sq / n),
	}, nil
}
