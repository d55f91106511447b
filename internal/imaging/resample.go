package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/yigitozgenc/image-api/internal/domain"

	"golang.org/x/image/draw"
)

// LanczosRadius радиус ядра Lanczos (a = 3)
const LanczosRadius = 3

// Lanczos3 оконный sinc с радиусом 3. x/image/draw сам растягивает носитель при
// уменьшении и нормирует веса. Округление: 16-битный аккумулятор и старший байт.
var Lanczos3 = &draw.Kernel{
	Support: LanczosRadius,
	At:      lanczos,
}

func lanczos(t float64) float64 {
	if t < 0 {
		t = -t
	}
	if t == 0 {
		return 1
	}
	if t >= LanczosRadius {
		return 0
	}
	x := math.Pi * t
	return LanczosRadius * math.Sin(x) * math.Sin(x/LanczosRadius) / (x * x)
}

// Resample пересчитывает строку отсчётов в targetWidth точек, считая её изображением высотой 1.
func Resample(samples []uint8, targetWidth int) ([]uint8, error) {
	if targetWidth < 1 {
		return nil, fmt.Errorf("%w: target width must be at least 1, got %d", domain.ErrValidation, targetWidth)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: cannot resample empty sample array", domain.ErrValidation)
	}

	if targetWidth == len(samples) {
		out := make([]uint8, len(samples))
		copy(out, samples)
		return out, nil
	}

	src := &image.Gray{
		Pix:    samples,
		Stride: len(samples),
		Rect:   image.Rect(0, 0, len(samples), 1),
	}
	dst := image.NewGray(image.Rect(0, 0, targetWidth, 1))

	Lanczos3.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return dst.Pix, nil
}
