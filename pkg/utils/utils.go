package utils

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func NewUUID() uuid.UUID {
	return uuid.New()
}

func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// GenerateRandomSamples генерит рандомные отсчёты 0..255
func GenerateRandomSamples(size int) []uint8 {
	samples := make([]uint8, size)
	for i := 0; i < size; i++ {
		samples[i] = uint8(rand.Intn(256))
	}
	return samples
}

// GenerateBandedSamples плавный градиент со случайным сдвигом и шумом ±noise, ближе к реальным кадрам, чем чистый шум
func GenerateBandedSamples(size, noise int) []uint8 {
	samples := make([]uint8, size)
	base := rand.Intn(256)
	for i := 0; i < size; i++ {
		value := base + i*256/size
		if noise > 0 {
			value += rand.Intn(2*noise+1) - noise
		}
		samples[i] = uint8(((value % 256) + 256) % 256)
	}
	return samples
}

// DepthGenerator монотонно растущие глубины с фиксированным шагом
type DepthGenerator struct {
	next decimal.Decimal
	step decimal.Decimal
}

func NewDepthGenerator(start, step decimal.Decimal) *DepthGenerator {
	return &DepthGenerator{
		next: start,
		step: step,
	}
}

func (g *DepthGenerator) Generate() decimal.Decimal {
	depth := g.next.Round(2)
	g.next = g.next.Add(g.step)
	return depth
}

var (
	DefaultStartDepth = decimal.NewFromInt(9000)
	DefaultDepthStep  = decimal.New(1, -1)
)

// DefaultDepthGenerator глубины с 9000.00 шагом 0.10
func DefaultDepthGenerator() *DepthGenerator {
	return NewDepthGenerator(DefaultStartDepth, DefaultDepthStep)
}
