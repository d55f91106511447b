package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDepthGenerator_Generate(t *testing.T) {
	generator := NewDepthGenerator(decimal.RequireFromString("9000.00"), decimal.RequireFromString("0.1"))

	expected := []string{"9000.00", "9000.10", "9000.20", "9000.30"}
	for _, want := range expected {
		assert.Equal(t, want, generator.Generate().StringFixed(2))
	}
}

func TestDepthGenerator_Monotonic(t *testing.T) {
	generator := DefaultDepthGenerator()

	prev := generator.Generate()
	for i := 0; i < 100; i++ {
		next := generator.Generate()
		assert.True(t, next.GreaterThan(prev))
		prev = next
	}
}

func TestGenerateRandomSamples(t *testing.T) {
	for size := 0; size <= 300; size += 50 {
		assert.Len(t, GenerateRandomSamples(size), size)
	}
}

func TestGenerateBandedSamples(t *testing.T) {
	for _, size := range []int{1, 10, 200} {
		assert.Len(t, GenerateBandedSamples(size, 5), size)
	}
	assert.Empty(t, GenerateBandedSamples(0, 5))
}

func TestNewUUID(t *testing.T) {
	uuid := NewUUID()
	assert.NotEmpty(t, uuid.String())
	assert.True(t, IsValidUUID(uuid.String()))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(""))
}
