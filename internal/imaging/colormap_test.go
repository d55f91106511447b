package imaging

import (
	"testing"

	"github.com/yigitozgenc/image-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColormapNames(t *testing.T) {
	assert.Equal(t, []string{
		"cool", "gray", "hot", "inferno", "jet", "magma", "plasma", "rainbow", "turbo", "viridis",
	}, ColormapNames())
	assert.True(t, IsColormap(domain.DefaultColormap))
	assert.False(t, IsColormap("parula"))
}

func TestApplyColormap_ShapeForAllColormaps(t *testing.T) {
	samples := make([]uint8, 256)
	for i := range samples {
		samples[i] = uint8(i)
	}

	for _, name := range ColormapNames() {
		t.Run(name, func(t *testing.T) {
			rgb, err := ApplyColormap(samples, name)
			require.NoError(t, err)
			assert.Len(t, rgb, len(samples))
			assert.Len(t, Flatten(rgb), len(samples)*3)
		})
	}
}

func TestApplyColormap_Gray(t *testing.T) {
	rgb, err := ApplyColormap([]uint8{0, 128, 255}, "gray")
	require.NoError(t, err)
	assert.Equal(t, []RGB{{0, 0, 0}, {128, 128, 128}, {255, 255, 255}}, rgb)
}

func TestApplyColormap_KnownEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		sample   uint8
		expected RGB
	}{
		{"cool", 0, RGB{0, 255, 255}},
		{"cool", 255, RGB{255, 0, 255}},
		{"hot", 255, RGB{255, 255, 255}},
		{"jet", 0, RGB{0, 0, 128}},
		{"jet", 255, RGB{128, 0, 0}},
		{"rainbow", 255, RGB{255, 0, 0}},
		{"viridis", 0, RGB{68, 1, 84}},
		{"viridis", 255, RGB{253, 231, 37}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rgb, err := ApplyColormap([]uint8{tt.sample}, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rgb[0])
		})
	}
}

// внутренние опорные точки: правка любой из них меняет эти значения
func TestApplyColormap_MidRange(t *testing.T) {
	tests := []struct {
		name     string
		sample   uint8
		expected RGB
	}{
		{"viridis", 64, RGB{59, 81, 138}},
		{"viridis", 128, RGB{33, 145, 140}},
		{"viridis", 192, RGB{96, 201, 96}},
		{"plasma", 128, RGB{204, 72, 119}},
		{"inferno", 128, RGB{188, 56, 84}},
		{"magma", 128, RGB{183, 55, 121}},
		{"turbo", 128, RGB{166, 252, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rgb, err := ApplyColormap([]uint8{tt.sample}, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rgb[0], "sample %d", tt.sample)
		})
	}
}

func TestApplyColormap_Empty(t *testing.T) {
	rgb, err := ApplyColormap(nil, "viridis")
	require.NoError(t, err)
	assert.Empty(t, rgb)
}

func TestApplyColormap_Unknown(t *testing.T) {
	_, err := ApplyColormap([]uint8{1}, "unknown")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestColormap_AtClampsOutOfRange(t *testing.T) {
	c, err := LookupColormap("gray")
	require.NoError(t, err)
	assert.Equal(t, c.At(0), c.At(-1))
	assert.Equal(t, c.At(1), c.At(2))
	assert.Equal(t, "gray", c.Name())
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, Flatten([]RGB{{1, 2, 3}, {4, 5, 6}}))
	assert.Empty(t, Flatten(nil))
}
