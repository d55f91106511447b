package imaging

import (
	"fmt"
	"sort"

	"github.com/yigitozgenc/image-api/internal/domain"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB один пиксель без альфа-канала
type RGB struct {
	R, G, B uint8
}

type colorStop struct {
	pos   float64
	color colorful.Color
}

// Colormap кусочно-линейная палитра, заданная опорными точками на [0, 1].
// Таблица на 256 значений строится один раз при регистрации.
type Colormap struct {
	name  string
	stops []colorStop
	lut   [256]RGB
}

func newColormap(name string, stops ...colorStop) *Colormap {
	c := &Colormap{name: name, stops: stops}
	for i := range c.lut {
		r, g, b := c.At(float64(i) / 255).RGB255()
		c.lut[i] = RGB{R: r, G: g, B: b}
	}
	return c
}

func (c *Colormap) Name() string {
	return c.name
}

// At значение палитры в точке v; v вне [0, 1] прижимается к краям.
func (c *Colormap) At(v float64) colorful.Color {
	if v <= c.stops[0].pos {
		return c.stops[0].color
	}
	last := c.stops[len(c.stops)-1]
	if v >= last.pos {
		return last.color
	}

	i := sort.Search(len(c.stops), func(i int) bool { return c.stops[i].pos >= v })
	lo, hi := c.stops[i-1], c.stops[i]
	t := (v - lo.pos) / (hi.pos - lo.pos)
	return lo.color.BlendRgb(hi.color, t).Clamped()
}

// Apply переводит каждый отсчёт (нормированный делением на 255) в цвет палитры
func (c *Colormap) Apply(samples []uint8) []RGB {
	out := make([]RGB, len(samples))
	for i, v := range samples {
		out[i] = c.lut[v]
	}
	return out
}

// LookupColormap возвращает палитру по имени из реестра
func LookupColormap(name string) (*Colormap, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown colormap %q", domain.ErrValidation, name)
	}
	return c, nil
}

func IsColormap(name string) bool {
	_, ok := registry[name]
	return ok
}

// ColormapNames отсортированный список зарегистрированных палитр
func ColormapNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ApplyColormap(samples []uint8, name string) ([]RGB, error) {
	c, err := LookupColormap(name)
	if err != nil {
		return nil, err
	}
	return c.Apply(samples), nil
}

// Flatten раскладывает пиксели в плоский массив R,G,B,R,G,B,...
func Flatten(pixels []RGB) []byte {
	out := make([]byte, 0, len(pixels)*3)
	for _, p := range pixels {
		out = append(out, p.R, p.G, p.B)
	}
	return out
}
