package utils

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
)

// Gradient maps intensities in [0,1] onto evenly spaced color stops,
// blending neighbours in Lab.
type Gradient struct {
	stops []colorful.Color
}

// NewGradient builds a gradient from palette, darkest color first. A single
// color becomes a ramp from black. An empty palette yields plain gray.
func NewGradient(palette []colorful.Color) Gradient {
	stops := append([]colorful.Color(nil), palette...)
	SortPaletteByBrightness(stops)
	switch len(stops) {
	case 0:
		stops = []colorful.Color{{}, {R: 1, G: 1, B: 1}}
	case 1:
		stops = append([]colorful.Color{{}}, stops[0])
	}
	return Gradient{stops: stops}
}

func (g Gradient) At(t float64) colorful.Color {
	if math.IsNaN(t) {
		t = 0
	}
	t = min(1, max(0, t))
	seg := float64(len(g.stops) - 1)
	i := int(t * seg)
	if i >= len(g.stops)-1 {
		return g.stops[len(g.stops)-1]
	}
	return g.stops[i].BlendLab(g.stops[i+1], t*seg-float64(i)).Clamped()
}

// Colorize draws m through the gradient.
func Colorize(m mat.Matrix, g Gradient) *image.RGBA {
	r, c := m.Dims()
	img := image.NewRGBA(image.Rect(0, 0, c, r))
	for y := range r {
		for x := range c {
			cr, cg, cb := g.At(m.At(y, x)).RGB255()
			img.SetRGBA(x, y, color.RGBA{R: cr, G: cg, B: cb, A: 255})
		}
	}
	return img
}
