package utils

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"

	ic "github.com/setanarut/imagecompletion"
)

type GrayMethod int

const (
	// GrayLuminosity weights 8-bit sRGB channels 0.21, 0.72, 0.07.
	GrayLuminosity GrayMethod = iota
	// GrayLuminance takes the relative luminance of linear RGB and
	// re-encodes it as sRGB.
	GrayLuminance
)

func (m GrayMethod) String() string {
	switch m {
	case GrayLuminance:
		return "luminance"
	default:
		return "luminosity"
	}
}

func ParseGrayMethod(s string) (GrayMethod, error) {
	switch s {
	case "luminosity", "":
		return GrayLuminosity, nil
	case "luminance":
		return GrayLuminance, nil
	}
	return 0, fmt.Errorf("unknown grayscale method %q", s)
}

// Grayscale converts img to a height×width matrix of intensities in [0,1].
// Alpha is ignored.
func Grayscale(img image.Image, method GrayMethod) *mat.Dense {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(h, w, nil)
	for y := range h {
		for x := range w {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r8, g8, b8 := float64(r>>8), float64(g>>8), float64(bl>>8)
			var v float64
			switch method {
			case GrayLuminance:
				c := colorful.Color{R: r8 / 255, G: g8 / 255, B: b8 / 255}
				lr, lg, lb := c.LinearRgb()
				lum := 0.2126*lr + 0.7152*lg + 0.0722*lb
				v = colorful.LinearRgb(lum, lum, lum).R
			default:
				v = (0.21*r8 + 0.72*g8 + 0.07*b8) / 255
			}
			m.Set(y, x, min(1, max(0, v)))
		}
	}
	return m
}

func intensity(v float64) uint8 {
	return uint8(max(0, min(255, 255*v)))
}

// MatrixToGray draws m as a grayscale image, clamping entries to [0,1].
func MatrixToGray(m mat.Matrix) *image.Gray {
	r, c := m.Dims()
	img := image.NewGray(image.Rect(0, 0, c, r))
	for y := range r {
		for x := range c {
			img.SetGray(x, y, color.Gray{Y: intensity(m.At(y, x))})
		}
	}
	return img
}

// CorruptedImage draws only the observed entries; everything else is black.
func CorruptedImage(rows, cols int, observed []ic.Observation) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for _, o := range observed {
		img.SetGray(o.Col, o.Row, color.Gray{Y: intensity(o.Value)})
	}
	return img
}
