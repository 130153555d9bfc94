package utils

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

type PaletteMethod int

const (
	PaletteMethodDominantColor PaletteMethod = iota
	PaletteMethodKMeans
)

func (m PaletteMethod) String() string {
	switch m {
	case PaletteMethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

func ParsePaletteMethod(s string) (PaletteMethod, error) {
	switch s {
	case "dominantcolor", "":
		return PaletteMethodDominantColor, nil
	case "kmeans":
		return PaletteMethodKMeans, nil
	}
	return 0, fmt.Errorf("unknown palette method %q", s)
}

type swatch struct {
	col    colorful.Color
	weight float64
}

// brightness is the relative luminance of c in linear RGB.
func brightness(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// SortPaletteByBrightness orders colors from darkest to brightest, so the
// palette can be read as a tone ramp for Colorize.
func SortPaletteByBrightness(palette []colorful.Color) {
	slices.SortStableFunc(palette, func(a, b colorful.Color) int {
		ya, yb := brightness(a), brightness(b)
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
}

// ExtractPalette returns up to k representative colors of img.
// kmeans falls back to dominantcolor when clustering yields nothing.
func ExtractPalette(img image.Image, k int, method PaletteMethod) ([]colorful.Color, error) {
	if k <= 0 {
		return nil, nil
	}
	if method == PaletteMethodKMeans {
		sw, err := kmeansSwatches(img, k)
		if err != nil {
			return nil, err
		}
		if len(sw) > 0 {
			return spreadSwatches(sw, k), nil
		}
	}
	return spreadSwatches(dominantSwatches(img, k), k), nil
}

func dominantSwatches(img image.Image, k int) []swatch {
	found := dominantcolor.FindWeight(img, max(24, k*8))
	if len(found) == 0 {
		return []swatch{{col: colorful.Color{R: 0.5, G: 0.5, B: 0.5}, weight: 1}}
	}
	out := make([]swatch, 0, len(found))
	for _, f := range found {
		col, _ := colorful.MakeColor(f.RGBA)
		out = append(out, swatch{col: col.Clamped(), weight: max(f.Weight, 1e-6)})
	}
	return out
}

func kmeansSwatches(img image.Image, k int) ([]swatch, error) {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return nil, nil
	}
	// Subsample so clustering stays cheap on big inputs.
	const maxSamples = 12000
	step := 1
	if n > maxSamples {
		step = int(math.Sqrt(float64(n)/maxSamples)) + 1
	}

	var data clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			data = append(data, clusters.Coordinates{
				float64(r) / 0xffff, float64(g) / 0xffff, float64(bl) / 0xffff,
			})
		}
	}
	if len(data) == 0 {
		return nil, nil
	}

	cc, err := kmeans.New().Partition(data, min(k*4, len(data)))
	if err != nil {
		return nil, fmt.Errorf("kmeans palette: %w", err)
	}
	out := make([]swatch, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		out = append(out, swatch{col: col, weight: float64(len(c.Observations))})
	}
	return out, nil
}

// spreadSwatches greedily picks k swatches: the heaviest first, then each
// time the one farthest in Lab from those already picked, scaled by weight.
func spreadSwatches(sw []swatch, k int) []colorful.Color {
	k = min(k, len(sw))
	maxW := 0.0
	for _, s := range sw {
		maxW = max(maxW, s.weight)
	}

	picked := make([]colorful.Color, 0, k)
	used := make([]bool, len(sw))
	first := 0
	for i := range sw {
		if sw[i].weight > sw[first].weight {
			first = i
		}
	}
	picked = append(picked, sw[first].col)
	used[first] = true

	for len(picked) < k {
		best, bestScore := -1, -1.0
		for i, s := range sw {
			if used[i] {
				continue
			}
			nearest := math.MaxFloat64
			for _, p := range picked {
				nearest = min(nearest, s.col.DistanceLab(p))
			}
			score := nearest * (0.55 + 0.45*math.Sqrt(s.weight/maxW))
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		picked = append(picked, sw[best].col)
	}
	return picked
}

// SavePalette writes the palette as a strip of tileSize squares.
func SavePalette(palette []colorful.Color, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(palette), tileSize))
	for i, c := range palette {
		r, g, b := c.Clamped().RGB255()
		fill := color.RGBA{R: r, G: g, B: b, A: 255}
		for y := range tileSize {
			for x := i * tileSize; x < (i+1)*tileSize; x++ {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	return SaveImage(img, filename)
}
