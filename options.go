package imagecompletion

import (
	"fmt"
	"image"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

type Options struct {
	// Probability of observing each pixel, in [0,1].
	// 0.3-0.6 recovers most natural images at the default step size.
	Probability float64 `yaml:"probability"`
	// Gradient step size. Not bounded; 1.0 moves observed entries straight
	// onto their true values before projection. Values above 2 diverge.
	Eta float64 `yaml:"eta"`
	// Number of Step calls.
	Steps int `yaml:"steps"`
	// Random seed for sampling and pivots. 0 => unseeded.
	Seed uint64 `yaml:"seed"`
	// Longest image side after downscaling. Every step runs a full SVD, so
	// cost grows roughly with the cube of this value. 0 => no resize.
	MaxSide int `yaml:"max_side"`
	// Grayscale conversion: "luminosity" or "luminance".
	Grayscale string `yaml:"grayscale"`
	// Colors in the palette used for colorized output. 0 => grayscale only.
	PaletteSize int `yaml:"palette_size"`
	// Palette extraction: "dominantcolor" or "kmeans".
	PaletteMethod string `yaml:"palette_method"`
}

func DefaultOptions() Options {
	return Options{
		Probability:   0.5,
		Eta:           1.0,
		Steps:         100,
		MaxSide:       200,
		Grayscale:     "luminosity",
		PaletteMethod: "dominantcolor",
	}
}

// OptionsFromSize scales the iteration count with the image size. Larger
// matrices carry more singular values to settle and need more steps.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	side := max(size.X, size.Y)
	if opt.MaxSide > 0 {
		side = min(side, opt.MaxSide)
	}
	opt.Steps = max(50, min(300, int(math.Round(float64(side)*0.75))))
	return opt
}

// Validate reports the first out-of-range field.
func (o Options) Validate() error {
	if math.IsNaN(o.Probability) || o.Probability < 0 || o.Probability > 1 {
		return fmt.Errorf("%w: probability %v not in [0,1]", ErrInvalidOptions, o.Probability)
	}
	if math.IsNaN(o.Eta) || math.IsInf(o.Eta, 0) {
		return fmt.Errorf("%w: eta must be finite", ErrInvalidOptions)
	}
	if o.Steps < 0 {
		return fmt.Errorf("%w: steps must be >= 0", ErrInvalidOptions)
	}
	if o.MaxSide < 0 {
		return fmt.Errorf("%w: max_side must be >= 0", ErrInvalidOptions)
	}
	switch o.Grayscale {
	case "luminosity", "luminance":
	default:
		return fmt.Errorf("%w: unknown grayscale method %q", ErrInvalidOptions, o.Grayscale)
	}
	if o.PaletteSize < 0 {
		return fmt.Errorf("%w: palette_size must be >= 0", ErrInvalidOptions)
	}
	switch o.PaletteMethod {
	case "dominantcolor", "kmeans":
	default:
		return fmt.Errorf("%w: unknown palette method %q", ErrInvalidOptions, o.PaletteMethod)
	}
	return nil
}

// LoadOptions reads a YAML file over DefaultOptions and validates the result.
func LoadOptions(path string) (Options, error) {
	opt := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opt, fmt.Errorf("read options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opt); err != nil {
		return opt, fmt.Errorf("parse options: %w", err)
	}
	if err := opt.Validate(); err != nil {
		return opt, err
	}
	return opt, nil
}
