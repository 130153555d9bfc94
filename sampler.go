package imagecompletion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Observation is one known entry of the original matrix.
type Observation struct {
	Row, Col int
	Value    float64
}

// Sample keeps each entry of m independently with probability p, visiting
// entries in row-major order. p must lie in [0,1].
func Sample(m mat.Matrix, p float64, rng Rand) ([]Observation, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidProbability, p)
	}
	rng = orDefault(rng)
	r, c := m.Dims()

	obs := make([]Observation, 0, int(float64(r*c)*p)+1)
	for i := range r {
		for j := range c {
			if rng.Float64() < p {
				obs = append(obs, Observation{Row: i, Col: j, Value: m.At(i, j)})
			}
		}
	}
	return obs, nil
}
