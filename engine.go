package imagecompletion

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Engine reconstructs a matrix from a random subset of its entries by
// projected subgradient descent on the nuclear-norm ball.
//
// The ball radius is the nuclear norm of the original matrix itself. This
// is an oracle: it is only known because the ground truth is at hand, and a
// blind completion would have to estimate it.
type Engine struct {
	original *mat.Dense
	estimate *mat.Dense
	observed []Observation
	budget   float64
	rng      Rand
	steps    int

	// scratch, reused across steps
	residual []float64
	gradient *mat.Dense

	project func(m mat.Matrix, z float64, rng Rand) (*mat.Dense, error)
}

// Progress is reported by Run after every step.
type Progress struct {
	Step     int
	Residual float64
	Distance float64
}

// NewEngine samples original with probability p and returns an engine whose
// estimate is the zero matrix. rng drives both sampling and the simplex
// pivots; nil uses an unseeded source.
func NewEngine(original mat.Matrix, p float64, rng Rand) (*Engine, error) {
	r, c := original.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmptyMatrix
	}
	rng = orDefault(rng)

	orig := mat.DenseCopyOf(original)
	observed, err := Sample(orig, p, rng)
	if err != nil {
		return nil, err
	}
	budget, err := NuclearNorm(orig)
	if err != nil {
		return nil, fmt.Errorf("nuclear budget: %w", err)
	}

	return &Engine{
		original: orig,
		estimate: mat.NewDense(r, c, nil),
		observed: observed,
		budget:   budget,
		rng:      rng,
		residual: make([]float64, len(observed)),
		gradient: mat.NewDense(r, c, nil),
		project:  ProjectOntoNuclearBall,
	}, nil
}

// Step moves the estimate by -eta times the observed-entry error and projects
// it back onto the nuclear-norm ball. On error the estimate is left as it was.
func (e *Engine) Step(eta float64) error {
	e.gather()
	for k, o := range e.observed {
		e.residual[k] -= o.Value
	}
	e.scatter()

	r, c := e.estimate.Dims()
	next := mat.NewDense(r, c, nil)
	next.Scale(-eta, e.gradient)
	next.Add(e.estimate, next)

	proj, err := e.project(next, e.budget, e.rng)
	if err != nil {
		return fmt.Errorf("step %d: %w", e.steps+1, err)
	}
	e.estimate = proj
	e.steps++
	return nil
}

// Run calls Step steps times and reports to fn after each one. It returns
// ctx.Err() if ctx is done before a step starts.
func (e *Engine) Run(ctx context.Context, eta float64, steps int, fn func(Progress)) error {
	for range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(eta); err != nil {
			return err
		}
		if fn != nil {
			fn(Progress{Step: e.steps, Residual: e.Residual(), Distance: e.Distance()})
		}
	}
	return nil
}

func (e *Engine) gather() {
	for k, o := range e.observed {
		e.residual[k] = e.estimate.At(o.Row, o.Col)
	}
}

func (e *Engine) scatter() {
	for k, o := range e.observed {
		e.gradient.Set(o.Row, o.Col, e.residual[k])
	}
}

// Residual returns the Euclidean norm of the error on the observed entries.
func (e *Engine) Residual() float64 {
	if len(e.observed) == 0 {
		return 0
	}
	e.gather()
	for k, o := range e.observed {
		e.residual[k] -= o.Value
	}
	return floats.Norm(e.residual, 2)
}

// Distance returns the Frobenius distance between the estimate and the
// original matrix.
func (e *Engine) Distance() float64 {
	var d mat.Dense
	d.Sub(e.estimate, e.original)
	return mat.Norm(&d, 2)
}

// Estimate returns a copy of the current estimate.
func (e *Engine) Estimate() *mat.Dense { return mat.DenseCopyOf(e.estimate) }

// Original returns a copy of the original matrix.
func (e *Engine) Original() *mat.Dense { return mat.DenseCopyOf(e.original) }

// Observations returns a copy of the sampled entries in row-major order.
func (e *Engine) Observations() []Observation {
	return append([]Observation(nil), e.observed...)
}

// Budget returns the nuclear-norm radius used by every projection.
func (e *Engine) Budget() float64 { return e.budget }

// Steps returns the number of successful Step calls.
func (e *Engine) Steps() int { return e.steps }

// Dims returns the matrix dimensions.
func (e *Engine) Dims() (rows, cols int) { return e.original.Dims() }
