package imagecompletion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	ic "github.com/setanarut/imagecompletion"
)

// lowRank returns a rank-2 r×c matrix with entries in [0,1].
func lowRank(r, c int) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := range r {
		for j := range c {
			a := 0.2 + 0.6*float64(i)/float64(r)
			b := 0.3 + 0.5*float64(j)/float64(c)
			m.Set(i, j, 0.5*a*b+0.5*(1-a)*(1-b))
		}
	}
	return m
}

func TestNewEngine_Errors(t *testing.T) {
	_, err := ic.NewEngine(&mat.Dense{}, 0.5, nil)
	require.ErrorIs(t, err, ic.ErrEmptyMatrix)

	_, err = ic.NewEngine(lowRank(3, 3), 1.5, nil)
	require.ErrorIs(t, err, ic.ErrInvalidProbability)

	_, err = ic.NewEngine(lowRank(3, 3), -0.5, nil)
	require.ErrorIs(t, err, ic.ErrInvalidProbability)
}

func TestNewEngine_InitialState(t *testing.T) {
	orig := lowRank(8, 6)
	e, err := ic.NewEngine(orig, 1, ic.NewRand(1))
	require.NoError(t, err)

	r, c := e.Dims()
	require.Equal(t, 8, r)
	require.Equal(t, 6, c)
	require.Equal(t, 0, e.Steps())
	require.Len(t, e.Observations(), 48)

	est := e.Estimate()
	require.True(t, mat.Equal(est, mat.NewDense(8, 6, nil)))
	require.True(t, mat.Equal(e.Original(), orig))

	norm, err := ic.NuclearNorm(orig)
	require.NoError(t, err)
	require.InDelta(t, norm, e.Budget(), 1e-12)
	require.InDelta(t, mat.Norm(orig, 2), e.Distance(), 1e-12)
}

func TestEngine_CopiesAreDetached(t *testing.T) {
	orig := lowRank(4, 4)
	e, err := ic.NewEngine(orig, 0.5, ic.NewRand(2))
	require.NoError(t, err)

	orig.Set(0, 0, 42)
	require.NotEqual(t, 42.0, e.Original().At(0, 0))

	est := e.Estimate()
	est.Set(1, 1, 42)
	require.Equal(t, 0.0, e.Estimate().At(1, 1))

	obs := e.Observations()
	if len(obs) > 0 {
		obs[0].Value = 42
		require.NotEqual(t, 42.0, e.Observations()[0].Value)
	}
}

func TestEngine_StepConverges(t *testing.T) {
	orig := lowRank(20, 16)
	e, err := ic.NewEngine(orig, 0.6, ic.NewRand(3))
	require.NoError(t, err)

	start := e.Distance()
	for range 30 {
		require.NoError(t, e.Step(1.0))
	}
	require.Equal(t, 30, e.Steps())
	require.Less(t, e.Distance(), start)

	// every estimate stays inside the ball
	norm, err := ic.NuclearNorm(e.Estimate())
	require.NoError(t, err)
	require.LessOrEqual(t, norm, e.Budget()+1e-9)
}

func TestEngine_FirstStepMatchesObserved(t *testing.T) {
	// With eta = 1 the gradient step puts observed entries on their true
	// values; a full sample then lies inside the ball and survives projection.
	orig := lowRank(5, 5)
	e, err := ic.NewEngine(orig, 1, ic.NewRand(4))
	require.NoError(t, err)
	require.NoError(t, e.Step(1))
	require.True(t, mat.EqualApprox(e.Estimate(), orig, 1e-9))
	require.InDelta(t, 0, e.Residual(), 1e-9)
}

func TestEngine_NoObservations(t *testing.T) {
	e, err := ic.NewEngine(lowRank(4, 3), 0, ic.NewRand(5))
	require.NoError(t, err)
	require.NoError(t, e.Step(0.5))
	require.True(t, mat.Equal(e.Estimate(), mat.NewDense(4, 3, nil)))
	require.Equal(t, 0.0, e.Residual())
}

func TestEngine_SeededDeterminism(t *testing.T) {
	orig := lowRank(10, 12)
	a, err := ic.NewEngine(orig, 0.5, ic.NewRand(77))
	require.NoError(t, err)
	b, err := ic.NewEngine(orig, 0.5, ic.NewRand(77))
	require.NoError(t, err)

	require.Equal(t, a.Observations(), b.Observations())
	for range 5 {
		require.NoError(t, a.Step(0.8))
		require.NoError(t, b.Step(0.8))
	}
	require.True(t, mat.Equal(a.Estimate(), b.Estimate()))
}

func TestEngine_Run(t *testing.T) {
	e, err := ic.NewEngine(lowRank(12, 12), 0.7, ic.NewRand(6))
	require.NoError(t, err)

	var reports []ic.Progress
	require.NoError(t, e.Run(context.Background(), 1, 10, func(p ic.Progress) {
		reports = append(reports, p)
	}))
	require.Len(t, reports, 10)
	for i, p := range reports {
		require.Equal(t, i+1, p.Step)
	}
	require.InDelta(t, e.Distance(), reports[9].Distance, 1e-12)
	require.Less(t, reports[9].Distance, mat.Norm(e.Original(), 2))
}

func TestEngine_RunCancelled(t *testing.T) {
	e, err := ic.NewEngine(lowRank(6, 6), 0.5, ic.NewRand(8))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	err = e.Run(ctx, 1, 100, func(ic.Progress) {
		n++
		if n == 3 {
			cancel()
		}
	})
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, 3, e.Steps())
}
