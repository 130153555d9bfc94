package imagecompletion_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	ic "github.com/setanarut/imagecompletion"
)

func gradientMatrix(r, c int) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := range r {
		for j := range c {
			m.Set(i, j, float64(i*c+j)/float64(r*c))
		}
	}
	return m
}

func TestSample_None(t *testing.T) {
	obs, err := ic.Sample(gradientMatrix(4, 5), 0, ic.NewRand(1))
	require.NoError(t, err)
	require.Empty(t, obs)
}

func TestSample_All(t *testing.T) {
	m := gradientMatrix(4, 5)
	obs, err := ic.Sample(m, 1, ic.NewRand(1))
	require.NoError(t, err)
	require.Len(t, obs, 20)

	seen := make(map[[2]int]bool)
	for _, o := range obs {
		key := [2]int{o.Row, o.Col}
		require.False(t, seen[key], "duplicate index %v", key)
		seen[key] = true
		require.Equal(t, m.At(o.Row, o.Col), o.Value)
	}
}

func TestSample_RowMajorDistinct(t *testing.T) {
	m := gradientMatrix(30, 20)
	obs, err := ic.Sample(m, 0.4, ic.NewRand(17))
	require.NoError(t, err)
	require.NotEmpty(t, obs)
	for k := 1; k < len(obs); k++ {
		prev := obs[k-1].Row*20 + obs[k-1].Col
		cur := obs[k].Row*20 + obs[k].Col
		require.Less(t, prev, cur)
	}
	for _, o := range obs {
		require.Equal(t, m.At(o.Row, o.Col), o.Value)
	}
	// 600 cells at p=0.4: far outside 240±100 would mean a broken source.
	require.InDelta(t, 240, len(obs), 100)
}

func TestSample_Seeded(t *testing.T) {
	m := gradientMatrix(10, 10)
	a, err := ic.Sample(m, 0.3, ic.NewRand(99))
	require.NoError(t, err)
	b, err := ic.Sample(m, 0.3, ic.NewRand(99))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSample_InvalidProbability(t *testing.T) {
	for _, p := range []float64{-0.1, 1.01, math.NaN(), math.Inf(1)} {
		_, err := ic.Sample(gradientMatrix(2, 2), p, nil)
		require.True(t, errors.Is(err, ic.ErrInvalidProbability), "p=%v err=%v", p, err)
	}
}
