package imagecompletion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ============ SIMPLEX ============

// ProjectOntoSimplex returns the Euclidean projection of v onto
// {w : w >= 0, sum(w) = z}. For z <= 0 the zero vector is returned.
//
// Randomized expected linear-time method from Duchi et al., "Efficient
// projections onto the l1-ball for learning in high dimensions" (2008).
// rng picks the pivots; nil uses an unseeded source.
func ProjectOntoSimplex(v []float64, z float64, rng Rand) []float64 {
	n := len(v)
	w := make([]float64, n)
	if z <= 0 || n == 0 {
		return w
	}
	rng = orDefault(rng)

	// w is the partition scratch until theta is known.
	copy(w, v)
	s, rho := 0.0, 0

	// U = w[lo:hi]
	lo, hi := 0, n
	for lo < hi {
		k := lo + rng.IntN(hi-lo)
		pivot := w[k]

		mid := partitionAround(w, lo, hi, pivot)
		// [lo, mid) < pivot, [mid, hi) >= pivot
		ds := floats.Sum(w[mid:hi])
		dr := hi - mid

		if (s+ds)-float64(rho+dr)*pivot < z {
			s += ds
			rho += dr
			hi = mid
			continue
		}
		// U <- G \ {k}: bring one pivot-valued entry to the head of G first.
		for i := mid; i < hi; i++ {
			if w[i] == pivot {
				w[mid], w[i] = w[i], w[mid]
				break
			}
		}
		lo = mid + 1
	}

	theta := (s - z) / float64(rho)
	for i, vi := range v {
		w[i] = max(vi-theta, 0)
	}
	return w
}

// partitionAround reorders w[lo:hi] so entries below pivot come first and
// returns the index of the first entry >= pivot.
func partitionAround(w []float64, lo, hi int, pivot float64) int {
	i, j := lo, hi-1
	for i <= j {
		if w[i] < pivot {
			i++
			continue
		}
		if w[j] >= pivot {
			j--
			continue
		}
		w[i], w[j] = w[j], w[i]
		i++
		j--
	}
	return i
}

// ============ L1 BALL ============

// ProjectOntoL1Ball returns the Euclidean projection of v onto
// {u : sum|u_i| <= z}. Feasible inputs are returned unchanged (as a copy).
func ProjectOntoL1Ball(v []float64, z float64, rng Rand) []float64 {
	n := len(v)
	if z <= 0 {
		return make([]float64, n)
	}
	if floats.Norm(v, 1) <= z {
		return append([]float64(nil), v...)
	}

	sign := make([]float64, n)
	abs := make([]float64, n)
	for i, vi := range v {
		switch {
		case vi > 0:
			sign[i] = 1
		case vi < 0:
			sign[i] = -1
		}
		abs[i] = math.Abs(vi)
	}

	u := ProjectOntoSimplex(abs, z, rng)
	floats.Mul(u, sign)
	return u
}

// ============ NUCLEAR BALL ============

// ProjectOntoNuclearBall returns the Euclidean projection of m onto the set
// of matrices whose nuclear norm is at most z. The singular values are
// projected onto the L1 ball of radius z and the matrix is recomposed.
func ProjectOntoNuclearBall(m mat.Matrix, z float64, rng Rand) (*mat.Dense, error) {
	r, c := m.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, ErrDecomposition
	}
	sigma := ProjectOntoL1Ball(svd.Values(nil), z, rng)

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// U·diag(σ') is a column scaling of U.
	u.Apply(func(_, j int, x float64) float64 {
		return x * sigma[j]
	}, &u)

	out := mat.NewDense(r, c, nil)
	out.Mul(&u, v.T())

	if pr, pc := out.Dims(); pr != r || pc != c {
		panic(fmt.Sprintf("imagecompletion: projection changed shape %dx%d -> %dx%d", r, c, pr, pc))
	}
	for _, x := range out.RawMatrix().Data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, ErrRecomposition
		}
	}
	return out, nil
}

// NuclearNorm returns the sum of the singular values of m.
func NuclearNorm(m mat.Matrix) (float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDNone); !ok {
		return 0, ErrDecomposition
	}
	return floats.Sum(svd.Values(nil)), nil
}
