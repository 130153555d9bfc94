package imagecompletion

import "errors"

var (
	// ErrInvalidProbability indicates a sampling probability outside [0,1].
	ErrInvalidProbability = errors.New("imagecompletion: sampling probability must be in [0,1]")
	// ErrEmptyMatrix indicates a matrix with zero rows or columns.
	ErrEmptyMatrix = errors.New("imagecompletion: matrix must have at least one row and one column")
	// ErrDecomposition indicates the singular value decomposition did not converge.
	ErrDecomposition = errors.New("imagecompletion: singular value decomposition failed")
	// ErrRecomposition indicates U·Σ·Vᵀ produced non-finite values.
	ErrRecomposition = errors.New("imagecompletion: recomposed matrix is not finite")
	// ErrInvalidOptions indicates an Options value that fails validation.
	ErrInvalidOptions = errors.New("imagecompletion: invalid options")
)
