// SPDX-License-Identifier: MIT

// Package matrix: public Matrix interface and numeric constants.
package matrix

// Numeric policy shared by the kernels.
const (
	// DefaultEpsilon is the symmetry tolerance used by Eigen callers that do not
	// carry their own.
	DefaultEpsilon = 1e-10

	// DefaultEigenSweeps bounds the number of cyclic Jacobi sweeps.
	DefaultEigenSweeps = 64

	// ZeroSum is the initial value for substitution sums and dot products.
	ZeroSum = 0.0

	// ZeroPivot is the sentinel for detecting an exactly singular pivot.
	ZeroPivot = 0.0
)

// Matrix represents a two-dimensional mutable array of float64 values.
//
// Complexity notes: all methods are expected O(1) except Clone (O(r*c)).
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if i<0, i>=Rows(), j<0 or j>=Cols().
	At(i, j int) (float64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange if indices are invalid.
	Set(i, j int, v float64) error

	// Clone returns a deep copy of the matrix.
	Clone() Matrix
}
