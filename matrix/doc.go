// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear-algebra kernels used by the solver.
//
// The package offers:
//
//   - Dense, a row-major float64 matrix with bounds-checked At/Set and a
//     flat-slice fast path (Data) for hot loops.
//   - Products and shape helpers: Mul, Transpose, Scale, MatVec.
//   - Factorizations: LUP (partial pivoting), Det, LogDet, Inverse, Solve.
//   - Spectral: Eigen (cyclic Jacobi for symmetric input, ascending order).
//   - Complex inversion through the real 2n×2n embedding (InverseComplex).
//   - Linear least squares through the normal equations (LeastSquares).
//
// Matrices here are small (hybridization blocks, local Hilbert subspaces,
// tail-fit systems), so every kernel favors determinism and clarity over
// blocking or BLAS-level tuning. All kernels return sentinel errors from
// errors.go wrapped with an operation tag; callers match them with errors.Is.
package matrix
