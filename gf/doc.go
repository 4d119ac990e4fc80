// Package gf provides the Green's-function containers used by the solver:
// imaginary-time and Matsubara meshes, the block structure of the orbital
// basis, block-diagonal matrix-valued Green's functions on both meshes, their
// high-frequency tails, and the inverse Fourier transform between them.
//
// Conventions:
//
//	– TauMesh{Beta, N}: points τ_k = k·β/(N−1), k = 0..N−1. The two end points
//	  own half-width bins ("half bins"), so Σ_k BinWidth(k) = β.
//	– FreqMesh{Beta, N}: fermionic Matsubara frequencies ω_n = (2n+1)π/β,
//	  n = 0..N−1. Only n ≥ 0 is stored; functions are assumed to satisfy
//	  G(−iω) = G(iω)* (real in imaginary time).
//	– Matrix-valued data is stored block by block as flat row-major slices
//	  indexed [point][i][j].
//	– G(τ+β) = −G(τ): TimeBlockGF.At extends to (−β, 0) antiperiodically.
//
// Errors (sentinel):
//
//	– ErrEmptyStructure, ErrDuplicateBlock, ErrEmptyBlock, ErrDuplicateIndex,
//	  ErrUnknownBlock for malformed block structures.
//	– ErrBadMesh for non-positive β or too few points.
//	– ErrShapeMismatch when containers disagree on mesh or structure.
package gf
