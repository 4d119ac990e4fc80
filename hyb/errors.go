package hyb

import "errors"

var (
	// ErrInsufficientTauPoints indicates n_tau < 2·n_iw.
	ErrInsufficientTauPoints = errors.New("hyb: need at least twice as many tau points as Matsubara frequencies")

	// ErrBadBeta indicates a non-positive or non-finite inverse temperature.
	ErrBadBeta = errors.New("hyb: beta must be positive and finite")

	// ErrShapeMismatch indicates inputs that disagree on structure or dimension.
	ErrShapeMismatch = errors.New("hyb: shape mismatch")
)
