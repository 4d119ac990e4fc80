package qmc

import "errors"

var (
	// ErrEmptyBlocks indicates a model without blocks.
	ErrEmptyBlocks = errors.New("qmc: no blocks to sample")

	// ErrBlockMismatch indicates that the model structure and the local
	// space disagree, or that accumulators of different shapes were merged.
	ErrBlockMismatch = errors.New("qmc: block structure mismatch")
)
