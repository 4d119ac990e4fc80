package solver

import "errors"

var (
	// ErrNotSolved indicates a result accessor called before a successful Solve.
	ErrNotSolved = errors.New("solver: no result, call Solve first")

	// ErrNoWeissField indicates Solve before SetG0.
	ErrNoWeissField = errors.New("solver: Weiss field not set")

	// ErrInvalidParams indicates Params rejected by validation.
	ErrInvalidParams = errors.New("solver: invalid parameters")
)
