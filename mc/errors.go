package mc

import "errors"

var (
	// ErrNoMoves indicates Run on a driver without registered moves.
	ErrNoMoves = errors.New("mc: no moves registered")

	// ErrBadCycles indicates a non-positive number of sampling cycles.
	ErrBadCycles = errors.New("mc: number of cycles must be positive")

	// ErrUnknownGenerator indicates an unsupported random generator name.
	ErrUnknownGenerator = errors.New("mc: unknown random generator")
)
