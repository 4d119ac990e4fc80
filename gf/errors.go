package gf

import "errors"

var (
	// ErrEmptyStructure indicates a structure without blocks.
	ErrEmptyStructure = errors.New("gf: block structure is empty")

	// ErrDuplicateBlock indicates two blocks sharing a name.
	ErrDuplicateBlock = errors.New("gf: duplicate block name")

	// ErrEmptyBlock indicates a block without inner indices.
	ErrEmptyBlock = errors.New("gf: block has no indices")

	// ErrDuplicateIndex indicates a repeated inner index within one block.
	ErrDuplicateIndex = errors.New("gf: duplicate index within block")

	// ErrUnknownBlock indicates a lookup of an absent block name.
	ErrUnknownBlock = errors.New("gf: unknown block")

	// ErrBadMesh indicates non-positive β or an unusable number of points.
	ErrBadMesh = errors.New("gf: invalid mesh")

	// ErrShapeMismatch indicates incompatible meshes, structures or tails.
	ErrShapeMismatch = errors.New("gf: shape mismatch")
)
