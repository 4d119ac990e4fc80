package operators

import (
	"errors"
	"fmt"
)

// Sentinel errors for operator expressions and fundamental sets.
var (
	// ErrDuplicateIndex indicates that an index was inserted twice into a FundamentalSet.
	ErrDuplicateIndex = errors.New("operators: duplicate fundamental index")

	// ErrUnknownIndex indicates a lookup of an index absent from a FundamentalSet.
	ErrUnknownIndex = errors.New("operators: unknown fundamental index")
)

// Index identifies one orbital: a block name and an inner index within it.
type Index struct {
	Block string
	Inner int
}

// String renders the index as "block,inner".
func (ix Index) String() string { return fmt.Sprintf("%s,%d", ix.Block, ix.Inner) }

// Less orders indices by block name, then inner index.
func (ix Index) Less(o Index) bool {
	if ix.Block != o.Block {
		return ix.Block < o.Block
	}

	return ix.Inner < o.Inner
}

// Factor is a single c or c† acting on one orbital.
type Factor struct {
	Dagger bool
	Index  Index
}

// String renders c†(block,inner) or c(block,inner).
func (f Factor) String() string {
	if f.Dagger {
		return "c†(" + f.Index.String() + ")"
	}

	return "c(" + f.Index.String() + ")"
}

// Monomial is an ordered product of factors, leftmost factor applied last.
type Monomial []Factor

// Term is a coefficient times a normal-ordered monomial.
type Term struct {
	Coef     float64
	Monomial Monomial
}
