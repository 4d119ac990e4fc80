package operators

import "fmt"

// FundamentalSet maps orbital indices to dense linear positions 0..Len()-1
// in insertion order.
type FundamentalSet struct {
	order []Index
	pos   map[Index]int
}

// NewFundamentalSet returns an empty set.
func NewFundamentalSet() *FundamentalSet {
	return &FundamentalSet{pos: make(map[Index]int)}
}

// Insert appends (block, inner) and returns its linear index.
// Returns ErrDuplicateIndex when already present.
func (fs *FundamentalSet) Insert(block string, inner int) (int, error) {
	ix := Index{Block: block, Inner: inner}
	if _, ok := fs.pos[ix]; ok {
		return 0, fmt.Errorf("Insert(%s): %w", ix, ErrDuplicateIndex)
	}
	fs.pos[ix] = len(fs.order)
	fs.order = append(fs.order, ix)

	return fs.pos[ix], nil
}

// Position returns the linear index of ix or ErrUnknownIndex.
func (fs *FundamentalSet) Position(ix Index) (int, error) {
	p, ok := fs.pos[ix]
	if !ok {
		return 0, fmt.Errorf("Position(%s): %w", ix, ErrUnknownIndex)
	}

	return p, nil
}

// At returns the index stored at linear position p.
func (fs *FundamentalSet) At(p int) Index { return fs.order[p] }

// Len returns the number of fundamental operators.
func (fs *FundamentalSet) Len() int { return len(fs.order) }

// Indices returns a copy of the insertion order.
func (fs *FundamentalSet) Indices() []Index {
	return append([]Index(nil), fs.order...)
}
