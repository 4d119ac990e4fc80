package qmc

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/cthyb/hyb"
	"github.com/katalvlaran/cthyb/operators"
	"github.com/katalvlaran/cthyb/space"
)

// Configuration is the Markov-chain state of one worker: the time-ordered
// operator list, the determinant of every block and the trace.
// It is not safe for concurrent use.
type Configuration struct {
	model  *hyb.Model
	beta   float64
	ops    []Operator // ascending in Tau, unique times
	blocks []*detBlock
	deltas []deltaFunc
	trace  *TraceEstimator
}

// NewConfiguration returns the empty configuration (k = 0) of model over sp.
//
// Errors: ErrEmptyBlocks; ErrBlockMismatch when a block orbital is not part
// of the space's fundamental set; matrix errors from the initial trace.
func NewConfiguration(model *hyb.Model, sp *space.Space, opts ...Option) (*Configuration, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := model.Structure
	if s.Len() == 0 {
		return nil, ErrEmptyBlocks
	}
	c := &Configuration{
		model:  model,
		beta:   model.Beta,
		blocks: make([]*detBlock, s.Len()),
		deltas: make([]deltaFunc, s.Len()),
	}
	linear := make([][]int, s.Len())
	var err error
	for b := 0; b < s.Len(); b++ {
		blk := s.Block(b)
		linear[b] = make([]int, blk.Size())
		for i, ix := range blk.Indices {
			if linear[b][i], err = sp.Fundamental().Position(operators.Index{Block: blk.Name, Inner: ix}); err != nil {
				return nil, fmt.Errorf("NewConfiguration: block %q: %w", blk.Name, ErrBlockMismatch)
			}
		}
		c.blocks[b] = newDetBlock(blk.Size())
		c.deltas[b] = func(tau float64, i, j int) float64 { return model.Delta(b, tau, i, j) }
	}
	if c.trace, err = newTraceEstimator(sp, c.beta, linear, o.UseTraceEstimator, o.MinProbability); err != nil {
		return nil, fmt.Errorf("NewConfiguration: %w", err)
	}

	return c, nil
}

// Beta returns the inverse temperature.
func (c *Configuration) Beta() float64 { return c.beta }

// NumBlocks returns the number of blocks.
func (c *Configuration) NumBlocks() int { return len(c.blocks) }

// BlockSize returns the inner dimension n_b.
func (c *Configuration) BlockSize(b int) int { return c.blocks[b].size }

// Order returns k_b, the number of creators (= annihilators) in block b.
func (c *Configuration) Order(b int) int { return c.blocks[b].order() }

// TotalOrder returns k = Σ_b k_b.
func (c *Configuration) TotalOrder() int { return len(c.ops) / 2 }

// Operators returns a copy of the time-ordered operator list.
func (c *Configuration) Operators() []Operator {
	return append([]Operator(nil), c.ops...)
}

// Weight recomputes sign and log|w| from scratch: exact trace, LUP
// determinants and the permutation sign of the current labelling.
func (c *Configuration) Weight() (float64, float64, error) {
	tv, err := c.trace.exact(c.ops)
	if err != nil {
		return 0, 0, fmt.Errorf("Weight: %w", err)
	}
	if tv.isZero() {
		return 0, math.Inf(-1), nil
	}
	sign, logAbs := tv.sign*c.permutationSign()*parity(c.TotalOrder()), tv.logAbs
	for b, blk := range c.blocks {
		s, l, err := blk.logDet(c.deltas[b])
		if err != nil {
			return 0, 0, fmt.Errorf("Weight: %w", err)
		}
		sign *= s
		logAbs += l
	}

	return sign, logAbs, nil
}

// permutationSign is the parity of the permutation taking the reference
// product Π_b Π_i c†_{b,i} c_{b,i} to time order (latest operator leftmost).
func (c *Configuration) permutationSign() float64 {
	offset := make([]int, len(c.blocks))
	for b := 1; b < len(c.blocks); b++ {
		offset[b] = offset[b-1] + 2*c.blocks[b-1].order()
	}
	ref := make([]int, len(c.ops))
	for k, op := range c.ops {
		blk := c.blocks[op.Block]
		taus, slot := blk.colTau, 1
		if op.Dagger {
			taus, slot = blk.rowTau, 0
		}
		for i, t := range taus {
			if t == op.Tau {
				ref[len(c.ops)-1-k] = offset[op.Block] + 2*i + slot
				break
			}
		}
	}
	inv := 0
	for i := range ref {
		for j := i + 1; j < len(ref); j++ {
			if ref[i] > ref[j] {
				inv++
			}
		}
	}

	return parity(inv)
}

// Refresh recomputes every inverse matrix from scratch and, in exact mode,
// the cached trace chains. A block whose D is numerically singular keeps
// its updated inverse.
func (c *Configuration) Refresh() error {
	for b, blk := range c.blocks {
		fresh, err := blk.refreshed(c.deltas[b])
		if err != nil {
			continue
		}
		c.blocks[b] = fresh
	}
	if c.trace.stochastic {
		return nil
	}
	if err := c.trace.reset(c.ops); err != nil {
		return fmt.Errorf("Refresh: %w", err)
	}

	return nil
}

// opIndex returns the position of the operator at tau; tau must be present.
func (c *Configuration) opIndex(tau float64) int {
	return sort.Search(len(c.ops), func(k int) bool { return c.ops[k].Tau >= tau })
}
