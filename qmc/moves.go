package qmc

import (
	"math"
	"math/rand"
)

// ratioSign returns the sign factor of an accepted ratio.
func ratioSign(r float64) float64 {
	if r < 0 {
		return -1
	}

	return 1
}

// usable reports whether r can enter the Metropolis test.
func usable(r float64) bool {
	return r != 0 && !math.IsNaN(r) && !math.IsInf(r, 0)
}

type pendingInsert struct {
	det    detInsert
	ops    []Operator
	trace  traceProposal
	sign   float64
	length float64
}

// InsertMove adds one creator and one annihilator to a block.
type InsertMove struct {
	cfg   *Configuration
	block int
	name  string
	pend  *pendingInsert
	hist  *ProposalHistogram
}

// NewInsertMove returns the insertion move of block b.
func NewInsertMove(cfg *Configuration, b int) *InsertMove {
	return &InsertMove{cfg: cfg, block: b, name: "insert_" + cfg.model.Structure.Block(b).Name}
}

// Name identifies the move in statistics and metrics.
func (m *InsertMove) Name() string { return m.name }

// EnableHistogram attaches a ProposalHistogram to the move and returns it.
func (m *InsertMove) EnableHistogram() *ProposalHistogram {
	m.hist = newProposalHistogram(m.name, m.block, m.cfg.beta)
	return m.hist
}

// Propose draws both times uniformly in [0, β) and both inner indices
// uniformly, and returns the signed acceptance ratio.
func (m *InsertMove) Propose(rng *rand.Rand) float64 {
	beta, n := m.cfg.beta, m.cfg.blocks[m.block].size
	tauR, innerR := rng.Float64()*beta, rng.Intn(n)
	tauC, innerC := rng.Float64()*beta, rng.Intn(n)

	return m.ProposeAt(rng, tauR, innerR, tauC, innerC)
}

// ProposeAt evaluates
//
//	R = (w'/w) · (β n_b / (k_b+1))²
//
// for the creator at (tauR, innerR) and annihilator at (tauC, innerC).
// rng is consumed only in estimator mode. Equal or already occupied times,
// a numerically singular D', and zero or non-finite ratios return 0.
func (m *InsertMove) ProposeAt(rng *rand.Rand, tauR float64, innerR int, tauC float64, innerC int) float64 {
	m.pend = nil
	c := m.cfg
	if tauR == tauC {
		return 0
	}
	posR, takenR := search(c.ops, tauR)
	posC, takenC := search(c.ops, tauC)
	if takenR || takenC {
		return 0
	}
	blk := c.blocks[m.block]
	det := blk.proposeInsert(c.deltas[m.block], tauR, innerR, tauC, innerC)
	if det.singular() {
		return 0
	}

	extra := 0
	if tauC > tauR {
		extra = 1
	}
	perm := parity(posR + posC + extra)

	ops, first := withInserted(c.ops,
		Operator{Tau: tauR, Block: m.block, Inner: innerR, Dagger: true},
		Operator{Tau: tauC, Block: m.block, Inner: innerC})
	tp, err := c.trace.propose(ops, first, rng)
	if err != nil {
		return 0
	}
	length := math.Abs(tauC - tauR)
	m.hist.observe(length, tp.value, c.trace.value)
	if tp.value.isZero() {
		return 0
	}
	f := c.beta * float64(blk.size) / float64(blk.order()+1)
	r := -perm * det.s * tp.value.over(c.trace.value) * f * f
	if !usable(r) {
		return 0
	}
	m.pend = &pendingInsert{det: det, ops: ops, trace: tp, sign: ratioSign(r), length: length}

	return r
}

// Accept commits the pending insertion and returns its sign factor.
func (m *InsertMove) Accept() float64 {
	p := m.pend
	m.pend = nil
	c := m.cfg
	c.ops = p.ops
	c.blocks[m.block] = c.blocks[m.block].commitInsert(p.det)
	c.trace.commit(p.trace)
	m.hist.accept(p.length)

	return p.sign
}

// Reject drops the pending insertion.
func (m *InsertMove) Reject() { m.pend = nil }

type pendingRemove struct {
	row, col int
	ops      []Operator
	trace    traceProposal
	sign     float64
	length   float64
}

// RemoveMove drops one creator and one annihilator from a block.
type RemoveMove struct {
	cfg   *Configuration
	block int
	name  string
	pend  *pendingRemove
	hist  *ProposalHistogram
}

// NewRemoveMove returns the removal move of block b.
func NewRemoveMove(cfg *Configuration, b int) *RemoveMove {
	return &RemoveMove{cfg: cfg, block: b, name: "remove_" + cfg.model.Structure.Block(b).Name}
}

// Name identifies the move in statistics and metrics.
func (m *RemoveMove) Name() string { return m.name }

// EnableHistogram attaches a ProposalHistogram to the move and returns it.
func (m *RemoveMove) EnableHistogram() *ProposalHistogram {
	m.hist = newProposalHistogram(m.name, m.block, m.cfg.beta)
	return m.hist
}

// Propose picks a creator and an annihilator of the block uniformly.
// An empty block is a no-op rejection.
func (m *RemoveMove) Propose(rng *rand.Rand) float64 {
	k := m.cfg.blocks[m.block].order()
	if k == 0 {
		m.pend = nil
		return 0
	}
	row, col := rng.Intn(k), rng.Intn(k)

	return m.ProposeAt(rng, row, col)
}

// ProposeAt evaluates
//
//	R = (w'/w) · (k_b / (β n_b))²
//
// for removing creator row and annihilator col of the block. A removal
// ratio at roundoff level returns 0.
func (m *RemoveMove) ProposeAt(rng *rand.Rand, row, col int) float64 {
	m.pend = nil
	c := m.cfg
	blk := c.blocks[m.block]
	k := blk.order()
	if row < 0 || row >= k || col < 0 || col >= k {
		return 0
	}
	if blk.removeSingular(row, col) {
		return 0
	}
	tauR, tauC := blk.rowTau[row], blk.colTau[col]
	ix, iy := c.opIndex(tauR), c.opIndex(tauC)

	// operators left behind that are earlier than each removed one
	a, b := ix, iy
	if iy < ix {
		a--
	} else {
		b--
	}
	extra := 0
	if tauC > tauR {
		extra = 1
	}
	perm := parity(a + b + extra)

	ops, first := withRemoved(c.ops, ix, iy)
	tp, err := c.trace.propose(ops, first, rng)
	if err != nil {
		return 0
	}
	length := math.Abs(tauC - tauR)
	m.hist.observe(length, tp.value, c.trace.value)
	if tp.value.isZero() {
		return 0
	}
	f := float64(k) / (c.beta * float64(blk.size))
	r := -perm * blk.removeRatio(row, col) * tp.value.over(c.trace.value) * f * f
	if !usable(r) {
		return 0
	}
	m.pend = &pendingRemove{row: row, col: col, ops: ops, trace: tp, sign: ratioSign(r), length: length}

	return r
}

// Accept commits the pending removal and returns its sign factor.
func (m *RemoveMove) Accept() float64 {
	p := m.pend
	m.pend = nil
	c := m.cfg
	c.ops = p.ops
	c.blocks[m.block] = c.blocks[m.block].commitRemove(p.row, p.col)
	c.trace.commit(p.trace)
	m.hist.accept(p.length)

	return p.sign
}

// Reject drops the pending removal.
func (m *RemoveMove) Reject() { m.pend = nil }
