package qmc

import (
	"math"
	"math/rand"

	"github.com/katalvlaran/cthyb/matrix"
	"github.com/katalvlaran/cthyb/space"
)

// DefaultMinProbability is the smallest probability with which estimator
// mode keeps a non-dominant chain.
const DefaultMinProbability = 0.01

// traceValue is a signed real number stored as (sign, log|·|); sign 0 is zero.
type traceValue struct {
	sign   float64
	logAbs float64
}

var zeroTrace = traceValue{logAbs: math.Inf(-1)}

func (v traceValue) isZero() bool { return v.sign == 0 }

// over returns v/w; w must be non-zero.
func (v traceValue) over(w traceValue) float64 {
	if v.isZero() {
		return 0
	}

	return v.sign * w.sign * math.Exp(v.logAbs-w.logAbs)
}

// sumTraces adds signed log-scaled values without overflow.
func sumTraces(vals []traceValue) traceValue {
	ref := math.Inf(-1)
	for _, v := range vals {
		if !v.isZero() && v.logAbs > ref {
			ref = v.logAbs
		}
	}
	if math.IsInf(ref, -1) {
		return zeroTrace
	}
	acc := 0.0
	for _, v := range vals {
		if !v.isZero() {
			acc += v.sign * math.Exp(v.logAbs-ref)
		}
	}
	if acc == 0 {
		return zeroTrace
	}

	return traceValue{sign: math.Copysign(1, acc), logAbs: ref + math.Log(math.Abs(acc))}
}

// chain is the propagation of one starting subspace through the operator
// list. Entry k is the state after the k-th operator (entry 0: identity at
// τ = 0); sub[k] < 0 marks a vanished chain. Entries are shared between
// cached versions and never modified.
type chain struct {
	sub  []int
	x    []*matrix.Dense // dim sub[k] × dim sub[0], rescaled to max |·| = 1
	logs []float64       // accumulated log scale
}

// traceProposal is the pending trace of a proposed operator list.
type traceProposal struct {
	chains []chain
	value  traceValue
}

// TraceEstimator evaluates Tr[e^{−βH} T Π O(τ)] in the eigenbasis of a space.
type TraceEstimator struct {
	sp     *space.Space
	beta   float64
	linear [][]int // (block, inner position) → fundamental position

	stochastic bool
	pMin       float64

	chains []chain // committed, exact mode only
	value  traceValue
}

// newTraceEstimator evaluates the empty configuration.
func newTraceEstimator(sp *space.Space, beta float64, linear [][]int, stochastic bool, pMin float64) (*TraceEstimator, error) {
	tr := &TraceEstimator{sp: sp, beta: beta, linear: linear, stochastic: stochastic, pMin: pMin}
	if err := tr.reset(nil); err != nil {
		return nil, err
	}

	return tr, nil
}

// rootChain is entry 0 of the chain starting in subspace a.
func (tr *TraceEstimator) rootChain(a int) (chain, error) {
	id, err := matrix.NewIdentity(tr.sp.Subspace(a).Dim())
	if err != nil {
		return chain{}, err
	}

	return chain{sub: []int{a}, x: []*matrix.Dense{id}, logs: []float64{0}}, nil
}

// reset recomputes every chain of ops from scratch and commits the exact value.
func (tr *TraceEstimator) reset(ops []Operator) error {
	n := tr.sp.NumSubspaces()
	chains := make([]chain, n)
	vals := make([]traceValue, n)
	for a := 0; a < n; a++ {
		root, err := tr.rootChain(a)
		if err != nil {
			return err
		}
		if chains[a], err = tr.extend(root, ops, 0); err != nil {
			return err
		}
		vals[a] = tr.close(chains[a], ops)
	}
	if !tr.stochastic {
		tr.chains = chains
	}
	tr.value = sumTraces(vals)

	return nil
}

// exact returns the exact trace of ops without touching the cache.
func (tr *TraceEstimator) exact(ops []Operator) (traceValue, error) {
	vals := make([]traceValue, tr.sp.NumSubspaces())
	for a := range vals {
		root, err := tr.rootChain(a)
		if err != nil {
			return zeroTrace, err
		}
		c, err := tr.extend(root, ops, 0)
		if err != nil {
			return zeroTrace, err
		}
		vals[a] = tr.close(c, ops)
	}

	return sumTraces(vals), nil
}

// extend copies entries 0..first of prefix and propagates the remaining
// operators of ops.
//
// Step k: X_k = O_k · e^{−(τ_k − τ_{k−1})E} · X_{k−1}, then rescale by max |X_k|.
func (tr *TraceEstimator) extend(prefix chain, ops []Operator, first int) (chain, error) {
	n := len(ops)
	out := chain{sub: make([]int, n+1), x: make([]*matrix.Dense, n+1), logs: make([]float64, n+1)}
	copy(out.sub, prefix.sub[:first+1])
	copy(out.x, prefix.x[:first+1])
	copy(out.logs, prefix.logs[:first+1])

	var (
		k, r, c int
		dt      float64
		scale   float64
	)
	for k = first + 1; k <= n; k++ {
		s := out.sub[k-1]
		if s < 0 {
			out.sub[k] = -1
			continue
		}
		op := ops[k-1]
		p := tr.linear[op.Block][op.Inner]
		to := tr.sp.Connection(p, op.Dagger, s)
		if to < 0 {
			out.sub[k] = -1
			continue
		}
		dt = op.Tau
		if k > 1 {
			dt -= ops[k-2].Tau
		}
		y := out.x[k-1].CloneDense()
		cols := y.Cols()
		data := y.Data()
		for r, e := range tr.sp.Subspace(s).Energies {
			w := math.Exp(-dt * e)
			for c = 0; c < cols; c++ {
				data[r*cols+c] *= w
			}
		}
		z, err := matrix.Mul(tr.sp.OperatorMatrix(p, op.Dagger, s), y)
		if err != nil {
			return chain{}, err
		}
		scale = 0
		for _, v := range z.Data() {
			scale = math.Max(scale, math.Abs(v))
		}
		if scale == 0 {
			out.sub[k] = -1
			continue
		}
		zd := z.Data()
		for r = range zd {
			zd[r] /= scale
		}
		out.sub[k], out.x[k], out.logs[k] = to, z, out.logs[k-1]+math.Log(scale)
	}

	return out, nil
}

// close applies e^{−(β−τ_n)E} and takes the trace of a finished chain.
func (tr *TraceEstimator) close(c chain, ops []Operator) traceValue {
	n := len(ops)
	if c.sub[n] != c.sub[0] {
		return zeroTrace
	}
	last := 0.0
	if n > 0 {
		last = ops[n-1].Tau
	}
	x := c.x[n]
	val := 0.0
	for i, e := range tr.sp.Subspace(c.sub[0]).Energies {
		v, _ := x.At(i, i)
		val += math.Exp(-(tr.beta-last)*e) * v
	}
	if val == 0 {
		return zeroTrace
	}

	return traceValue{sign: math.Copysign(1, val), logAbs: c.logs[n] + math.Log(math.Abs(val))}
}

// propose evaluates ops, whose entries before index first match the
// committed list. The committed state is not modified.
func (tr *TraceEstimator) propose(ops []Operator, first int, rng *rand.Rand) (traceProposal, error) {
	if tr.stochastic {
		v, err := tr.estimate(ops, rng)

		return traceProposal{value: v}, err
	}
	n := len(tr.chains)
	p := traceProposal{chains: make([]chain, n)}
	vals := make([]traceValue, n)
	var err error
	for a := 0; a < n; a++ {
		if p.chains[a], err = tr.extend(tr.chains[a], ops, first); err != nil {
			return traceProposal{}, err
		}
		vals[a] = tr.close(p.chains[a], ops)
	}
	p.value = sumTraces(vals)

	return p, nil
}

// commit installs an accepted proposal.
func (tr *TraceEstimator) commit(p traceProposal) {
	if !tr.stochastic {
		tr.chains = p.chains
	}
	tr.value = p.value
}

// alive walks the subspace connections of ops from a and reports whether
// the chain returns to a.
func (tr *TraceEstimator) alive(a int, ops []Operator) bool {
	s := a
	for _, op := range ops {
		if s = tr.sp.Connection(tr.linear[op.Block][op.Inner], op.Dagger, s); s < 0 {
			return false
		}
	}

	return s == a
}

// estimate is the Russian-roulette trace: the dominant non-vanishing chain is
// always evaluated, chain a with probability
// p_a = max(pMin, min(1, e^{−β(E_min,a − E_min,dom)})) and weight 1/p_a.
func (tr *TraceEstimator) estimate(ops []Operator, rng *rand.Rand) (traceValue, error) {
	n := tr.sp.NumSubspaces()
	dom := -1
	live := make([]bool, n)
	for a := 0; a < n; a++ {
		if live[a] = tr.alive(a, ops); live[a] {
			if dom < 0 || tr.sp.Subspace(a).MinEnergy() < tr.sp.Subspace(dom).MinEnergy() {
				dom = a
			}
		}
	}
	if dom < 0 {
		return zeroTrace, nil
	}
	eDom := tr.sp.Subspace(dom).MinEnergy()
	vals := make([]traceValue, 0, n)
	for a := 0; a < n; a++ {
		if !live[a] {
			continue
		}
		p := 1.0
		if a != dom {
			p = math.Max(tr.pMin, math.Min(1, math.Exp(-tr.beta*(tr.sp.Subspace(a).MinEnergy()-eDom))))
			if rng.Float64() >= p {
				continue
			}
		}
		root, err := tr.rootChain(a)
		if err != nil {
			return zeroTrace, err
		}
		c, err := tr.extend(root, ops, 0)
		if err != nil {
			return zeroTrace, err
		}
		v := tr.close(c, ops)
		v.logAbs -= math.Log(p)
		vals = append(vals, v)
	}

	return sumTraces(vals), nil
}
