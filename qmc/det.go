package qmc

import (
	"math"

	"github.com/katalvlaran/cthyb/matrix"
)

// singularTolerance is the relative size below which a determinant ratio is
// taken as roundoff of an exactly singular matrix.
const singularTolerance = 1e-10

// deltaFunc evaluates Δ_b(τ)[i][j] for one block.
type deltaFunc func(tau float64, i, j int) float64

// detBlock holds the operators of one block and M = D⁻¹.
// Committed blocks are never mutated: every commit returns a new value.
type detBlock struct {
	size int

	rowTau   []float64 // creators
	rowInner []int
	colTau   []float64 // annihilators
	colInner []int

	// m is the k×k inverse, row-major; m[j*k+i] pairs annihilator j with creator i.
	m []float64
}

func newDetBlock(size int) *detBlock { return &detBlock{size: size} }

func (d *detBlock) order() int { return len(d.rowTau) }

// detInsert is a pending row/column addition.
type detInsert struct {
	tauR, tauC     float64
	innerR, innerC int
	mc, rm         []float64 // M·c and r·M
	s              float64   // Schur complement = det D'/det D
	scale          float64   // max(|Δ(tauR−tauC)|, |r·M·c|)
}

// singular reports a Schur complement indistinguishable from zero.
func (p detInsert) singular() bool {
	return !(math.Abs(p.s) > singularTolerance*p.scale)
}

// proposeInsert evaluates the ratio of adding creator (tauR, innerR) and
// annihilator (tauC, innerC) without touching d.
//
// S = Δ(tauR−tauC) − r·M·c with c_i = Δ(τ_i^† − tauC), r_j = Δ(tauR − τ_j).
// Complexity: O(k²).
func (d *detBlock) proposeInsert(delta deltaFunc, tauR float64, innerR int, tauC float64, innerC int) detInsert {
	k := d.order()
	p := detInsert{tauR: tauR, innerR: innerR, tauC: tauC, innerC: innerC}
	c := make([]float64, k)
	r := make([]float64, k)
	var i, j int
	for i = 0; i < k; i++ {
		c[i] = delta(d.rowTau[i]-tauC, d.rowInner[i], innerC)
		r[i] = delta(tauR-d.colTau[i], innerR, d.colInner[i])
	}
	p.mc = make([]float64, k)
	p.rm = make([]float64, k)
	for i = 0; i < k; i++ {
		for j = 0; j < k; j++ {
			p.mc[i] += d.m[i*k+j] * c[j]
			p.rm[j] += r[i] * d.m[i*k+j]
		}
	}
	rmc := 0.0
	for i = 0; i < k; i++ {
		rmc += r[i] * p.mc[i]
	}
	d0 := delta(tauR-tauC, innerR, innerC)
	p.s = d0 - rmc
	p.scale = math.Max(math.Abs(d0), math.Abs(rmc))

	return p
}

// commitInsert returns the block with p applied (block-inverse formula).
func (d *detBlock) commitInsert(p detInsert) *detBlock {
	k := d.order()
	n := k + 1
	out := &detBlock{
		size:     d.size,
		rowTau:   append(append(make([]float64, 0, n), d.rowTau...), p.tauR),
		rowInner: append(append(make([]int, 0, n), d.rowInner...), p.innerR),
		colTau:   append(append(make([]float64, 0, n), d.colTau...), p.tauC),
		colInner: append(append(make([]int, 0, n), d.colInner...), p.innerC),
		m:        make([]float64, n*n),
	}
	inv := 1 / p.s
	var i, j int
	for i = 0; i < k; i++ {
		for j = 0; j < k; j++ {
			out.m[i*n+j] = d.m[i*k+j] + p.mc[i]*p.rm[j]*inv
		}
		out.m[i*n+k] = -p.mc[i] * inv
		out.m[k*n+i] = -p.rm[i] * inv
	}
	out.m[k*n+k] = inv

	return out
}

// removeRatio is det D'/det D up to relabelling when creator i and
// annihilator j are dropped: M[j][i].
func (d *detBlock) removeRatio(i, j int) float64 {
	return d.m[j*d.order()+i]
}

// removeSingular reports a removal ratio indistinguishable from zero next to
// the other entries of row j and column i of M.
func (d *detBlock) removeSingular(i, j int) bool {
	k := d.order()
	scale := 0.0
	for n := 0; n < k; n++ {
		scale = math.Max(scale, math.Max(math.Abs(d.m[j*k+n]), math.Abs(d.m[n*k+i])))
	}

	return !(math.Abs(d.m[j*k+i]) > singularTolerance*scale)
}

// commitRemove drops creator i and annihilator j. Both are first swapped to
// the last position, then the Schur complement of the last pivot is taken.
// Complexity: O(k²).
func (d *detBlock) commitRemove(i, j int) *detBlock {
	k := d.order()
	last := k - 1
	n := last

	// rows of M follow annihilators, columns follow creators
	rowOf := func(r int) int {
		switch r {
		case j:
			return last
		case last:
			return j
		}
		return r
	}
	colOf := func(c int) int {
		switch c {
		case i:
			return last
		case last:
			return i
		}
		return c
	}

	out := &detBlock{
		size:     d.size,
		rowTau:   make([]float64, n),
		rowInner: make([]int, n),
		colTau:   make([]float64, n),
		colInner: make([]int, n),
		m:        make([]float64, n*n),
	}
	var r, c int
	for r = 0; r < n; r++ {
		out.rowTau[r], out.rowInner[r] = d.rowTau[colOf(r)], d.rowInner[colOf(r)]
		out.colTau[r], out.colInner[r] = d.colTau[rowOf(r)], d.colInner[rowOf(r)]
	}
	pivot := d.m[j*k+i]
	for r = 0; r < n; r++ {
		left := d.m[rowOf(r)*k+i]
		for c = 0; c < n; c++ {
			out.m[r*n+c] = d.m[rowOf(r)*k+colOf(c)] - left*d.m[j*k+colOf(c)]/pivot
		}
	}

	return out
}

// matrixD builds D from scratch, nil for an empty block.
func (d *detBlock) matrixD(delta deltaFunc) (*matrix.Dense, error) {
	k := d.order()
	if k == 0 {
		return nil, nil
	}
	out, err := matrix.NewDense(k, k)
	if err != nil {
		return nil, err
	}
	data := out.Data()
	var i, j int
	for i = 0; i < k; i++ {
		for j = 0; j < k; j++ {
			data[i*k+j] = delta(d.rowTau[i]-d.colTau[j], d.rowInner[i], d.colInner[j])
		}
	}

	return out, nil
}

// logDet returns sign and log|det D| recomputed from scratch.
func (d *detBlock) logDet(delta deltaFunc) (float64, float64, error) {
	dm, err := d.matrixD(delta)
	if err != nil || dm == nil {
		return 1, 0, err
	}
	logAbs, sign, err := matrix.LogDet(dm)
	if err != nil {
		return 0, math.Inf(-1), err
	}

	return sign, logAbs, nil
}

// refreshed returns a copy with M recomputed by LUP inversion of D.
func (d *detBlock) refreshed(delta deltaFunc) (*detBlock, error) {
	dm, err := d.matrixD(delta)
	if err != nil || dm == nil {
		return d, err
	}
	inv, err := matrix.Inverse(dm)
	if err != nil {
		return d, err
	}
	out := *d
	out.m = append([]float64(nil), inv.Data()...)

	return &out, nil
}
