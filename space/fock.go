package space

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/katalvlaran/cthyb/operators"
)

// entry is one non-zero matrix element <to| X |from> = v.
type entry struct {
	to uint32
	v  float64
}

// resolvedTerm is a Hamiltonian term with factors mapped to bit positions.
type resolvedTerm struct {
	coef   float64
	dagger []bool
	bit    []uint
}

// applyFactor acts with c†_p (dagger) or c_p on Fock state s.
// Returns ok == false when the result vanishes.
func applyFactor(dagger bool, p uint, s uint32) (uint32, float64, bool) {
	mask := uint32(1) << p
	occupied := s&mask != 0
	if dagger == occupied {
		return 0, 0, false
	}
	sign := 1.0
	if bits.OnesCount32(s&(mask-1))%2 == 1 {
		sign = -1
	}

	return s ^ mask, sign, true
}

// apply acts with a resolved monomial, rightmost factor first.
func (t resolvedTerm) apply(s uint32) (uint32, float64, bool) {
	amp := t.coef
	var (
		sign float64
		ok   bool
	)
	for i := len(t.bit) - 1; i >= 0; i-- {
		if s, sign, ok = applyFactor(t.dagger[i], t.bit[i], s); !ok {
			return 0, 0, false
		}
		amp *= sign
	}

	return s, amp, true
}

// resolve maps every factor of e onto fops positions.
func resolve(e operators.Expression, fops *operators.FundamentalSet) ([]resolvedTerm, error) {
	terms := e.Terms()
	out := make([]resolvedTerm, 0, len(terms))
	for _, t := range terms {
		rt := resolvedTerm{coef: t.Coef, dagger: make([]bool, len(t.Monomial)), bit: make([]uint, len(t.Monomial))}
		for i, f := range t.Monomial {
			p, err := fops.Position(f.Index)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f, ErrUnknownOperator)
			}
			rt.dagger[i] = f.Dagger
			rt.bit[i] = uint(p)
		}
		out = append(out, rt)
	}

	return out, nil
}

// sparseColumns returns, for every Fock state s, the non-zero elements X|s>.
// Elements reaching the same target are summed.
func sparseColumns(terms []resolvedTerm, nStates int) [][]entry {
	cols := make([][]entry, nStates)
	acc := make(map[uint32]float64)
	var (
		to  uint32
		amp float64
		ok  bool
	)
	for s := 0; s < nStates; s++ {
		for k := range acc {
			delete(acc, k)
		}
		for _, t := range terms {
			if to, amp, ok = t.apply(uint32(s)); ok {
				acc[to] += amp
			}
		}
		for k, v := range acc {
			if v != 0 {
				cols[s] = append(cols[s], entry{to: k, v: v})
			}
		}
		sort.Slice(cols[s], func(i, j int) bool { return cols[s][i].to < cols[s][j].to })
	}

	return cols
}
