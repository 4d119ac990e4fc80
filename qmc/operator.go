package qmc

import "sort"

// Operator is one inserted c (Dagger == false) or c† at imaginary time Tau,
// acting on inner orbital Inner of block Block.
type Operator struct {
	Tau    float64
	Block  int
	Inner  int
	Dagger bool
}

// search returns the number of operators with time < tau and whether tau is taken.
func search(ops []Operator, tau float64) (int, bool) {
	i := sort.Search(len(ops), func(k int) bool { return ops[k].Tau >= tau })
	return i, i < len(ops) && ops[i].Tau == tau
}

// withInserted returns a fresh ascending list with x and y added, and the
// lowest index that differs from ops.
func withInserted(ops []Operator, x, y Operator) ([]Operator, int) {
	if y.Tau < x.Tau {
		x, y = y, x
	}
	i, _ := search(ops, x.Tau)
	j, _ := search(ops, y.Tau)
	out := make([]Operator, 0, len(ops)+2)
	out = append(out, ops[:i]...)
	out = append(out, x)
	out = append(out, ops[i:j]...)
	out = append(out, y)
	out = append(out, ops[j:]...)

	return out, i
}

// withRemoved returns a fresh list without positions i and j, and the lowest
// index that differs from ops.
func withRemoved(ops []Operator, i, j int) ([]Operator, int) {
	if j < i {
		i, j = j, i
	}
	out := make([]Operator, 0, len(ops)-2)
	out = append(out, ops[:i]...)
	out = append(out, ops[i+1:j]...)
	out = append(out, ops[j+1:]...)

	return out, i
}

// parity returns (−1)^n.
func parity(n int) float64 {
	if n%2 == 0 {
		return 1
	}

	return -1
}
