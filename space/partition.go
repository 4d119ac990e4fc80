package space

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// components labels Fock states by connected component of the graph whose
// edges are the non-zero entries of cols. Breadth-first, visiting states in
// ascending order so labels are deterministic.
//
// Complexity: O(states + entries).
func components(cols [][]entry) ([]int, int) {
	n := len(cols)
	label := make([]int, n)
	for i := range label {
		label[i] = -1
	}
	var (
		next  int
		queue = make([]uint32, 0, n)
	)
	for s0 := 0; s0 < n; s0++ {
		if label[s0] >= 0 {
			continue
		}
		queue = append(queue[:0], uint32(s0))
		label[s0] = next
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			for _, e := range cols[u] {
				if label[e.to] < 0 {
					label[e.to] = next
					queue = append(queue, e.to)
				}
			}
		}
		next++
	}

	return label, next
}

// unionFind is a disjoint-set forest over component labels.
type unionFind struct{ parent []int }

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}

	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}

	return x
}

// union joins the sets of a and b; the smaller root wins. Reports a change.
func (uf *unionFind) union(a, b int) bool {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return false
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra

	return true
}

// sectorKey renders the quantum-number eigenvalues of a state, rounded to tol.
func sectorKey(vals []float64, tol float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatInt(int64(math.Round(v/tol)), 10)
	}

	return strings.Join(parts, "|")
}

// quantumSectors merges components sharing the eigenvalues of every diagonal
// quantum-number operator. Returns ErrNotDiagonal on off-diagonal entries.
func quantumSectors(uf *unionFind, label []int, qcols [][][]entry, tol float64) error {
	bySector := make(map[string]int)
	vals := make([]float64, len(qcols))
	for s := range label {
		for q, cols := range qcols {
			vals[q] = 0
			for _, e := range cols[s] {
				if int(e.to) != s {
					return fmt.Errorf("quantum number %d at state %d: %w", q, s, ErrNotDiagonal)
				}
				vals[q] = e.v
			}
		}
		k := sectorKey(vals, tol)
		if first, ok := bySector[k]; ok {
			uf.union(first, label[s])
			continue
		}
		bySector[k] = label[s]
	}

	return nil
}

// mergeByOperators unions the target classes of every operator column set
// until each class maps into at most one class under every operator.
//
// Implementation:
//   - For each operator and each source class, collect the classes hit by the
//     images of its states; if more than one, merge them.
//   - Repeat until a full pass changes nothing (merging targets can make a
//     merged class a multi-target source).
func mergeByOperators(uf *unionFind, label []int, ops [][][]entry) {
	changed := true
	targets := make(map[int]int)
	for changed {
		changed = false
		for _, cols := range ops {
			for k := range targets {
				delete(targets, k)
			}
			for s, col := range cols {
				if len(col) == 0 {
					continue
				}
				src := uf.find(label[s])
				for _, e := range col {
					dst := uf.find(label[e.to])
					if prev, ok := targets[src]; ok {
						if uf.union(prev, dst) {
							changed = true
						}
						targets[src] = uf.find(prev)
						continue
					}
					targets[src] = dst
				}
			}
		}
	}
}

// collect turns the final classes into sorted state lists, ordered by their
// lowest Fock state.
func collect(uf *unionFind, label []int) [][]uint32 {
	byRoot := make(map[int][]uint32)
	for s := range label {
		r := uf.find(label[s])
		byRoot[r] = append(byRoot[r], uint32(s))
	}
	out := make([][]uint32, 0, len(byRoot))
	for _, states := range byRoot {
		out = append(out, states)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })

	return out
}
