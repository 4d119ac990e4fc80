package operators

// before reports whether factor a belongs strictly left of b in normal order:
// creators first (ascending index), then annihilators (descending index).
func before(a, b Factor) bool {
	if a.Dagger != b.Dagger {
		return a.Dagger
	}
	if a.Dagger {
		return a.Index.Less(b.Index)
	}

	return b.Index.Less(a.Index)
}

// normalOrder rewrites coef·m as a sum of canonical terms.
//
// Implementation:
//   - Stage 1: scan for the first adjacent pair (x, y) not in order.
//   - Stage 2: equal factors annihilate the monomial (c c = c† c† = 0).
//     A pair c_i c†_i becomes δ − c†_i c_i; any other pair swaps with a sign.
//   - Stage 3: recurse on the rewritten monomial(s) until no pair is out of order.
//
// Complexity: exponential in the number of c c† contractions, which stays
// tiny for the quartic Hamiltonians built here.
func normalOrder(coef float64, m Monomial) []Term {
	var (
		i    int
		x, y Factor
	)
	for i = 0; i+1 < len(m); i++ {
		x, y = m[i], m[i+1]
		if x == y {
			return nil
		}
		if before(x, y) {
			continue
		}
		swapped := make(Monomial, len(m))
		copy(swapped, m)
		swapped[i], swapped[i+1] = y, x
		out := normalOrder(-coef, swapped)
		if !x.Dagger && y.Dagger && x.Index == y.Index {
			contracted := make(Monomial, 0, len(m)-2)
			contracted = append(contracted, m[:i]...)
			contracted = append(contracted, m[i+2:]...)
			out = append(out, normalOrder(coef, contracted)...)
		}

		return out
	}

	return []Term{{Coef: coef, Monomial: m}}
}
