package operators

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// coefEpsilon drops terms whose coefficient cancels to numerical zero.
const coefEpsilon = 1e-14

// Expression is a sum of normal-ordered monomials with real coefficients.
// The zero value is the zero operator. Expressions are immutable: every
// method returns a new value.
type Expression struct {
	terms map[string]Term
}

// Identity returns the expression 1·𝟙 scaled by c.
func Identity(c float64) Expression {
	return fromTerms([]Term{{Coef: c}})
}

// C returns the annihilation operator c(block, inner).
func C(block string, inner int) Expression {
	return fromTerms([]Term{{Coef: 1, Monomial: Monomial{{Dagger: false, Index: Index{block, inner}}}}})
}

// CDag returns the creation operator c†(block, inner).
func CDag(block string, inner int) Expression {
	return fromTerms([]Term{{Coef: 1, Monomial: Monomial{{Dagger: true, Index: Index{block, inner}}}}})
}

// N returns the number operator c†(block, inner) c(block, inner).
func N(block string, inner int) Expression {
	return CDag(block, inner).Mul(C(block, inner))
}

// fromTerms normal-orders and collects raw terms.
func fromTerms(raw []Term) Expression {
	e := Expression{terms: make(map[string]Term, len(raw))}
	for _, t := range raw {
		for _, nt := range normalOrder(t.Coef, t.Monomial) {
			e.accumulate(nt)
		}
	}

	return e
}

// accumulate adds an already normal-ordered term in place.
func (e *Expression) accumulate(t Term) {
	if e.terms == nil {
		e.terms = make(map[string]Term)
	}
	k := key(t.Monomial)
	if old, ok := e.terms[k]; ok {
		old.Coef += t.Coef
		if math.Abs(old.Coef) < coefEpsilon {
			delete(e.terms, k)
			return
		}
		e.terms[k] = old
		return
	}
	if math.Abs(t.Coef) < coefEpsilon {
		return
	}
	e.terms[k] = Term{Coef: t.Coef, Monomial: append(Monomial(nil), t.Monomial...)}
}

// Terms returns the terms sorted by degree then lexically by monomial key.
// The order is deterministic; callers may rely on it.
func (e Expression) Terms() []Term {
	out := make([]Term, 0, len(e.terms))
	for _, t := range e.terms {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Monomial) != len(out[j].Monomial) {
			return len(out[i].Monomial) < len(out[j].Monomial)
		}

		return key(out[i].Monomial) < key(out[j].Monomial)
	})

	return out
}

// Len returns the number of non-zero terms.
func (e Expression) Len() int { return len(e.terms) }

// IsZero reports whether no term survives.
func (e Expression) IsZero() bool { return len(e.terms) == 0 }

// Add returns e + o.
func (e Expression) Add(o Expression) Expression {
	out := e.clone()
	for _, t := range o.terms {
		out.accumulate(t)
	}

	return out
}

// Sub returns e - o.
func (e Expression) Sub(o Expression) Expression {
	return e.Add(o.Scale(-1))
}

// Scale returns c·e.
func (e Expression) Scale(c float64) Expression {
	out := Expression{terms: make(map[string]Term, len(e.terms))}
	for _, t := range e.terms {
		out.accumulate(Term{Coef: c * t.Coef, Monomial: t.Monomial})
	}

	return out
}

// Mul returns the operator product e·o, normal ordered.
// Complexity: O(|e|·|o|·2^d) in the worst case, d the product degree.
func (e Expression) Mul(o Expression) Expression {
	out := Expression{terms: make(map[string]Term)}
	var prod Monomial
	for _, a := range e.terms {
		for _, b := range o.terms {
			prod = make(Monomial, 0, len(a.Monomial)+len(b.Monomial))
			prod = append(prod, a.Monomial...)
			prod = append(prod, b.Monomial...)
			for _, nt := range normalOrder(a.Coef*b.Coef, prod) {
				out.accumulate(nt)
			}
		}
	}

	return out
}

// Dagger returns the Hermitian conjugate e†.
func (e Expression) Dagger() Expression {
	raw := make([]Term, 0, len(e.terms))
	var (
		m Monomial
		i int
	)
	for _, t := range e.terms {
		m = make(Monomial, len(t.Monomial))
		for i = range t.Monomial {
			f := t.Monomial[len(t.Monomial)-1-i]
			m[i] = Factor{Dagger: !f.Dagger, Index: f.Index}
		}
		raw = append(raw, Term{Coef: t.Coef, Monomial: m})
	}

	return fromTerms(raw)
}

// IsHermitian reports whether e equals e† within tol on every coefficient.
func (e Expression) IsHermitian(tol float64) bool {
	diff := e.Sub(e.Dagger())
	for _, t := range diff.terms {
		if math.Abs(t.Coef) > tol {
			return false
		}
	}

	return true
}

// Indices returns every orbital index touched by e, sorted.
func (e Expression) Indices() []Index {
	seen := make(map[Index]struct{})
	for _, t := range e.terms {
		for _, f := range t.Monomial {
			seen[f.Index] = struct{}{}
		}
	}
	out := make([]Index, 0, len(seen))
	for ix := range seen {
		out = append(out, ix)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })

	return out
}

// String renders the expression as a sum, terms in Terms() order.
func (e Expression) String() string {
	if e.IsZero() {
		return "0"
	}
	var sb strings.Builder
	for i, t := range e.Terms() {
		if i > 0 {
			sb.WriteString(" + ")
		}
		sb.WriteString(strconv.FormatFloat(t.Coef, 'g', -1, 64))
		for _, f := range t.Monomial {
			sb.WriteString("*")
			sb.WriteString(f.String())
		}
	}

	return sb.String()
}

func (e Expression) clone() Expression {
	out := Expression{terms: make(map[string]Term, len(e.terms))}
	for k, t := range e.terms {
		out.terms[k] = t
	}

	return out
}

// key is a stable textual identity of a normal-ordered monomial.
func key(m Monomial) string {
	var sb strings.Builder
	for _, f := range m {
		if f.Dagger {
			sb.WriteString("+")
		} else {
			sb.WriteString("-")
		}
		sb.WriteString(f.Index.String())
		sb.WriteString(";")
	}

	return sb.String()
}
