package mc_test

import "math/rand"

// ringMove walks a ring of states with target weights w.
type ringMove struct {
	w       []float64
	x, next int
}

func (m *ringMove) Propose(rng *rand.Rand) float64 {
	n := len(m.w)
	m.next = (m.x + 1) % n
	if rng.Intn(2) == 0 {
		m.next = (m.x + n - 1) % n
	}

	return m.w[m.next] / m.w[m.x]
}

func (m *ringMove) Accept() float64 {
	r := m.w[m.next] / m.w[m.x]
	m.x = m.next
	if r < 0 {
		return -1
	}

	return 1
}

func (m *ringMove) Reject() {}

// visits counts the state of a ring per measurement.
type visits struct {
	ring   *ringMove
	counts []int
	signs  []float64
}

func (v *visits) Record(sign float64) {
	v.counts[v.ring.x]++
	v.signs = append(v.signs, sign)
}
