package qmc

import "gonum.org/v1/gonum/floats"

// OrderHistogram counts how often block b sits at each expansion order k_b.
type OrderHistogram struct {
	cfg    *Configuration
	block  int
	counts []int64
	total  int64
}

// NewOrderHistogram returns an empty histogram of block b.
func NewOrderHistogram(cfg *Configuration, b int) *OrderHistogram {
	return &OrderHistogram{cfg: cfg, block: b}
}

// Name identifies the measurement.
func (h *OrderHistogram) Name() string {
	return "pert_order_" + h.cfg.model.Structure.Block(h.block).Name
}

// Record counts the current order; the sign is ignored.
func (h *OrderHistogram) Record(_ float64) {
	h.add(h.cfg.Order(h.block), 1)
}

func (h *OrderHistogram) add(k int, n int64) {
	for len(h.counts) <= k {
		h.counts = append(h.counts, 0)
	}
	h.counts[k] += n
	h.total += n
}

// Block returns the block index.
func (h *OrderHistogram) Block() int { return h.block }

// Total returns the number of recorded events.
func (h *OrderHistogram) Total() int64 { return h.total }

// Counts returns a copy of the raw counts indexed by order.
func (h *OrderHistogram) Counts() []int64 { return append([]int64(nil), h.counts...) }

// Merge adds the counts of o.
func (h *OrderHistogram) Merge(o *OrderHistogram) {
	for k, n := range o.counts {
		if n != 0 {
			h.add(k, n)
		}
	}
}

// Normalized returns the counts divided by Total; nil when empty.
func (h *OrderHistogram) Normalized() []float64 {
	if h.total == 0 {
		return nil
	}
	out := make([]float64, len(h.counts))
	for k, n := range h.counts {
		out[k] = float64(n)
	}
	floats.Scale(1/float64(h.total), out)

	return out
}
