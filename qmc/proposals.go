package qmc

import "math"

// Bin layout of ProposalHistogram.
const (
	// LengthBins splits the segment length |τ_c − τ_c†| ∈ [0, β) into equal bins.
	LengthBins = 50
	// TraceDecades bounds the log10 |Tr'/Tr| axis to [−TraceDecades, TraceDecades).
	TraceDecades = 20
)

// ProposalHistogram collects diagnostics of one move: the segment length of
// every proposal that reached the trace and of every accepted one, the
// decimal magnitude of the trace ratio and the number of vanished traces.
type ProposalHistogram struct {
	name       string
	block      int
	beta       float64
	proposed   []int64
	accepted   []int64
	traceRatio []int64 // bin d: log10|Tr'/Tr| ∈ [d−TraceDecades, d−TraceDecades+1), clamped
	vanished   int64
	total      int64
}

func newProposalHistogram(name string, block int, beta float64) *ProposalHistogram {
	return &ProposalHistogram{
		name:       name,
		block:      block,
		beta:       beta,
		proposed:   make([]int64, LengthBins),
		accepted:   make([]int64, LengthBins),
		traceRatio: make([]int64, 2*TraceDecades),
	}
}

// Name is the name of the observed move.
func (h *ProposalHistogram) Name() string { return h.name }

// Block returns the block of the observed move.
func (h *ProposalHistogram) Block() int { return h.block }

// Total returns the number of proposals that reached the trace.
func (h *ProposalHistogram) Total() int64 { return h.total }

// Vanished returns the number of proposals whose trace was zero.
func (h *ProposalHistogram) Vanished() int64 { return h.vanished }

// Proposed returns a copy of the proposed segment-length counts.
func (h *ProposalHistogram) Proposed() []int64 { return append([]int64(nil), h.proposed...) }

// Accepted returns a copy of the accepted segment-length counts.
func (h *ProposalHistogram) Accepted() []int64 { return append([]int64(nil), h.accepted...) }

// TraceRatio returns a copy of the log10 trace-ratio counts.
func (h *ProposalHistogram) TraceRatio() []int64 { return append([]int64(nil), h.traceRatio...) }

// AcceptanceByLength returns accepted/proposed per length bin, 0 for empty bins.
func (h *ProposalHistogram) AcceptanceByLength() []float64 {
	out := make([]float64, LengthBins)
	for k, n := range h.proposed {
		if n > 0 {
			out[k] = float64(h.accepted[k]) / float64(n)
		}
	}

	return out
}

// Merge adds the counts of o.
// Errors: ErrBlockMismatch when o observes another move.
func (h *ProposalHistogram) Merge(o *ProposalHistogram) error {
	if o.name != h.name || o.block != h.block {
		return ErrBlockMismatch
	}
	for k := range h.proposed {
		h.proposed[k] += o.proposed[k]
		h.accepted[k] += o.accepted[k]
	}
	for d := range h.traceRatio {
		h.traceRatio[d] += o.traceRatio[d]
	}
	h.vanished += o.vanished
	h.total += o.total

	return nil
}

func (h *ProposalHistogram) lengthBin(length float64) int {
	k := int(length / h.beta * LengthBins)
	if k >= LengthBins {
		k = LengthBins - 1
	}

	return k
}

// observe records a proposal with trace next against the current trace cur.
// A nil histogram records nothing.
func (h *ProposalHistogram) observe(length float64, next, cur traceValue) {
	if h == nil {
		return
	}
	h.total++
	h.proposed[h.lengthBin(length)]++
	if next.isZero() {
		h.vanished++
		return
	}
	d := int(math.Floor((next.logAbs-cur.logAbs)/math.Ln10)) + TraceDecades
	d = max(0, min(d, 2*TraceDecades-1))
	h.traceRatio[d]++
}

func (h *ProposalHistogram) accept(length float64) {
	if h == nil {
		return
	}
	h.accepted[h.lengthBin(length)]++
}
