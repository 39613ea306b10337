package aggregator

// accumulator holds the running per-grid-point sums of one participant.
type accumulator struct {
	sums       []float64
	iterations int
	// Last iteration folded in, to reject the same iteration twice.
	lastIteration int
}

func newAccumulator(gridLen int) *accumulator {
	return &accumulator{
		sums:          make([]float64, gridLen),
		lastIteration: -1,
	}
}

func (a *accumulator) add(series []float64) {
	for k, v := range series {
		a.sums[k] += v
	}
	a.iterations++
}

func (a *accumulator) mean() []float64 {
	out := make([]float64, len(a.sums))
	if a.iterations == 0 {
		return out
	}
	n := float64(a.iterations)
	for k, s := range a.sums {
		out[k] = s / n
	}
	return out
}
