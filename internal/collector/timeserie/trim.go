package timeserie

import (
	"math"

	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
)

// same treats NaN as equal to itself so a NaN run trims like any other.
func same(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// TrimTail drops the trailing run of values equal to the last one, keeping a
// single copy of it. A series that never changes collapses to one element,
// even when it was legitimately flat while active.
func TrimTail(series []float64) []float64 {
	if len(series) == 0 {
		return []float64{}
	}
	end := series[len(series)-1]
	i := len(series) - 1
	for i >= 0 && same(series[i], end) {
		i--
	}
	out := make([]float64, 0, i+2)
	out = append(out, series[:i+1]...)
	return append(out, end)
}

// trimIndices returns the last index of the leading run and the first index
// of the trailing run.
func trimIndices(series []float64) (start, end int) {
	for start < len(series)-1 && same(series[start], series[start+1]) {
		start++
	}
	end = len(series) - 1
	for end > 0 && same(series[end], series[end-1]) {
		end--
	}
	return start, end
}

// TrimEdges clips every series of set to the window shared by all of them:
// from the latest end of a leading constant run to one past the earliest
// start of a trailing constant run. A series left with an empty window keeps
// a single value.
func TrimEdges(set map[types.ParticipantID][]float64) map[types.ParticipantID][]float64 {
	out := make(map[types.ParticipantID][]float64, len(set))
	if len(set) == 0 {
		return out
	}

	lo, hi := 0, -1
	first := true
	for _, s := range set {
		start, end := trimIndices(s)
		if start > lo {
			lo = start
		}
		if first || end < hi {
			hi = end
			first = false
		}
	}

	for id, s := range set {
		from, to := lo, hi+2
		if to > len(s) {
			to = len(s)
		}
		if from >= to {
			// Window collapsed: keep the value where it collapsed.
			if len(s) == 0 {
				out[id] = []float64{}
				continue
			}
			if from > len(s)-1 {
				from = len(s) - 1
			}
			to = from + 1
		}
		clipped := make([]float64, to-from)
		copy(clipped, s[from:to])
		out[id] = clipped
	}
	return out
}

// TailTrimmer applies TrimTail to each series on its own.
type TailTrimmer struct{}

func (TailTrimmer) Name() string { return types.TrimTail }

func (TailTrimmer) Trim(set map[types.ParticipantID][]float64) map[types.ParticipantID][]float64 {
	out := make(map[types.ParticipantID][]float64, len(set))
	for id, s := range set {
		out[id] = TrimTail(s)
	}
	return out
}

// EdgeTrimmer applies TrimEdges.
type EdgeTrimmer struct{}

func (EdgeTrimmer) Name() string { return types.TrimEdges }

func (EdgeTrimmer) Trim(set map[types.ParticipantID][]float64) map[types.ParticipantID][]float64 {
	return TrimEdges(set)
}
