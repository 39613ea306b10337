package types

import "sort"

// ParticipantID is the canonical participant index assigned by renumbering
// the path-derived identifiers of one iteration.
type ParticipantID int

// IterationSeries holds the cumulative byte counters of one iteration.
type IterationSeries struct {
	Index        int
	Participants map[ParticipantID][]float64
	// Names[id] is the identifier the participant had in the raw log.
	Names     []string
	Refreshes int
}

// Len is the common series length of the iteration.
func (s *IterationSeries) Len() int {
	n := 0
	for _, v := range s.Participants {
		if len(v) > n {
			n = len(v)
		}
	}
	return n
}

// AveragedSeries is one mean series per participant on the shared grid.
type AveragedSeries map[ParticipantID][]float64

// SortedIDs returns the keys of m in ascending order.
func SortedIDs[V any](m map[ParticipantID]V) []ParticipantID {
	ids := make([]ParticipantID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
