// Package timeserie holds the uniform-step series handed to renderers and
// the policies that trim their idle edges.
package timeserie

import "github.com/ALEYI17/InfraSight_traffic/pkg/types"

// Series is one participant's values, Step seconds apart starting at 0.
type Series struct {
	Participant types.ParticipantID `json:"participant"`
	Step        float64             `json:"step"`
	Values      []float64           `json:"values"`
}

// Duration is the time covered by the series.
func (s Series) Duration() float64 {
	return float64(len(s.Values)) * s.Step
}

// Collect pairs every participant of set with step, ordered by participant.
func Collect(set map[types.ParticipantID][]float64, step float64) []Series {
	out := make([]Series, 0, len(set))
	for _, id := range types.SortedIDs(set) {
		out = append(out, Series{Participant: id, Step: step, Values: set[id]})
	}
	return out
}
