package aggregator

import (
	"fmt"

	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
)

// Averager merges resampled iterations into one mean series per participant.
// A participant only contributes to the mean of the iterations it appears in.
type Averager struct {
	participants map[types.ParticipantID]*accumulator
	gridLen      int
	iterations   int
}

func NewAverager(gridLen int) *Averager {
	return &Averager{
		participants: make(map[types.ParticipantID]*accumulator),
		gridLen:      gridLen,
	}
}

func (av *Averager) ensureParticipant(id types.ParticipantID) *accumulator {
	acc, ok := av.participants[id]
	if !ok {
		acc = newAccumulator(av.gridLen)
		av.participants[id] = acc
	}
	return acc
}

// Update folds the resampled series of one iteration into the running sums.
func (av *Averager) Update(iteration int, series map[types.ParticipantID][]float64) error {
	// A rejected iteration must leave the sums untouched.
	for id, s := range series {
		if len(s) != av.gridLen {
			return fmt.Errorf("%w: iteration %d participant %d has %d points, grid has %d",
				types.ErrGridMismatch, iteration, id, len(s), av.gridLen)
		}
		if acc, ok := av.participants[id]; ok && acc.lastIteration == iteration {
			return fmt.Errorf("iteration %d already averaged for participant %d", iteration, id)
		}
	}
	for _, id := range types.SortedIDs(series) {
		acc := av.ensureParticipant(id)
		acc.add(series[id])
		acc.lastIteration = iteration
	}
	av.iterations++
	return nil
}

// Iterations is the number of iterations folded in so far.
func (av *Averager) Iterations() int {
	return av.iterations
}

// Flush returns the arithmetic mean per participant.
func (av *Averager) Flush() types.AveragedSeries {
	out := make(types.AveragedSeries, len(av.participants))
	for id, acc := range av.participants {
		out[id] = acc.mean()
	}
	return out
}
