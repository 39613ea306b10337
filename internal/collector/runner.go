package collector

import (
	"fmt"

	"github.com/ALEYI17/InfraSight_traffic/internal/collector/resample"
	"github.com/ALEYI17/InfraSight_traffic/pkg/logutil"
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
	"go.uber.org/zap"
)

// CollectIteration resamples every participant of one parsed iteration onto
// grid, treating consecutive samples as cadence seconds apart.
func CollectIteration(it *types.IterationSeries, cadence float64, grid resample.Grid) (map[types.ParticipantID][]float64, error) {
	logger := logutil.GetLogger()

	out := make(map[types.ParticipantID][]float64, len(it.Participants))
	for _, id := range types.SortedIDs(it.Participants) {
		raw := it.Participants[id]
		series, err := resample.Resample(raw, cadence, grid)
		if err != nil {
			return nil, fmt.Errorf("iteration %d participant %d (%s): %w", it.Index, id, nameOf(it, id), err)
		}
		out[id] = series

		logger.Debug("Resampled participant",
			zap.Int("iteration", it.Index),
			zap.Int("participant", int(id)),
			zap.Int("raw_samples", len(raw)),
			zap.Int("grid_points", grid.Len))
	}
	return out, nil
}

func nameOf(it *types.IterationSeries, id types.ParticipantID) string {
	if int(id) < len(it.Names) {
		return it.Names[id]
	}
	return "?"
}
