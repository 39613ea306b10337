package aggregator

import (
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
)

// Average is a one-shot Averager over already resampled iterations, indexed
// by iteration number.
func Average(gridLen int, iterations []map[types.ParticipantID][]float64) (types.AveragedSeries, error) {
	av := NewAverager(gridLen)
	for i, it := range iterations {
		if it == nil {
			continue
		}
		if err := av.Update(i, it); err != nil {
			return nil, err
		}
	}
	return av.Flush(), nil
}
