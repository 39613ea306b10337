package aggregator

import "github.com/ALEYI17/InfraSight_traffic/pkg/types"

// Speed is the backward difference of a cumulative series divided by the
// grid interval, in units per second. The first point is always 0.
func Speed(series []float64, interval float64) []float64 {
	out := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		out[i] = (series[i] - series[i-1]) / interval
	}
	return out
}

// Speeds applies Speed to every participant.
func Speeds(avg types.AveragedSeries, interval float64) types.AveragedSeries {
	out := make(types.AveragedSeries, len(avg))
	for id, s := range avg {
		out[id] = Speed(s, interval)
	}
	return out
}
