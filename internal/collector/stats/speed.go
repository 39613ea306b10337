// Package stats summarizes speed series with HDR histograms.
package stats

import (
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	histMin    = 1
	histMax    = 100 * 1024 * 1024 * 1024 // 100 GiB/s
	histSigFig = 3
)

// SpeedSummary describes the distribution of one participant's speed over
// the samples where it was transferring.
type SpeedSummary struct {
	Participant types.ParticipantID `json:"participant"`
	// Active is the number of samples with a positive speed.
	Active  int64   `json:"active_samples"`
	Idle    int64   `json:"idle_samples"`
	Mean    float64 `json:"mean"`
	P50     int64   `json:"p50"`
	P90     int64   `json:"p90"`
	P99     int64   `json:"p99"`
	Max     int64   `json:"max"`
	Clipped int64   `json:"clipped,omitempty"`
}

// SummarizeSpeed records every positive sample of speed (bytes/second). Zero
// and negative samples are counted as idle.
func SummarizeSpeed(id types.ParticipantID, speed []float64) SpeedSummary {
	h := hdrhistogram.New(histMin, histMax, histSigFig)
	sum := SpeedSummary{Participant: id}

	for _, v := range speed {
		if v <= 0 {
			sum.Idle++
			continue
		}
		value := int64(v + 0.5)
		if value < histMin {
			value = histMin
		}
		if err := h.RecordValue(value); err != nil {
			sum.Clipped++
			_ = h.RecordValue(histMax)
		}
	}

	sum.Active = h.TotalCount()
	if sum.Active == 0 {
		return sum
	}
	sum.Mean = h.Mean()
	sum.P50 = h.ValueAtQuantile(50)
	sum.P90 = h.ValueAtQuantile(90)
	sum.P99 = h.ValueAtQuantile(99)
	sum.Max = h.Max()
	return sum
}

// SummarizeSpeeds summarizes every participant, ordered by participant.
func SummarizeSpeeds(speeds types.AveragedSeries) []SpeedSummary {
	out := make([]SpeedSummary, 0, len(speeds))
	for _, id := range types.SortedIDs(speeds) {
		out = append(out, SummarizeSpeed(id, speeds[id]))
	}
	return out
}
