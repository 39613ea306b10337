package scaphandre

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/DataDog/sketches-go/ddsketch/mapping"
	"github.com/DataDog/sketches-go/ddsketch/store"
)

const DefaultRelativeAccuracy = 0.01

// ConsumerSummary is the power drawn by one executable, in microwatts, over
// every report of every iteration it appeared in.
type ConsumerSummary struct {
	Exe        string  `json:"exe"`
	Container  string  `json:"container,omitempty"`
	Iterations int     `json:"iterations"`
	Samples    int     `json:"samples"`
	Mean       float64 `json:"mean_uw"`
	P50        float64 `json:"p50_uw"`
	P95        float64 `json:"p95_uw"`
	Max        float64 `json:"max_uw"`
}

type consumerKey struct {
	exe       string
	container string
}

type consumerStats struct {
	sketch     *ddsketch.DDSketch
	sum        float64
	max        float64
	count      int
	iterations int
	lastIter   int
}

func newSketch(alpha float64) (*ddsketch.DDSketch, error) {
	m, err := mapping.NewLogarithmicMapping(alpha)
	if err != nil {
		return nil, err
	}
	return ddsketch.NewDDSketch(m, store.NewDenseStore(), store.NewDenseStore()), nil
}

// Summarize aggregates consumption per executable base name and container.
func Summarize(iterations [][]Report, alpha float64) ([]ConsumerSummary, error) {
	stats := make(map[consumerKey]*consumerStats)

	for i, reports := range iterations {
		for _, rep := range reports {
			for _, c := range rep.Consumers {
				key := consumerKey{exe: filepath.Base(c.Exe), container: c.ContainerName()}
				st, ok := stats[key]
				if !ok {
					sk, err := newSketch(alpha)
					if err != nil {
						return nil, fmt.Errorf("power sketch: %w", err)
					}
					st = &consumerStats{sketch: sk, lastIter: -1}
					stats[key] = st
				}
				if err := st.sketch.Add(c.Consumption); err != nil {
					return nil, fmt.Errorf("power sample of %s: %w", key.exe, err)
				}
				st.sum += c.Consumption
				if st.count == 0 || c.Consumption > st.max {
					st.max = c.Consumption
				}
				st.count++
				if st.lastIter != i {
					st.iterations++
					st.lastIter = i
				}
			}
		}
	}

	out := make([]ConsumerSummary, 0, len(stats))
	for key, st := range stats {
		s := ConsumerSummary{
			Exe:        key.exe,
			Container:  key.container,
			Iterations: st.iterations,
			Samples:    st.count,
			Mean:       st.sum / float64(st.count),
			Max:        st.max,
		}
		s.P50, _ = st.sketch.GetValueAtQuantile(0.50)
		s.P95, _ = st.sketch.GetValueAtQuantile(0.95)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		if out[i].Exe != out[j].Exe {
			return out[i].Exe < out[j].Exe
		}
		return out[i].Container < out[j].Container
	})
	return out, nil
}
