// Package resample aligns irregularly paced cumulative series onto a shared,
// regularly spaced time grid.
package resample

import (
	"errors"
	"fmt"
	"math"

	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
)

const (
	gridTolerance = 1e-9
	// MaxGridPoints caps Grid.Len.
	MaxGridPoints = 1 << 31
)

// Grid is the set of timestamps k*Interval for k in [0, Len).
type Grid struct {
	Interval float64
	Len      int
}

// NewGrid covers [0, span) with points spaced by interval.
func NewGrid(span, interval float64) (Grid, error) {
	if interval <= 0 || math.IsNaN(interval) {
		return Grid{}, fmt.Errorf("resample interval must be positive, got %v", interval)
	}
	if span < 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return Grid{}, fmt.Errorf("grid span must not be negative, got %v", span)
	}
	// The tolerance keeps span itself off the grid when span/interval is a
	// whole number polluted by rounding.
	n := math.Ceil(span/interval - gridTolerance)
	if n < 0 {
		n = 0
	}
	if math.IsNaN(n) || n > MaxGridPoints {
		return Grid{}, fmt.Errorf("grid of %gs at %gs intervals exceeds %d points", span, interval, MaxGridPoints)
	}
	return Grid{Interval: interval, Len: int(n)}, nil
}

func (g Grid) At(k int) float64 {
	return float64(k) * g.Interval
}

// Span is the time just past the last grid point.
func (g Grid) Span() float64 {
	return g.At(g.Len)
}

var errNoSamples = errors.New("empty series")

// Resample maps raw, whose sample j is taken to be at j*cadence, onto grid.
// Each grid point takes the value of the nearest sample, ties going to the
// earlier one; points outside the sampled range take the edge value.
func Resample(raw []float64, cadence float64, grid Grid) ([]float64, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %v", types.ErrEmptyIteration, errNoSamples)
	}

	out := make([]float64, grid.Len)
	last := len(raw) - 1

	if cadence <= 0 || last == 0 {
		for k := range out {
			out[k] = raw[last]
		}
		return out, nil
	}

	for k := range out {
		pos := grid.At(k) / cadence
		j := int(math.Ceil(pos - 0.5))
		if j < 0 {
			j = 0
		} else if j > last {
			j = last
		}
		out[k] = raw[j]
	}
	return out, nil
}
