package loaders

import (
	"fmt"

	"github.com/ALEYI17/InfraSight_traffic/internal/collector/timeserie"
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
)

// NewTrimmer returns the edge trimming policy registered under name.
func NewTrimmer(name string) (types.Trimmer, error) {
	switch name {
	case types.TrimTail, "":
		return timeserie.TailTrimmer{}, nil
	case types.TrimEdges:
		return timeserie.EdgeTrimmer{}, nil
	default:
		return nil, fmt.Errorf("unsupported trim policy %q", name)
	}
}
