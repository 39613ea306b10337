package types

import "strconv"

const (
	DefaultResampleInterval = 0.01

	// Marker line written by nethogs at every sampling tick.
	RefreshMarker = "Refreshing"

	// Executable substring identifying the capture process in power logs.
	CaptureSentinel = "nethogs"

	CaptureRecordPrefix   = "nethogs_"
	IterationRecordPrefix = "iteration_"

	TimingFile = "time.txt"
	PowerFile  = "scaphandre.json"

	TrimTail  = "tail"
	TrimEdges = "edges"
)

// CaptureFile is the raw per-iteration log name inside the results directory.
func CaptureFile(iteration int) string {
	return CaptureRecordPrefix + strconv.Itoa(iteration) + ".txt"
}
