package types

// Trimmer removes idle edges from a set of participant series.
type Trimmer interface {
	Name() string
	Trim(set map[ParticipantID][]float64) map[ParticipantID][]float64
}
