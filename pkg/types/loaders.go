package types

// IterationLoader yields the parsed raw series of one iteration.
type IterationLoader interface {
	Load(iteration int) (*IterationSeries, error)
}
