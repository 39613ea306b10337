package timeserie

// Point is one x/y pair of a series.
type Point struct {
	Time  float64 `json:"t"`
	Value float64 `json:"v"`
}

func (s Series) Points() []Point {
	return ToPoints(s.Values, s.Step)
}

// ToPoints places value i at time i*step.
func ToPoints(values []float64, step float64) []Point {
	out := make([]Point, len(values))
	for i, v := range values {
		out[i] = Point{Time: float64(i) * step, Value: v}
	}
	return out
}
