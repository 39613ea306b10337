package extra

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
)

var (
	epochRe = regexp.MustCompile(`Epoch: \[(\d+)\]\[(\d+)/\d+\].*?Loss ([\d.]+) \(([\d.]+)\).*?Prec@1 ([\d.]+) \(([\d.]+)\).*?Prec@5 ([\d.]+) \(([\d.]+)\)`)
	testRe  = regexp.MustCompile(`Test: \[(\d+)/\d+\].*?Loss ([\d.]+) \(([\d.]+)\).*?Prec@1 ([\d.]+) \(([\d.]+)\).*?Prec@5 ([\d.]+) \(([\d.]+)\)`)
)

// Metrics is one progress line of a training or test run: current values
// and, in the Avg fields, running averages.
type Metrics struct {
	Loss     float64 `json:"loss"`
	AvgLoss  float64 `json:"avg_loss"`
	Prec1    float64 `json:"prec1"`
	AvgPrec1 float64 `json:"avg_prec1"`
	Prec5    float64 `json:"prec5"`
	AvgPrec5 float64 `json:"avg_prec5"`
}

type EpochRecord struct {
	Epoch int `json:"epoch"`
	Batch int `json:"batch"`
	Metrics
}

type TestRecord struct {
	Batch int `json:"batch"`
	Metrics
}

// CryptenSummary holds the training and test progress a CrypTen party logs.
type CryptenSummary struct {
	Epochs []EpochRecord `json:"epochs,omitempty"`
	Tests  []TestRecord  `json:"tests,omitempty"`
}

func (*CryptenSummary) Protocol() string { return ProtocolCrypten }

func ParseCrypten(r io.Reader) (*CryptenSummary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content := string(data)
	s := &CryptenSummary{}

	for _, m := range epochRe.FindAllStringSubmatch(content, -1) {
		epoch, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("epoch %q: %w", m[1], err)
		}
		batch, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("batch %q: %w", m[2], err)
		}
		metrics, err := parseMetrics(m[3:9])
		if err != nil {
			return nil, err
		}
		s.Epochs = append(s.Epochs, EpochRecord{Epoch: epoch, Batch: batch, Metrics: metrics})
	}
	for _, m := range testRe.FindAllStringSubmatch(content, -1) {
		batch, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("test batch %q: %w", m[1], err)
		}
		metrics, err := parseMetrics(m[2:8])
		if err != nil {
			return nil, err
		}
		s.Tests = append(s.Tests, TestRecord{Batch: batch, Metrics: metrics})
	}
	return s, nil
}

// parseMetrics reads loss, prec@1 and prec@5, each followed by its average.
func parseMetrics(fields []string) (Metrics, error) {
	var v [6]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Metrics{}, fmt.Errorf("metric %q: %w", f, err)
		}
		v[i] = x
	}
	return Metrics{
		Loss: v[0], AvgLoss: v[1],
		Prec1: v[2], AvgPrec1: v[3],
		Prec5: v[4], AvgPrec5: v[5],
	}, nil
}
