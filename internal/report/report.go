// Package report assembles the trimmed series and summaries handed to the
// plotting front end.
package report

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ALEYI17/InfraSight_traffic/internal/collector/stats"
	"github.com/ALEYI17/InfraSight_traffic/internal/collector/timeserie"
	"github.com/ALEYI17/InfraSight_traffic/internal/extra"
	"github.com/ALEYI17/InfraSight_traffic/internal/scaphandre"
	"github.com/ALEYI17/InfraSight_traffic/internal/session"
	"github.com/ALEYI17/InfraSight_traffic/pkg/logutil"
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Participant struct {
	ID   types.ParticipantID `json:"id"`
	Name string              `json:"name"`
}

type Power struct {
	Iterations int                          `json:"iterations"`
	Skipped    int                          `json:"skipped_objects,omitempty"`
	Consumers  []scaphandre.ConsumerSummary `json:"consumers"`
}

type Report struct {
	Iterations   int                             `json:"iterations"`
	Step         float64                         `json:"step"`
	Trim         string                          `json:"trim"`
	Participants []Participant                   `json:"participants"`
	Cadences     map[int]float64                 `json:"cadences"`
	DataAmount   []timeserie.Series              `json:"data_amount"`
	Speed        []timeserie.Series              `json:"speed"`
	SpeedSummary []stats.SpeedSummary            `json:"speed_summary"`
	Skipped      []string                        `json:"skipped,omitempty"`
	Power        *Power                          `json:"power,omitempty"`
	Extra        map[string]extra.Summary        `json:"extra,omitempty"`
}

type Options struct {
	Trimmer types.Trimmer
	// PowerPath is optional; a missing file only drops the power section.
	PowerPath  string
	ExtraPaths []string
	// ExtraProtocol selects the parser for ExtraPaths.
	ExtraProtocol string
}

// Build runs the session's pipeline and trims both the cumulative and the
// speed series with opts.Trimmer.
func Build(ctx context.Context, s *session.Session, opts Options) (*Report, error) {
	logger := logutil.GetLogger()
	if opts.Trimmer == nil {
		return nil, errors.New("report: no trimmer configured")
	}

	avg, err := s.AveragesContext(ctx)
	if err != nil {
		return nil, err
	}
	speeds, err := s.Speeds()
	if err != nil {
		return nil, err
	}

	step := s.Settings().Interval
	r := &Report{
		Iterations:   s.Settings().Iterations,
		Step:         step,
		Trim:         opts.Trimmer.Name(),
		Participants: participants(s, avg),
		Cadences:     s.Cadences(),
		DataAmount:   timeserie.Collect(opts.Trimmer.Trim(avg), step),
		Speed:        timeserie.Collect(opts.Trimmer.Trim(speeds), step),
		SpeedSummary: stats.SummarizeSpeeds(speeds),
	}
	for _, err := range multierr.Errors(s.Skipped()) {
		r.Skipped = append(r.Skipped, err.Error())
	}

	logger.Info("Series trimmed",
		zap.String("policy", r.Trim),
		zap.Int("participants", len(r.DataAmount)),
		zap.Int("grid_points", s.Grid().Len))

	if opts.PowerPath != "" {
		p, err := buildPower(opts.PowerPath)
		switch {
		case errors.Is(err, types.ErrMissingInput):
			logger.Info("No power measurements", zap.String("path", opts.PowerPath))
		case err != nil:
			return nil, err
		default:
			r.Power = p
		}
	}

	if len(opts.ExtraPaths) > 0 {
		parse, err := extra.NewParser(opts.ExtraProtocol)
		if err != nil {
			return nil, err
		}
		r.Extra = make(map[string]extra.Summary, len(opts.ExtraPaths))
		for _, path := range opts.ExtraPaths {
			sum, err := extra.ParseFile(parse, path)
			if err != nil {
				return nil, fmt.Errorf("extra summary %s: %w", path, err)
			}
			r.Extra[filepath.Base(path)] = sum
		}
	}
	return r, nil
}

func buildPower(path string) (*Power, error) {
	logger := logutil.GetLogger()

	reports, skipped, err := scaphandre.ReadFile(path)
	if err != nil {
		return nil, err
	}
	iterations := scaphandre.SplitIterations(reports, types.CaptureSentinel)
	consumers, err := scaphandre.Summarize(iterations, scaphandre.DefaultRelativeAccuracy)
	if err != nil {
		return nil, err
	}

	logger.Info("Power measurements summarized",
		zap.Int("reports", len(reports)),
		zap.Int("iterations", len(iterations)),
		zap.Int("skipped", skipped))
	return &Power{Iterations: len(iterations), Skipped: skipped, Consumers: consumers}, nil
}

// participants names every averaged participant after the raw identifier it
// had in the first processed iteration.
func participants(s *session.Session, avg types.AveragedSeries) []Participant {
	var names []string
	cadences := s.Cadences()
	processed := make([]int, 0, len(cadences))
	for i := range cadences {
		processed = append(processed, i)
	}
	sort.Ints(processed)
	if len(processed) > 0 {
		names = s.Names(processed[0])
	}

	out := make([]Participant, 0, len(avg))
	for _, id := range types.SortedIDs(avg) {
		p := Participant{ID: id}
		if int(id) < len(names) {
			p.Name = names[id]
		}
		out = append(out, p)
	}
	return out
}
