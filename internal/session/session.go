// Package session ties the reconstruction pipeline together for one set of
// measurement results. A Session processes iterations in index order on a
// single goroutine and is not safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ALEYI17/InfraSight_traffic/internal/collector"
	"github.com/ALEYI17/InfraSight_traffic/internal/collector/aggregator"
	"github.com/ALEYI17/InfraSight_traffic/internal/collector/resample"
	"github.com/ALEYI17/InfraSight_traffic/internal/timing"
	"github.com/ALEYI17/InfraSight_traffic/pkg/logutil"
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Settings struct {
	Iterations int
	// Resample interval in seconds.
	Interval   float64
	TimingPath string
	// Lenient skips iterations whose capture file is missing or holds no
	// samples instead of failing the whole session.
	Lenient bool
}

type Session struct {
	settings Settings
	loader   types.IterationLoader

	timing   *timing.Log
	grid     resample.Grid
	cadences map[int]float64
	names    map[int][]string

	averages types.AveragedSeries
	skipped  error
}

func New(settings Settings, loader types.IterationLoader) *Session {
	return &Session{
		settings: settings,
		loader:   loader,
		cadences: make(map[int]float64),
		names:    make(map[int][]string),
	}
}

func (s *Session) Settings() Settings {
	return s.settings
}

func (s *Session) durations() (*timing.Log, error) {
	if s.timing != nil {
		return s.timing, nil
	}
	l, err := timing.ReadFile(s.settings.TimingPath)
	if err != nil {
		return nil, err
	}
	s.timing = l
	return l, nil
}

func (s *Session) cadenceOf(it *types.IterationSeries) (float64, error) {
	if c, ok := s.cadences[it.Index]; ok {
		return c, nil
	}
	log, err := s.durations()
	if err != nil {
		return 0, err
	}
	elapsed, err := log.CaptureDuration(it.Index)
	if err != nil {
		return 0, fmt.Errorf("%w: cadence of iteration %d: %v", types.ErrMalformedRecord, it.Index, err)
	}
	c := timing.Cadence(elapsed, it.Refreshes)
	s.cadences[it.Index] = c
	s.names[it.Index] = it.Names
	return c, nil
}

// Cadence returns the seconds-per-sample estimate of iteration i, loading
// the iteration if it has not been processed yet.
func (s *Session) Cadence(i int) (float64, error) {
	if c, ok := s.cadences[i]; ok {
		return c, nil
	}
	it, err := s.loader.Load(i)
	if err != nil {
		return 0, err
	}
	return s.cadenceOf(it)
}

// Cadences returns a copy of the cadences computed so far.
func (s *Session) Cadences() map[int]float64 {
	out := make(map[int]float64, len(s.cadences))
	for i, c := range s.cadences {
		out[i] = c
	}
	return out
}

// Names returns the raw identifiers of iteration i's participants, indexed
// by participant, once the iteration has been processed.
func (s *Session) Names(i int) []string {
	return s.names[i]
}

// Grid is the shared time grid; it is valid after a successful Averages.
func (s *Session) Grid() resample.Grid {
	return s.grid
}

// Skipped reports the iterations left out in lenient mode, or nil.
func (s *Session) Skipped() error {
	return s.skipped
}

// Averages returns the mean cumulative series per participant on the
// shared grid. The first successful result is kept for the lifetime of the
// session; failures are not cached.
func (s *Session) Averages() (types.AveragedSeries, error) {
	return s.AveragesContext(context.Background())
}

// AveragesContext is Averages, checking ctx before each iteration is loaded.
func (s *Session) AveragesContext(ctx context.Context) (types.AveragedSeries, error) {
	if s.averages != nil {
		return s.averages, nil
	}
	avg, err := s.computeAverages(ctx)
	if err != nil {
		return nil, err
	}
	s.averages = avg
	return avg, nil
}

func (s *Session) computeAverages(ctx context.Context) (types.AveragedSeries, error) {
	logger := logutil.GetLogger()
	n := s.settings.Iterations
	if n < 1 {
		return nil, fmt.Errorf("iteration count must be at least 1, got %d", n)
	}

	log, err := s.durations()
	if err != nil {
		return nil, err
	}
	span, err := log.MaxIterationDuration(n)
	if err != nil {
		return nil, err
	}
	grid, err := resample.NewGrid(span, s.settings.Interval)
	if err != nil {
		return nil, err
	}

	logger.Info("Building shared grid",
		zap.Int("iterations", n),
		zap.Float64("span_s", span),
		zap.Float64("interval_s", grid.Interval),
		zap.Int("points", grid.Len))

	av := aggregator.NewAverager(grid.Len)
	var skipped error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("stopped before iteration %d: %w", i, err)
		}
		it, err := s.loader.Load(i)
		if err == nil && len(it.Participants) == 0 {
			err = fmt.Errorf("%w: iteration %d has no samples for any participant", types.ErrEmptyIteration, i)
		}
		if err != nil {
			if s.settings.Lenient && (errors.Is(err, types.ErrMissingInput) || errors.Is(err, types.ErrEmptyIteration)) {
				logger.Warn("Skipping iteration", zap.Int("iteration", i), zap.Error(err))
				skipped = multierr.Append(skipped, err)
				continue
			}
			return nil, err
		}

		cadence, err := s.cadenceOf(it)
		if err != nil {
			return nil, err
		}
		logger.Debug("Iteration cadence",
			zap.Int("iteration", i),
			zap.Float64("cadence_s", cadence),
			zap.Int("refreshes", it.Refreshes))

		resampled, err := collector.CollectIteration(it, cadence, grid)
		if err != nil {
			return nil, err
		}
		if err := av.Update(i, resampled); err != nil {
			return nil, err
		}
	}

	s.skipped = skipped
	if av.Iterations() == 0 {
		return nil, fmt.Errorf("no iteration could be processed: %w", skipped)
	}
	if skipped != nil {
		logger.Warn("Averaged a partial set of iterations",
			zap.Int("used", av.Iterations()),
			zap.Int("skipped", len(multierr.Errors(skipped))))
	}

	s.grid = grid
	return av.Flush(), nil
}

// Speeds derives the per-participant transfer rate from Averages.
func (s *Session) Speeds() (types.AveragedSeries, error) {
	avg, err := s.Averages()
	if err != nil {
		return nil, err
	}
	return aggregator.Speeds(avg, s.settings.Interval), nil
}
