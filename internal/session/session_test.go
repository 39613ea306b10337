package session

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/ALEYI17/InfraSight_traffic/internal/loaders"
	"github.com/ALEYI17/InfraSight_traffic/pkg/logutil"
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// capture renders one nethogs trace with a refresh marker before every
// sample pair.
func capture(p0, p1 []float64) string {
	var b strings.Builder
	for i := range p0 {
		b.WriteString("Refreshing:\n")
		b.WriteString("./bench/P0/party " + ftoa(p0[i]) + " 0\n")
		b.WriteString("./bench/P1/party " + ftoa(p1[i]) + " 0\n")
	}
	return b.String()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func newTestSession(t *testing.T, settings Settings, dir string) *Session {
	t.Helper()
	t.Cleanup(logutil.ReplaceLogger(zaptest.NewLogger(t)))
	settings.TimingPath = filepath.Join(dir, types.TimingFile)
	return New(settings, loaders.NewNethogsLoader(dir, "bench"))
}

func TestAveragesTwoIterations(t *testing.T) {
	dir := t.TempDir()
	// iteration 0: 4 samples over 2s -> cadence 0.5
	writeFile(t, dir, "nethogs_0.txt", capture([]float64{0, 10, 20, 30}, []float64{0, 5, 5, 5}))
	// iteration 1: 2 samples over 2s -> cadence 1.0
	writeFile(t, dir, "nethogs_1.txt", capture([]float64{0, 40}, []float64{0, 10}))
	writeFile(t, dir, types.TimingFile, "nethogs_0: 2.0\niteration_0: 1.0\nnethogs_1: 2.0\niteration_1: 2.0\n")

	s := newTestSession(t, Settings{Iterations: 2, Interval: 0.5}, dir)
	avg, err := s.Averages()
	if err != nil {
		t.Fatal(err)
	}

	if g := s.Grid(); g.Len != 4 || g.Interval != 0.5 {
		t.Errorf("Grid = %+v, want 4 points at 0.5s", g)
	}
	// P1 appears after P0 in every refresh, so the back-fill keeps it one
	// sample ahead: iteration 0 yields P1 = [0 0 5 5 5] and iteration 1
	// yields [0 0 10]. Iteration 1 on the grid (cadence 1.0) picks samples
	// 0, 0 (tie), 1, 1.
	want := types.AveragedSeries{
		0: {0, 5, 30, 35},
		1: {0, 0, 2.5, 2.5},
	}
	if !reflect.DeepEqual(avg, want) {
		t.Errorf("Averages = %v, want %v", avg, want)
	}

	if c, err := s.Cadence(0); err != nil || c != 0.5 {
		t.Errorf("Cadence(0) = %v, %v; want 0.5", c, err)
	}
	if c, err := s.Cadence(1); err != nil || c != 1.0 {
		t.Errorf("Cadence(1) = %v, %v; want 1.0", c, err)
	}
	if !reflect.DeepEqual(s.Names(0), []string{"P0", "P1"}) {
		t.Errorf("Names(0) = %v", s.Names(0))
	}

	speeds, err := s.Speeds()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(speeds[0], []float64{0, 10, 50, 10}) {
		t.Errorf("Speeds[0] = %v", speeds[0])
	}
}

type countingLoader struct {
	types.IterationLoader
	loads int
}

func (c *countingLoader) Load(i int) (*types.IterationSeries, error) {
	c.loads++
	return c.IterationLoader.Load(i)
}

func TestAveragesMemoized(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nethogs_0.txt", capture([]float64{1, 2}, []float64{3, 4}))
	writeFile(t, dir, types.TimingFile, "nethogs_0: 1.0\niteration_0: 1.0\n")

	t.Cleanup(logutil.ReplaceLogger(zaptest.NewLogger(t)))
	loader := &countingLoader{IterationLoader: loaders.NewNethogsLoader(dir, "bench")}
	s := New(Settings{Iterations: 1, Interval: 0.5, TimingPath: filepath.Join(dir, types.TimingFile)}, loader)

	first, err := s.Averages()
	if err != nil {
		t.Fatal(err)
	}
	// Changing the inputs must not affect the cached result.
	writeFile(t, dir, "nethogs_0.txt", capture([]float64{100, 200}, []float64{300, 400}))
	second, err := s.Averages()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second Averages = %v, want cached %v", second, first)
	}
	if loader.loads != 1 {
		t.Errorf("loader called %d times, want 1", loader.loads)
	}

	fresh := New(s.Settings(), loader)
	third, err := fresh.Averages()
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(first, third) {
		t.Error("a new session returned the old result")
	}
}

func TestMissingIterationStrict(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nethogs_0.txt", capture([]float64{1}, []float64{1}))
	writeFile(t, dir, types.TimingFile, "nethogs_0: 1.0\niteration_0: 1.0\nnethogs_1: 1.0\niteration_1: 1.0\n")

	s := newTestSession(t, Settings{Iterations: 2, Interval: 0.1}, dir)
	if _, err := s.Averages(); !errors.Is(err, types.ErrMissingInput) {
		t.Fatalf("error = %v, want ErrMissingInput", err)
	}
}

func TestMissingIterationLenient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nethogs_1.txt", capture([]float64{4, 8}, []float64{2, 2}))
	writeFile(t, dir, types.TimingFile, "nethogs_0: 1.0\niteration_0: 1.0\nnethogs_1: 1.0\niteration_1: 1.0\n")

	core, logs := observer.New(zap.WarnLevel)
	t.Cleanup(logutil.ReplaceLogger(zap.New(core)))
	s := New(Settings{
		Iterations: 3,
		Interval:   0.5,
		TimingPath: filepath.Join(dir, types.TimingFile),
		Lenient:    true,
	}, loaders.NewNethogsLoader(dir, "bench"))

	avg, err := s.Averages()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(avg[0], []float64{4, 8}) {
		t.Errorf("Averages[0] = %v, want [4 8]", avg[0])
	}
	if n := len(multierr.Errors(s.Skipped())); n != 2 {
		t.Errorf("Skipped() holds %d errors, want 2", n)
	}
	if n := logs.FilterMessage("Skipping iteration").Len(); n != 2 {
		t.Errorf("logged %d skipped iterations, want 2", n)
	}
}

func TestAllIterationsMissingLenient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, types.TimingFile, "iteration_0: 1.0\n")

	s := newTestSession(t, Settings{Iterations: 1, Interval: 0.1, Lenient: true}, dir)
	if _, err := s.Averages(); !errors.Is(err, types.ErrMissingInput) {
		t.Fatalf("error = %v, want ErrMissingInput", err)
	}
}

func TestMissingCadenceRecord(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nethogs_0.txt", capture([]float64{1}, []float64{1}))
	writeFile(t, dir, types.TimingFile, "iteration_0: 1.0\n")

	s := newTestSession(t, Settings{Iterations: 1, Interval: 0.1}, dir)
	_, err := s.Averages()
	if !errors.Is(err, types.ErrMalformedRecord) {
		t.Fatalf("error = %v, want ErrMalformedRecord", err)
	}
	// failures are not cached
	writeFile(t, dir, types.TimingFile, "nethogs_0: 1.0\niteration_0: 1.0\n")
	s.timing = nil
	if _, err := s.Averages(); err != nil {
		t.Errorf("retry after fixing the log failed: %v", err)
	}
}

func TestInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, types.TimingFile, "iteration_0: 1.0\n")

	if _, err := newTestSession(t, Settings{Iterations: 0, Interval: 0.1}, dir).Averages(); err == nil {
		t.Error("zero iterations accepted")
	}
	if _, err := newTestSession(t, Settings{Iterations: 1, Interval: 0}, dir).Averages(); err == nil {
		t.Error("zero interval accepted")
	}
}

func TestSpeedsUseInterval(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nethogs_0.txt", capture([]float64{0, 1, 2, 3}, []float64{0, 0, 0, 0}))
	writeFile(t, dir, types.TimingFile, "nethogs_0: 0.4\niteration_0: 0.4\n")

	s := newTestSession(t, Settings{Iterations: 1, Interval: 0.1}, dir)
	speeds, err := s.Speeds()
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range speeds[0][1:] {
		if math.Abs(v-10) > 1e-9 {
			t.Errorf("speed[%d] = %v, want 10", i+1, v)
		}
	}
}

func TestEmptyIterationStrict(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nethogs_0.txt", "Refreshing:\nRefreshing:\n")
	writeFile(t, dir, types.TimingFile, "nethogs_0: 1.0\niteration_0: 1.0\n")

	s := newTestSession(t, Settings{Iterations: 1, Interval: 0.1}, dir)
	_, err := s.Averages()
	if !errors.Is(err, types.ErrEmptyIteration) {
		t.Fatalf("error = %v, want ErrEmptyIteration", err)
	}
	if !strings.Contains(err.Error(), "iteration 0") {
		t.Errorf("error %q lacks the iteration", err)
	}
}

func TestEmptyIterationLenient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nethogs_0.txt", "Refreshing:\n")
	writeFile(t, dir, "nethogs_1.txt", capture([]float64{4, 8}, []float64{2, 2}))
	writeFile(t, dir, types.TimingFile, "nethogs_0: 1.0\niteration_0: 1.0\nnethogs_1: 1.0\niteration_1: 1.0\n")

	core, logs := observer.New(zap.WarnLevel)
	t.Cleanup(logutil.ReplaceLogger(zap.New(core)))
	s := New(Settings{
		Iterations: 2,
		Interval:   0.5,
		TimingPath: filepath.Join(dir, types.TimingFile),
		Lenient:    true,
	}, loaders.NewNethogsLoader(dir, "bench"))

	avg, err := s.Averages()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(avg[0], []float64{4, 8}) {
		t.Errorf("Averages[0] = %v, want [4 8]", avg[0])
	}
	skipped := multierr.Errors(s.Skipped())
	if len(skipped) != 1 || !errors.Is(skipped[0], types.ErrEmptyIteration) {
		t.Errorf("Skipped() = %v, want one ErrEmptyIteration", skipped)
	}
	if n := logs.FilterMessage("Skipping iteration").Len(); n != 1 {
		t.Errorf("logged %d skipped iterations, want 1", n)
	}
}

func TestAllIterationsEmptyLenient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nethogs_0.txt", "Refreshing:\nRefreshing:\n")
	writeFile(t, dir, types.TimingFile, "nethogs_0: 1.0\niteration_0: 1.0\n")

	s := newTestSession(t, Settings{Iterations: 1, Interval: 0.1, Lenient: true}, dir)
	if _, err := s.Averages(); !errors.Is(err, types.ErrEmptyIteration) {
		t.Fatalf("error = %v, want ErrEmptyIteration", err)
	}
}

func TestAveragesContextCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "nethogs_0.txt", capture([]float64{1, 2}, []float64{3, 4}))
	writeFile(t, dir, types.TimingFile, "nethogs_0: 1.0\niteration_0: 1.0\n")

	s := newTestSession(t, Settings{Iterations: 1, Interval: 0.5}, dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.AveragesContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if _, err := s.Averages(); err != nil {
		t.Errorf("Averages after a canceled run failed: %v", err)
	}
}
