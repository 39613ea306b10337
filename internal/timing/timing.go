// Package timing reads the duration log written next to the capture files.
//
// Each run appends two records per iteration:
//
//	nethogs_<i>: <seconds>    time the capture process was alive
//	iteration_<i>: <seconds>  time the workload itself took
//
// The file is never truncated, so a later record for the same index
// replaces an earlier one.
package timing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
)

type Log struct {
	capture   map[int]float64
	iteration map[int]float64
}

func Parse(r io.Reader) (*Log, error) {
	l := &Log{
		capture:   make(map[int]float64),
		iteration: make(map[int]float64),
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)

		var target map[int]float64
		var idx string
		switch {
		case strings.HasPrefix(key, types.CaptureRecordPrefix):
			target, idx = l.capture, strings.TrimPrefix(key, types.CaptureRecordPrefix)
		case strings.HasPrefix(key, types.IterationRecordPrefix):
			target, idx = l.iteration, strings.TrimPrefix(key, types.IterationRecordPrefix)
		default:
			continue
		}

		i, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad index %q", types.ErrMalformedRecord, lineNo, key)
		}
		secs, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", types.ErrMalformedRecord, lineNo, key, err)
		}
		target[i] = secs
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return l, nil
}

func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrMissingInput, path)
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// CaptureDuration is the elapsed capture time of iteration i in seconds.
func (l *Log) CaptureDuration(i int) (float64, error) {
	d, ok := l.capture[i]
	if !ok {
		return 0, fmt.Errorf("%w: %s%d", types.ErrNotFound, types.CaptureRecordPrefix, i)
	}
	return d, nil
}

// IterationDuration is the elapsed workload time of iteration i in seconds.
func (l *Log) IterationDuration(i int) (float64, error) {
	d, ok := l.iteration[i]
	if !ok {
		return 0, fmt.Errorf("%w: %s%d", types.ErrNotFound, types.IterationRecordPrefix, i)
	}
	return d, nil
}

// MaxIterationDuration is the longest workload time over iterations
// [0, n). Capture durations are used when no iteration record exists.
func (l *Log) MaxIterationDuration(n int) (float64, error) {
	if d, ok := maxOver(l.iteration, n); ok {
		return d, nil
	}
	if d, ok := maxOver(l.capture, n); ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: no duration records for %d iteration(s)", types.ErrNotFound, n)
}

func maxOver(m map[int]float64, n int) (float64, bool) {
	best, found := 0.0, false
	for i := 0; i < n; i++ {
		if d, ok := m[i]; ok && (!found || d > best) {
			best, found = d, true
		}
	}
	return best, found
}

// Cadence is the average time between two samples of an iteration. An
// iteration without refresh events has a cadence of zero.
func Cadence(elapsed float64, refreshes int) float64 {
	if refreshes == 0 {
		return 0
	}
	return elapsed / float64(refreshes)
}
