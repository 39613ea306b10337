// Package nethogs reads the per-iteration trace files written by nethogs in
// tracemode and turns them into cumulative byte series per participant.
package nethogs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
)

const maxLineSize = 1024 * 1024

// builder accumulates series under their raw path-derived identifiers until
// the scan is complete and they can be renumbered.
type builder struct {
	series map[string][]float64
	maxLen int
}

func newBuilder() *builder {
	return &builder{series: make(map[string][]float64)}
}

// ensureParticipant registers a participant the first time it is seen, padded
// with zeros up to the longest series observed so far.
func (b *builder) ensureParticipant(name string) {
	if _, ok := b.series[name]; ok {
		return
	}
	b.series[name] = make([]float64, b.maxLen)
}

func (b *builder) append(name string, amount float64) {
	b.ensureParticipant(name)
	s := append(b.series[name], amount)
	b.series[name] = s
	if len(s) > b.maxLen {
		b.maxLen = len(s)
	}
}

// align extends every series to maxLen by repeating its last value.
func (b *builder) align() {
	for name, s := range b.series {
		if len(s) == b.maxLen || len(s) == 0 {
			continue
		}
		last := s[len(s)-1]
		for len(s) < b.maxLen {
			s = append(s, last)
		}
		b.series[name] = s
	}
}

func (b *builder) renumber(iteration, refreshes int) *types.IterationSeries {
	names := make([]string, 0, len(b.series))
	for name := range b.series {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &types.IterationSeries{
		Index:        iteration,
		Participants: make(map[types.ParticipantID][]float64, len(names)),
		Names:        names,
		Refreshes:    refreshes,
	}
	for rank, name := range names {
		out.Participants[types.ParticipantID(rank)] = b.series[name]
	}
	return out
}

// Parse scans one raw capture log. Lines for execFile contribute a sample to
// the participant named by the directory holding the executable; refresh
// markers are only counted.
func Parse(r io.Reader, iteration int, execFile string) (*types.IterationSeries, error) {
	dotPrefix := "./" + execFile
	rootPrefix := "/" + execFile

	b := newBuilder()
	refreshes := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, types.RefreshMarker) {
			refreshes++
			continue
		}
		if !strings.HasPrefix(line, dotPrefix) && !strings.HasPrefix(line, rootPrefix) {
			continue
		}

		fields := strings.Fields(line)
		segments := strings.Split(fields[0], "/")
		if len(segments) < 3 {
			continue
		}
		participant := segments[len(segments)-2]

		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: iteration %d participant %q line %d: missing amount",
				types.ErrMalformedRecord, iteration, participant, lineNo)
		}
		amount, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: iteration %d participant %q line %d: %v",
				types.ErrMalformedRecord, iteration, participant, lineNo, err)
		}
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, fmt.Errorf("%w: iteration %d participant %q line %d: non-finite amount %q",
				types.ErrMalformedRecord, iteration, participant, lineNo, fields[1])
		}
		b.append(participant, amount)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading iteration %d: %w", iteration, err)
	}

	b.align()
	return b.renumber(iteration, refreshes), nil
}

// ParseFile opens path and parses it. A missing file is reported as
// types.ErrMissingInput.
func ParseFile(path string, iteration int, execFile string) (*types.IterationSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: iteration %d: %s", types.ErrMissingInput, iteration, path)
		}
		return nil, err
	}
	defer f.Close()

	return Parse(bufio.NewReader(f), iteration, execFile)
}
