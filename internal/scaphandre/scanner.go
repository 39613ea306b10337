package scaphandre

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ALEYI17/InfraSight_traffic/pkg/logutil"
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
	"go.uber.org/zap"
)

// Scanner walks a stream of back-to-back JSON objects with no separators.
// The stream as a whole is not valid JSON, so objects are delimited by
// tracking brace depth outside string literals.
type Scanner struct {
	r       *bufio.Reader
	buf     bytes.Buffer
	skipped int
	err     error
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Next returns the next decodable object. Spans that fail to decode are
// skipped and counted. It returns io.EOF at the end of the stream; an
// unterminated trailing object is dropped.
func (s *Scanner) Next() (*Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	for {
		span, err := s.nextSpan()
		if err != nil {
			s.err = err
			return nil, err
		}
		var rep Report
		if err := json.Unmarshal(span, &rep); err != nil {
			s.skipped++
			logutil.GetLogger().Warn("Skipping undecodable power report",
				zap.Int("skipped", s.skipped), zap.Error(err))
			continue
		}
		return &rep, nil
	}
}

// Skipped is the number of balanced spans that were not valid reports.
func (s *Scanner) Skipped() int {
	return s.skipped
}

func (s *Scanner) nextSpan() ([]byte, error) {
	s.buf.Reset()
	depth := 0
	inString, escaped := false, false

	for {
		c, err := s.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if depth > 0 {
					s.skipped++
				}
				return nil, io.EOF
			}
			return nil, err
		}

		if depth == 0 {
			if c == '{' {
				depth = 1
				s.buf.WriteByte(c)
			}
			continue
		}

		s.buf.WriteByte(c)
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s.buf.Bytes(), nil
			}
		}
	}
}

// ReadAll decodes every report in r.
func ReadAll(r io.Reader) ([]Report, int, error) {
	sc := NewScanner(r)
	var out []Report
	for {
		rep, err := sc.Next()
		if errors.Is(err, io.EOF) {
			return out, sc.Skipped(), nil
		}
		if err != nil {
			return out, sc.Skipped(), err
		}
		out = append(out, *rep)
	}
}

// ReadFile decodes the stream stored at path.
func ReadFile(path string) ([]Report, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", types.ErrMissingInput, path)
		}
		return nil, 0, err
	}
	defer f.Close()
	return ReadAll(f)
}
