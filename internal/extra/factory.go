package extra

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ProtocolMeteor  = "meteor"
	ProtocolCrypten = "crypten"
)

// Summary is the parsed extra output of one party.
type Summary interface {
	Protocol() string
}

type Parser func(io.Reader) (Summary, error)

// NewParser returns the summary parser of the named protocol.
func NewParser(protocol string) (Parser, error) {
	switch strings.ToLower(protocol) {
	case ProtocolMeteor:
		return func(r io.Reader) (Summary, error) {
			s, err := ParseMeteor(r)
			if err != nil {
				return nil, err
			}
			return s, nil
		}, nil
	case ProtocolCrypten:
		return func(r io.Reader) (Summary, error) {
			s, err := ParseCrypten(r)
			if err != nil {
				return nil, err
			}
			return s, nil
		}, nil
	default:
		return nil, fmt.Errorf("no extra parser for protocol %q", protocol)
	}
}

func ParseFile(parse Parser, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}
