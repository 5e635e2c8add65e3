package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const maxLineSize = 1 << 20

// ReaderSource reads one snapshot name per line, typically from stdin.
// A reader can only be consumed once; later List calls return what the
// first call read.
type ReaderSource struct {
	name    string
	r       io.Reader
	parser  *TimeParser
	listing *Listing
}

// NewReaderSource creates a line-oriented source.
func NewReaderSource(name string, r io.Reader, parser *TimeParser) *ReaderSource {
	return &ReaderSource{name: name, r: r, parser: parser}
}

// Name implements Source.
func (s *ReaderSource) Name() string {
	return s.name
}

// List implements Source. Trailing whitespace is trimmed and blank lines
// are ignored.
func (s *ReaderSource) List(ctx context.Context) (*Listing, error) {
	if s.listing != nil {
		return s.listing, nil
	}

	listing := &Listing{}
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		listing.add(s.parser, line, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.name, err)
	}

	s.listing = listing
	return listing, nil
}
