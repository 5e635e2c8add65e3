package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirSource lists the entries of a single directory.
type DirSource struct {
	// Path is the directory to list.
	Path string

	// Match is an optional filepath.Match pattern names must satisfy.
	// Names that do not match are skipped silently.
	Match string

	// IncludeHidden lists dot-files too.
	IncludeHidden bool

	// FullPath reports entries as Path joined with the name instead of the
	// bare name.
	FullPath bool

	parser *TimeParser
}

// NewDirSource creates a directory source.
func NewDirSource(path string, parser *TimeParser) *DirSource {
	return &DirSource{Path: path, parser: parser}
}

// Name implements Source.
func (s *DirSource) Name() string {
	return "dir:" + s.Path
}

// List implements Source.
func (s *DirSource) List(ctx context.Context) (*Listing, error) {
	if s.Match != "" {
		if _, err := filepath.Match(s.Match, ""); err != nil {
			return nil, fmt.Errorf("invalid match pattern %q: %w", s.Match, err)
		}
	}

	dirents, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %q: %w", s.Path, err)
	}

	listing := &Listing{}
	for _, de := range dirents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := de.Name()
		if !s.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if s.Match != "" {
			if ok, _ := filepath.Match(s.Match, name); !ok {
				continue
			}
		}

		payload := name
		if s.FullPath {
			payload = filepath.Join(s.Path, name)
		}
		listing.add(s.parser, name, payload)
	}
	return listing, nil
}
