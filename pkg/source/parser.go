package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"mercator-hq/retain/pkg/retention"
)

// DefaultFormat is the strftime format snapshot names are parsed with.
const DefaultFormat = "%Y%m%d-%H:%M"

// TimeParser turns snapshot names into timestamps.
type TimeParser struct {
	format   string
	layout   string
	prefix   string
	suffix   string
	location *time.Location
}

// ParserOption configures a TimeParser.
type ParserOption func(*TimeParser)

// WithPrefix strips prefix from names before parsing. Names without the
// prefix are unparseable.
func WithPrefix(prefix string) ParserOption {
	return func(p *TimeParser) {
		p.prefix = prefix
	}
}

// WithSuffix strips suffix (e.g. ".tar.zst") from names before parsing.
func WithSuffix(suffix string) ParserOption {
	return func(p *TimeParser) {
		p.suffix = suffix
	}
}

// WithLocation interprets names without a zone in loc. Defaults to UTC.
func WithLocation(loc *time.Location) ParserOption {
	return func(p *TimeParser) {
		if loc != nil {
			p.location = loc
		}
	}
}

// NewTimeParser compiles a strftime format. An empty format selects
// DefaultFormat.
func NewTimeParser(format string, opts ...ParserOption) (*TimeParser, error) {
	if format == "" {
		format = DefaultFormat
	}
	layout, err := strftime.Layout(format)
	if err != nil {
		return nil, fmt.Errorf("invalid time format %q: %w", format, err)
	}

	p := &TimeParser{
		format:   format,
		layout:   layout,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Format returns the strftime format.
func (p *TimeParser) Format() string {
	return p.format
}

// Parse returns the timestamp encoded in name.
func (p *TimeParser) Parse(name string) (retention.Timestamp, error) {
	s, ok := strings.CutPrefix(name, p.prefix)
	if !ok {
		return 0, fmt.Errorf("%w: missing prefix %q", ErrUnparseable, p.prefix)
	}
	s, ok = strings.CutSuffix(s, p.suffix)
	if !ok {
		return 0, fmt.Errorf("%w: missing suffix %q", ErrUnparseable, p.suffix)
	}

	t, err := time.ParseInLocation(p.layout, s, p.location)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrUnparseable, p.format, err)
	}
	if t.Unix() < 0 {
		return 0, ErrBeforeEpoch
	}
	return retention.Timestamp(t.Unix()), nil
}
