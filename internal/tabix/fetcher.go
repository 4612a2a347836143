// Package tabix fetches the rows of a coordinate-sorted, compressed
// tab-delimited file that overlap a genomic region.
package tabix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrSourceMissing is returned when the data file does not exist.
	ErrSourceMissing = errors.New("tabix: source file not found")
	// ErrInvalidRegion is returned for windows the index cannot serve.
	ErrInvalidRegion = errors.New("tabix: invalid region")
)

// Region is a 0-based, half-open genomic window. A row with 1-based
// position p overlaps when Start < p <= End.
type Region struct {
	Chrom string
	Start int64
	End   int64
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// Validate checks that the window is non-empty and not negative.
func (r Region) Validate() error {
	if r.Chrom == "" || r.Start < 0 || r.End <= r.Start {
		return fmt.Errorf("%w: %s", ErrInvalidRegion, r)
	}
	return nil
}

// Contains reports whether a 1-based position falls in the window.
func (r Region) Contains(pos int64) bool {
	return pos > r.Start && pos <= r.End
}

// Options describes the layout of the file being fetched.
type Options struct {
	ChromColumn int // 0-based column holding the chromosome
	PosColumn   int // 0-based column holding the 1-based position
	SkipRows    int // header rows at the top of the file
}

// Lines iterates over fetched rows. Next returns io.EOF after the last row.
type Lines interface {
	Next() (string, error)
	Close() error
}

// Fetcher retrieves the rows of source overlapping a region.
type Fetcher interface {
	Fetch(ctx context.Context, source string, region Region, opts Options) (Lines, error)
}

// Auto uses the tabix index when one sits next to the source and falls back
// to a linear scan otherwise.
type Auto struct {
	indexed *Indexed
	scan    *Scan
	logger  *zap.Logger
}

// NewAuto creates an Auto fetcher.
func NewAuto() *Auto {
	return &Auto{indexed: &Indexed{}, scan: &Scan{}, logger: zap.NewNop()}
}

// SetLogger sets the logger used to report scan fallbacks.
func (a *Auto) SetLogger(l *zap.Logger) {
	a.logger = l
}

func (a *Auto) Fetch(ctx context.Context, source string, region Region, opts Options) (Lines, error) {
	if _, err := os.Stat(IndexPath(source)); err == nil {
		return a.indexed.Fetch(ctx, source, region, opts)
	}
	a.logger.Debug("no tabix index, scanning file", zap.String("source", source))
	return a.scan.Fetch(ctx, source, region, opts)
}

// IndexPath returns the conventional .tbi location for a source file.
func IndexPath(source string) string {
	return source + ".tbi"
}

func openSource(source string) (*os.File, error) {
	f, err := os.Open(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, source)
		}
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	return f, nil
}

// overlaps reports whether a data line falls inside the region. Header and
// comment lines, and lines whose position does not parse, never overlap.
func overlaps(line string, region Region, opts Options) bool {
	if line == "" || line[0] == '#' {
		return false
	}
	chrom, ok := column(line, opts.ChromColumn)
	if !ok || chrom != region.Chrom {
		return false
	}
	posField, ok := column(line, opts.PosColumn)
	if !ok {
		return false
	}
	pos, err := strconv.ParseInt(posField, 10, 64)
	if err != nil {
		return false
	}
	return region.Contains(pos)
}

// column returns the i-th tab-separated field without splitting the whole line.
func column(line string, i int) (string, bool) {
	for ; i > 0; i-- {
		j := strings.IndexByte(line, '\t')
		if j < 0 {
			return "", false
		}
		line = line[j+1:]
	}
	if j := strings.IndexByte(line, '\t'); j >= 0 {
		return line[:j], true
	}
	return line, true
}

// filtered wraps a raw line source and yields only overlapping lines.
type filtered struct {
	ctx    context.Context
	next   func() (string, error)
	closer io.Closer
	region Region
	opts   Options
}

func (f *filtered) Next() (string, error) {
	for {
		if err := f.ctx.Err(); err != nil {
			return "", err
		}
		line, err := f.next()
		if err != nil {
			return "", err
		}
		if overlaps(line, f.region, f.opts) {
			return line, nil
		}
	}
}

func (f *filtered) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// multiCloser closes a stack of resources in reverse order.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for i := len(m) - 1; i >= 0; i-- {
		if err := m[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
