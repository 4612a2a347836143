package tabix

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/tabix"
	"github.com/klauspost/compress/gzip"
)

// Indexed fetches rows through the file's tabix (.tbi) index, reading only
// the BGZF chunks that can hold the region. Options.SkipRows is not
// applied: index chunks never start inside the header, and header rows
// are dropped by the overlap filter like any line without a position.
type Indexed struct{}

func (x *Indexed) Fetch(ctx context.Context, source string, region Region, opts Options) (Lines, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}

	idx, err := readIndex(IndexPath(source))
	if err != nil {
		return nil, err
	}

	chunks, err := idx.Chunks(region.Chrom, int(region.Start), int(region.End))
	if err != nil {
		// Unknown reference names surface as an unusable region.
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRegion, region, err)
	}

	f, err := openSource(source)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		f.Close()
		return &filtered{ctx: ctx, next: eof, region: region, opts: opts}, nil
	}

	bg, err := bgzf.NewReader(f, 1)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open bgzf %s: %w", source, err)
	}
	cr, err := index.NewChunkReader(bg, chunks)
	if err != nil {
		bg.Close()
		f.Close()
		return nil, fmt.Errorf("read chunks of %s: %w", source, err)
	}

	return &filtered{
		ctx:    ctx,
		next:   lineReader(bufio.NewReader(cr)),
		closer: multiCloser{f, bg},
		region: region,
		opts:   opts,
	}, nil
}

// readIndex loads a .tbi file. The index is itself BGZF compressed and
// tabix.ReadFrom expects the decompressed stream.
func readIndex(path string) (*tabix.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress index %s: %w", path, err)
	}
	defer gz.Close()

	idx, err := tabix.ReadFrom(gz)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	if idx == nil {
		// An index without references reads back as nil.
		return nil, fmt.Errorf("%w: %s has no references", ErrInvalidRegion, path)
	}
	return idx, nil
}

func eof() (string, error) {
	return "", io.EOF
}
