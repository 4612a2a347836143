package tabix

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Scan reads a gzip (including BGZF) or plain text file from the top and
// keeps the lines that overlap the region. It needs no index.
type Scan struct{}

func (s *Scan) Fetch(ctx context.Context, source string, region Region, opts Options) (Lines, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}

	f, err := openSource(source)
	if err != nil {
		return nil, err
	}

	r, closers, err := decompress(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	br := bufio.NewReader(r)
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				break
			}
			closers.Close()
			return nil, fmt.Errorf("skip header of %s: %w", source, err)
		}
	}

	return &filtered{
		ctx:    ctx,
		next:   lineReader(br),
		closer: closers,
		region: region,
		opts:   opts,
	}, nil
}

// decompress checks for the gzip magic number (0x1f, 0x8b) and wraps the file
// accordingly.
func decompress(f *os.File) (io.Reader, multiCloser, error) {
	buf := make([]byte, 2)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, nil, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("seek %s: %w", f.Name(), err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return gz, multiCloser{f, gz}, nil
	}
	return f, multiCloser{f}, nil
}

// lineReader returns a function yielding lines without their terminator.
func lineReader(br *bufio.Reader) func() (string, error) {
	return func() (string, error) {
		line, err := br.ReadString('\n')
		if err != nil {
			if err == io.EOF && line != "" {
				return strings.TrimRight(line, "\r\n"), nil
			}
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
