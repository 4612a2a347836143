package tabix

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRows = `chrom	pos	value
1	99	a
1	100	b
1	101	c
1	102	d
2	100	e
`

var testOpts = Options{ChromColumn: 0, PosColumn: 1}

func writeGzipFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func collect(t *testing.T, lines Lines) []string {
	t.Helper()
	defer lines.Close()
	var out []string
	for {
		line, err := lines.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, line)
	}
}

func TestRegion(t *testing.T) {
	r := Region{Chrom: "1", Start: 99, End: 101}
	assert.False(t, r.Contains(99))
	assert.True(t, r.Contains(100))
	assert.True(t, r.Contains(101))
	assert.False(t, r.Contains(102))
	assert.Equal(t, "1:99-101", r.String())

	assert.NoError(t, r.Validate())
	assert.ErrorIs(t, Region{Chrom: "1", Start: -1, End: 1}.Validate(), ErrInvalidRegion)
	assert.ErrorIs(t, Region{Chrom: "1", Start: 5, End: 5}.Validate(), ErrInvalidRegion)
	assert.ErrorIs(t, Region{Start: 1, End: 5}.Validate(), ErrInvalidRegion)
}

func TestScan_PointWindow(t *testing.T) {
	path := writeGzipFile(t, testRows)

	// [start-1, start+1) around 100 returns 100 and its right neighbour,
	// which is why callers filter point queries on exact position.
	lines, err := (&Scan{}).Fetch(context.Background(), path, Region{Chrom: "1", Start: 99, End: 101}, testOpts)
	require.NoError(t, err)
	got := collect(t, lines)
	assert.Equal(t, []string{"1\t100\tb", "1\t101\tc"}, got)
}

func TestScan_SkipRows(t *testing.T) {
	path := writeGzipFile(t, testRows)
	opts := testOpts
	opts.SkipRows = 1

	lines, err := (&Scan{}).Fetch(context.Background(), path, Region{Chrom: "2", Start: 0, End: 1000}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"2\t100\te"}, collect(t, lines))
}

func TestScan_PlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.tsv")
	require.NoError(t, os.WriteFile(path, []byte(testRows), 0644))

	lines, err := (&Scan{}).Fetch(context.Background(), path, Region{Chrom: "1", Start: 0, End: 1000}, testOpts)
	require.NoError(t, err)
	assert.Len(t, collect(t, lines), 4, "header line never overlaps")
}

func TestScan_NoTrailingNewline(t *testing.T) {
	path := writeGzipFile(t, strings.TrimSuffix(testRows, "\n"))
	lines, err := (&Scan{}).Fetch(context.Background(), path, Region{Chrom: "2", Start: 99, End: 100}, testOpts)
	require.NoError(t, err)
	assert.Equal(t, []string{"2\t100\te"}, collect(t, lines))
}

func TestScan_Errors(t *testing.T) {
	_, err := (&Scan{}).Fetch(context.Background(), "/nonexistent/rows.tsv.gz", Region{Chrom: "1", Start: 0, End: 10}, testOpts)
	assert.ErrorIs(t, err, ErrSourceMissing)

	path := writeGzipFile(t, testRows)
	_, err = (&Scan{}).Fetch(context.Background(), path, Region{Chrom: "1", Start: -1, End: 10}, testOpts)
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestScan_ContextCancelled(t *testing.T) {
	path := writeGzipFile(t, testRows)
	ctx, cancel := context.WithCancel(context.Background())
	lines, err := (&Scan{}).Fetch(ctx, path, Region{Chrom: "1", Start: 0, End: 1000}, testOpts)
	require.NoError(t, err)
	defer lines.Close()

	cancel()
	_, err = lines.Next()
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAuto_FallsBackToScan(t *testing.T) {
	path := writeGzipFile(t, testRows)
	lines, err := NewAuto().Fetch(context.Background(), path, Region{Chrom: "1", Start: 100, End: 102}, testOpts)
	require.NoError(t, err)
	assert.Equal(t, []string{"1\t101\tc", "1\t102\td"}, collect(t, lines))
}

func TestIndexed_MissingIndex(t *testing.T) {
	path := writeGzipFile(t, testRows)
	_, err := (&Indexed{}).Fetch(context.Background(), path, Region{Chrom: "1", Start: 0, End: 10}, testOpts)
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestColumn(t *testing.T) {
	line := "a\tb\tc"
	for i, want := range []string{"a", "b", "c"} {
		got, ok := column(line, i)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := column(line, 3)
	assert.False(t, ok)
}
