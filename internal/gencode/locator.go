package gencode

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/statgen/fivex/internal/annotation"
	"github.com/statgen/fivex/internal/locate"
)

// Locator answers gene and transcript lookups by id, symbol or position.
type Locator struct {
	trees    map[string]*IntervalTree
	byID     map[string]*Feature // keyed by base id
	bySymbol map[string][]*Feature
	count    int
}

// NewLocator indexes the given features.
func NewLocator(features []*Feature) *Locator {
	l := &Locator{
		trees:    make(map[string]*IntervalTree),
		byID:     make(map[string]*Feature, len(features)),
		bySymbol: make(map[string][]*Feature),
		count:    len(features),
	}
	perChrom := make(map[string][]*Feature)
	for _, f := range features {
		perChrom[f.Chrom] = append(perChrom[f.Chrom], f)
		l.byID[annotation.BaseGeneID(f.ID)] = f
		if f.Symbol != "" {
			key := strings.ToUpper(f.Symbol)
			l.bySymbol[key] = append(l.bySymbol[key], f)
		}
	}
	for chrom, fs := range perChrom {
		l.trees[chrom] = BuildIntervalTree(fs)
	}
	return l
}

// Load reads a gzip-compressed BED file with the columns
// chrom, start (0-based), end, id, symbol and strand.
func Load(path string, logger *zap.Logger) (*Locator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gencode %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gzip %s: %w", path, err)
	}
	defer gz.Close()

	var features []*Feature
	scanner := bufio.NewScanner(gz)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "track") {
			continue
		}
		feat, err := parseBED(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNum, err)
		}
		features = append(features, feat)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	logger.Info("loaded gencode features", zap.String("path", path), zap.Int("count", len(features)))
	return NewLocator(features), nil
}

func parseBED(line string) (*Feature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, fmt.Errorf("expected at least 5 BED columns, found %d", len(fields))
	}
	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q: %w", fields[1], err)
	}
	end, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid end %q: %w", fields[2], err)
	}
	f := &Feature{
		Chrom:  locate.NormalizeChrom(fields[0]),
		Start:  start + 1,
		End:    end,
		ID:     fields[3],
		Symbol: fields[4],
	}
	if len(fields) > 5 {
		switch fields[5] {
		case "+":
			f.Strand = 1
		case "-":
			f.Strand = -1
		}
	}
	return f, nil
}

// Len returns the number of indexed features.
func (l *Locator) Len() int {
	return l.count
}

// Overlapping returns the features on chrom intersecting the 1-based
// inclusive range [start, end].
func (l *Locator) Overlapping(chrom string, start, end int64) []*Feature {
	tree, ok := l.trees[locate.NormalizeChrom(chrom)]
	if !ok {
		return nil
	}
	return tree.FindOverlaps(start, end)
}

// ByID looks up a feature ignoring any version suffix.
func (l *Locator) ByID(id string) (*Feature, bool) {
	f, ok := l.byID[annotation.BaseGeneID(id)]
	return f, ok
}

// BySymbol returns all features with a symbol, case-insensitively.
func (l *Locator) BySymbol(symbol string) []*Feature {
	return l.bySymbol[strings.ToUpper(symbol)]
}

// Resolve finds a feature by Ensembl id or, failing that, by symbol. When
// a symbol is ambiguous the first feature loaded wins.
func (l *Locator) Resolve(name string) (*Feature, bool) {
	if f, ok := l.ByID(name); ok {
		return f, true
	}
	if fs := l.BySymbol(name); len(fs) > 0 {
		return fs[0], true
	}
	return nil, false
}
