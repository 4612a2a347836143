// Package annotation loads the static lookup tables joined into parsed
// association rows: gene symbols, signed TSS positions and tissue systems.
package annotation

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// UnknownGene is reported for gene ids missing from the symbol table.
const UnknownGene = "Unknown_gene"

// Tables holds the gene annotation lookups. Tables are never mutated after
// loading and may be shared between goroutines.
type Tables struct {
	Symbols map[string]string  // gene id <-> symbol, both directions
	TSS     map[string]float64 // gene id -> signed TSS (negative = minus strand)
}

// BaseGeneID strips a version suffix: ENSG00000134243.11 -> ENSG00000134243.
func BaseGeneID(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}

// Symbol returns the gene symbol for a (possibly versioned) gene id.
func (t *Tables) Symbol(geneID string) string {
	if s, ok := t.Symbols[BaseGeneID(geneID)]; ok {
		return s
	}
	return UnknownGene
}

// TSSPosition returns the signed TSS for a gene id, or NaN when unknown.
func (t *Tables) TSSPosition(geneID string) float64 {
	if v, ok := t.TSS[BaseGeneID(geneID)]; ok {
		return v
	}
	return math.NaN()
}

// Provider supplies annotation tables to a row parser.
type Provider interface {
	Tables() (*Tables, error)
}

// Static is a Provider over tables that were loaded once up front.
type Static struct {
	t *Tables
}

// NewStatic wraps preloaded tables.
func NewStatic(t *Tables) *Static {
	return &Static{t: t}
}

func (s *Static) Tables() (*Tables, error) {
	return s.t, nil
}

// FileLoader reads the tables from their gzip JSON files on every call.
// When Cache is set, decoded tables are reused while the sources are unchanged.
type FileLoader struct {
	SymbolPath string
	TSSPath    string
	Cache      *DiskCache
	logger     *zap.Logger
}

// NewFileLoader creates a loader for the given symbol and TSS files.
func NewFileLoader(symbolPath, tssPath string) *FileLoader {
	return &FileLoader{
		SymbolPath: symbolPath,
		TSSPath:    tssPath,
		logger:     zap.NewNop(),
	}
}

// SetLogger sets the logger used for cache warnings.
func (l *FileLoader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

func (l *FileLoader) sources() map[string]string {
	return map[string]string{"symbols": l.SymbolPath, "tss": l.TSSPath}
}

// Tables loads both lookup tables.
func (l *FileLoader) Tables() (*Tables, error) {
	var stamps Stamps
	if l.Cache != nil {
		var err error
		stamps, err = StampSources(l.sources())
		if err == nil && l.Cache.Valid(stamps) {
			t, err := l.Cache.Load()
			if err == nil {
				return t, nil
			}
			l.logger.Warn("annotation cache unreadable, reloading sources", zap.Error(err))
		}
	}

	t := &Tables{}
	if err := readGzipJSON(l.SymbolPath, &t.Symbols); err != nil {
		return nil, fmt.Errorf("load gene symbols: %w", err)
	}
	if err := readGzipJSON(l.TSSPath, &t.TSS); err != nil {
		return nil, fmt.Errorf("load tss data: %w", err)
	}

	if l.Cache != nil && stamps != nil {
		if err := l.Cache.Write(t, stamps); err != nil {
			l.logger.Warn("could not write annotation cache", zap.Error(err))
		}
	}
	return t, nil
}

// readGzipJSON decodes a gzip-compressed JSON document into v.
func readGzipJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip %s: %w", path, err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
