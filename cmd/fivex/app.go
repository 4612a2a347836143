package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/statgen/fivex/internal/annotation"
	"github.com/statgen/fivex/internal/config"
	"github.com/statgen/fivex/internal/gencode"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/qtl"
	"github.com/statgen/fivex/internal/sqlite"
	"github.com/statgen/fivex/internal/tabix"
)

// app bundles what every data command needs.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	resolver *locate.Resolver
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireDataDir(); err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.Debug("using data directory", zap.String("path", cfg.DataDir))
	return &app{cfg: cfg, logger: logger, resolver: locate.NewResolver(cfg.DataDir)}, nil
}

// annotations returns the file-backed gene tables, cached on disk under
// annotation_cache (or the user cache directory).
func (a *app) annotations() *annotation.FileLoader {
	loader := annotation.NewFileLoader(a.resolver.GeneSymbols(), a.resolver.TSSData())
	loader.SetLogger(a.logger)
	dir := a.cfg.AnnotationCache
	if dir == "" {
		dir = defaultCacheDir()
	}
	if dir != "" {
		loader.Cache = annotation.NewDiskCache(dir)
	}
	return loader
}

func (a *app) querier(tables annotation.Provider) *qtl.Querier {
	fetcher := tabix.NewAuto()
	fetcher.SetLogger(a.logger)
	q := qtl.NewQuerier(a.resolver, fetcher, tables)
	q.SetLogger(a.logger)
	q.SetNumbers(a.cfg.Numbers())
	return q
}

func (a *app) bestHits(dt locate.DataType) (*sqlite.BestHits, error) {
	b, err := sqlite.OpenBestHits(a.resolver.BestPerVariant(dt))
	if err != nil {
		return nil, err
	}
	b.PreferredStudy = a.cfg.PreferredStudy
	b.SetLogger(a.logger)
	return b, nil
}

func (a *app) genes() (*gencode.Locator, error) {
	return gencode.Load(a.resolver.GencodeGenes(), a.logger)
}

func (a *app) transcripts() (*gencode.Locator, error) {
	return gencode.Load(a.resolver.GencodeTranscripts(), a.logger)
}

// outputFile returns stdout for "" or "-", else a created file.
func outputFile(path string) (*os.File, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}
