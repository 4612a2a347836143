// Package api serves association, best-hit, rsID and gene lookups over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"go.uber.org/zap"

	"github.com/statgen/fivex/internal/gencode"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/qtl"
	"github.com/statgen/fivex/internal/sqlite"
)

// BestHitFinder answers best-hit queries for one datatype.
type BestHitFinder interface {
	Best(ctx context.Context, q sqlite.BestQuery) (*sqlite.BestHit, error)
}

// RSIDLookup resolves rsIDs by position.
type RSIDLookup interface {
	Lookup(ctx context.Context, chrom string, pos int64) (sqlite.RSID, error)
}

// GeneResolver resolves gene ids and symbols to coordinates and lists the
// genes in a region.
type GeneResolver interface {
	Resolve(name string) (*gencode.Feature, bool)
	Overlapping(chrom string, start, end int64) []*gencode.Feature
}

// Deps are the collaborators behind the routes. Nil collaborators disable
// their routes with 503 responses.
type Deps struct {
	Querier  *qtl.Querier
	BestHits map[locate.DataType]BestHitFinder
	RSIDs    RSIDLookup
	Genes    GeneResolver
	Workers  int // concurrent queries for study fan-out
	Logger   *zap.Logger
}

// Server is the fivex HTTP API.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	logger *zap.Logger
}

// NewServer builds the echo instance and registers all routes.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true

	s := &Server{echo: e, deps: deps, logger: logger}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(s.logRequests)

	data := e.Group("/api/data")
	data.GET("/variant/:chrom/:pos", s.getVariant,
		ValidateChromosome, ValidatePosition, ValidateDataType)
	data.GET("/region/:chrom/:start/:end", s.getRegion,
		ValidateChromosome, ValidateRegion, ValidateDataType)
	data.GET("/region/:chrom/:start/:end/study/:study", s.getStudyRegion,
		ValidateChromosome, ValidateRegion, ValidateDataType)
	data.GET("/best", s.getBest, ValidateDataType)
	data.GET("/rsid/:chrom/:pos", s.getRSID,
		ValidateChromosome, ValidatePosition)

	e.GET("/api/gene/:name", s.getGene)
	e.GET("/api/genes/:chrom/:start/:end", s.getGenesInRegion,
		ValidateChromosome, ValidateRegion)
	e.GET("/api/studies", s.getStudies)

	return s
}

// Handler returns the HTTP handler, for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req, res := c.Request(), c.Response()
		s.logger.Info("request",
			zap.String("id", res.Header().Get(echo.HeaderXRequestID)),
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", res.Status),
			zap.Int64("bytes", res.Size))
		return nil
	}
}
