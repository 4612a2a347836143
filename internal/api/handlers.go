package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/statgen/fivex/internal/annotation"
	"github.com/statgen/fivex/internal/gencode"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/qtl"
	"github.com/statgen/fivex/internal/sqlite"
)

// dataResponse wraps every successful data payload.
type dataResponse struct {
	Data any `json:"data"`
}

func unavailable(what string) error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, what+" is not configured")
}

// baseQuery fills a query from validated path values and query parameters.
func baseQuery(c echo.Context) qtl.Query {
	q := qtl.Query{
		Chrom:      c.Get(keyChrom).(string),
		Start:      c.Get(keyStart).(int64),
		Study:      c.QueryParam("study"),
		Tissue:     c.QueryParam("tissue"),
		GeneID:     c.QueryParam("gene_id"),
		Transcript: c.QueryParam("transcript"),
		DataType:   c.Get(keyDataType).(locate.DataType),
	}
	if end, ok := c.Get(keyEnd).(int64); ok {
		q.End = end
	}
	q.PIPOnly, _ = strconv.ParseBool(c.QueryParam("piponly"))
	// Study and tissue specific files carry a header row.
	if q.Study != "" && q.Tissue != "" {
		q.RowsToSkip = 1
	}
	return q
}

func (s *Server) collect(c echo.Context, q qtl.Query) error {
	if s.deps.Querier == nil {
		return unavailable("association data")
	}
	recs, err := s.deps.Querier.Collect(c.Request().Context(), q)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	if recs == nil {
		recs = []*qtl.AssociationRecord{}
	}
	return c.JSON(http.StatusOK, dataResponse{Data: recs})
}

func (s *Server) getVariant(c echo.Context) error {
	return s.collect(c, baseQuery(c))
}

func (s *Server) getRegion(c echo.Context) error {
	return s.collect(c, baseQuery(c))
}

// getStudyRegion queries every tissue of a study concurrently.
func (s *Server) getStudyRegion(c echo.Context) error {
	if s.deps.Querier == nil {
		return unavailable("association data")
	}
	base := baseQuery(c)
	study := c.Param("study")
	queries := qtl.StudyQueries(base, study)
	if len(queries) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown study: "+study)
	}
	for i := range queries {
		queries[i].RowsToSkip = 1
	}

	recs, err := s.deps.Querier.QueryMany(c.Request().Context(), queries, s.deps.Workers)
	if err != nil {
		s.logger.Error("study query failed", zap.String("study", study), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed")
	}
	if recs == nil {
		recs = []*qtl.AssociationRecord{}
	}
	return c.JSON(http.StatusOK, dataResponse{Data: recs})
}

func optionalInt(c echo.Context, name string) (int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	n, ok := parsePosition(v)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return n, nil
}

func (s *Server) getBest(c echo.Context) error {
	finder := s.deps.BestHits[c.Get(keyDataType).(locate.DataType)]
	if finder == nil {
		return unavailable("best hit lookup")
	}

	chrom := locate.NormalizeChrom(c.QueryParam("chrom"))
	if !chromPattern.MatchString(chrom) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown chromosome: "+c.QueryParam("chrom"))
	}
	start, err := optionalInt(c, "start")
	if err != nil {
		return err
	}
	end, err := optionalInt(c, "end")
	if err != nil {
		return err
	}

	hit, err := finder.Best(c.Request().Context(), sqlite.BestQuery{
		Chrom:  chrom,
		Start:  start,
		End:    end,
		Study:  c.QueryParam("study"),
		Tissue: c.QueryParam("tissue"),
		GeneID: c.QueryParam("gene_id"),
	})
	if errors.Is(err, sqlite.ErrNoBestHit) {
		return echo.NewHTTPError(http.StatusBadRequest, "No best hit for this query")
	}
	if err != nil {
		s.logger.Error("best hit lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(http.StatusOK, dataResponse{Data: hit})
}

func (s *Server) getRSID(c echo.Context) error {
	if s.deps.RSIDs == nil {
		return unavailable("rsID lookup")
	}
	r, err := s.deps.RSIDs.Lookup(c.Request().Context(), c.Get(keyChrom).(string), c.Get(keyStart).(int64))
	if err != nil {
		s.logger.Error("rsid lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(http.StatusOK, dataResponse{Data: r})
}

func (s *Server) getGene(c echo.Context) error {
	if s.deps.Genes == nil {
		return unavailable("gene lookup")
	}
	name := c.Param("name")
	f, ok := s.deps.Genes.Resolve(name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Unknown gene: "+name)
	}
	return c.JSON(http.StatusOK, dataResponse{Data: f})
}

// getGenesInRegion lists the genes overlapping a region, for drawing a
// gene track next to region results.
func (s *Server) getGenesInRegion(c echo.Context) error {
	if s.deps.Genes == nil {
		return unavailable("gene lookup")
	}
	genes := s.deps.Genes.Overlapping(c.Get(keyChrom).(string), c.Get(keyStart).(int64), c.Get(keyEnd).(int64))
	if genes == nil {
		genes = []*gencode.Feature{}
	}
	return c.JSON(http.StatusOK, dataResponse{Data: genes})
}

func (s *Server) getStudies(c echo.Context) error {
	studies := make(map[string][]string)
	for _, name := range annotation.Catalog().StudyNames() {
		studies[name] = annotation.TissuesForStudy(name)
	}
	return c.JSON(http.StatusOK, dataResponse{Data: studies})
}
