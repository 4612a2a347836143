package qtl

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/statgen/fivex/internal/annotation"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/numparse"
	"github.com/statgen/fivex/internal/tabix"
)

// Query describes one variant or region lookup. End == 0 selects a point
// query at Start. Empty strings mean "no filter".
type Query struct {
	Chrom      string
	Start      int64
	End        int64
	RowsToSkip int // header rows in the association file
	Study      string
	Tissue     string
	GeneID     string
	Transcript string
	PIPOnly    bool
	DataType   locate.DataType
}

// IsPoint reports whether the query targets a single position.
func (q Query) IsPoint() bool {
	return q.End == 0
}

// Window returns the fetch window: [start-1, start+1) for points and
// [start-1, end+1) for regions.
func (q Query) Window() tabix.Region {
	s := Scope{Chrom: q.Chrom, Start: q.Start, End: q.End}
	return s.window()
}

// Querier runs queries against the data files under a resolver root.
type Querier struct {
	resolver    *locate.Resolver
	fetcher     tabix.Fetcher
	annotations annotation.Provider
	num         numparse.Strategy
	logger      *zap.Logger
}

// NewQuerier creates a Querier.
func NewQuerier(resolver *locate.Resolver, fetcher tabix.Fetcher, annotations annotation.Provider) *Querier {
	return &Querier{
		resolver:    resolver,
		fetcher:     fetcher,
		annotations: annotations,
		num:         numparse.Standard,
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the logger for query diagnostics.
func (q *Querier) SetLogger(l *zap.Logger) {
	q.logger = l
}

// SetNumbers selects the numeric parsing strategy.
func (q *Querier) SetNumbers(s numparse.Strategy) {
	q.num = s
}

// Query selects the source file, loads the matching credible sets and
// returns a lazy sequence of filtered records. A missing source or a
// window the index cannot serve yields empty results, not an error.
func (q *Querier) Query(ctx context.Context, qry Query) (*Results, error) {
	qry.Chrom = locate.NormalizeChrom(qry.Chrom)
	if qry.DataType == "" {
		qry.DataType = locate.GeneExpression
	}

	var source string
	if qry.Study != "" && qry.Tissue != "" {
		source = q.resolver.StudyTissueData(qry.Study, qry.Tissue, qry.DataType)
	} else {
		source = q.resolver.MergedData(qry.Chrom, qry.Start, qry.DataType)
	}

	opts := ParserOptions{Study: qry.Study, Tissue: qry.Tissue, DataType: qry.DataType, Numbers: q.num}
	parser, err := NewVariantParser(q.annotations, opts)
	if err != nil {
		return nil, fmt.Errorf("load annotations: %w", err)
	}

	scope := Scope{
		Chrom: qry.Chrom, Start: qry.Start, End: qry.End,
		Study: qry.Study, Tissue: qry.Tissue, GeneID: qry.GeneID,
	}
	csPath := q.resolver.CredibleSets(qry.Chrom, qry.Study, qry.Tissue, qry.DataType)
	joiner, err := LoadCredibleSets(ctx, q.fetcher, csPath, scope, opts)
	if err != nil {
		return nil, err
	}
	q.logger.Debug("credible sets loaded",
		zap.String("source", csPath),
		zap.Stringer("scope", scope),
		zap.Int("entries", joiner.Len()))

	schema := parser.Schema()
	lines, err := q.fetcher.Fetch(ctx, source, qry.Window(), tabix.Options{
		ChromColumn: schema.Index(ColChromosome),
		PosColumn:   schema.Index(ColPosition),
		SkipRows:    qry.RowsToSkip,
	})
	if err != nil {
		if errors.Is(err, tabix.ErrSourceMissing) || errors.Is(err, tabix.ErrInvalidRegion) {
			q.logger.Debug("no data for query", zap.String("source", source), zap.Error(err))
			return emptyResults(), nil
		}
		return nil, fmt.Errorf("fetch associations: %w", err)
	}

	var filters []Filter
	if qry.GeneID != "" {
		filters = append(filters, GeneFilter(qry.GeneID))
	}
	if qry.Transcript != "" {
		filters = append(filters, TranscriptFilter(qry.Transcript))
	}
	if qry.IsPoint() {
		filters = append(filters, PositionFilter(qry.Start))
	}
	if qry.PIPOnly {
		filters = append(filters, SignificantPIP)
	}

	return &Results{lines: lines, parser: parser, joiner: joiner, filters: filters}, nil
}

// Collect runs a query and gathers every record.
func (q *Querier) Collect(ctx context.Context, qry Query) ([]*AssociationRecord, error) {
	res, err := q.Query(ctx, qry)
	if err != nil {
		return nil, err
	}
	return res.All()
}

// Results is a lazy, single-pass sequence of query records.
type Results struct {
	lines   tabix.Lines
	parser  *VariantParser
	joiner  *CredibleSetJoiner
	filters []Filter
	line    int
	done    bool
}

func emptyResults() *Results {
	return &Results{done: true}
}

// Next returns the next matching record, or nil, nil when the sequence is
// exhausted.
func (r *Results) Next() (*AssociationRecord, error) {
	for !r.done {
		line, err := r.lines.Next()
		if err == io.EOF {
			r.Close()
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		r.line++
		rec, err := r.parser.Parse(line)
		if err != nil {
			return nil, withLine(err, r.line)
		}
		r.joiner.Apply(rec)
		if allOf(r.filters, rec) {
			return rec, nil
		}
	}
	return nil, nil
}

// Close releases the underlying reader. It is safe to call more than once.
func (r *Results) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	return r.lines.Close()
}

// All drains the sequence and closes it.
func (r *Results) All() ([]*AssociationRecord, error) {
	defer r.Close()
	var out []*AssociationRecord
	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return out, nil
		}
		out = append(out, rec)
	}
}
