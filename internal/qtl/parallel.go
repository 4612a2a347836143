package qtl

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/statgen/fivex/internal/annotation"
)

// QueryMany runs independent queries concurrently, each with its own reader
// and joiner, and concatenates their records in query order. workers <= 0
// runs every query at once.
func (q *Querier) QueryMany(ctx context.Context, queries []Query, workers int) ([]*AssociationRecord, error) {
	results := make([][]*AssociationRecord, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, qry := range queries {
		g.Go(func() error {
			recs, err := q.Collect(ctx, qry)
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n int
	for _, r := range results {
		n += len(r)
	}
	out := make([]*AssociationRecord, 0, n)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// StudyQueries expands a region query into one query per tissue of study.
func StudyQueries(base Query, study string) []Query {
	tissues := annotation.TissuesForStudy(study)
	queries := make([]Query, 0, len(tissues))
	for _, t := range tissues {
		q := base
		q.Study, q.Tissue = study, t
		queries = append(queries, q)
	}
	return queries
}
