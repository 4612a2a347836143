package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrNoBestHit is returned when no row of the best-hit table matches.
var ErrNoBestHit = errors.New("no best hit for query")

// BestHit is the most significant association recorded for a variant.
type BestHit struct {
	GeneID string  `db:"gene_id" json:"gene_id"`
	Chrom  string  `db:"chrom" json:"chrom"`
	Pos    int64   `db:"pos" json:"pos"`
	Ref    string  `db:"ref" json:"ref"`
	Alt    string  `db:"alt" json:"alt"`
	PValue float64 `db:"pvalue" json:"pvalue"`
	Study  string  `db:"study" json:"study"`
	Tissue string  `db:"tissue" json:"tissue"`
}

// BestQuery filters the best-hit table. Zero values are unset; End is only
// used together with Start.
type BestQuery struct {
	Chrom  string
	Start  int64
	End    int64
	Study  string
	Tissue string
	GeneID string
}

func (q BestQuery) sql() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT * FROM sig WHERE chrom=?")
	args := []any{q.Chrom}
	if q.Start != 0 {
		if q.End != 0 {
			b.WriteString(" AND pos BETWEEN ? AND ?")
			args = append(args, q.Start, q.End)
		} else {
			b.WriteString(" AND pos=?")
			args = append(args, q.Start)
		}
	}
	if q.Study != "" {
		b.WriteString(" AND study=?")
		args = append(args, q.Study)
	}
	if q.Tissue != "" {
		b.WriteString(" AND tissue=?")
		args = append(args, q.Tissue)
	}
	if q.GeneID != "" {
		b.WriteString(" AND gene_id=?")
		args = append(args, q.GeneID)
	}
	b.WriteString(" ORDER BY pvalue LIMIT 1")
	return b.String(), args
}

// BestHits reads the "sig" table of the per-variant summary database.
type BestHits struct {
	db *sqlx.DB

	// PreferredStudy, when set and the caller names no study, is tried first;
	// the unrestricted query is the fallback.
	PreferredStudy string

	logger *zap.Logger
}

// OpenBestHits opens the summary database at path.
func OpenBestHits(path string) (*BestHits, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &BestHits{db: db, logger: zap.NewNop()}, nil
}

// NewBestHits wraps an open connection.
func NewBestHits(db *sqlx.DB) *BestHits {
	return &BestHits{db: db, logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (b *BestHits) SetLogger(l *zap.Logger) {
	b.logger = l
}

// Close closes the database.
func (b *BestHits) Close() error {
	return b.db.Close()
}

// Best returns the lowest p-value row matching q, or ErrNoBestHit.
func (b *BestHits) Best(ctx context.Context, q BestQuery) (*BestHit, error) {
	if b.PreferredStudy != "" && q.Study == "" {
		pq := q
		pq.Study = b.PreferredStudy
		hit, err := b.best(ctx, pq)
		if err == nil {
			return hit, nil
		}
		if !errors.Is(err, ErrNoBestHit) {
			return nil, err
		}
		b.logger.Debug("preferred study has no hit, falling back",
			zap.String("study", b.PreferredStudy), zap.String("chrom", q.Chrom))
	}
	return b.best(ctx, q)
}

func (b *BestHits) best(ctx context.Context, q BestQuery) (*BestHit, error) {
	query, args := q.sql()
	var h BestHit
	// The summary builder adds fine-mapping columns that are not served.
	err := b.db.Unsafe().GetContext(ctx, &h, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBestHit
	}
	if err != nil {
		return nil, fmt.Errorf("query best hit: %w", err)
	}
	return &h, nil
}
