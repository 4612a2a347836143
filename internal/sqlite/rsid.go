package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RSID is one row of rsidTable.
type RSID struct {
	Chrom string `db:"chrom" json:"chrom"`
	Pos   int64  `db:"pos" json:"pos"`
	Ref   string `db:"ref" json:"ref"`
	Alt   string `db:"alt" json:"alt"`
	RSID  string `db:"rsid" json:"rsid"`
	Found bool   `db:"-" json:"-"`
}

// UnknownRSID is the placeholder returned for positions not in the table.
func UnknownRSID(chrom string, pos int64) RSID {
	return RSID{Chrom: chrom, Pos: pos, Ref: "N", Alt: "N", RSID: "Unknown"}
}

// RSIDs looks up dbSNP identifiers by position.
type RSIDs struct {
	db *sqlx.DB
}

// OpenRSIDs opens the rsID database at path.
func OpenRSIDs(path string) (*RSIDs, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &RSIDs{db: db}, nil
}

// NewRSIDs wraps an open connection.
func NewRSIDs(db *sqlx.DB) *RSIDs {
	return &RSIDs{db: db}
}

func (r *RSIDs) Close() error {
	return r.db.Close()
}

// Lookup returns the first row at chrom:pos, or the UnknownRSID placeholder.
func (r *RSIDs) Lookup(ctx context.Context, chrom string, pos int64) (RSID, error) {
	var out RSID
	err := r.db.GetContext(ctx, &out,
		"SELECT chrom, pos, ref, alt, rsid FROM rsidTable WHERE chrom=? AND pos=? LIMIT 1", chrom, pos)
	if errors.Is(err, sql.ErrNoRows) {
		return UnknownRSID(chrom, pos), nil
	}
	if err != nil {
		return RSID{}, fmt.Errorf("query rsid: %w", err)
	}
	out.Found = true
	return out, nil
}
