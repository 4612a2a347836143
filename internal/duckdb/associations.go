package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/statgen/fivex/internal/qtl"
)

// recordKey is the composite key for deduplicating records before writing.
type recordKey struct {
	chrom, ref, alt, study, tissue, geneID, traitID string
	pos                                             int64
}

const selectColumns = `study, tissue, molecular_trait_id, chrom, pos, ref, alt,
		gene_id, transcript, symbol, system,
		ma_samples, maf, log_pvalue, beta, stderr_beta, vartype, ac, an, r2,
		molecular_trait_object_id, median_tpm, rsid, tss_distance, tss_position,
		cs_index, cs_size, pip`

// WriteRecords batch-inserts associations using the Appender API. Records
// sharing a primary key are written once per batch, and rows already in the
// store are replaced, so exporting the same query twice is harmless.
func (s *Store) WriteRecords(ctx context.Context, records []*qtl.AssociationRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[recordKey]bool, len(records))
	deduped := make([]*qtl.AssociationRecord, 0, len(records))
	for _, r := range records {
		k := recordKey{r.Chromosome, r.Ref, r.Alt, r.Study, r.Tissue, r.GeneID, r.MolecularTraitID, r.Position}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// Rows are appended to a staging table and merged, since the Appender
	// cannot resolve primary key conflicts.
	if _, err := conn.ExecContext(ctx,
		`CREATE OR REPLACE TABLE associations_staging AS SELECT * FROM associations LIMIT 0`); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}
	defer conn.ExecContext(context.Background(), `DROP TABLE IF EXISTS associations_staging`)

	if err := appendRecords(conn, "associations_staging", deduped); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO associations SELECT * FROM associations_staging`); err != nil {
		return fmt.Errorf("merge associations: %w", err)
	}
	return nil
}

func appendRecords(conn *sql.Conn, table string, records []*qtl.AssociationRecord) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	for _, r := range records {
		var r2 any
		if r.R2 != nil {
			r2 = *r.R2
		}
		var csIndex, csSize, pip any
		if fm := r.FineMapping(); fm != nil {
			csIndex, csSize, pip = fm.CSIndex, fm.CSSize, fm.PIP
		}
		if err := appender.AppendRow(
			r.Study, r.Tissue, r.MolecularTraitID, r.Chromosome, r.Position, r.Ref, r.Alt,
			r.GeneID, r.Transcript, r.Symbol, r.System,
			r.MASamples, r.MAF, r.LogPValue, r.Beta, r.StdErrBeta, r.VarType, r.AC, r.AN, r2,
			r.MolecularTraitObjectID, r.MedianTPM, r.RSID, r.TSSDistance, r.TSSPosition,
			csIndex, csSize, pip,
		); err != nil {
			appender.Close()
			return fmt.Errorf("append association: %w", err)
		}
	}

	// Close flushes the remaining rows.
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush associations: %w", err)
	}
	return nil
}

// Clear removes all exported associations.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM associations")
	return err
}

// Count returns the number of stored associations.
func (s *Store) Count() (int64, error) {
	var n int64
	err := s.db.QueryRow("SELECT count(*) FROM associations").Scan(&n)
	return n, err
}

// LookupVariant returns every stored association of one variant.
func (s *Store) LookupVariant(chrom string, pos int64, ref, alt string) ([]*qtl.AssociationRecord, error) {
	rows, err := s.db.Query(`SELECT `+selectColumns+`
		FROM associations
		WHERE chrom=? AND pos=? AND ref=? AND alt=?
		ORDER BY study, tissue, gene_id`,
		chrom, pos, ref, alt)
	if err != nil {
		return nil, fmt.Errorf("query variant: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchByGene returns stored associations of a gene id or symbol. Gene ids
// match with or without a version suffix.
func (s *Store) SearchByGene(gene string) ([]*qtl.AssociationRecord, error) {
	rows, err := s.db.Query(`SELECT `+selectColumns+`
		FROM associations
		WHERE split_part(gene_id, '.', 1)=split_part(?, '.', 1) OR symbol=?
		ORDER BY pos, study, tissue`, gene, gene)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchSignificant returns associations with -log10(p) above minLogP,
// strongest first.
func (s *Store) SearchSignificant(minLogP float64) ([]*qtl.AssociationRecord, error) {
	rows, err := s.db.Query(`SELECT `+selectColumns+`
		FROM associations
		WHERE log_pvalue > ?
		ORDER BY log_pvalue DESC, chrom, pos`, minLogP)
	if err != nil {
		return nil, fmt.Errorf("query significant: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords scans rows into association records.
func scanRecords(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*qtl.AssociationRecord, error) {
	var results []*qtl.AssociationRecord
	for rows.Next() {
		var (
			r       qtl.AssociationRecord
			r2      sql.NullFloat64
			csIndex sql.NullString
			csSize  sql.NullInt64
			pip     sql.NullFloat64
		)
		if err := rows.Scan(
			&r.Study, &r.Tissue, &r.MolecularTraitID, &r.Chromosome, &r.Position, &r.Ref, &r.Alt,
			&r.GeneID, &r.Transcript, &r.Symbol, &r.System,
			&r.MASamples, &r.MAF, &r.LogPValue, &r.Beta, &r.StdErrBeta, &r.VarType, &r.AC, &r.AN, &r2,
			&r.MolecularTraitObjectID, &r.MedianTPM, &r.RSID, &r.TSSDistance, &r.TSSPosition,
			&csIndex, &csSize, &pip,
		); err != nil {
			return nil, fmt.Errorf("scan association: %w", err)
		}
		if r2.Valid {
			v := r2.Float64
			r.R2 = &v
		}
		if csIndex.Valid {
			r.SetFineMapping(qtl.FineMapping{CSIndex: csIndex.String, CSSize: csSize.Int64, PIP: pip.Float64})
		}
		r.Build = qtl.Build
		r.VariantID = qtl.FormatVariantID(r.Chromosome, r.Position, r.Ref, r.Alt)
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate associations: %w", err)
	}
	return results, nil
}
