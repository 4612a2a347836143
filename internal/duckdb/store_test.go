package duckdb

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statgen/fivex/internal/qtl"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(study, tissue, gene, symbol string, pos int64, logp float64) *qtl.AssociationRecord {
	r2 := 0.9
	return &qtl.AssociationRecord{
		Study: study, Tissue: tissue, Chromosome: "1", Position: pos, Ref: "A", Alt: "T",
		GeneID: gene, Symbol: symbol, System: "Blood", LogPValue: logp,
		MASamples: 5, MAF: 0.1, Beta: 0.5, StdErrBeta: 0.1, VarType: "SNP",
		AC: 10, AN: 100, R2: &r2, MedianTPM: 5, RSID: "rs1",
		TSSDistance: 10, TSSPosition: -90, Build: qtl.Build,
		VariantID: qtl.FormatVariantID("1", pos, "A", "T"),
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "", s.Path())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "export.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestWriteAndLookup(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	a := record("GTEx", "blood", "ENSG1", "GENE1", 100, 9)
	a.SetFineMapping(qtl.FineMapping{CSIndex: "L1", CSSize: 3, PIP: 0.4})
	b := record("BLUEPRINT", "monocyte", "ENSG1", "GENE1", 100, math.Inf(1))
	b.R2 = nil
	b.SetFineMapping(qtl.NotFineMapped)
	dup := record("GTEx", "blood", "ENSG1", "GENE1", 100, 1)

	require.NoError(t, s.WriteRecords(ctx, []*qtl.AssociationRecord{a, b, dup}))
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "duplicates are written once")

	got, err := s.LookupVariant("1", 100, "A", "T")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "BLUEPRINT", got[0].Study)
	assert.True(t, math.IsInf(got[0].LogPValue, 1))
	assert.Nil(t, got[0].R2)
	assert.Equal(t, qtl.NotFineMapped, *got[0].FineMapping())

	assert.Equal(t, "GTEx", got[1].Study)
	assert.Equal(t, 9.0, got[1].LogPValue)
	assert.Equal(t, &qtl.FineMapping{CSIndex: "L1", CSSize: 3, PIP: 0.4}, got[1].FineMapping())
	assert.Equal(t, "1:100_A/T", got[1].VariantID)
	require.NotNil(t, got[1].R2)
	assert.Equal(t, 0.9, *got[1].R2)

	got, err = s.LookupVariant("1", 999, "A", "T")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteReplacesExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.duckdb")
	ctx := context.Background()

	first := record("GTEx", "blood", "ENSG1", "GENE1", 100, 9)
	first.SetFineMapping(qtl.NotFineMapped)
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteRecords(ctx, []*qtl.AssociationRecord{first}))
	require.NoError(t, s.Close())

	// Exporting the same association again must not violate the key.
	again := record("GTEx", "blood", "ENSG1", "GENE1", 100, 9)
	again.SetFineMapping(qtl.FineMapping{CSIndex: "L2", CSSize: 5, PIP: 0.7})
	other := record("GTEx", "blood", "ENSG2", "GENE2", 100, 3)
	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.WriteRecords(ctx, []*qtl.AssociationRecord{again, other}))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.SearchByGene("ENSG1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, &qtl.FineMapping{CSIndex: "L2", CSSize: 5, PIP: 0.7}, got[0].FineMapping())
}

func TestWriteUnjoined(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteRecords(context.Background(), []*qtl.AssociationRecord{record("S", "T", "ENSG1", "G", 1, 2)}))

	got, err := s.LookupVariant("1", 1, "A", "T")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].HasFineMapping())
}

func TestWriteEmpty(t *testing.T) {
	s := openInMemory(t)
	assert.NoError(t, s.WriteRecords(context.Background(), nil))
}

func TestClear(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteRecords(context.Background(), []*qtl.AssociationRecord{record("S", "T", "ENSG1", "G", 1, 2)}))
	require.NoError(t, s.Clear())

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchByGene(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteRecords(context.Background(), []*qtl.AssociationRecord{
		record("S", "T", "ENSG00000134243.11", "SORT1", 200, 3),
		record("S", "T", "ENSG00000134243.11", "SORT1", 100, 4),
		record("S", "T", "ENSG00000000002", "OTHER", 150, 5),
	}))

	byID, err := s.SearchByGene("ENSG00000134243")
	require.NoError(t, err)
	require.Len(t, byID, 2)
	assert.Equal(t, int64(100), byID[0].Position)

	bySymbol, err := s.SearchByGene("SORT1")
	require.NoError(t, err)
	assert.Len(t, bySymbol, 2)

	none, err := s.SearchByGene("NOTEXIST")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearchSignificant(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteRecords(context.Background(), []*qtl.AssociationRecord{
		record("S", "T", "ENSG1", "G", 1, 3),
		record("S", "T", "ENSG1", "G", 2, 12),
		record("S", "T", "ENSG1", "G", 3, 8),
	}))

	got, err := s.SearchSignificant(qtl.GenomeWideLogP)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Position)
	assert.Equal(t, int64(3), got[1].Position)
}
