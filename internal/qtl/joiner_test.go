package qtl

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statgen/fivex/internal/tabix"
)

func TestJoinerApply(t *testing.T) {
	j := NewCredibleSetJoiner([]*CredibleSetRecord{
		{Chromosome: "1", Position: 100, Ref: "A", Alt: "T", Study: "S", Tissue: "T", GeneID: "ENSG1", CSIndex: "L1", CSSize: 2, PIP: 0.1},
		{Chromosome: "1", Position: 100, Ref: "A", Alt: "T", Study: "S", Tissue: "T", GeneID: "ENSG1", CSIndex: "L2", CSSize: 5, PIP: 0.6},
	})
	assert.Equal(t, 1, j.Len(), "duplicate keys collapse")

	hit := &AssociationRecord{Chromosome: "1", Position: 100, Ref: "A", Alt: "T", Study: "S", Tissue: "T", GeneID: "ENSG1"}
	j.Apply(hit)
	assert.Equal(t, &FineMapping{CSIndex: "L2", CSSize: 5, PIP: 0.6}, hit.FineMapping(), "last duplicate wins")

	miss := &AssociationRecord{Chromosome: "1", Position: 100, Ref: "A", Alt: "G", Study: "S", Tissue: "T", GeneID: "ENSG1"}
	j.Apply(miss)
	assert.Equal(t, NotFineMapped, *miss.FineMapping())

	// idempotent
	j.Apply(hit)
	assert.Equal(t, 0.6, hit.PIP())
}

func TestLoadCredibleSets_Point(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chr1.ge.credible_set.tsv.gz")
	writeGzip(t, path,
		csRow("S", "T", "ENSG1", "99", "A", "T", "L1", "0.1", "2"),
		csRow("S", "T", "ENSG1", "100", "A", "T", "L1", "0.2", "2"),
		csRow("S", "T", "ENSG2", "100", "A", "T", "L1", "0.3", "2"),
		csRow("S", "T", "ENSG1", "101", "A", "T", "L1", "0.4", "2"),
	)
	j, err := LoadCredibleSets(context.Background(), tabix.NewAuto(), path,
		Scope{Chrom: "1", Start: 100}, ParserOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, j.Len(), "only position 100 is kept")
}

func TestLoadCredibleSets_RegionGeneFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "S.T_ge.purity_filtered.sorted.txt.gz")
	header := "phenotype_id\tvariant_id\tchr\tpos\tref\talt\tcs_id\tcs_index\tfinemapped_region\tpip\tz\tcs_min_r2\tcs_avg_r2\tcs_size\tposterior_mean\tposterior_sd\tcs_log10bf"
	perStudy := func(gene, pos string) string {
		return tsv(gene, "chr1_"+pos+"_A_T", "1", pos, "A", "T", gene+"_L1", "L1", "1:1-200",
			"0.5", "1", "0.8", "0.9", "3", "0.1", "0.1", "2")
	}
	writeGzip(t, path, header, perStudy("ENSG1.3", "50"), perStudy("ENSG2", "60"), perStudy("ENSG1.3", "70"))

	j, err := LoadCredibleSets(context.Background(), tabix.NewAuto(), path,
		Scope{Chrom: "1", Start: 1, End: 1000, Study: "S", Tissue: "T", GeneID: "ENSG1.9"},
		ParserOptions{Study: "S", Tissue: "T"})
	require.NoError(t, err)
	assert.Equal(t, 2, j.Len())
}

func TestLoadCredibleSets_MergedFileKeepsFirstRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chr1.ge.credible_set.tsv.gz")
	writeGzip(t, path,
		csRow("S", "T", "ENSG1", "100", "A", "T", "L1", "0.2", "2"),
		csRow("S", "T2", "ENSG1", "100", "A", "T", "L1", "0.3", "2"),
	)
	j, err := LoadCredibleSets(context.Background(), tabix.NewAuto(), path,
		Scope{Chrom: "1", Start: 100, Study: "S"}, ParserOptions{Study: "S"})
	require.NoError(t, err)
	assert.Equal(t, 2, j.Len(), "merged files have no header row")
}

func TestLoadCredibleSets_MissingFile(t *testing.T) {
	j, err := LoadCredibleSets(context.Background(), tabix.NewAuto(),
		filepath.Join(t.TempDir(), "absent.tsv.gz"), Scope{Chrom: "1", Start: 100}, ParserOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, j.Len())
}

func TestLoadCredibleSets_ParseErrorHasLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cs.tsv.gz")
	bad := csRow("S", "T", "ENSG1", "100", "A", "T", "L1", "high", "2")
	writeGzip(t, path, bad)
	_, err := LoadCredibleSets(context.Background(), tabix.NewAuto(), path,
		Scope{Chrom: "1", Start: 100}, ParserOptions{})
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
	assert.Equal(t, ColPIP, pe.Column)
}
