package qtl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/statgen/fivex/internal/annotation"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/tabix"
)

const exampleRow = "1\t100\tENSG1\t1\t100\tA\tT\tchr1_100_A_T\t5\t0.1\t0.00001\t0.5\t0.1\tSNP\t10\t100\t0.9\tENSG1.contained\tENSG1\t5.0\trs123"

func tsv(fields ...string) string {
	return strings.Join(fields, "\t")
}

// assocRow builds a merged association row.
func assocRow(study, tissue, trait, pos, ref, alt, pvalue, gene string) string {
	return tsv(study, tissue, trait, "1", pos, ref, alt, "chr1_"+pos+"_"+ref+"_"+alt,
		"5", "0.1", pvalue, "0.5", "0.1", "SNP", "10", "100", "NA",
		gene+".contained", gene, "5.0", "rs1")
}

// csRow builds a merged credible set row without joined columns.
func csRow(study, tissue, gene, pos, ref, alt, csIndex, pip, size string) string {
	return tsv(study, tissue, gene, "chr1_"+pos+"_"+ref+"_"+alt, "1", pos, ref, alt,
		gene+"_"+csIndex, csIndex, "1:1-200", pip, "3.2", "0.8", "0.9", size,
		"0.4", "0.05", "5.1")
}

func writeGzip(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

func testTables() *annotation.Tables {
	return &annotation.Tables{
		Symbols: map[string]string{"ENSG1": "GENE1", "ENSG2": "GENE2"},
		TSS:     map[string]float64{"ENSG1": -150, "ENSG2": 90},
	}
}

func newTestQuerier(t *testing.T) (*Querier, *locate.Resolver) {
	t.Helper()
	res := locate.NewResolver(t.TempDir())
	return NewQuerier(res, tabix.NewAuto(), annotation.NewStatic(testTables())), res
}
