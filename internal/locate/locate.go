// Package locate maps genomic queries onto data files under the fivex data root.
package locate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DataType selects between expression and splicing datasets.
type DataType string

const (
	GeneExpression DataType = "ge"    // eQTL
	Txrevise       DataType = "txrev" // sQTL (txrevise events)
)

// ParseDataType validates a datatype string. Empty means GeneExpression.
func ParseDataType(s string) (DataType, error) {
	switch DataType(s) {
	case "", GeneExpression:
		return GeneExpression, nil
	case Txrevise:
		return Txrevise, nil
	}
	return "", fmt.Errorf("unknown datatype %q (want ge or txrev)", s)
}

// ChunkSize is the span of each merged association file.
const ChunkSize = 1000000

// Resolver builds file paths relative to a data root directory.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver for the given data root.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Root returns the data root directory.
func (r *Resolver) Root() string {
	return r.root
}

// clean reduces a caller-supplied path component to its base name so it
// cannot escape the data root.
func clean(s string) string {
	s = filepath.Base(s)
	if s == "." || s == ".." || s == string(filepath.Separator) {
		return "_"
	}
	return s
}

// ChunkBounds returns the 1-based inclusive bounds of the merged chunk
// containing pos.
func ChunkBounds(pos int64) (start, end int64) {
	start = (pos/ChunkSize)*ChunkSize + 1
	return start, start + ChunkSize - 1
}

// MergedData returns the merged, 1Mbp-chunked association file covering pos.
// Only single variant lookups should read these files.
func (r *Resolver) MergedData(chrom string, pos int64, dt DataType) string {
	chrom = clean(chrom)
	start, end := ChunkBounds(pos)
	return filepath.Join(r.root, "ebi_"+string(dt), chrom,
		fmt.Sprintf("all.EBI.%s.data.chr%s.%d-%d.tsv.gz", dt, chrom, start, end))
}

// StudyTissueData returns the genome-wide association file for one study and tissue.
func (r *Resolver) StudyTissueData(study, tissue string, dt DataType) string {
	study, tissue = clean(study), clean(tissue)
	return filepath.Join(r.root, "ebi_original", string(dt), study,
		fmt.Sprintf("%s_%s_%s.all.tsv.gz", study, dt, tissue))
}

// CredibleSets returns the credible set file for a query scope: the
// purity-filtered study and tissue file when both are given, otherwise the
// merged per-chromosome table.
func (r *Resolver) CredibleSets(chrom, study, tissue string, dt DataType) string {
	if study == "" || tissue == "" {
		return r.CredibleSetTable(chrom, dt)
	}
	study, tissue = clean(study), clean(tissue)
	return filepath.Join(r.root, "credible_sets", string(dt), study,
		fmt.Sprintf("%s.%s_%s.purity_filtered.sorted.txt.gz", study, tissue, dt))
}

// CredibleSetTable returns the merged credible set file for a chromosome.
func (r *Resolver) CredibleSetTable(chrom string, dt DataType) string {
	chrom = clean(chrom)
	return filepath.Join(r.root, "credible_sets", string(dt),
		fmt.Sprintf("chr%s.%s.credible_set.tsv.gz", chrom, dt))
}

// TSSData returns the signed TSS table. Positive values are plus strand.
func (r *Resolver) TSSData() string {
	return filepath.Join(r.root, "gencode", "tss.json.gz")
}

// GeneSymbols returns the two-way gene id / symbol mapping.
func (r *Resolver) GeneSymbols() string {
	return filepath.Join(r.root, "gene.id.symbol.map.json.gz")
}

// GencodeGenes returns the sorted gencode gene BED file.
func (r *Resolver) GencodeGenes() string {
	return filepath.Join(r.root, "gencode", "gencode.v30.annotation.gtf.genes.bed.gz")
}

// GencodeTranscripts returns the sorted gencode transcript BED file.
func (r *Resolver) GencodeTranscripts() string {
	return filepath.Join(r.root, "gencode", "gencode.v30.annotation.gtf.transcripts.bed.gz")
}

// BestPerVariant returns the SQLite database holding the best study, tissue
// and gene for each variant.
func (r *Resolver) BestPerVariant(dt DataType) string {
	return filepath.Join(r.root, "credible_sets", string(dt),
		"pip.best.variant.summary.sorted.indexed.sqlite3.db")
}

// RSIDDatabase returns the SQLite rsid lookup database.
func (r *Resolver) RSIDDatabase() string {
	return filepath.Join(r.root, "rsid.sqlite3.db")
}

// NormalizeChrom strips any leading "chr" from a chromosome label.
func NormalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}
