// Package gencode locates genes and transcripts from the sorted gencode
// BED extracts under the data root.
package gencode

// Feature is a gene or transcript interval.
type Feature struct {
	ID     string `json:"gene_id"` // Ensembl id, possibly versioned (e.g., ENSG00000134243.11)
	Symbol string `json:"symbol"`  // e.g., SORT1
	Chrom  string `json:"chrom"`   // without "chr" prefix
	Start  int64  `json:"start"`   // 1-based
	End    int64  `json:"end"`     // 1-based, inclusive
	Strand int8   `json:"strand"`  // +1 (forward) or -1 (reverse), 0 if unknown
}

// IsForwardStrand returns true if the feature is on the forward strand.
func (f *Feature) IsForwardStrand() bool {
	return f.Strand == 1
}

// IsReverseStrand returns true if the feature is on the reverse strand.
func (f *Feature) IsReverseStrand() bool {
	return f.Strand == -1
}

// Contains returns true if the given position is within the feature boundaries.
func (f *Feature) Contains(pos int64) bool {
	return pos >= f.Start && pos <= f.End
}

// TSS returns the transcription start site: Start on the forward strand,
// End on the reverse strand.
func (f *Feature) TSS() int64 {
	if f.IsReverseStrand() {
		return f.End
	}
	return f.Start
}
