package qtl

import "github.com/statgen/fivex/internal/annotation"

// Filter reports whether a record should be kept.
type Filter func(*AssociationRecord) bool

// GeneFilter matches gene ids ignoring any version suffix on either side.
func GeneFilter(geneID string) Filter {
	want := annotation.BaseGeneID(geneID)
	return func(r *AssociationRecord) bool {
		return annotation.BaseGeneID(r.GeneID) == want
	}
}

// TranscriptFilter matches transcript ids ignoring any version suffix.
func TranscriptFilter(transcript string) Filter {
	want := annotation.BaseGeneID(transcript)
	return func(r *AssociationRecord) bool {
		return r.Transcript != "" && annotation.BaseGeneID(r.Transcript) == want
	}
}

// PositionFilter keeps rows at exactly pos.
func PositionFilter(pos int64) Filter {
	return func(r *AssociationRecord) bool {
		return r.Position == pos
	}
}

// SignificantPIP keeps fine-mapped, genome-wide significant rows.
func SignificantPIP(r *AssociationRecord) bool {
	return r.HasFineMapping() && r.PIP() > 0 && r.LogPValue > GenomeWideLogP
}

func allOf(filters []Filter, r *AssociationRecord) bool {
	for _, f := range filters {
		if !f(r) {
			return false
		}
	}
	return true
}
