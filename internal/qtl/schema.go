package qtl

// Column names shared by the association and credible set layouts. See
// https://github.com/eQTL-Catalogue/eQTL-Catalogue-resources/blob/master/tabix/Columns.md
const (
	ColStudy                  = "study"
	ColTissue                 = "tissue"
	ColMolecularTraitID       = "molecular_trait_id" // e.g. ENSG00000008128.grp_1.contained.ENST00000356200
	ColChromosome             = "chromosome"
	ColPosition               = "position"
	ColRef                    = "ref"
	ColAlt                    = "alt"
	ColVariant                = "variant" // chr_pos_ref_alt
	ColMASamples              = "ma_samples"
	ColMAF                    = "maf"
	ColPValue                 = "pvalue"
	ColBeta                   = "beta"
	ColSE                     = "se"
	ColType                   = "type"
	ColAC                     = "ac"
	ColAN                     = "an"
	ColR2                     = "r2"
	ColMolecularTraitObjectID = "molecular_trait_object_id" // e.g. ENSG00000008128.contained
	ColGeneID                 = "gene_id"
	ColMedianTPM              = "median_tpm"
	ColRSID                   = "rsid"

	ColVariantKey       = "variant_id" // chrom_pos_ref_alt, unused
	ColCSID             = "cs_id"      // {phenotype_id}_{cs_index}
	ColCSIndex          = "cs_index"   // L1, L2, ...
	ColFinemappedRegion = "finemapped_region"
	ColPIP              = "pip"
	ColZ                = "z"
	ColCSMinR2          = "cs_min_r2"
	ColCSAvgR2          = "cs_avg_r2"
	ColCSSize           = "cs_size"
	ColPosteriorMean    = "posterior_mean"
	ColPosteriorSD      = "posterior_sd"
	ColCSLog10BF        = "cs_log10bf"
	ColGID              = "gid"
	ColSymbol           = "symbol"
)

// Schema maps column names to their position in a tab-delimited row.
type Schema struct {
	names []string
	index map[string]int
}

// NewSchema creates a schema from column names in file order.
func NewSchema(names ...string) *Schema {
	s := &Schema{names: names, index: make(map[string]int, len(names))}
	for i, n := range names {
		s.index[n] = i
	}
	return s
}

// Width returns the number of columns.
func (s *Schema) Width() int {
	return len(s.names)
}

// Index returns the position of a column, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Has reports whether the schema contains a column.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// Prefix returns a schema of the first n columns.
func (s *Schema) Prefix(n int) *Schema {
	return NewSchema(s.names[:n]...)
}

// Without returns a schema with the named columns removed.
func (s *Schema) Without(drop ...string) *Schema {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var names []string
	for _, n := range s.names {
		if !skip[n] {
			names = append(names, n)
		}
	}
	return NewSchema(names...)
}

// AssociationMerged is the layout of the merged, 1Mbp-chunked files.
var AssociationMerged = NewSchema(
	ColStudy, ColTissue, ColMolecularTraitID,
	ColChromosome, ColPosition, ColRef, ColAlt, ColVariant,
	ColMASamples, ColMAF, ColPValue, ColBeta, ColSE,
	ColType, ColAC, ColAN, ColR2,
	ColMolecularTraitObjectID, ColGeneID, ColMedianTPM, ColRSID,
)

// AssociationStudy is the layout of study and tissue specific files, which
// omit the study and tissue columns.
var AssociationStudy = AssociationMerged.Without(ColStudy, ColTissue)

// CredibleSetMerged is the full credible set layout including the columns
// added by joining the association statistics.
var CredibleSetMerged = NewSchema(
	ColStudy, ColTissue, ColGeneID, ColVariantKey,
	ColChromosome, ColPosition, ColRef, ColAlt,
	ColCSID, ColCSIndex, ColFinemappedRegion, ColPIP,
	ColZ, ColCSMinR2, ColCSAvgR2, ColCSSize,
	ColPosteriorMean, ColPosteriorSD, ColCSLog10BF,
	// joined association columns
	ColMASamples, ColMAF, ColPValue, ColBeta, ColSE,
	ColType, ColAC, ColAN, ColR2,
	ColMolecularTraitObjectID, ColGID, ColMedianTPM, ColRSID, ColSymbol,
)

// credibleSetBaseWidth is the number of columns every credible set file has.
const credibleSetBaseWidth = 19

// CredibleSetStudy is the credible set layout of purity-filtered study and
// tissue specific files.
var CredibleSetStudy = CredibleSetMerged.Without(ColStudy, ColTissue)
