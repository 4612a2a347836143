// Package qtl parses eQTL/sQTL association and fine-mapping rows, joins
// credible set results onto associations, and runs filtered region and
// single variant queries.
package qtl

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Build is the reference assembly of all served data.
const Build = "GRCh38"

var idPrinter = message.NewPrinter(language.English)

// FormatVariantID returns the EPACTS-style id with a comma-grouped position,
// e.g. 1:1,000,000_A/T.
func FormatVariantID(chrom string, pos int64, ref, alt string) string {
	return idPrinter.Sprintf("%s:%d_%s/%s", chrom, pos, ref, alt)
}

// FineMapping is the credible set augmentation of an association.
type FineMapping struct {
	CSIndex string  // credible set label (L1, L2, ...), "-" when absent
	CSSize  int64   // number of variants in the credible set
	PIP     float64 // posterior inclusion probability
}

// NotFineMapped is applied to associations without a credible set entry.
var NotFineMapped = FineMapping{CSIndex: "-", CSSize: 0, PIP: 0.0}

// AssociationRecord is one variant to molecular trait association.
type AssociationRecord struct {
	Study                  string
	Tissue                 string
	MolecularTraitID       string // txrevise event; empty for gene expression
	Chromosome             string
	Position               int64
	Ref                    string
	Alt                    string
	Variant                string // chr_pos_ref_alt as published
	MASamples              int64
	MAF                    float64
	LogPValue              float64
	Beta                   float64
	StdErrBeta             float64
	VarType                string
	AC                     int64
	AN                     int64
	R2                     *float64 // imputation quality, nil when missing
	MolecularTraitObjectID string
	GeneID                 string
	MedianTPM              float64
	RSID                   string

	Build       string
	TSSDistance float64 // NaN when the gene TSS is unknown
	TSSPosition float64 // -|TSS|
	Symbol      string
	System      string
	Transcript  string // empty when absent
	VariantID   string

	fineMapping *FineMapping
}

// PValue returns the nominal p-value. An infinite log p-value reads back as 0.
func (r *AssociationRecord) PValue() float64 {
	return PValueFromLog(r.LogPValue)
}

// Samples returns the sample count implied by the allele number.
func (r *AssociationRecord) Samples() float64 {
	return float64(r.AN) / 2
}

// StudyTissue returns the composite study-tissue label.
func (r *AssociationRecord) StudyTissue() string {
	return r.Study + "-" + r.Tissue
}

// FineMapping returns the credible set augmentation, or nil before joining.
func (r *AssociationRecord) FineMapping() *FineMapping {
	return r.fineMapping
}

// HasFineMapping reports whether a joiner has augmented the record.
func (r *AssociationRecord) HasFineMapping() bool {
	return r.fineMapping != nil
}

// PIP returns the posterior inclusion probability, 0 before joining.
func (r *AssociationRecord) PIP() float64 {
	if r.fineMapping == nil {
		return 0
	}
	return r.fineMapping.PIP
}

// SetFineMapping records the credible set augmentation.
func (r *AssociationRecord) SetFineMapping(fm FineMapping) {
	r.fineMapping = &fm
}

// JoinedStats are the association columns present in joined credible set files.
type JoinedStats struct {
	MASamples              int64
	MAF                    float64
	LogPValue              float64
	Beta                   float64
	StdErrBeta             float64
	VarType                string
	AC                     int64
	AN                     int64
	R2                     *float64
	MolecularTraitObjectID string
	GID                    string
	MedianTPM              float64
	RSID                   string
	Symbol                 string
}

// PValue returns the nominal p-value.
func (j *JoinedStats) PValue() float64 {
	return PValueFromLog(j.LogPValue)
}

// CredibleSetRecord is one variant within a fine-mapped credible set.
type CredibleSetRecord struct {
	Study            string
	Tissue           string
	GeneID           string // phenotype_id in the source files
	VariantKey       string // chrom_pos_ref_alt
	Chromosome       string
	Position         int64
	Ref              string
	Alt              string
	CSID             string
	CSIndex          string
	FinemappedRegion string // chrom:start-end
	PIP              float64
	Z                float64
	CSMinR2          float64
	CSAvgR2          float64
	CSSize           int64
	PosteriorMean    float64
	PosteriorSD      float64
	CSLog10BF        float64
	VariantID        string

	Joined *JoinedStats // nil unless the file carries association columns
}

// FineMapping returns the fields copied onto matching associations.
func (c *CredibleSetRecord) FineMapping() FineMapping {
	return FineMapping{CSIndex: c.CSIndex, CSSize: c.CSSize, PIP: c.PIP}
}
