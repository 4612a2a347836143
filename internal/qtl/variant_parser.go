package qtl

import (
	"math"
	"strings"

	"github.com/statgen/fivex/internal/annotation"
	"github.com/statgen/fivex/internal/locate"
	"github.com/statgen/fivex/internal/numparse"
)

// ParserOptions configure row parsers. Study and Tissue are supplied
// out-of-band for study and tissue specific files, whose rows omit them;
// both must be set for that layout to apply.
type ParserOptions struct {
	Study    string
	Tissue   string
	DataType locate.DataType
	Numbers  numparse.Strategy
}

func (o ParserOptions) perStudy() bool {
	return o.Study != "" && o.Tissue != ""
}

func (o ParserOptions) numbers() numparse.Strategy {
	if o.Numbers == nil {
		return numparse.Standard
	}
	return o.Numbers
}

// VariantParser decodes association rows and enriches them with gene
// annotation and tissue grouping.
type VariantParser struct {
	opts   ParserOptions
	schema *Schema
	tables *annotation.Tables
	num    numparse.Strategy
}

// NewVariantParser loads the annotation tables once and returns a parser
// for the layout implied by opts.
func NewVariantParser(tables annotation.Provider, opts ParserOptions) (*VariantParser, error) {
	t, err := tables.Tables()
	if err != nil {
		return nil, err
	}
	schema := AssociationMerged
	if opts.perStudy() {
		schema = AssociationStudy
	}
	return &VariantParser{opts: opts, schema: schema, tables: t, num: opts.numbers()}, nil
}

// Schema returns the column layout the parser expects.
func (p *VariantParser) Schema() *Schema {
	return p.schema
}

// Parse decodes one tab-delimited line.
func (p *VariantParser) Parse(line string) (*AssociationRecord, error) {
	r, err := newRow(p.schema, line, p.num)
	if err != nil {
		return nil, err
	}

	rec := &AssociationRecord{
		Study:                  r.str(ColStudy),
		Tissue:                 r.str(ColTissue),
		MolecularTraitID:       r.str(ColMolecularTraitID),
		Chromosome:             r.str(ColChromosome),
		Position:               r.int(ColPosition),
		Ref:                    r.str(ColRef),
		Alt:                    r.str(ColAlt),
		Variant:                r.str(ColVariant),
		MASamples:              r.int(ColMASamples),
		MAF:                    r.float(ColMAF),
		LogPValue:              r.logPValue(ColPValue),
		Beta:                   r.float(ColBeta),
		StdErrBeta:             r.float(ColSE),
		VarType:                r.str(ColType),
		AC:                     r.int(ColAC),
		AN:                     r.int(ColAN),
		R2:                     r.optionalFloat(ColR2),
		MolecularTraitObjectID: r.str(ColMolecularTraitObjectID),
		GeneID:                 r.str(ColGeneID),
		MedianTPM:              r.float(ColMedianTPM),
		RSID:                   r.str(ColRSID),
		Build:                  Build,
	}
	if r.err != nil {
		return nil, r.err
	}
	if p.opts.perStudy() {
		rec.Study, rec.Tissue = p.opts.Study, p.opts.Tissue
	}
	if p.opts.DataType == locate.GeneExpression {
		rec.MolecularTraitID = ""
	}

	tss := p.tables.TSSPosition(rec.GeneID)
	rec.TSSDistance = math.Copysign(1, tss) * (float64(rec.Position) - math.Abs(tss))
	rec.TSSPosition = -math.Abs(tss)
	rec.Symbol = p.tables.Symbol(rec.GeneID)
	rec.System = annotation.SystemForTissue(rec.Tissue)
	rec.Transcript = transcriptOf(rec.MolecularTraitID)
	rec.VariantID = FormatVariantID(rec.Chromosome, rec.Position, rec.Ref, rec.Alt)
	return rec, nil
}

// transcriptOf extracts ENST00000356200 from
// ENSG00000008128.grp_1.contained.ENST00000356200.
func transcriptOf(traitID string) string {
	if traitID == "" {
		return ""
	}
	parts := strings.Split(traitID, ".")
	if len(parts) != 4 {
		return ""
	}
	return parts[3]
}
