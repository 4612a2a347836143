package qtl

import (
	"fmt"
	"strings"

	"github.com/statgen/fivex/internal/numparse"
)

// CredibleSetParser decodes fine-mapping rows, with or without the joined
// association columns.
type CredibleSetParser struct {
	opts     ParserOptions
	full     *Schema
	base     *Schema
	num      numparse.Strategy
	perStudy bool
}

// NewCredibleSetParser returns a parser for the layout implied by opts.
func NewCredibleSetParser(opts ParserOptions) *CredibleSetParser {
	full := CredibleSetMerged
	baseWidth := credibleSetBaseWidth
	if opts.perStudy() {
		full = CredibleSetStudy
		baseWidth -= 2
	}
	return &CredibleSetParser{
		opts:     opts,
		full:     full,
		base:     full.Prefix(baseWidth),
		num:      opts.numbers(),
		perStudy: opts.perStudy(),
	}
}

// Schema returns the full column layout, including joined columns.
func (p *CredibleSetParser) Schema() *Schema {
	return p.full
}

// Parse decodes one tab-delimited line. Lines with more columns than the
// base layout must carry the complete joined column set.
func (p *CredibleSetParser) Parse(line string) (*CredibleSetRecord, error) {
	width := strings.Count(line, "\t") + 1
	schema := p.base
	switch {
	case width >= p.full.Width():
		schema = p.full
	case width > p.base.Width():
		return nil, &ParseError{
			Message: fmt.Sprintf("expected %d or %d columns, found %d", p.base.Width(), p.full.Width(), width),
		}
	}

	r, err := newRow(schema, line, p.num)
	if err != nil {
		return nil, err
	}
	rec := &CredibleSetRecord{
		Study:            r.str(ColStudy),
		Tissue:           r.str(ColTissue),
		GeneID:           r.str(ColGeneID),
		VariantKey:       r.str(ColVariantKey),
		Chromosome:       r.str(ColChromosome),
		Position:         r.int(ColPosition),
		Ref:              r.str(ColRef),
		Alt:              r.str(ColAlt),
		CSID:             r.str(ColCSID),
		CSIndex:          r.str(ColCSIndex),
		FinemappedRegion: r.str(ColFinemappedRegion),
		PIP:              r.float(ColPIP),
		Z:                r.float(ColZ),
		CSMinR2:          r.float(ColCSMinR2),
		CSAvgR2:          r.float(ColCSAvgR2),
		CSSize:           r.int(ColCSSize),
		PosteriorMean:    r.float(ColPosteriorMean),
		PosteriorSD:      r.float(ColPosteriorSD),
		CSLog10BF:        r.float(ColCSLog10BF),
	}
	if schema == p.full {
		rec.Joined = &JoinedStats{
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
			GID:                    r.str(ColGID),
			MedianTPM:              r.float(ColMedianTPM),
			RSID:                   r.str(ColRSID),
			Symbol:                 r.str(ColSymbol),
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if p.perStudy {
		rec.Study, rec.Tissue = p.opts.Study, p.opts.Tissue
	}
	rec.VariantID = FormatVariantID(rec.Chromosome, rec.Position, rec.Ref, rec.Alt)
	return rec, nil
}
