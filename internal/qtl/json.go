package qtl

import (
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// jsonFloat encodes non-finite values as the strings "NaN", "Infinity" and
// "-Infinity", which plain JSON numbers cannot represent.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func optFloat(v *float64) *jsonFloat {
	if v == nil {
		return nil
	}
	f := jsonFloat(*v)
	return &f
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type associationJSON struct {
	Study                  string     `json:"study"`
	Tissue                 string     `json:"tissue"`
	TxreviseEvent          *string    `json:"txrevise_event"`
	Chromosome             string     `json:"chromosome"`
	Position               int64      `json:"position"`
	Ref                    string     `json:"ref_allele"`
	Alt                    string     `json:"alt_allele"`
	Variant                string     `json:"variant"`
	MASamples              int64      `json:"ma_samples"`
	MAF                    jsonFloat  `json:"maf"`
	LogPValue              jsonFloat  `json:"log_pvalue"`
	Beta                   jsonFloat  `json:"beta"`
	StdErrBeta             jsonFloat  `json:"stderr_beta"`
	VarType                string     `json:"vartype"`
	AC                     int64      `json:"ac"`
	AN                     int64      `json:"an"`
	R2                     *jsonFloat `json:"r2"`
	MolecularTraitObjectID string     `json:"molecular_trait_object_id"`
	GeneID                 string     `json:"gene_id"`
	MedianTPM              jsonFloat  `json:"median_tpm"`
	RSID                   string     `json:"rsid"`
	Build                  string     `json:"build"`
	TSSDistance            jsonFloat  `json:"tss_distance"`
	TSSPosition            jsonFloat  `json:"tss_position"`
	Symbol                 string     `json:"symbol"`
	System                 string     `json:"system"`
	Transcript             *string    `json:"transcript"`
	CSIndex                *string    `json:"cs_index"`
	CSSize                 *int64     `json:"cs_size"`
	PIP                    *jsonFloat `json:"pip"`
	VariantID              string     `json:"variant_id"`
	Samples                jsonFloat  `json:"samples"`
	StudyTissue            string     `json:"studytissue"`
}

// MarshalJSON encodes the record with snake_case keys. Fine-mapping fields
// are null until a joiner has run.
func (r *AssociationRecord) MarshalJSON() ([]byte, error) {
	out := associationJSON{
		Study:                  r.Study,
		Tissue:                 r.Tissue,
		TxreviseEvent:          optString(r.MolecularTraitID),
		Chromosome:             r.Chromosome,
		Position:               r.Position,
		Ref:                    r.Ref,
		Alt:                    r.Alt,
		Variant:                r.Variant,
		MASamples:              r.MASamples,
		MAF:                    jsonFloat(r.MAF),
		LogPValue:              jsonFloat(r.LogPValue),
		Beta:                   jsonFloat(r.Beta),
		StdErrBeta:             jsonFloat(r.StdErrBeta),
		VarType:                r.VarType,
		AC:                     r.AC,
		AN:                     r.AN,
		R2:                     optFloat(r.R2),
		MolecularTraitObjectID: r.MolecularTraitObjectID,
		GeneID:                 r.GeneID,
		MedianTPM:              jsonFloat(r.MedianTPM),
		RSID:                   r.RSID,
		Build:                  r.Build,
		TSSDistance:            jsonFloat(r.TSSDistance),
		TSSPosition:            jsonFloat(r.TSSPosition),
		Symbol:                 r.Symbol,
		System:                 r.System,
		Transcript:             optString(r.Transcript),
		VariantID:              r.VariantID,
		Samples:                jsonFloat(r.Samples()),
		StudyTissue:            r.StudyTissue(),
	}
	if fm := r.fineMapping; fm != nil {
		idx, size, pip := fm.CSIndex, fm.CSSize, jsonFloat(fm.PIP)
		out.CSIndex, out.CSSize, out.PIP = &idx, &size, &pip
	}
	return json.Marshal(out)
}

type joinedJSON struct {
	MASamples              int64      `json:"ma_samples"`
	MAF                    jsonFloat  `json:"maf"`
	LogPValue              jsonFloat  `json:"log_pvalue"`
	Beta                   jsonFloat  `json:"beta"`
	StdErrBeta             jsonFloat  `json:"stderr_beta"`
	VarType                string     `json:"type"`
	AC                     int64      `json:"ac"`
	AN                     int64      `json:"an"`
	R2                     *jsonFloat `json:"r2"`
	MolecularTraitObjectID string     `json:"mol_trait_obj_id"`
	GID                    string     `json:"gid"`
	MedianTPM              jsonFloat  `json:"median_tpm"`
	RSID                   string     `json:"rsid"`
	Symbol                 string     `json:"symbol"`
}

type credibleSetJSON struct {
	Study            string    `json:"study"`
	Tissue           string    `json:"tissue"`
	GeneID           string    `json:"gene_id"`
	VariantKey       string    `json:"var_id"`
	Chromosome       string    `json:"chromosome"`
	Position         int64     `json:"position"`
	Ref              string    `json:"ref_allele"`
	Alt              string    `json:"alt_allele"`
	CSID             string    `json:"cs_id"`
	CSIndex          string    `json:"cs_index"`
	FinemappedRegion string    `json:"finemapped_region"`
	PIP              jsonFloat `json:"pip"`
	Z                jsonFloat `json:"z"`
	CSMinR2          jsonFloat `json:"cs_min_r2"`
	CSAvgR2          jsonFloat `json:"cs_avg_r2"`
	CSSize           int64     `json:"cs_size"`
	PosteriorMean    jsonFloat `json:"posterior_mean"`
	PosteriorSD      jsonFloat `json:"posterior_sd"`
	CSLog10BF        jsonFloat `json:"cs_log10bf"`
	VariantID        string    `json:"variant_id"`

	Joined *joinedJSON `json:"joined,omitempty"`
}

func (c *CredibleSetRecord) MarshalJSON() ([]byte, error) {
	out := credibleSetJSON{
		Study:            c.Study,
		Tissue:           c.Tissue,
		GeneID:           c.GeneID,
		VariantKey:       c.VariantKey,
		Chromosome:       c.Chromosome,
		Position:         c.Position,
		Ref:              c.Ref,
		Alt:              c.Alt,
		CSID:             c.CSID,
		CSIndex:          c.CSIndex,
		FinemappedRegion: c.FinemappedRegion,
		PIP:              jsonFloat(c.PIP),
		Z:                jsonFloat(c.Z),
		CSMinR2:          jsonFloat(c.CSMinR2),
		CSAvgR2:          jsonFloat(c.CSAvgR2),
		CSSize:           c.CSSize,
		PosteriorMean:    jsonFloat(c.PosteriorMean),
		PosteriorSD:      jsonFloat(c.PosteriorSD),
		CSLog10BF:        jsonFloat(c.CSLog10BF),
		VariantID:        c.VariantID,
	}
	if j := c.Joined; j != nil {
		out.Joined = &joinedJSON{
			MASamples:              j.MASamples,
			MAF:                    jsonFloat(j.MAF),
			LogPValue:              jsonFloat(j.LogPValue),
			Beta:                   jsonFloat(j.Beta),
			StdErrBeta:             jsonFloat(j.StdErrBeta),
			VarType:                j.VarType,
			AC:                     j.AC,
			AN:                     j.AN,
			R2:                     optFloat(j.R2),
			MolecularTraitObjectID: j.MolecularTraitObjectID,
			GID:                    j.GID,
			MedianTPM:              jsonFloat(j.MedianTPM),
			RSID:                   j.RSID,
			Symbol:                 j.Symbol,
		}
	}
	return json.Marshal(out)
}
