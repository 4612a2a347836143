// Package output provides association record writers.
package output

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/statgen/fivex/internal/qtl"
)

// Writer writes association records in some format.
type Writer interface {
	WriteHeader() error
	Write(r *qtl.AssociationRecord) error
	Flush() error
}

// TabWriter writes associations in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#variant_id",
			"chromosome",
			"position",
			"ref_allele",
			"alt_allele",
			"study",
			"tissue",
			"system",
			"gene_id",
			"symbol",
			"transcript",
			"log_pvalue",
			"pvalue",
			"beta",
			"stderr_beta",
			"maf",
			"samples",
			"r2",
			"tss_distance",
			"rsid",
			"cs_index",
			"cs_size",
			"pip",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single association.
func (tw *TabWriter) Write(r *qtl.AssociationRecord) error {
	transcript := r.Transcript
	if transcript == "" {
		transcript = "-"
	}

	r2 := "NA"
	if r.R2 != nil {
		r2 = formatFloat(*r.R2)
	}

	csIndex, csSize, pip := "-", "-", "-"
	if fm := r.FineMapping(); fm != nil {
		csIndex = fm.CSIndex
		csSize = strconv.FormatInt(fm.CSSize, 10)
		pip = formatFloat(fm.PIP)
	}

	values := []string{
		r.VariantID,
		r.Chromosome,
		strconv.FormatInt(r.Position, 10),
		r.Ref,
		r.Alt,
		r.Study,
		r.Tissue,
		r.System,
		r.GeneID,
		r.Symbol,
		transcript,
		formatFloat(r.LogPValue),
		formatFloat(r.PValue()),
		formatFloat(r.Beta),
		formatFloat(r.StdErrBeta),
		formatFloat(r.MAF),
		formatFloat(r.Samples()),
		r2,
		formatFloat(r.TSSDistance),
		r.RSID,
		csIndex,
		csSize,
		pip,
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NA"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
