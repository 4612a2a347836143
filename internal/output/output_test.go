package output

import (
	"bytes"
	"math"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statgen/fivex/internal/qtl"
)

func sampleRecord() *qtl.AssociationRecord {
	r := &qtl.AssociationRecord{
		Study: "GTEx", Tissue: "blood", System: "Blood", Chromosome: "1", Position: 1000000,
		Ref: "A", Alt: "T", GeneID: "ENSG1", Symbol: "GENE1",
		LogPValue: math.Inf(1), Beta: 0.5, StdErrBeta: 0.1, MAF: 0.25, AN: 100,
		TSSDistance: math.NaN(), RSID: "rs1",
		VariantID: qtl.FormatVariantID("1", 1000000, "A", "T"),
	}
	r.SetFineMapping(qtl.FineMapping{CSIndex: "L1", CSSize: 3, PIP: 0.75})
	return r
}

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	header := buf.String()
	assert.True(t, strings.HasPrefix(header, "#variant_id\t"))
	for _, col := range []string{"log_pvalue", "symbol", "cs_index", "pip"} {
		assert.Contains(t, header, col)
	}
}

func TestTabWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.Write(sampleRecord()))
	require.NoError(t, w.Flush())

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	require.Len(t, fields, 23)
	assert.Equal(t, "1:1,000,000_A/T", fields[0])
	assert.Equal(t, "1000000", fields[2])
	assert.Equal(t, "-", fields[10], "no transcript")
	assert.Equal(t, "Inf", fields[11])
	assert.Equal(t, "0", fields[12])
	assert.Equal(t, "50", fields[16])
	assert.Equal(t, "NA", fields[17], "missing r2")
	assert.Equal(t, "NA", fields[18], "unknown TSS")
	assert.Equal(t, []string{"L1", "3", "0.75"}, fields[20:])
}

func TestTabWriter_Unjoined(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)
	require.NoError(t, w.Write(&qtl.AssociationRecord{VariantID: "x"}))
	require.NoError(t, w.Flush())
	assert.True(t, strings.HasSuffix(buf.String(), "\t-\t-\t-\n"))
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(sampleRecord()))
	require.NoError(t, w.Write(sampleRecord()))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &m))
	assert.Equal(t, "Infinity", m["log_pvalue"])
	assert.Equal(t, "L1", m["cs_index"])
	assert.Equal(t, "GTEx-blood", m["studytissue"])
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	w, ok := New("", &buf)
	require.True(t, ok)
	assert.IsType(t, &TabWriter{}, w)

	w, ok = New("json", &buf)
	require.True(t, ok)
	assert.IsType(t, &JSONWriter{}, w)

	_, ok = New("xml", &buf)
	assert.False(t, ok)
}
