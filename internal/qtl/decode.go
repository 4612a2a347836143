package qtl

import (
	"fmt"
	"math"
	"strings"

	"github.com/statgen/fivex/internal/numparse"
)

// row decodes named fields from one split line. The first conversion
// failure is kept and later conversions become no-ops, so callers check
// Err once after decoding.
type row struct {
	schema *Schema
	fields []string
	num    numparse.Strategy
	err    error
}

func newRow(schema *Schema, line string, num numparse.Strategy) (*row, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < schema.Width() {
		return nil, &ParseError{
			Message: fmt.Sprintf("expected %d columns, found %d", schema.Width(), len(fields)),
		}
	}
	return &row{schema: schema, fields: fields, num: num}, nil
}

func (r *row) str(col string) string {
	i := r.schema.Index(col)
	if i < 0 {
		return ""
	}
	return r.fields[i]
}

func (r *row) fail(col, value, msg string, err error) {
	if r.err == nil {
		r.err = &ParseError{Column: col, Value: value, Message: msg, Err: err}
	}
}

func (r *row) int(col string) int64 {
	if r.err != nil {
		return 0
	}
	s := r.str(col)
	n, err := r.num.ParseInt(s)
	if err != nil {
		r.fail(col, s, "invalid integer", err)
	}
	return n
}

func (r *row) float(col string) float64 {
	if r.err != nil {
		return 0
	}
	s := r.str(col)
	v, err := r.num.ParseFloat(s)
	if err != nil {
		r.fail(col, s, "invalid number", err)
	}
	return v
}

// optionalFloat tolerates placeholders such as "NA" and returns nil for them.
func (r *row) optionalFloat(col string) *float64 {
	v, err := r.num.ParseFloat(r.str(col))
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

func (r *row) logPValue(col string) float64 {
	if r.err != nil {
		return 0
	}
	s := r.str(col)
	v, err := ParsePValueToLog(s, r.num)
	if err != nil {
		r.fail(col, s, "invalid p-value", err)
	}
	return v
}
