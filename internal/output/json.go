package output

import (
	"bufio"
	"io"

	json "github.com/goccy/go-json"

	"github.com/statgen/fivex/internal/qtl"
)

// JSONWriter writes one JSON object per association (JSON lines).
type JSONWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONWriter creates a JSON lines writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	bw := bufio.NewWriter(w)
	return &JSONWriter{w: bw, enc: json.NewEncoder(bw)}
}

// WriteHeader is a no-op; JSON lines carry no header.
func (jw *JSONWriter) WriteHeader() error {
	return nil
}

func (jw *JSONWriter) Write(r *qtl.AssociationRecord) error {
	return jw.enc.Encode(r)
}

func (jw *JSONWriter) Flush() error {
	return jw.w.Flush()
}

// New returns the writer for a format name: "tab" (default) or "json".
func New(format string, w io.Writer) (Writer, bool) {
	switch format {
	case "", "tab":
		return NewTabWriter(w), true
	case "json":
		return NewJSONWriter(w), true
	}
	return nil, false
}
