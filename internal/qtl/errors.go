package qtl

import "fmt"

// ParseError describes a row that could not be decoded.
type ParseError struct {
	Line    int    // 1-based line within the fetched rows, 0 if unknown
	Column  string // offending column, empty for row-level problems
	Value   string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Column != "" {
		msg = fmt.Sprintf("column %s: %s %q", e.Column, e.Message, e.Value)
	}
	if e.Line > 0 {
		return fmt.Sprintf("qtl parse error at line %d: %s", e.Line, msg)
	}
	return "qtl parse error: " + msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
