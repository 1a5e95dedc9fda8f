package parser

import "fmt"

// ParseError reports a ruleset document that could not be decoded into the
// condition grammar. It is distinct from validation errors: a ParseError
// means the document itself is malformed, not that a well-formed ruleset
// broke a semantic rule.
type ParseError struct {
	Path   string // source path, empty for in-memory documents
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse %s ruleset %q: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("parse %s ruleset: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(format Format, path string, err error) *ParseError {
	return &ParseError{Path: path, Format: format, Err: err}
}
