package dataset

import "fmt"

// NotFoundError reports a table, column or snapshot name that does not
// resolve against the session state.
type NotFoundError struct {
	Kind string // "table", "column", "snapshot"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

// DuplicateNameError reports a registration that would silently overwrite
// an existing table. Callers that intend replacement must opt in.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("table '%s' already registered", e.Name)
}

// NoActiveTableError reports an operation that needs an active table while
// none is selected (or the previous selection was dropped).
type NoActiveTableError struct{}

func (e *NoActiveTableError) Error() string {
	return "no active table selected"
}

// ParseError reports a malformed input file.
type ParseError struct {
	File   string
	Format string // "csv", "xlsx", "parquet"
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s file '%s'", e.Format, e.File)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports an upload with an extension the ingest
// layer does not handle.
type UnsupportedFormatError struct {
	File string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format '%s' (file %s)", e.Ext, e.File)
}

// InvalidArgumentError reports a request parameter that fails validation,
// such as a non-numeric target column or an unknown cast kind.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

// InvalidJoinSpecError reports a join request whose key lists cannot form a
// composite key: empty, mismatched lengths, or unknown columns.
type InvalidJoinSpecError struct {
	Reason string
}

func (e *InvalidJoinSpecError) Error() string {
	return fmt.Sprintf("invalid join specification: %s", e.Reason)
}

// JoinExecutionError wraps a failure inside the join executor itself. The
// registry and active reference are untouched when it is returned.
type JoinExecutionError struct {
	Left  string
	Right string
	Err   error
}

func (e *JoinExecutionError) Error() string {
	return fmt.Sprintf("join of '%s' and '%s' failed: %v", e.Left, e.Right, e.Err)
}

func (e *JoinExecutionError) Unwrap() error { return e.Err }
