package db

import "errors"

// Sentinel errors for storage and backend operations.
var (
	ErrKeyNotFound   = errors.New("db: key not found")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
	ErrBadQuery      = errors.New("db: malformed query")
	ErrUnavailable   = errors.New("db: backend unavailable")
)

// Op constants name the failing operation for error context.
const (
	OpJSONSet     = "JSON.SET"
	OpJSONGet     = "JSON.GET"
	OpDel         = "DEL"
	OpExists      = "EXISTS"
	OpScan        = "SCAN"
	OpGet         = "GET"
	OpSet         = "SET"
	OpSearch      = "SEARCH"
	OpPing        = "PING"
	OpCreateIndex = "CREATE_INDEX"
	OpIndex       = "INDEX"
	OpDelete      = "DELETE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
