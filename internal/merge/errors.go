package merge

import (
	"errors"
	"fmt"
)

// Markers classifying merge failures for errors.Is.
var (
	ErrLoadOrder = errors.New("load order unavailable")
	ErrDecode    = errors.New("plugin unreadable")
	ErrOutput    = errors.New("output not written")
)

// Operations recorded in Error.Op.
const (
	OpLoadOrder = "load order"
	OpOpen      = "open"
	OpDecode    = "decode"
	OpEncode    = "encode"
	OpWrite     = "write"
)

// Error is a fatal merge failure tied to one file.
type Error struct {
	Path string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("merge %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("merge %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the marker for e's operation.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrLoadOrder:
		return e.Op == OpLoadOrder
	case ErrDecode:
		return e.Op == OpOpen || e.Op == OpDecode
	case ErrOutput:
		return e.Op == OpEncode || e.Op == OpWrite
	default:
		return false
	}
}
