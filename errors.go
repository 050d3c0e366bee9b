package mixcore

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrInvalidBufferSize    = errors.New("invalid buffer size")
	ErrDegenerateParameters = errors.New("degenerate synth parameters")
	ErrSchedulingGuardMiss  = errors.New("run order mismatch")
	ErrTemplateRecall       = errors.New("recall is a template")
	ErrUnresolved           = errors.New("recall dependencies not resolved")
	ErrInvalidPattern       = errors.New("invalid pattern")
)

// FormatError records the operation and raw code that failed format
// resolution.
type FormatError struct {
	Op   string
	Code uint32
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: 0x%x: %s", e.Op, e.Code, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErr(op string, code uint32) error {
	return &FormatError{Op: op, Code: code, Err: ErrUnsupportedFormat}
}
