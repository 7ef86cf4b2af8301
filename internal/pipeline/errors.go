package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures
type ErrorKind string

const (
	// KindValidation is reported before anything is encoded
	KindValidation ErrorKind = "validation"
	// KindRender is an encoder, decoder or I/O failure during a pass
	KindRender ErrorKind = "render"
)

// Error is returned by every pipeline operation that fails
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(op string, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

func renderError(op string, err error) error {
	return &Error{Kind: KindRender, Op: op, Err: err}
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindValidation
}

// Warnings collects degradations that did not stop a pass
type Warnings []string

func (w *Warnings) add(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}
