package adpatch

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a document that
// a reconciler requires does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Path)
}

// ParseError is returned when a document exists
// but its content is not well formed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse %s", e.Path)
	}

	return fmt.Sprintf("parse %s: %s", e.Path, e.Err.Error())
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Fatal marks err as a build failure. Build hooks return
// fatal errors to abort the current build step.
func Fatal(err error) error {
	if err == nil {
		return nil
	}

	return &fatalError{err: err}
}

// Fatalf is a shorthand for Fatal(fmt.Errorf(format, a...)).
func Fatalf(format string, a ...any) error {
	return Fatal(fmt.Errorf(format, a...))
}

type fatalError struct {
	err error
}

func (e *fatalError) Error() string {
	if e.err == nil {
		return ""
	}

	return e.err.Error()
}

func (e *fatalError) Unwrap() error {
	return e.err
}

// IsFatal reports whether any error in err's chain was marked by Fatal.
func IsFatal(err error) bool {
	ferr := &fatalError{}
	return errors.As(err, &ferr)
}

// IsNotFound reports whether any error in err's chain is a *NotFoundError.
func IsNotFound(err error) bool {
	nferr := &NotFoundError{}
	return errors.As(err, &nferr)
}

// IsParse reports whether any error in err's chain is a *ParseError.
func IsParse(err error) bool {
	perr := &ParseError{}
	return errors.As(err, &perr)
}
