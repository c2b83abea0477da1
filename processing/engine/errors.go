package engine

import "errors"

// Error kinds. Every error returned by Engine matches exactly one of these
// with errors.Is; Error() is meant to be shown to the user as is.
var (
	ErrIO         = errors.New("io error")
	ErrDevice     = errors.New("device error")
	ErrState      = errors.New("state error")
	ErrValidation = errors.New("validation error")
)

type opError struct {
	kind error
	msg  string
	err  error
}

func newError(kind error, msg string, cause error) error {
	return &opError{kind: kind, msg: msg, err: cause}
}

func (e *opError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *opError) Unwrap() []error {
	if e.err != nil {
		return []error{e.kind, e.err}
	}
	return []error{e.kind}
}

var errNoImage = newError(ErrState, "no image loaded", nil)
