package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindConfiguration: missing credentials or invalid thresholds. Not retried.
	KindConfiguration
	// KindInput: empty or malformed segment/clip input.
	KindInput
	// KindProvider: embedding or transcription backend failure. Callers may retry the request.
	KindProvider
	// KindCompositing: media tool failure during rendering.
	KindCompositing
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration_error"
	case KindInput:
		return "input_validation_error"
	case KindProvider:
		return "provider_error"
	case KindCompositing:
		return "compositing_error"
	default:
		return "internal_error"
	}
}

// ErrEmptyInput is wrapped by every error raised for an empty segment or clip list.
var ErrEmptyInput = errors.New("empty input")

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return e.Op + ": " + e.Kind.String()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an Error whose cause is formatted like fmt.Errorf, so %w works.
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }
