package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrRemoteUnavailable is matched by every *RemoteError.
	ErrRemoteUnavailable = errors.New("remote generation unavailable")
	// ErrEmptyReply reports a call that succeeded but returned no usable content.
	ErrEmptyReply = errors.New("model returned an empty reply")
)

// Validation stages.
const (
	StageInput  = "input"
	StageOutput = "output"
)

// ValidationError reports input or output that does not match its declared
// shape.
type ValidationError struct {
	Stage  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed for field %q: %s", e.Stage, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RemoteError wraps transport, timeout and API failures of a provider.
type RemoteError struct {
	Provider string
	Err      error
}

func (e *RemoteError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("remote generation failed: %v", e.Err)
	}
	return fmt.Sprintf("%s: remote generation failed: %v", e.Provider, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// Remote wraps err as a *RemoteError for provider. A nil err stays nil and an
// error that already is a *RemoteError is returned unchanged.
func Remote(provider string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Provider: provider, Err: err}
}

// Empty reports ErrEmptyReply for provider with an optional detail.
func Empty(provider, detail string) error {
	if detail == "" {
		return fmt.Errorf("%s: %w", provider, ErrEmptyReply)
	}
	return fmt.Errorf("%s: %w: %s", provider, ErrEmptyReply, detail)
}

// IsInputValidation reports whether err is a validation failure of the
// caller's input, as opposed to the model's output.
func IsInputValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Stage == StageInput
}

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// ErrorKind names the category of a generation error.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindValidation        ErrorKind = "validation"
	KindRemoteUnavailable ErrorKind = "remote_unavailable"
	KindEmptyReply        ErrorKind = "empty_reply"
	KindUnknown           ErrorKind = "unknown"
)

// Classify returns the category of err.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrEmptyReply):
		return KindEmptyReply
	case errors.Is(err, ErrRemoteUnavailable):
		return KindRemoteUnavailable
	default:
		return KindUnknown
	}
}
