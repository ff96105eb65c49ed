package domain

import (
	"errors"
	"fmt"
)

// Kind classifies errors surfaced to callers.
type Kind string

const (
	KindInvalidRequest   Kind = "invalid_request"
	KindConfiguration    Kind = "configuration_error"
	KindExtractionFailed Kind = "extraction_failed"
	KindNotFound         Kind = "not_found"
	KindInternal         Kind = "internal"
)

// Error carries a Kind plus a human readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidRequest(msg string) error { return &Error{Kind: KindInvalidRequest, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

func ConfigurationError(msg string) error { return &Error{Kind: KindConfiguration, Msg: msg} }

// ExtractionFailed keeps the capability's message verbatim.
func ExtractionFailed(err error) error { return &Error{Kind: KindExtractionFailed, Err: err} }

// KindOf reports the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a domain error of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
