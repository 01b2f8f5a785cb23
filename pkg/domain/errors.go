package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so transports can map it to a status.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindUpstream   ErrorKind = "upstream"
	KindInternal   ErrorKind = "internal"
)

// DomainError is an error carrying a kind and a client-safe message.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewValidationError reports invalid caller input.
func NewValidationError(message string) error {
	return &DomainError{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports that the named entity could not be resolved.
func NewNotFoundError(entity, id string) error {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewNotFoundErrorWrap is NewNotFoundError keeping the underlying cause.
func NewNotFoundErrorWrap(entity, id string, err error) error {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id), Err: err}
}

// NewUpstreamError reports a failure of a third-party dependency.
func NewUpstreamError(message string, err error) error {
	return &DomainError{Kind: KindUpstream, Message: message, Err: err}
}

// NewInternalError reports a local failure (I/O, encoding).
func NewInternalError(message string, err error) error {
	return &DomainError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first DomainError in err's chain,
// or KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is a not-found DomainError.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsUpstream reports whether err is an upstream DomainError.
func IsUpstream(err error) bool { return err != nil && KindOf(err) == KindUpstream }
