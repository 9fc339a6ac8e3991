// Package common holds the error taxonomy and result types shared by every
// domain package and storage backend.
package common

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP layer can pick a status code.
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindUnauthorized       Kind = "unauthorized"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindLimitExceeded      Kind = "limit_exceeded"
	KindPreconditionFailed Kind = "precondition_failed"
	KindUpstreamFailure    Kind = "upstream_failure"
	KindVerificationFailed Kind = "verification_failed"
)

// Error is a classified failure with a human readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found failure regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is matching.
var (
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrLimitExceeded      = &Error{Kind: KindLimitExceeded}
	ErrPreconditionFailed = &Error{Kind: KindPreconditionFailed}
	ErrUpstreamFailure    = &Error{Kind: KindUpstreamFailure}
	ErrVerificationFailed = &Error{Kind: KindVerificationFailed}
)

func InvalidArgument(msg string) error { return &Error{Kind: KindInvalidArgument, Message: msg} }

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }

func LimitExceeded(msg string) error { return &Error{Kind: KindLimitExceeded, Message: msg} }

func PreconditionFailed(msg string) error {
	return &Error{Kind: KindPreconditionFailed, Message: msg}
}

func VerificationFailed(msg string) error {
	return &Error{Kind: KindVerificationFailed, Message: msg}
}

// Upstream wraps a store, blob or gateway failure.
func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstreamFailure, Message: msg, Err: err}
}

// KindOf returns the kind of err, treating unclassified errors as upstream failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstreamFailure
}

// MessageOf returns the user facing message of err without wrapped causes.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong"
}

// UpdateResult reports what a single-row update did, the way a document
// store reports matched and modified counts.
type UpdateResult struct {
	Matched  bool
	Modified bool
}
