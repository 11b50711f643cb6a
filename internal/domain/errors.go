package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that carry the HTTP status the backend answered with.
type HTTPError interface {
	error
	StatusCode() int
}

// Reason distinguishes the flavours of "nothing to show" a draft query can end in.
type Reason string

const (
	ReasonNoAnswer   Reason = "no_answer"
	ReasonNoEvidence Reason = "no_evidence"
	ReasonNotIndexed Reason = "not_indexed"
)

// Domain error types. Message is the backend's free-form detail when one was
// provided; it is display text only and never inspected for control flow.
type (
	// ValidationError indicates input rejected before any request was sent,
	// or rejected by the backend with a 4xx validation status.
	ValidationError struct {
		Message string
	}

	// NetworkError indicates a transport failure or an unexpected backend status.
	NetworkError struct {
		Message string
		Status  int // 0 when the request never produced a response
		Err     error
	}

	// NotFoundError indicates the backend had nothing for the request.
	NotFoundError struct {
		Message string
		Reason  Reason
	}

	// EmptyResultError indicates a query succeeded but produced nothing usable.
	EmptyResultError struct {
		Message string
		Reason  Reason
	}

	// UnauthorizedError indicates the stored credentials were rejected.
	UnauthorizedError struct {
		Message string
	}
)

func (e *ValidationError) Error() string   { return e.Message }
func (e *NotFoundError) Error() string     { return e.Message }
func (e *EmptyResultError) Error() string  { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NetworkError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return "network error: " + e.Err.Error()
	}
	return "network error"
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *NetworkError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusBadGateway
	}
	return e.Status
}

// Sentinel errors - use with errors.Is()
var (
	ErrValidation   = errors.New("validation failed")
	ErrNetwork      = errors.New("network failure")
	ErrNotFound     = errors.New("not found")
	ErrEmptyResult  = errors.New("empty result")
	ErrUnauthorized = errors.New("unauthorized")
)

func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *NetworkError) Is(target error) bool      { return target == ErrNetwork }
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *EmptyResultError) Is(target error) bool  { return target == ErrEmptyResult }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// DisplayMessage returns the message a user should see for err: the
// backend-provided detail when there is one, otherwise fallback.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var (
		validationErr *ValidationError
		networkErr    *NetworkError
		notFoundErr   *NotFoundError
		emptyErr      *EmptyResultError
		authErr       *UnauthorizedError
	)
	switch {
	case errors.As(err, &validationErr) && validationErr.Message != "":
		return validationErr.Message
	case errors.As(err, &networkErr) && networkErr.Message != "":
		return networkErr.Message
	case errors.As(err, &notFoundErr) && notFoundErr.Message != "":
		return notFoundErr.Message
	case errors.As(err, &emptyErr) && emptyErr.Message != "":
		return emptyErr.Message
	case errors.As(err, &authErr) && authErr.Message != "":
		return authErr.Message
	}
	return fallback
}
