package domain

import (
	"errors"
	"fmt"
	"net/http"
)

type OutcomeKind string

const (
	OutcomeSuccess       OutcomeKind = "success"
	OutcomeTransport     OutcomeKind = "transport"
	OutcomeUnauthorized  OutcomeKind = "unauthorized"
	OutcomeRateLimited   OutcomeKind = "rate_limited"
	OutcomeEmptyBody     OutcomeKind = "empty_body"
	OutcomeMalformedBody OutcomeKind = "malformed_body"
	OutcomeHTTPError     OutcomeKind = "http_error"
	OutcomeOther         OutcomeKind = "other"
)

// HTTPError is a non-2xx response other than 429. A 401 also matches
// ErrUnauthorized.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.Status)
	}
	return fmt.Sprintf("http status %d: %s", e.Status, e.Body)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type RateLimitedError struct {
	Message string
}

func (e *RateLimitedError) Error() string {
	if e.Message == "" {
		return ErrRateLimited.Error()
	}
	return fmt.Sprintf("%s: %s", ErrRateLimited, e.Message)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

type MalformedBodyError struct {
	Body string
	Err  error
}

func (e *MalformedBodyError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedBody, e.Err)
}

func (e *MalformedBodyError) Is(target error) bool {
	return target == ErrMalformedBody
}

func (e *MalformedBodyError) Unwrap() error {
	return e.Err
}

// TransportError is a failure before any status code was available.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTransport, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func KindOf(err error) OutcomeKind {
	if err == nil {
		return OutcomeSuccess
	}

	var rateLimited *RateLimitedError
	var malformed *MalformedBodyError
	var transport *TransportError
	var httpErr *HTTPError

	switch {
	case errors.As(err, &rateLimited):
		return OutcomeRateLimited
	case errors.As(err, &malformed):
		return OutcomeMalformedBody
	case errors.As(err, &transport):
		return OutcomeTransport
	case errors.Is(err, ErrEmptyBody):
		return OutcomeEmptyBody
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusUnauthorized {
			return OutcomeUnauthorized
		}
		return OutcomeHTTPError
	default:
		return OutcomeOther
	}
}
