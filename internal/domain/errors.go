package domain

import "errors"

var (
	ErrStorageKeyNotFound = errors.New("storage key not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrTransport     = errors.New("transport failure")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrRateLimited   = errors.New("rate limited")
	ErrEmptyBody     = errors.New("empty response body")
	ErrMalformedBody = errors.New("malformed response body")
)
