package errors

import "errors"

var (
	// ErrInvalidInput is caller input that can never succeed as sent.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated is an anonymous caller on an identity-gated operation.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrQuotaExceeded means the caller has no generations left.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrGenerationFailed covers provider and output-shape failures alike.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrMalformedOutput is a generator response that is not exactly one batch.
	ErrMalformedOutput = errors.New("malformed output")
)
