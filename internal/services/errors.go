package services

import (
	"errors"
	"fmt"

	pkgerrors "github.com/yungbote/titleforge-backend/internal/pkg/errors"
)

var (
	ErrInvalidInput     = pkgerrors.ErrInvalidInput
	ErrUnauthenticated  = pkgerrors.ErrUnauthenticated
	ErrQuotaExceeded    = pkgerrors.ErrQuotaExceeded
	ErrGenerationFailed = pkgerrors.ErrGenerationFailed
	ErrMalformedOutput  = pkgerrors.ErrMalformedOutput
)

type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return "invalid input: " + e.Reason }

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// QuotaExceededError carries the limit so callers can explain the rejection.
type QuotaExceededError struct {
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("generation limit of %d reached", e.Limit)
}

func (e *QuotaExceededError) Is(target error) bool { return target == ErrQuotaExceeded }

func (e *QuotaExceededError) QuotaLimit() int { return e.Limit }

type MalformedOutputError struct {
	Expected int
	Got      int
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed output: expected %d titles, got %d", e.Expected, e.Got)
}

func (e *MalformedOutputError) Is(target error) bool { return target == ErrMalformedOutput }

// Failure stages kept for logs and metrics; callers only ever see ErrGenerationFailed.
const (
	FailureProvider = "provider"
	FailureShape    = "shape"
)

type GenerationFailedError struct {
	Stage string
	Err   error
}

func (e *GenerationFailedError) Error() string {
	if e.Err == nil {
		return "generation failed (" + e.Stage + ")"
	}
	return "generation failed (" + e.Stage + "): " + e.Err.Error()
}

func (e *GenerationFailedError) Is(target error) bool { return target == ErrGenerationFailed }

func (e *GenerationFailedError) Unwrap() error { return e.Err }

// FailureStage extracts the internal stage of a generation failure, or "".
func FailureStage(err error) string {
	var gf *GenerationFailedError
	if errors.As(err, &gf) {
		return gf.Stage
	}
	return ""
}
