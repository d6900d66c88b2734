// Package gateway fronts the external data sources with a uniform
// cache/retry/fallback layer. The engine only ever sees normalized fields or
// an explicit degraded result; provider failures never abort a run.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// Provider queries one external source by its registry key (company id, VAT
// id, ...). A missing record is not an error: providers return empty fields
// so existence rules can evaluate absence.
type Provider interface {
	Fetch(ctx context.Context, key string) (models.Fields, error)
}

// ErrorCategory normalizes provider failures across transports.
type ErrorCategory string

const (
	ErrTimeout         ErrorCategory = "timeout"
	ErrUnavailable     ErrorCategory = "unavailable"
	ErrRateLimited     ErrorCategory = "rate_limited"
	ErrInvalidResponse ErrorCategory = "invalid_response"
)

// ProviderError wraps a transport failure with its source and a retry hint.
type ProviderError struct {
	Source    id.SourceKind
	Category  ErrorCategory
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Category, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError builds a categorized provider error. Timeouts,
// unavailability and rate limits are retryable; malformed responses are not.
func NewProviderError(source id.SourceKind, category ErrorCategory, err error) *ProviderError {
	return &ProviderError{
		Source:    source,
		Category:  category,
		Retryable: category != ErrInvalidResponse,
		Err:       err,
	}
}

// Retryable reports whether a failed call is worth retrying.
func Retryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}
