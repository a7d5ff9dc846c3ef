// Package handlers defines the HTTP-layer error codes used across all
// endpoints. Codes are lowercase snake_case and give clients a stable,
// machine-readable taxonomy supplementing the HTTP status. Handlers pick
// the most specific matching code and pass it to fail().
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeListFailed = "list_failed"
)
