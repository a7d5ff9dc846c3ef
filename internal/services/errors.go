// Package services defines the business logic of the avocado ledger: event
// routing, award and reversal processing, quota enforcement, and identity
// caching. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are internal outcomes; none of them is surfaced to the chat
// platform as a delivery failure. Quota exhaustion in particular is an
// expected business outcome reported to the user, not an error condition.
package services

import "errors"

// ErrUserNotFound indicates that identity resolution failed for an
// account id; the award path treats the affected party as invalid.
var ErrUserNotFound = errors.New("user not found")
