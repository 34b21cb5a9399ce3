package services

import (
	"fmt"
	"time"
)

// Guard failures are surfaced to the caller as one of the types below; none
// are retried and none are swallowed. Routes map each type to an HTTP status.

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an unknown order or technician id.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// AuthorizationError reports a wrong role or wrong owner.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// TokenError reports an invalid signature or a presented token whose hash
// does not match the stored one.
type TokenError struct {
	Reason string
}

func (e *TokenError) Error() string {
	return "invalid token: " + e.Reason
}

// StateError reports an operation that is illegal for the order's current
// lifecycle state.
type StateError struct {
	Op      string
	Current string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Op, e.Current)
}

// ExpiryError reports an order past its deadline. The order has already
// been forced to expired by the time the error is returned.
type ExpiryError struct {
	ExpiredAt time.Time
}

func (e *ExpiryError) Error() string {
	return "order expired at " + e.ExpiredAt.Format(time.RFC3339)
}
