package types

import (
	"github.com/google/uuid"
)

// RequestID correlates one evaluation request across responses and logs.
// Generated by the transport layer and threaded through unchanged.
type RequestID string

// NewRequestID generates a UUIDv7 request identifier.
// Time-ordered IDs keep correlated log lines adjacent when sorted.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRequestID() RequestID {
	return RequestID(uuid.Must(uuid.NewV7()).String())
}

// NewRuleID generates a UUIDv7 rule identifier for rules registered without
// an explicit id. Panics on clock regression (uuid.Must).
func NewRuleID() string {
	return uuid.Must(uuid.NewV7()).String()
}
