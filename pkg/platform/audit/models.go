// Package audit defines the audit event model shared by publishers, stores,
// and sinks.
package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	// Subject identifies the claim the event is about. Holds the masked
	// passport number, never the full one.
	Subject   string `json:"subject"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventClaimValidated        AuditEvent = "claim_validated"
	EventClaimMismatch         AuditEvent = "claim_mismatch"
	EventClaimAlreadyValidated AuditEvent = "claim_already_validated"
	EventValidationDeleted     AuditEvent = "validation_deleted"
)

// Store is the persistence contract for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
