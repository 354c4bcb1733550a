// Package models holds the validation domain entities shared by service,
// stores, and transport.
package models

import (
	"time"

	"github.com/google/uuid"

	"veripass/internal/claims"
)

// ValidationRecord is a confirmed claim plus the moment it was confirmed.
// Created only when an extracted claim matched the declared one; deleted
// explicitly when the surrounding system supersedes the student record or
// document photo.
type ValidationRecord struct {
	ID          uuid.UUID
	Claim       claims.Record
	ValidatedAt time.Time
}

// Outcome is the result of a validation run, consumed by the HTTP layer.
// A mismatch is an expected, user-correctable outcome, not an error: the
// extracted claim rides along so the caller can present the discrepancy.
type Outcome struct {
	Valid bool

	// AlreadyValidated is set when the ledger short-circuited the run; no
	// comparison or persistence happened.
	AlreadyValidated bool

	// Extracted is populated only on mismatch.
	Extracted *claims.Record
}
