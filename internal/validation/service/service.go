// Package service implements the passport claim validation workflow.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"veripass/internal/claims"
	"veripass/internal/claims/extract"
	"veripass/internal/platform/privacy"
	"veripass/internal/sentinel"
	"veripass/internal/validation/metrics"
	"veripass/internal/validation/models"
	dErrors "veripass/pkg/domain-errors"
	audit "veripass/pkg/platform/audit"
	"veripass/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Ledger defines the persistence interface for validation records.
// Error Contract:
// - Record returns an error wrapping sentinel.ErrAlreadyUsed when the passport number is taken
// - DeleteByPassportNumber returns an error wrapping sentinel.ErrNotFound when no record exists
// - Other methods return nil on success or wrapped errors on failure
type Ledger interface {
	Exists(ctx context.Context, claim *claims.Record) (bool, error)
	Record(ctx context.Context, rec *models.ValidationRecord) error
	DeleteByPassportNumber(ctx context.Context, passportNumber string) error
	ListAll(ctx context.Context) ([]*models.ValidationRecord, error)
}

// AuditPublisher records audit events. Satisfied by publisher.Publisher.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Service)

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithAuditPublisher sets the audit publisher. Without one, events are not
// emitted.
func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service validates declared passport claims against analyzed document
// fields and keeps a ledger of confirmed validations.
type Service struct {
	ledger  Ledger
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(ledger Ledger, opts ...Option) *Service {
	svc := &Service{
		ledger: ledger,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Validate runs the full workflow for a declared claim: ledger
// short-circuit, extraction from the document fields, tolerant comparison,
// and persistence of a confirmed match.
//
// A mismatch is a successful run with Valid=false, not an error. Extraction
// failures (unparseable dates) are errors; retrying with the same document
// cannot succeed.
func (s *Service) Validate(ctx context.Context, declared *claims.Record, documentFields map[string]string) (*models.Outcome, error) {
	if declared == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "declared claim is required")
	}
	start := s.now()
	subject := privacy.MaskPassportNumber(declared.PassportNumber)

	// The ledger is consulted before any document work: a claim validated
	// once stays validated, and re-running extraction would only burn cycles.
	exists, err := s.ledger.Exists(ctx, declared)
	if err != nil {
		s.recordValidation(metrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consult validation ledger")
	}
	if exists {
		s.recordValidation(metrics.OutcomeAlreadyValidated)
		s.emit(ctx, audit.EventClaimAlreadyValidated, subject, "valid", "ledger short-circuit")
		s.observeLatency(start)
		return &models.Outcome{Valid: true, AlreadyValidated: true}, nil
	}

	res, err := extract.FromDocumentFields(documentFields)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidDate) {
			s.recordDateParseFailure()
		}
		s.recordValidation(metrics.OutcomeError)
		return nil, err
	}
	if res.UnresolvedCountry {
		s.recordUnresolvedCountry()
		s.logger.WarnContext(ctx, "citizenship code passed through unresolved",
			"subject", subject,
			"code", res.Claim.CountryOfCitizenship,
		)
	}
	if len(res.Missing) > 0 {
		s.logger.InfoContext(ctx, "document analysis omitted fields",
			"subject", subject,
			"missing", res.Missing,
		)
	}

	if !res.Claim.Matches(declared) {
		s.recordValidation(metrics.OutcomeMismatch)
		s.emit(ctx, audit.EventClaimMismatch, subject, "mismatch", "extracted claim differs from declared")
		s.observeLatency(start)
		return &models.Outcome{Valid: false, Extracted: res.Claim}, nil
	}

	rec := &models.ValidationRecord{
		ID:          uuid.New(),
		Claim:       *declared,
		ValidatedAt: s.now().UTC(),
	}
	if err := s.ledger.Record(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// Lost a race with a concurrent validation of the same passport.
			s.recordValidation(metrics.OutcomeError)
			return nil, dErrors.Wrap(err, dErrors.CodeConflict,
				fmt.Sprintf("passport number %s is already validated", subject))
		}
		s.recordValidation(metrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record validation")
	}

	s.recordValidation(metrics.OutcomeValid)
	s.emit(ctx, audit.EventClaimValidated, subject, "valid", "")
	s.observeLatency(start)
	return &models.Outcome{Valid: true}, nil
}

// Delete removes a validation record so the passport number can be validated
// again, typically after the underlying document was replaced.
func (s *Service) Delete(ctx context.Context, passportNumber string) error {
	if passportNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "passport number is required")
	}
	if err := s.ledger.DeleteByPassportNumber(ctx, passportNumber); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "validation record not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete validation record")
	}
	s.emit(ctx, audit.EventValidationDeleted, privacy.MaskPassportNumber(passportNumber), "", "")
	return nil
}

// List returns all validation records ordered by validation time.
func (s *Service) List(ctx context.Context) ([]*models.ValidationRecord, error) {
	recs, err := s.ledger.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list validation records")
	}
	return recs, nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, subject, decision, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:    string(action),
		Subject:   subject,
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(action),
			"error", err,
		)
	}
}

func (s *Service) recordValidation(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordValidation(outcome)
	}
}

func (s *Service) recordDateParseFailure() {
	if s.metrics != nil {
		s.metrics.RecordDateParseFailure()
	}
}

func (s *Service) recordUnresolvedCountry() {
	if s.metrics != nil {
		s.metrics.RecordUnresolvedCountry()
	}
}

func (s *Service) observeLatency(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveValidateLatency(s.now().Sub(start).Seconds())
	}
}
