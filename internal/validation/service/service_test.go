package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/mock/gomock"

	"veripass/internal/sentinel"
	"veripass/internal/validation/metrics"
	"veripass/internal/validation/models"
	dErrors "veripass/pkg/domain-errors"
	audit "veripass/pkg/platform/audit"
	"veripass/pkg/testutil"
)

func (s *ServiceSuite) TestValidateMatchRecordsClaim() {
	ctx := context.Background()
	declared := testutil.NewClaimBuilder().Build()

	s.mockLedger.EXPECT().Exists(gomock.Any(), declared).Return(false, nil)
	var recorded *models.ValidationRecord
	s.mockLedger.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *models.ValidationRecord) error {
			recorded = rec
			return nil
		})
	s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventClaimValidated), event.Action)
			s.Equal("*****4567", event.Subject, "audit carries the masked passport number only")
			return nil
		})

	outcome, err := s.service.Validate(ctx, declared, testutil.DocumentFields())
	s.Require().NoError(err)
	s.True(outcome.Valid)
	s.False(outcome.AlreadyValidated)
	s.Nil(outcome.Extracted)

	s.Require().NotNil(recorded)
	s.Equal(*declared, recorded.Claim, "the declared claim is what gets recorded")
	s.Equal(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC), recorded.ValidatedAt)
	s.NotEqual("00000000-0000-0000-0000-000000000000", recorded.ID.String())
}

func (s *ServiceSuite) TestValidateToleratesCaseNoise() {
	ctx := context.Background()
	declared := testutil.NewClaimBuilder().
		WithName("john", "doe").
		WithPlaceOfBirth("budapest").
		Build()

	s.mockLedger.EXPECT().Exists(gomock.Any(), declared).Return(false, nil)
	s.mockLedger.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
	s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	outcome, err := s.service.Validate(ctx, declared, testutil.DocumentFields())
	s.Require().NoError(err)
	s.True(outcome.Valid, "prose-field casing must not fail a genuine match")
}

func (s *ServiceSuite) TestValidateMismatchReturnsExtracted() {
	ctx := context.Background()
	declared := testutil.NewClaimBuilder().WithName("John", "Smith").Build()

	s.mockLedger.EXPECT().Exists(gomock.Any(), declared).Return(false, nil)
	s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventClaimMismatch), event.Action)
			return nil
		})

	outcome, err := s.service.Validate(ctx, declared, testutil.DocumentFields())
	s.Require().NoError(err, "a mismatch is an outcome, not an error")
	s.False(outcome.Valid)
	s.Require().NotNil(outcome.Extracted)
	s.Equal("Doe", outcome.Extracted.LastName)
}

func (s *ServiceSuite) TestValidateShortCircuitsOnLedgerHit() {
	ctx := context.Background()
	declared := testutil.NewClaimBuilder().Build()

	s.mockLedger.EXPECT().Exists(gomock.Any(), declared).Return(true, nil)
	s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventClaimAlreadyValidated), event.Action)
			return nil
		})

	// Garbage document fields prove no extraction happens on the short-circuit.
	fields := map[string]string{"DateOfBirth": "not a date"}
	outcome, err := s.service.Validate(ctx, declared, fields)
	s.Require().NoError(err)
	s.True(outcome.Valid)
	s.True(outcome.AlreadyValidated)
}

func (s *ServiceSuite) TestValidateInvalidDateIsFatal() {
	ctx := context.Background()
	declared := testutil.NewClaimBuilder().Build()

	s.mockLedger.EXPECT().Exists(gomock.Any(), declared).Return(false, nil)

	fields := testutil.DocumentFields()
	fields["DateOfBirth"] = "2001/FEBRUARY/03"

	outcome, err := s.service.Validate(ctx, declared, fields)
	s.Nil(outcome)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidDate))
}

func (s *ServiceSuite) TestValidateConflictOnConcurrentRecord() {
	ctx := context.Background()
	declared := testutil.NewClaimBuilder().Build()

	s.mockLedger.EXPECT().Exists(gomock.Any(), declared).Return(false, nil)
	s.mockLedger.EXPECT().Record(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("passport number already recorded: %w", sentinel.ErrAlreadyUsed))

	outcome, err := s.service.Validate(ctx, declared, testutil.DocumentFields())
	s.Nil(outcome)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestValidateLedgerFailure() {
	ctx := context.Background()
	declared := testutil.NewClaimBuilder().Build()

	s.mockLedger.EXPECT().Exists(gomock.Any(), declared).Return(false, errors.New("connection refused"))

	outcome, err := s.service.Validate(ctx, declared, testutil.DocumentFields())
	s.Nil(outcome)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestValidateRequiresDeclaredClaim() {
	outcome, err := s.service.Validate(context.Background(), nil, testutil.DocumentFields())
	s.Nil(outcome)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestValidateAuditFailureDoesNotFailRun() {
	ctx := context.Background()
	declared := testutil.NewClaimBuilder().Build()

	s.mockLedger.EXPECT().Exists(gomock.Any(), declared).Return(false, nil)
	s.mockLedger.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)
	s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("buffer full"))

	outcome, err := s.service.Validate(ctx, declared, testutil.DocumentFields())
	s.Require().NoError(err, "audit is best-effort")
	s.True(outcome.Valid)
}

func (s *ServiceSuite) TestDelete() {
	ctx := context.Background()

	s.mockLedger.EXPECT().DeleteByPassportNumber(gomock.Any(), "BA1234567").Return(nil)
	s.mockAuditPublisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventValidationDeleted), event.Action)
			s.Equal("*****4567", event.Subject)
			return nil
		})

	s.Require().NoError(s.service.Delete(ctx, "BA1234567"))
}

func (s *ServiceSuite) TestDeleteNotFound() {
	ctx := context.Background()

	s.mockLedger.EXPECT().DeleteByPassportNumber(gomock.Any(), "BA1234567").
		Return(fmt.Errorf("validation record not found: %w", sentinel.ErrNotFound))

	err := s.service.Delete(ctx, "BA1234567")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestDeleteRequiresPassportNumber() {
	err := s.service.Delete(context.Background(), "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestList() {
	ctx := context.Background()
	recs := []*models.ValidationRecord{
		testutil.NewTestValidationRecord(testutil.NewTestClaim("AA1")),
		testutil.NewTestValidationRecord(testutil.NewTestClaim("BB2")),
	}
	s.mockLedger.EXPECT().ListAll(gomock.Any()).Return(recs, nil)

	out, err := s.service.List(ctx)
	s.Require().NoError(err)
	s.Equal(recs, out)
}

func (s *ServiceSuite) TestListFailure() {
	s.mockLedger.EXPECT().ListAll(gomock.Any()).Return(nil, errors.New("boom"))

	_, err := s.service.List(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestValidateLatencyUsesInjectedClock() {
	ctx := context.Background()
	declared := testutil.NewClaimBuilder().Build()

	// Unregistered collectors so the test does not touch the default registry.
	m := &metrics.Metrics{
		ValidationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "validations_total",
		}, []string{"outcome"}),
		ValidateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "validate_latency_seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	// The clock advances 250ms per reading. The short-circuit path reads it
	// twice (start and latency observation), so the histogram must record
	// exactly 0.25s regardless of wall-clock time.
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	svc := NewService(s.mockLedger,
		WithMetrics(m),
		WithClock(func() time.Time {
			calls++
			return base.Add(time.Duration(calls-1) * 250 * time.Millisecond)
		}),
	)

	s.mockLedger.EXPECT().Exists(gomock.Any(), declared).Return(true, nil)

	outcome, err := svc.Validate(ctx, declared, nil)
	s.Require().NoError(err)
	s.True(outcome.AlreadyValidated)

	var dm dto.Metric
	s.Require().NoError(m.ValidateLatency.Write(&dm))
	s.Equal(uint64(1), dm.GetHistogram().GetSampleCount())
	s.InDelta(0.25, dm.GetHistogram().GetSampleSum(), 1e-9)
}
