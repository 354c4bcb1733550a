package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veripass/internal/claims"
	"veripass/internal/sentinel"
	"veripass/internal/validation/models"
)

type InMemoryLedgerSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryLedgerSuite(t *testing.T) {
	suite.Run(t, new(InMemoryLedgerSuite))
}

func (s *InMemoryLedgerSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func sampleClaim() claims.Record {
	return claims.Record{
		FirstName:            "John",
		LastName:             "Doe",
		BirthDate:            claims.Date{Year: 1990, Month: time.May, Day: 14},
		PlaceOfBirth:         "BUDAPEST",
		CountryOfCitizenship: "Hungary",
		Gender:               claims.Male,
		PassportNumber:       "BA1234567",
		DateOfIssue:          claims.Date{Year: 2019, Month: time.January, Day: 8},
		DateOfExpiry:         claims.Date{Year: 2029, Month: time.January, Day: 8},
	}
}

func sampleRecord() *models.ValidationRecord {
	return &models.ValidationRecord{
		ID:          uuid.New(),
		Claim:       sampleClaim(),
		ValidatedAt: time.Now().UTC(),
	}
}

func (s *InMemoryLedgerSuite) TestExistsEmpty() {
	claim := sampleClaim()
	ok, err := s.store.Exists(s.ctx, &claim)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *InMemoryLedgerSuite) TestRecordThenExists() {
	s.Require().NoError(s.store.Record(s.ctx, sampleRecord()))

	claim := sampleClaim()
	ok, err := s.store.Exists(s.ctx, &claim)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *InMemoryLedgerSuite) TestExistsToleratesCaseDifferences() {
	s.Require().NoError(s.store.Record(s.ctx, sampleRecord()))

	claim := sampleClaim()
	claim.FirstName = "JOHN"
	claim.LastName = "doe"
	claim.PlaceOfBirth = "Budapest"
	claim.CountryOfCitizenship = "HUNGARY"

	ok, err := s.store.Exists(s.ctx, &claim)
	s.Require().NoError(err)
	s.True(ok, "re-submitting the same identity with different casing is the same claim")
}

func (s *InMemoryLedgerSuite) TestExistsFalseOnDifferentClaimSamePassport() {
	s.Require().NoError(s.store.Record(s.ctx, sampleRecord()))

	claim := sampleClaim()
	claim.DateOfExpiry = claims.Date{Year: 2029, Month: time.January, Day: 9}

	ok, err := s.store.Exists(s.ctx, &claim)
	s.Require().NoError(err)
	s.False(ok, "a single field difference is a different claim")
}

func (s *InMemoryLedgerSuite) TestRecordConflict() {
	s.Require().NoError(s.store.Record(s.ctx, sampleRecord()))

	dup := sampleRecord()
	dup.Claim.FirstName = "Jane"
	err := s.store.Record(s.ctx, dup)
	s.Require().Error(err)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed, "passport number uniqueness holds regardless of other fields")
}

func (s *InMemoryLedgerSuite) TestDelete() {
	s.Require().NoError(s.store.Record(s.ctx, sampleRecord()))
	s.Require().NoError(s.store.DeleteByPassportNumber(s.ctx, "BA1234567"))

	claim := sampleClaim()
	ok, err := s.store.Exists(s.ctx, &claim)
	s.Require().NoError(err)
	s.False(ok)

	err = s.store.DeleteByPassportNumber(s.ctx, "BA1234567")
	s.ErrorIs(err, sentinel.ErrNotFound, "absence is observable, not swallowed")
}

func (s *InMemoryLedgerSuite) TestDeleteUnknown() {
	err := s.store.DeleteByPassportNumber(s.ctx, "XX0000000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryLedgerSuite) TestRecordStoresCopy() {
	rec := sampleRecord()
	s.Require().NoError(s.store.Record(s.ctx, rec))
	rec.Claim.FirstName = "mutated"

	claim := sampleClaim()
	ok, err := s.store.Exists(s.ctx, &claim)
	s.Require().NoError(err)
	s.True(ok, "later mutation of the caller's record must not leak into the store")
}

func (s *InMemoryLedgerSuite) TestListAllOrdering() {
	base := time.Now().UTC()
	for i, num := range []string{"CC3", "AA1", "BB2"} {
		rec := sampleRecord()
		rec.Claim.PassportNumber = num
		rec.ValidatedAt = base.Add(time.Duration(2-i) * time.Hour)
		s.Require().NoError(s.store.Record(s.ctx, rec))
	}

	out, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(out, 3)
	s.Equal("BB2", out[0].Claim.PassportNumber)
	s.Equal("AA1", out[1].Claim.PassportNumber)
	s.Equal("CC3", out[2].Claim.PassportNumber)
}
