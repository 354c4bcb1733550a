// Package testutil provides shared builders and helpers for tests.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"veripass/internal/claims"
	"veripass/internal/validation/models"
)

// ClaimBuilder provides a fluent interface for building test claims.
type ClaimBuilder struct {
	claim *claims.Record
}

// NewClaimBuilder creates a ClaimBuilder with sensible defaults.
func NewClaimBuilder() *ClaimBuilder {
	return &ClaimBuilder{
		claim: &claims.Record{
			FirstName:            "John",
			LastName:             "Doe",
			BirthDate:            claims.Date{Year: 1990, Month: time.May, Day: 14},
			PlaceOfBirth:         "BUDAPEST",
			CountryOfCitizenship: "Hungary",
			Gender:               claims.Male,
			PassportNumber:       "BA1234567",
			DateOfIssue:          claims.Date{Year: 2019, Month: time.January, Day: 8},
			DateOfExpiry:         claims.Date{Year: 2029, Month: time.January, Day: 8},
		},
	}
}

func (b *ClaimBuilder) WithName(firstName, lastName string) *ClaimBuilder {
	b.claim.FirstName = firstName
	b.claim.LastName = lastName
	return b
}

func (b *ClaimBuilder) WithBirthDate(d claims.Date) *ClaimBuilder {
	b.claim.BirthDate = d
	return b
}

func (b *ClaimBuilder) WithPlaceOfBirth(place string) *ClaimBuilder {
	b.claim.PlaceOfBirth = place
	return b
}

func (b *ClaimBuilder) WithCitizenship(country string) *ClaimBuilder {
	b.claim.CountryOfCitizenship = country
	return b
}

func (b *ClaimBuilder) WithGender(g claims.Gender) *ClaimBuilder {
	b.claim.Gender = g
	return b
}

func (b *ClaimBuilder) WithPassportNumber(num string) *ClaimBuilder {
	b.claim.PassportNumber = num
	return b
}

func (b *ClaimBuilder) WithIssue(d claims.Date) *ClaimBuilder {
	b.claim.DateOfIssue = d
	return b
}

func (b *ClaimBuilder) WithExpiry(d claims.Date) *ClaimBuilder {
	b.claim.DateOfExpiry = d
	return b
}

func (b *ClaimBuilder) Build() *claims.Record {
	return b.claim
}

// NewTestClaim creates a default test claim with the given passport number.
func NewTestClaim(passportNumber string) *claims.Record {
	return NewClaimBuilder().WithPassportNumber(passportNumber).Build()
}

// NewTestValidationRecord creates a validation record wrapping the claim.
func NewTestValidationRecord(claim *claims.Record) *models.ValidationRecord {
	return &models.ValidationRecord{
		ID:          uuid.New(),
		Claim:       *claim,
		ValidatedAt: time.Now().UTC(),
	}
}

// DocumentFields returns an analyzer field map consistent with the default
// claim from NewClaimBuilder. Mutate entries to model OCR noise.
func DocumentFields() map[string]string {
	return map[string]string{
		"FirstName":        "John",
		"LastName":         "Doe",
		"DateOfBirth":      "14 MAI/MAY 90",
		"PlaceOfBirth":     "BUDAPEST",
		"CountryRegion":    "HUN",
		"Sex":              "M",
		"DocumentNumber":   "BA1234567",
		"DateOfExpiration": "08 IAN/JAN 29",
		"DateOfIssue":      "08 IAN/JAN 19",
	}
}
