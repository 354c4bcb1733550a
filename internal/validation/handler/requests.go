package handler

import (
	"fmt"
	"strings"

	"veripass/internal/claims"
	"veripass/internal/claims/dates"
	dErrors "veripass/pkg/domain-errors"
	"veripass/pkg/platform/validation"
)

// DeclaredClaim is the caller's statement of what the passport says. Dates
// arrive as strings in any of the accepted spellings and are normalized
// during conversion.
type DeclaredClaim struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	BirthDate            string `json:"birthDate"`
	PlaceOfBirth         string `json:"placeOfBirth"`
	CountryOfCitizenship string `json:"countryOfCitizenship"`
	Gender               string `json:"gender"`
	PassportNumber       string `json:"passportNumber"`
	DateOfIssue          string `json:"dateOfIssue"`
	DateOfExpiry         string `json:"dateOfExpiry"`
}

// ValidateRequest carries the declared claim and the raw field map produced
// by document analysis.
type ValidateRequest struct {
	Claim          DeclaredClaim     `json:"claim"`
	DocumentFields map[string]string `json:"documentFields"`
}

// Sanitize trims surrounding whitespace from the declared fields.
func (r *ValidateRequest) Sanitize() {
	if r == nil {
		return
	}
	c := &r.Claim
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.BirthDate = strings.TrimSpace(c.BirthDate)
	c.PlaceOfBirth = strings.TrimSpace(c.PlaceOfBirth)
	c.CountryOfCitizenship = strings.TrimSpace(c.CountryOfCitizenship)
	c.Gender = strings.TrimSpace(c.Gender)
	c.PassportNumber = strings.TrimSpace(c.PassportNumber)
	c.DateOfIssue = strings.TrimSpace(c.DateOfIssue)
	c.DateOfExpiry = strings.TrimSpace(c.DateOfExpiry)
}

// Validate checks that the request is well-formed.
func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Claim.PassportNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "claim.passportNumber is required")
	}
	for field, v := range map[string]string{
		"claim.birthDate":    r.Claim.BirthDate,
		"claim.dateOfIssue":  r.Claim.DateOfIssue,
		"claim.dateOfExpiry": r.Claim.DateOfExpiry,
	} {
		if v == "" {
			return dErrors.New(dErrors.CodeValidation, field+" is required")
		}
	}
	if r.Claim.Gender == "" {
		return dErrors.New(dErrors.CodeValidation, "claim.gender is required")
	}
	if len(r.DocumentFields) == 0 {
		return dErrors.New(dErrors.CodeValidation, "documentFields is required")
	}
	return r.checkLimits()
}

func (r *ValidateRequest) checkLimits() error {
	c := r.Claim
	checks := []error{
		validation.CheckStringLength("claim.firstName", c.FirstName, validation.MaxNameLength),
		validation.CheckStringLength("claim.lastName", c.LastName, validation.MaxNameLength),
		validation.CheckStringLength("claim.placeOfBirth", c.PlaceOfBirth, validation.MaxNameLength),
		validation.CheckStringLength("claim.countryOfCitizenship", c.CountryOfCitizenship, validation.MaxCountryLength),
		validation.CheckStringLength("claim.passportNumber", c.PassportNumber, validation.MaxPassportNumberLength),
		validation.CheckStringLength("claim.birthDate", c.BirthDate, validation.MaxDateLength),
		validation.CheckStringLength("claim.dateOfIssue", c.DateOfIssue, validation.MaxDateLength),
		validation.CheckStringLength("claim.dateOfExpiry", c.DateOfExpiry, validation.MaxDateLength),
		validation.CheckMapCount("documentFields", len(r.DocumentFields), validation.MaxDocumentFields),
		validation.CheckEachValueLength("documentFields", r.DocumentFields, validation.MaxDocumentValueLength),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// ToRecord converts the validated request into a canonical claim record.
// Date normalization and gender parsing can still fail here; those failures
// are the caller's to fix, not server errors.
func (r *ValidateRequest) ToRecord() (*claims.Record, error) {
	c := r.Claim

	birthDate, err := normalizeClaimDate("claim.birthDate", c.BirthDate)
	if err != nil {
		return nil, err
	}
	issueDate, err := normalizeClaimDate("claim.dateOfIssue", c.DateOfIssue)
	if err != nil {
		return nil, err
	}
	expiryDate, err := normalizeClaimDate("claim.dateOfExpiry", c.DateOfExpiry)
	if err != nil {
		return nil, err
	}

	gender, err := claims.ParseGender(c.Gender)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("claim.gender: %v", err))
	}

	return &claims.Record{
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		BirthDate:            birthDate,
		PlaceOfBirth:         c.PlaceOfBirth,
		CountryOfCitizenship: c.CountryOfCitizenship,
		Gender:               gender,
		PassportNumber:       c.PassportNumber,
		DateOfIssue:          issueDate,
		DateOfExpiry:         expiryDate,
	}, nil
}

func normalizeClaimDate(field, raw string) (claims.Date, error) {
	d, err := dates.Normalize(raw)
	if err != nil {
		return claims.Date{}, dErrors.Wrap(err, dErrors.CodeInvalidDate,
			fmt.Sprintf("%s: %s", field, err.Error()))
	}
	return d, nil
}
