package handler

import (
	"time"

	"veripass/internal/claims"
	"veripass/internal/validation/models"
)

// ClaimResponse renders a canonical claim with ISO-8601 dates.
type ClaimResponse struct {
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

func toClaimResponse(c *claims.Record) *ClaimResponse {
	if c == nil {
		return nil
	}
	return &ClaimResponse{
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		BirthDate:            c.BirthDate.ISO(),
		PlaceOfBirth:         c.PlaceOfBirth,
		CountryOfCitizenship: c.CountryOfCitizenship,
		Gender:               string(c.Gender),
		PassportNumber:       c.PassportNumber,
		DateOfIssue:          c.DateOfIssue.ISO(),
		DateOfExpiry:         c.DateOfExpiry.ISO(),
	}
}

// ValidateResponse reports the outcome of a validation run. Extracted is
// present only on mismatch so the caller can show the discrepancy.
type ValidateResponse struct {
	Valid            bool           `json:"valid"`
	AlreadyValidated bool           `json:"alreadyValidated,omitempty"`
	Extracted        *ClaimResponse `json:"extracted,omitempty"`
}

func toValidateResponse(o *models.Outcome) *ValidateResponse {
	return &ValidateResponse{
		Valid:            o.Valid,
		AlreadyValidated: o.AlreadyValidated,
		Extracted:        toClaimResponse(o.Extracted),
	}
}

// ValidationRecordResponse renders a ledger entry.
type ValidationRecordResponse struct {
	ID          string         `json:"id"`
	Claim       *ClaimResponse `json:"claim"`
	ValidatedAt string         `json:"validatedAt"`
}

// ListResponse wraps the full ledger listing.
type ListResponse struct {
	Validations []ValidationRecordResponse `json:"validations"`
}

func toListResponse(recs []*models.ValidationRecord) *ListResponse {
	out := make([]ValidationRecordResponse, 0, len(recs))
	for _, rec := range recs {
		claim := rec.Claim
		out = append(out, ValidationRecordResponse{
			ID:          rec.ID.String(),
			Claim:       toClaimResponse(&claim),
			ValidatedAt: rec.ValidatedAt.UTC().Format(time.RFC3339),
		})
	}
	return &ListResponse{Validations: out}
}
