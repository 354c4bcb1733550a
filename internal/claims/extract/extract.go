// Package extract builds a canonical claims.Record from the field map
// returned by the external document-analysis collaborator.
package extract

import (
	"fmt"

	"veripass/internal/claims"
	"veripass/internal/claims/countries"
	"veripass/internal/claims/dates"
	dErrors "veripass/pkg/domain-errors"
)

// Field keys as emitted by the document analyzer. The analyzer owns this
// vocabulary; do not rename to match internal field names.
const (
	FieldFirstName        = "FirstName"
	FieldLastName         = "LastName"
	FieldDateOfBirth      = "DateOfBirth"
	FieldPlaceOfBirth     = "PlaceOfBirth"
	FieldCountryRegion    = "CountryRegion"
	FieldSex              = "Sex"
	FieldDocumentNumber   = "DocumentNumber"
	FieldDateOfExpiration = "DateOfExpiration"
	FieldDateOfIssue      = "DateOfIssue"
)

// Result carries the canonical record plus explicit tags for the tolerance
// decisions taken during extraction, so callers see what was absent or
// unresolved instead of finding sentinel strings later.
type Result struct {
	Claim *claims.Record

	// Missing lists field keys the analyzer omitted. OCR frequently drops
	// low-confidence fields; extraction of the rest proceeds.
	Missing []string

	// UnresolvedCountry is set when the citizenship code was passed through
	// unchanged because it is not in the ISO table. A soft condition, not an
	// error.
	UnresolvedCountry bool
}

// FromDocumentFields turns the analyzer's field map into a canonical record.
//
// Missing keys resolve to empty strings rather than failing the whole
// extraction. A date field that fails normalization is fatal: without a
// valid calendar date the record invariant cannot hold, and retrying with
// the same input cannot succeed.
func FromDocumentFields(fields map[string]string) (*Result, error) {
	res := &Result{}

	get := func(key string) string {
		v, ok := fields[key]
		if !ok {
			res.Missing = append(res.Missing, key)
		}
		return v
	}

	firstName := get(FieldFirstName)
	lastName := get(FieldLastName)
	rawBirth := get(FieldDateOfBirth)
	placeOfBirth := get(FieldPlaceOfBirth)
	rawCountry := get(FieldCountryRegion)
	sex := get(FieldSex)
	documentNumber := get(FieldDocumentNumber)
	rawExpiry := get(FieldDateOfExpiration)
	rawIssue := get(FieldDateOfIssue)

	birthDate, err := normalizeDate("date of birth", rawBirth)
	if err != nil {
		return nil, err
	}
	expiryDate, err := normalizeDate("date of expiration", rawExpiry)
	if err != nil {
		return nil, err
	}
	issueDate, err := normalizeDate("date of issue", rawIssue)
	if err != nil {
		return nil, err
	}

	country, resolved := countries.Resolve(rawCountry)
	res.UnresolvedCountry = !resolved

	res.Claim = &claims.Record{
		FirstName:            firstName,
		LastName:             lastName,
		BirthDate:            birthDate,
		PlaceOfBirth:         placeOfBirth,
		CountryOfCitizenship: country,
		Gender:               genderFromSex(sex),
		PassportNumber:       documentNumber,
		DateOfIssue:          issueDate,
		DateOfExpiry:         expiryDate,
	}
	return res, nil
}

// normalizeDate keeps the field name in the error message while the wrapped
// error retains the raw string for diagnostics.
func normalizeDate(field, raw string) (claims.Date, error) {
	d, err := dates.Normalize(raw)
	if err != nil {
		return claims.Date{}, dErrors.Wrap(err, dErrors.CodeInvalidDate,
			fmt.Sprintf("%s: %s", field, err.Error()))
	}
	return d, nil
}

// genderFromSex maps the document sex marker: "M" means male, anything else
// female. The binary collapse is a known limitation of the original
// vocabulary, kept deliberately.
func genderFromSex(sex string) claims.Gender {
	if sex == "M" {
		return claims.Male
	}
	return claims.Female
}
