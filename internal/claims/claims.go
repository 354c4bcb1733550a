// Package claims defines the canonical biographic claim extracted from a
// passport document and the equivalence rules used to compare it against a
// user-declared claim.
package claims

import (
	"fmt"
	"strings"
	"time"
)

// Date is a canonical calendar date with no timezone. Once a value of this
// type exists, the original string ambiguity has been resolved; raw date
// strings never travel past the extraction boundary.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf builds a Date from the calendar components of t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ISO renders the date as yyyy-MM-dd, the only serialization used outward.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time converts the date to a UTC midnight time.Time for storage drivers.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// MarshalJSON renders the ISO form.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON accepts the ISO form only. Noisy formats are normalized at
// the extraction boundary, not during deserialization.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}

// Gender is the enumerated gender as printed in the passport sex field.
// The document vocabulary has no unknown/other state; that limitation is
// preserved here rather than silently papered over.
type Gender string

const (
	Male   Gender = "MALE"
	Female Gender = "FEMALE"
)

// ParseGender interprets a declared gender value. It accepts the enumerated
// names and the single-letter document forms.
func ParseGender(s string) (Gender, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MALE":
		return Male, nil
	case "F", "FEMALE":
		return Female, nil
	}
	return "", fmt.Errorf("unrecognized gender %q", s)
}

// Record is the canonical identity claim. It is immutable once constructed:
// every date field is a valid calendar date and the citizenship field holds a
// resolved country name (or, fail-open, the original code when unresolved).
type Record struct {
	FirstName            string
	LastName             string
	BirthDate            Date
	PlaceOfBirth         string
	CountryOfCitizenship string
	Gender               Gender
	PassportNumber       string
	DateOfIssue          Date
	DateOfExpiry         Date
}

// Matches reports whether two records describe the same underlying identity.
// Prose fields (names, place of birth, citizenship) are compared after
// lower-case folding to tolerate OCR casing noise. The passport number is an
// alphanumeric identifier, not prose, and is compared case-sensitively.
// Gender and all three dates are compared exactly. All nine fields must
// match; there is no partial or fuzzy scoring.
func (r *Record) Matches(other *Record) bool {
	if r == nil || other == nil {
		return false
	}
	return foldEqual(r.FirstName, other.FirstName) &&
		foldEqual(r.LastName, other.LastName) &&
		r.BirthDate == other.BirthDate &&
		foldEqual(r.PlaceOfBirth, other.PlaceOfBirth) &&
		foldEqual(r.CountryOfCitizenship, other.CountryOfCitizenship) &&
		r.Gender == other.Gender &&
		r.PassportNumber == other.PassportNumber &&
		r.DateOfIssue == other.DateOfIssue &&
		r.DateOfExpiry == other.DateOfExpiry
}

func foldEqual(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}
