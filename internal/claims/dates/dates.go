// Package dates normalizes the raw date strings produced by document OCR.
// Passport fields render dates in many spellings: bilingual abbreviated
// months ("08 IAN/JAN 19"), slash/dash/dot separators, two- and four-digit
// years, and year-first or day-first orderings. Everything downstream works
// with canonical claims.Date values only.
package dates

import (
	"fmt"
	"strings"
	"time"

	"veripass/internal/claims"
	dErrors "veripass/pkg/domain-errors"
)

// passportLayouts parse the reassembled "day month year" form of the
// standard passport date field. Abbreviated English month names; the
// two-digit-year layout is tried first.
var passportLayouts = []string{
	"2 Jan 06",
	"2 Jan 2006",
}

// sweepLayouts is the generic fallback, tried strictly in order. The order
// is load-bearing: it is the tie-break for ambiguous strings. "03/02/01"
// parses as day/month/year because that layout appears before any
// year-first or month-first two-digit layout. Do not reorder without
// adjusting the tests.
var sweepLayouts = []string{
	"2006/01/02",
	"2006-01-02",
	"2006.01.02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
	"02-01-06",
	"02.01.06",
	"01/02/2006",
	"01-02-2006",
	"01.02.2006",
	"01/02/06",
	"01-02-06",
	"01.02.06",
	"2 Jan 06",
	"2 Jan 2006",
	"2 January 06",
	"2 January 2006",
}

// Normalize parses a raw date string of unknown format into a canonical
// calendar date.
//
// Two strategies are tried in order. The standard-passport strategy fires
// when the string contains exactly one '/' (bilingual month rendering, e.g.
// "08 IAN/JAN 19") or splits on spaces into exactly three tokens ("03 FEB
// 01"). Otherwise a fixed ordered sweep of explicit layouts runs. If nothing
// parses, a domain error with code invalid_date carries the original string
// for diagnostics.
//
// Two-digit years follow Go's time.Parse century window: 69..99 become 19xx
// and 00..68 become 20xx. This ambiguity is inherited from the original
// heuristic; it is documented and tested rather than resolved.
func Normalize(raw string) (claims.Date, error) {
	trimmed := strings.TrimSpace(raw)

	if strings.Count(trimmed, "/") == 1 {
		return parsePassportForm(raw, reassembleBilingual(trimmed))
	}
	if len(strings.Fields(trimmed)) == 3 {
		return parsePassportForm(raw, trimmed)
	}

	for _, layout := range sweepLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return claims.DateOf(t), nil
		}
	}
	return claims.Date{}, invalidDate(raw)
}

// reassembleBilingual rebuilds "dd month yy" from the slash-joined bilingual
// passport form. The day is the first token before the slash (capped at two
// characters), the month is the first whitespace-delimited token after the
// slash, and the year is the remaining token: "08 IAN/JAN 19" becomes
// "08 JAN 19".
func reassembleBilingual(s string) string {
	parts := strings.SplitN(s, "/", 2)

	before := strings.Fields(parts[0])
	after := strings.Fields(parts[1])
	if len(before) == 0 || len(after) < 2 {
		return s
	}
	day := before[0]
	if len(day) > 2 {
		day = day[:2]
	}
	return day + " " + after[0] + " " + after[len(after)-1]
}

func parsePassportForm(raw, reassembled string) (claims.Date, error) {
	for _, layout := range passportLayouts {
		if t, err := time.Parse(layout, reassembled); err == nil {
			return claims.DateOf(t), nil
		}
	}
	return claims.Date{}, invalidDate(raw)
}

func invalidDate(raw string) error {
	return dErrors.New(dErrors.CodeInvalidDate, fmt.Sprintf("unrecognized date format: %q", raw))
}
