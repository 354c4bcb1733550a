// Package countries resolves ISO 3166-1 alpha-3 codes to human-readable
// country names from a static embedded table.
package countries

import "strings"

// Resolve maps an alpha-3 code to its country name. Lookup is
// case-insensitive because OCR output arrives in inconsistent casing.
//
// Resolution fails open: an unknown code is returned unchanged with
// resolved == false so callers can see the tolerance instead of receiving a
// silently substituted sentinel. Callers must not assume the returned value
// is always a full country name.
func Resolve(code string) (name string, resolved bool) {
	if n, ok := byAlpha3[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return n, true
	}
	return code, false
}
