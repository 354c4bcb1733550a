package validation

import (
	"fmt"

	dErrors "veripass/pkg/domain-errors"
)

// Field count limits
const (
	// MaxDocumentFields is the maximum number of OCR document fields per request.
	MaxDocumentFields = 64
)

// String element length limits
const (
	// MaxNameLength is the maximum length of a name or place field.
	MaxNameLength = 128

	// MaxCountryLength is the maximum length of a country name or code.
	MaxCountryLength = 64

	// MaxPassportNumberLength is the maximum length of a passport number.
	MaxPassportNumberLength = 32

	// MaxDateLength is the maximum length of a raw date field before parsing.
	MaxDateLength = 64

	// MaxDocumentValueLength is the maximum length of a single OCR field value.
	MaxDocumentValueLength = 256
)

// CheckMapCount validates that a map does not exceed the maximum entry count.
func CheckMapCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckEachValueLength validates that each value in a map does not exceed the
// maximum length.
func CheckEachValueLength(fieldName string, values map[string]string, max int) error {
	for key, v := range values {
		if len(v) > max {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s[%s] exceeds max length of %d", fieldName, key, max))
		}
	}
	return nil
}
