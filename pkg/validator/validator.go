package validator

import (
	"strings"

	"libraryapi/pkg/models"
)

// SerialNumberDigits is the fixed length of book serial numbers and
// library card numbers.
const SerialNumberDigits = 6

// FixedDigits checks that value consists of exactly expectedDigits decimal
// digits. The name is only used in the error message.
func FixedDigits(name, value string, expectedDigits int) error {
	if len(value) != expectedDigits {
		return models.NewInvalidIdentifierError(name, expectedDigits)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return models.NewInvalidIdentifierError(name, expectedDigits)
		}
	}
	return nil
}

// StripParam trims value and rejects strings that are empty or whitespace
// only. Returns the trimmed value.
func StripParam(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", models.NewInvalidArgumentError(name)
	}
	return trimmed, nil
}
