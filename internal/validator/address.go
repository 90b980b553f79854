package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"ledgerlens/internal/domain"
)

// postalPattern matches a 4-6 digit postal code on word boundaries.
var postalPattern = regexp.MustCompile(`\b\d{4,6}\b`)

// AddressValidator checks extracted addresses against the
// "Street Address, City PostalCode, Country" convention the extraction
// prompts ask for.
type AddressValidator struct{}

// NewAddressValidator creates an address validator.
func NewAddressValidator() *AddressValidator {
	return &AddressValidator{}
}

// ValidateAddress checks a single address string and accumulates every
// problem found rather than stopping at the first. Only the two structural
// preconditions (empty input, too short) cut the check short. The formatted
// address is produced only for valid input and normalizes comma spacing
// without changing case or content.
func (v *AddressValidator) ValidateAddress(address string) domain.AddressResult {
	result := domain.AddressResult{
		Errors:      []string{},
		Suggestions: []string{},
	}

	if address == "" {
		result.Errors = append(result.Errors, "Address cannot be empty or null")
		return result
	}

	if utf8.RuneCountInString(strings.TrimSpace(address)) < 5 {
		result.Errors = append(result.Errors, "Address is too short (minimum 5 characters)")
		return result
	}

	if strings.Count(address, ",") < 2 {
		result.Errors = append(result.Errors, "Address should contain at least 2 commas separating street, city, and country")
		result.Suggestions = append(result.Suggestions, "Format should be: 'Street Address, City PostalCode, Country'")
	}

	// Structural checks run on whichever segments exist, even when the
	// comma count already failed.
	parts := splitTrimmed(address)

	if utf8.RuneCountInString(parts[0]) < 2 {
		result.Errors = append(result.Errors, "Street address is too short or missing")
	}

	if len(parts) > 1 {
		cityPostal := parts[1]
		if utf8.RuneCountInString(cityPostal) < 2 {
			result.Errors = append(result.Errors, "City and postal code section is too short or missing")
		}
		if !postalPattern.MatchString(cityPostal) {
			result.Suggestions = append(result.Suggestions, "Consider including postal code with city (e.g., 'Budapest 1051')")
		}
	}

	if len(parts) > 2 {
		if utf8.RuneCountInString(parts[len(parts)-1]) < 2 {
			result.Errors = append(result.Errors, "Country is missing or too short")
		}
	}

	lower := strings.ToLower(address)
	if strings.Contains(lower, "unknown") {
		result.Errors = append(result.Errors, "Address contains 'unknown' - please provide specific location")
	}
	if strings.Contains(lower, "n/a") {
		result.Errors = append(result.Errors, "Address contains 'N/A' - please provide actual address")
	}

	result.IsValid = len(result.Errors) == 0
	if result.IsValid {
		result.FormattedAddress = strings.Join(parts, ", ")
	}
	return result
}

// splitTrimmed splits on commas and trims whitespace around each part.
func splitTrimmed(address string) []string {
	parts := strings.Split(address, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
