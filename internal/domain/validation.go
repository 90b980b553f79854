package domain

// ValidationResult is the verdict produced by validating one extracted
// document. Errors make the document invalid; warnings and corrections do
// not. Corrections maps each rewritten field to a short tag naming the
// normalization that was applied.
type ValidationResult struct {
	IsValid     bool              `json:"is_valid"`
	Corrected   Document          `json:"corrected_data"`
	Errors      []string          `json:"errors"`
	Warnings    []string          `json:"warnings"`
	Corrections map[string]string `json:"corrections"`
}

// AddressResult is the verdict for a single address string. FormattedAddress
// is set only when the address is valid.
type AddressResult struct {
	IsValid          bool     `json:"is_valid"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	Errors           []string `json:"errors"`
	Suggestions      []string `json:"suggestions"`
}
