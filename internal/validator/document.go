package validator

import (
	"fmt"
	"strconv"
	"strings"

	"ledgerlens/internal/domain"
)

// Currency codes accepted without a review warning.
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "HUF": true,
	"CHF": true, "CAD": true, "AUD": true, "JPY": true,
}

// FieldValidator validates one extracted document as a whole: migrates the
// legacy merchant field, normalizes the service_provider shape, coerces the
// amount and upper-cases the currency, accumulating every error and warning
// into a single verdict.
type FieldValidator struct {
	address *AddressValidator
}

// NewFieldValidator creates a field validator with its own address validator.
func NewFieldValidator() *FieldValidator {
	return &FieldValidator{address: NewAddressValidator()}
}

// Validate checks an extracted document and returns a verdict with a
// best-effort corrected copy. The verdict is always returned, never an
// error: unexpected panics during validation are converted into a generic
// validation error on the verdict itself.
func (v *FieldValidator) Validate(doc domain.Document) (result domain.ValidationResult) {
	result = domain.ValidationResult{
		IsValid:     true,
		Corrected:   doc.Clone(),
		Errors:      []string{},
		Warnings:    []string{},
		Corrections: map[string]string{},
	}

	defer func() {
		if r := recover(); r != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Validation error: %v", r))
			result.IsValid = false
		}
	}()

	// Merchant migration runs first so the moved value goes through the
	// same service_provider pass as a directly extracted one.
	v.migrateMerchant(&result)
	v.checkServiceProvider(&result)
	v.checkAmount(&result)
	v.checkCurrency(&result)

	result.IsValid = len(result.Errors) == 0
	return result
}

// migrateMerchant moves the legacy merchant field into service_provider,
// overwriting any existing value.
func (v *FieldValidator) migrateMerchant(result *domain.ValidationResult) {
	merchant, ok := result.Corrected["merchant"]
	if !ok {
		return
	}
	delete(result.Corrected, "merchant")
	result.Corrected["service_provider"] = merchant
	result.Warnings = append(result.Warnings, "merchant field found, converting to service_provider for consistency")
	result.Corrections["merchant_to_service_provider"] = "converted_legacy_field"
}

func (v *FieldValidator) checkServiceProvider(result *domain.ValidationResult) {
	raw, ok := result.Corrected["service_provider"]
	if !ok {
		return
	}

	switch provider := raw.(type) {
	case string:
		result.Corrected["service_provider"] = map[string]interface{}{
			"name":    provider,
			"address": "Address extraction needed",
		}
		result.Warnings = append(result.Warnings, "service_provider was a string, converted to object format")
		result.Corrections["service_provider"] = "converted_from_string"

	case map[string]interface{}:
		name := strings.TrimSpace(toString(provider["name"]))
		if name == "" {
			result.Errors = append(result.Errors, "service_provider.name: Service provider name cannot be empty")
		}

		address, _ := provider["address"].(string)
		addrResult := v.address.ValidateAddress(address)
		for _, e := range addrResult.Errors {
			result.Errors = append(result.Errors, "service_provider.address: "+e)
		}

		if name == "" || !addrResult.IsValid {
			return
		}

		corrected := map[string]interface{}{
			"name":    name,
			"address": addrResult.FormattedAddress,
		}
		if taxID, ok := provider["tax_id"]; ok {
			corrected["tax_id"] = taxID
		}
		result.Corrected["service_provider"] = corrected
		result.Corrections["service_provider"] = "validated_and_formatted"

	default:
		result.Errors = append(result.Errors, "service_provider must be an object with name and address")
	}
}

func (v *FieldValidator) checkAmount(result *domain.ValidationResult) {
	raw, ok := result.Corrected["amount"]
	if !ok || raw == nil {
		return
	}

	amount, err := toFloat(raw)
	if err != nil {
		// The original value stays in the corrected document so callers
		// can inspect what the model actually returned.
		result.Errors = append(result.Errors, "Amount must be a valid number")
		return
	}
	if amount <= 0 {
		result.Warnings = append(result.Warnings, "Amount should be a positive number")
	}
	result.Corrected["amount"] = amount
}

func (v *FieldValidator) checkCurrency(result *domain.ValidationResult) {
	raw, ok := result.Corrected["currency"]
	if !ok || raw == nil {
		return
	}
	currency := toString(raw)
	if currency == "" {
		return
	}
	currency = strings.ToUpper(currency)
	if len(currency) != 3 || !validCurrencies[currency] {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Currency '%s' might not be a standard 3-letter code", currency))
	}
	result.Corrected["currency"] = currency
}

// toFloat converts numeric and numeric-string values. Thousands separators
// are not stripped: "1,500.50" is rejected, matching what the extraction
// prompts tell the model to avoid producing.
func toFloat(value interface{}) (float64, error) {
	switch n := value.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unsupported amount type %T", value)
	}
}

func toString(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
