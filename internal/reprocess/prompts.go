package reprocess

import (
	"fmt"

	"ledgerlens/internal/domain"
)

// enhancers is the closed table mapping each failure category to the
// transform that appends its targeted instructions to the user prompt.
var enhancers = map[domain.RetryStrategy]func(string) string{
	domain.StrategyAddressFormat:     func(p string) string { return p + addressEnhancement },
	domain.StrategyProviderStructure: func(p string) string { return p + structureEnhancement },
	domain.StrategyAmountFormat:      func(p string) string { return p + amountEnhancement },
	domain.StrategyGeneral:           func(p string) string { return p + generalEnhancement },
}

// EnhanceUserPrompt appends the category-specific extraction instructions to
// the original user prompt. Unknown categories fall back to the general
// enhancement.
func EnhanceUserPrompt(strategy domain.RetryStrategy, originalPrompt string) string {
	enhance, ok := enhancers[strategy]
	if !ok {
		enhance = enhancers[domain.StrategyGeneral]
	}
	return enhance(originalPrompt)
}

// RetrySystemPrompt appends the generic retry note, with the current attempt
// number, to the original system prompt. It applies regardless of category.
func RetrySystemPrompt(originalPrompt string, attempt int) string {
	return originalPrompt + fmt.Sprintf("\n\nRETRY ATTEMPT %d: Previous extraction had validation errors. Please extract more carefully.", attempt)
}

const addressEnhancement = `

CRITICAL ADDRESS FORMATTING REQUIREMENTS:
- The address MUST be a complete address with street, city, postal code, and country
- Format EXACTLY as: "Street Number Street Name, City Postal Code, Country"
- Example: "Sarló u 7, Székesfehérvár 8000, Hungary"
- DO NOT use partial addresses, abbreviations, or incomplete information
- If you can see any part of an address on the document, extract ALL visible components
- Look carefully for street numbers, street names, city names, postal codes, and country information
- Combine all address components into a single complete string

POSITIVE ADDRESS EXAMPLES (CORRECT formats to follow):

{
  "service_provider": {
    "name": "Magyar Solutions Kft",
    "address": "Váci út 1-3, Budapest 1052, Hungary"
  }
}

{
  "service_provider": {
    "name": "Berlin Tech GmbH",
    "address": "Unter den Linden 42, Berlin 10117, Germany"
  }
}

{
  "service_provider": {
    "name": "NYC Services Inc",
    "address": "123 Business Street, New York, NY 10001, United States"
  }
}

NEGATIVE ADDRESS EXAMPLES (INCORRECT - DO NOT DO THIS):

"Budapest" (too short, missing street and postal code)
"Main Street 123, Berlin 10117" (missing country)
"Main Street 123 Berlin Germany" (missing commas)
"Address not available" (placeholder text)
Just company name without address

COMMON ADDRESS EXTRACTION MISTAKES TO AVOID:
- DO NOT return just the company name without address
- DO NOT return partial addresses like "Budapest" or "Main Street"
- DO NOT use placeholders like "Address not provided"
- DO NOT split address into multiple fields - combine into ONE string
- DO NOT forget commas between address components
- DO NOT omit country information from the address

If you cannot find a complete address with at least street, city, and country components,
look more carefully at the entire document including headers, footers, and contact information sections.
`

const structureEnhancement = `

CRITICAL JSON STRUCTURE REQUIREMENTS:
- service_provider MUST be an object (not a string) with "name" and "address" fields
- NEVER return service_provider as a simple string
- Use service_provider for ALL types of providers (stores, restaurants, companies, etc.)

CORRECT FORMAT EXAMPLES:

For invoices and receipts (service_provider):
{
  "service_provider": {
    "name": "Tech Solutions Kft",
    "address": "Sarló u 7, Székesfehérvár 8000, Hungary"
  }
}

For stores/restaurants (service_provider):
{
  "service_provider": {
    "name": "Café Central",
    "address": "Herrengasse 14, Wien 1010, Austria"
  }
}

INCORRECT FORMAT EXAMPLES (DO NOT DO THIS):

{
  "service_provider": "Just company name"  // WRONG! Must be object
}

{
  "service_provider": "Store Name Only"  // WRONG! Must be object
}

{
  "service_provider": {
    "name": "Company Name"
    // WRONG! Missing address field
  }
}

VERIFICATION CHECKLIST:
- Is service_provider an object with both "name" and "address"?
- Does the address follow the complete format with street, city, country?
- Is the JSON syntax valid (proper commas, brackets, quotes)?

Double-check your JSON structure before returning the response.
`

const amountEnhancement = `

CRITICAL AMOUNT EXTRACTION REQUIREMENTS:
- amount MUST be a numeric value (not text)
- Look for the total amount, final amount, or amount due
- Remove currency symbols, commas, and spaces
- Convert to decimal format (e.g., 1500.50)
- If you see "1,500.50 EUR", return just 1500.50 as the amount

EXAMPLES:
- "€1,500.50" → amount: 1500.50
- "$1000" → amount: 1000.00
- "2.500,75 HUF" → amount: 2500.75

Extract ONLY the numeric value without any text or symbols.
`

const generalEnhancement = `

CRITICAL DATA EXTRACTION REQUIREMENTS:
- Read the document VERY carefully and extract ALL visible information
- Pay special attention to addresses, company names, and amounts
- Look in headers, footers, contact sections, and invoice details
- Ensure ALL required fields are filled with actual data from the document
- Double-check that your extracted data matches what you see in the image

If any field seems incomplete, look again at the entire document more carefully.
`
