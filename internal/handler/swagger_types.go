package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Response Types ---

// ValidateResponse represents the standalone validation response.
type ValidateResponse struct {
	IsValid            bool                   `json:"is_valid" example:"false"`
	CorrectedData      map[string]interface{} `json:"corrected_data"`
	Errors             []string               `json:"errors" example:"service_provider.address: Address should contain at least 2 commas separating street, city, and country"`
	Warnings           []string               `json:"warnings" example:"Currency 'HU' might not be a standard 3-letter code"`
	CorrectionsApplied map[string]string      `json:"corrections_applied" example:"service_provider:validated_and_formatted"`
}

// TemplateListResponse represents the template catalog response.
type TemplateListResponse struct {
	Templates map[string]string `json:"templates" example:"default_invoice:Extract structured data from invoices"`
	Names     []string          `json:"names" example:"default_invoice,receipt"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status             string   `json:"status" example:"ok"`
	Provider           string   `json:"provider,omitempty" example:"vllm"`
	Model              string   `json:"model,omitempty" example:"qwen2.5-vl-7b"`
	AvailableTemplates []string `json:"available_templates,omitempty" example:"default_invoice,receipt"`
	Error              string   `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"Configuration reloaded successfully"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// --- Extracted Invoice Schema (for documentation) ---

// InvoiceData represents the shape of data extracted with the
// default_invoice template.
type InvoiceData struct {
	ServiceProvider ServiceProvider `json:"service_provider"`
	InvoiceNumber   string          `json:"invoice_number" example:"INV-2025-001234"`
	Date            string          `json:"date" example:"2025-03-15"`
	DueDate         string          `json:"due_date" example:"2025-04-15"`
	Amount          float64         `json:"amount" example:"4500"`
	Currency        string          `json:"currency" example:"HUF"`
	TaxID           string          `json:"tax_id" example:"10773381-2-44"`
}

// ServiceProvider represents the invoice issuer.
type ServiceProvider struct {
	Name    string `json:"name" example:"Magyar Telekom Nyrt"`
	Address string `json:"address" example:"Krisztina krt. 55, Budapest 1013, Hungary"`
	TaxID   string `json:"tax_id,omitempty" example:"10773381-2-44"`
}
