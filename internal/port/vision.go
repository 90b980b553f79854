package port

import (
	"context"

	"ledgerlens/internal/domain"
)

// PageImage is one document page as raw bytes plus its MIME type.
type PageImage struct {
	Data        []byte
	ContentType string
}

// InvokeInput carries one page and the prompt pair for a vision model call.
type InvokeInput struct {
	Page         PageImage
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// InvokeOutput is the decoded result of a vision model call.
type InvokeOutput struct {
	Data     domain.Document
	RawText  string
	Usage    *domain.TokenUsage
	Model    string
	Provider string
}

// VisionInvoker abstracts the vision model boundary. Transport and auth
// failures surface as plain errors; model output that cannot be decoded into
// a document surfaces as a typed parse error carrying the raw text and token
// usage, so callers can keep the usage accounting.
type VisionInvoker interface {
	Invoke(ctx context.Context, input InvokeInput) (*InvokeOutput, error)
}
