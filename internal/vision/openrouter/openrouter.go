// Package openrouter provides a VisionInvoker backed by the OpenRouter API.
package openrouter

import (
	"fmt"

	"ledgerlens/internal/config"
	"ledgerlens/internal/port"
	"ledgerlens/internal/vision/openaicompat"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "qwen/qwen3-vl-8b-instruct"
)

// New creates an OpenRouter-backed invoker from a provider config.
func New(cfg *config.VisionProviderConfig) (port.VisionInvoker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter provider requires an API key")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return openaicompat.New("openrouter", baseURL, cfg.APIKey, model, cfg.TimeoutSecs), nil
}
