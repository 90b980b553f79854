// Package vllm provides a VisionInvoker backed by a self-hosted vLLM server.
package vllm

import (
	"fmt"

	"ledgerlens/internal/config"
	"ledgerlens/internal/port"
	"ledgerlens/internal/vision/openaicompat"
)

const (
	defaultModel = "Qwen/Qwen2-VL-7B-Instruct"

	// vLLM ignores credentials but the OpenAI wire format expects a bearer token.
	placeholderKey = "EMPTY"
)

// New creates a vLLM-backed invoker from a provider config.
func New(cfg *config.VisionProviderConfig) (port.VisionInvoker, error) {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d/v1", cfg.Host, cfg.Port)
	}
	return openaicompat.New("vllm", baseURL, placeholderKey, model, cfg.TimeoutSecs), nil
}
