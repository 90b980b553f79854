// Package openaicompat calls OpenAI-compatible chat completions endpoints.
// Both supported vision providers (self-hosted vLLM and OpenRouter) speak
// this wire format; they differ only in base URL, credentials and model.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/port"
	"ledgerlens/internal/vision"
)

// Client sends one document page per request to a chat completions endpoint.
// It implements port.VisionInvoker.
type Client struct {
	provider string
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a client for the given provider name, API base URL and model.
func New(provider, baseURL, apiKey, model string, timeoutSecs int) *Client {
	timeout := time.Duration(timeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		provider: provider,
		apiKey:   apiKey,
		model:    model,
		endpoint: strings.TrimRight(baseURL, "/") + "/chat/completions",
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Invoke(ctx context.Context, input port.InvokeInput) (*port.InvokeOutput, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": input.SystemPrompt,
			},
			{
				"role":    "user",
				"content": buildContentBlocks(input),
			},
		},
		"temperature": input.Temperature,
		"max_tokens":  input.MaxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", c.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("%s API error (status %d): %s", c.provider, resp.StatusCode, truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := vision.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, vision.NewRateLimitError(c.provider, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return c.parseResponse(respBody)
}

// buildContentBlocks assembles the user message content. Images travel as
// image_url blocks with a data URI; PDFs travel as file blocks so the
// provider handles page rendering.
func buildContentBlocks(input port.InvokeInput) []map[string]interface{} {
	encoded := base64.StdEncoding.EncodeToString(input.Page.Data)
	dataURI := fmt.Sprintf("data:%s;base64,%s", input.Page.ContentType, encoded)

	var blocks []map[string]interface{}
	if input.Page.ContentType == "application/pdf" {
		blocks = append(blocks, map[string]interface{}{
			"type": "file",
			"file": map[string]interface{}{
				"filename":  "document.pdf",
				"file_data": dataURI,
			},
		})
	} else {
		blocks = append(blocks, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": dataURI,
			},
		})
	}

	return append(blocks, map[string]interface{}{
		"type": "text",
		"text": input.UserPrompt,
	})
}

// apiResponse models the chat completions response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *Client) parseResponse(body []byte) (*port.InvokeOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	raw := resp.Choices[0].Message.Content

	var usage *domain.TokenUsage
	if resp.Usage != nil {
		usage = &domain.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	var data domain.Document
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &data); err != nil {
		return nil, &vision.ResponseParseError{
			Provider: c.provider,
			RawText:  raw,
			Usage:    usage,
			Err:      err,
		}
	}

	return &port.InvokeOutput{
		Data:     data,
		RawText:  raw,
		Usage:    usage,
		Model:    c.model,
		Provider: c.provider,
	}, nil
}

// StripCodeFences removes a markdown code fence wrapper from a model reply.
// Vision models frequently wrap their JSON in ```json blocks despite
// instructions not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[7:]
	} else if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
