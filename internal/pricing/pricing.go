// Package pricing resolves per-token USD prices for vision model calls.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// fallbackOpenRouter is used when the OpenRouter API is unavailable or does
// not list the requested model ($0.20 per 1M tokens each way).
var fallbackOpenRouter = modelPrice{Prompt: 0.0000002, Completion: 0.0000002}

type modelPrice struct {
	Prompt     float64
	Completion float64
}

// OpenRouterSource fetches per-token model pricing from the OpenRouter models
// API and caches it. It implements port.PricingSource.
//
// Self-hosted vLLM usage always costs zero. When a refresh fails, an expired
// cache is reused before resorting to fallback prices.
type OpenRouterSource struct {
	baseURL string
	ttl     time.Duration
	client  *http.Client

	mu      sync.RWMutex
	prices  map[string]modelPrice
	expires time.Time
}

// NewOpenRouterSource creates a pricing source against the given API base URL.
// An empty baseURL selects the public OpenRouter API; a non-positive ttl
// defaults to 24 hours.
func NewOpenRouterSource(baseURL string, ttl time.Duration) *OpenRouterSource {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &OpenRouterSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Cost computes prompt, completion and total USD costs for a model call.
func (s *OpenRouterSource) Cost(ctx context.Context, provider, model string, promptTokens, completionTokens int) (float64, float64, float64) {
	price := s.priceFor(ctx, provider, model)
	promptCost := float64(promptTokens) * price.Prompt
	completionCost := float64(completionTokens) * price.Completion
	return promptCost, completionCost, promptCost + completionCost
}

func (s *OpenRouterSource) priceFor(ctx context.Context, provider, model string) modelPrice {
	switch provider {
	case "vllm":
		// Self-hosted models have no per-token cost
		return modelPrice{}
	case "openrouter":
		prices := s.table(ctx)
		if price, ok := prices[model]; ok {
			return price
		}
		log.Printf("pricing.OpenRouterSource: no pricing for model %q, using fallback", model)
		return fallbackOpenRouter
	default:
		log.Printf("pricing.OpenRouterSource: unknown provider %q, using zero cost", provider)
		return modelPrice{}
	}
}

// table returns the cached pricing map, refreshing it when expired. A failed
// refresh falls back to the stale cache when one exists.
func (s *OpenRouterSource) table(ctx context.Context) map[string]modelPrice {
	s.mu.RLock()
	if s.prices != nil && time.Now().Before(s.expires) {
		prices := s.prices
		s.mu.RUnlock()
		return prices
	}
	s.mu.RUnlock()

	if _, err := s.Refresh(ctx); err != nil {
		log.Printf("pricing.OpenRouterSource: refresh failed: %v", err)
		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.prices != nil {
			log.Printf("pricing.OpenRouterSource: using expired pricing cache")
		}
		return s.prices
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices
}

// modelsResponse models the OpenRouter models listing. Prices arrive as
// per-token decimal strings.
type modelsResponse struct {
	Data []struct {
		ID      string `json:"id"`
		Pricing struct {
			Prompt     string `json:"prompt"`
			Completion string `json:"completion"`
		} `json:"pricing"`
	} `json:"data"`
}

// Refresh fetches the current pricing table and replaces the cache. It
// returns the number of models priced.
func (s *OpenRouterSource) Refresh(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("calling openrouter models API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("openrouter models API error (status %d)", resp.StatusCode)
	}

	var parsed modelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("unmarshaling response: %w", err)
	}

	prices := make(map[string]modelPrice, len(parsed.Data))
	for _, m := range parsed.Data {
		if m.ID == "" || (m.Pricing.Prompt == "" && m.Pricing.Completion == "") {
			continue
		}
		prices[m.ID] = modelPrice{
			Prompt:     parsePrice(m.Pricing.Prompt),
			Completion: parsePrice(m.Pricing.Completion),
		}
	}

	s.mu.Lock()
	s.prices = prices
	s.expires = time.Now().Add(s.ttl)
	s.mu.Unlock()

	return len(prices), nil
}

func parsePrice(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
