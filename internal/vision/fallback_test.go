package vision_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ledgerlens/internal/domain"
	"ledgerlens/internal/port"
	"ledgerlens/internal/vision"
	"ledgerlens/mocks"
)

func fallbackInput() port.InvokeInput {
	return port.InvokeInput{
		Page:         port.PageImage{Data: []byte("test"), ContentType: "image/png"},
		SystemPrompt: "system",
		UserPrompt:   "user",
		Temperature:  0.1,
		MaxTokens:    2000,
	}
}

func fallbackOutput(provider string) *port.InvokeOutput {
	return &port.InvokeOutput{
		Data:     domain.Document{"amount": 10.0},
		RawText:  `{"amount": 10.0}`,
		Provider: provider,
	}
}

func TestFallbackInvoker_FirstSucceeds(t *testing.T) {
	p1 := new(mocks.MockVisionInvoker)
	p2 := new(mocks.MockVisionInvoker)

	input := fallbackInput()
	p1.On("Invoke", mock.Anything, input).Return(fallbackOutput("vllm"), nil)

	fi := vision.NewFallbackInvoker(
		[]port.VisionInvoker{p1, p2},
		[]string{"vllm", "openrouter"},
	)

	out, err := fi.Invoke(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, "vllm", out.Provider)
	p2.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestFallbackInvoker_FirstFails_SecondSucceeds(t *testing.T) {
	p1 := new(mocks.MockVisionInvoker)
	p2 := new(mocks.MockVisionInvoker)

	input := fallbackInput()
	p1.On("Invoke", mock.Anything, input).Return(nil, errors.New("connection refused"))
	p2.On("Invoke", mock.Anything, input).Return(fallbackOutput("openrouter"), nil)

	fi := vision.NewFallbackInvoker(
		[]port.VisionInvoker{p1, p2},
		[]string{"vllm", "openrouter"},
	)

	out, err := fi.Invoke(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, "openrouter", out.Provider)
}

func TestFallbackInvoker_ParseErrorReturnsImmediately(t *testing.T) {
	p1 := new(mocks.MockVisionInvoker)
	p2 := new(mocks.MockVisionInvoker)

	input := fallbackInput()
	parseErr := &vision.ResponseParseError{
		Provider: "vllm",
		RawText:  "not json",
		Usage:    &domain.TokenUsage{TotalTokens: 100},
		Err:      errors.New("invalid character 'n'"),
	}
	p1.On("Invoke", mock.Anything, input).Return(nil, parseErr)

	fi := vision.NewFallbackInvoker(
		[]port.VisionInvoker{p1, p2},
		[]string{"vllm", "openrouter"},
	)

	out, err := fi.Invoke(context.Background(), input)

	assert.Nil(t, out)
	require.Error(t, err)

	var got *vision.ResponseParseError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "not json", got.RawText)
	p2.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestFallbackInvoker_AllRateLimited(t *testing.T) {
	p1 := new(mocks.MockVisionInvoker)
	p2 := new(mocks.MockVisionInvoker)

	input := fallbackInput()
	p1.On("Invoke", mock.Anything, input).Return(nil, vision.NewRateLimitError("vllm", errors.New("429"), 60))
	p2.On("Invoke", mock.Anything, input).Return(nil, vision.NewRateLimitError("openrouter", errors.New("429"), 30))

	fi := vision.NewFallbackInvoker(
		[]port.VisionInvoker{p1, p2},
		[]string{"vllm", "openrouter"},
	)

	out, err := fi.Invoke(context.Background(), input)

	assert.Nil(t, out)
	assert.Error(t, err)

	var rlErr *vision.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
}

func TestFallbackInvoker_AllFail_NonRateLimit(t *testing.T) {
	p1 := new(mocks.MockVisionInvoker)
	p2 := new(mocks.MockVisionInvoker)

	input := fallbackInput()
	p1.On("Invoke", mock.Anything, input).Return(nil, errors.New("error 1"))
	p2.On("Invoke", mock.Anything, input).Return(nil, errors.New("error 2"))

	fi := vision.NewFallbackInvoker(
		[]port.VisionInvoker{p1, p2},
		[]string{"vllm", "openrouter"},
	)

	out, err := fi.Invoke(context.Background(), input)

	assert.Nil(t, out)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "all providers failed")

	var rlErr *vision.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackInvoker_SkipsOpenCircuit(t *testing.T) {
	p1 := new(mocks.MockVisionInvoker)
	p2 := new(mocks.MockVisionInvoker)

	input := fallbackInput()

	// First call: p1 rate limited with 60s, p2 succeeds
	p1.On("Invoke", mock.Anything, input).Return(nil, vision.NewRateLimitError("vllm", errors.New("429"), 60)).Once()
	p2.On("Invoke", mock.Anything, input).Return(fallbackOutput("openrouter"), nil)

	fi := vision.NewFallbackInvoker(
		[]port.VisionInvoker{p1, p2},
		[]string{"vllm", "openrouter"},
	)

	out, err := fi.Invoke(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "openrouter", out.Provider)

	// Second call immediately: p1 should be skipped (circuit still open)
	out, err = fi.Invoke(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "openrouter", out.Provider)

	p1.AssertNumberOfCalls(t, "Invoke", 1)
}

func TestFallbackInvoker_CircuitAutoCloses(t *testing.T) {
	p1 := new(mocks.MockVisionInvoker)
	p2 := new(mocks.MockVisionInvoker)

	input := fallbackInput()

	p1.On("Invoke", mock.Anything, input).Return(nil, vision.NewRateLimitError("vllm", errors.New("429"), 1)).Once()
	p2.On("Invoke", mock.Anything, input).Return(fallbackOutput("openrouter"), nil).Once()

	fi := vision.NewFallbackInvoker(
		[]port.VisionInvoker{p1, p2},
		[]string{"vllm", "openrouter"},
	)

	out, err := fi.Invoke(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "openrouter", out.Provider)

	// Wait for circuit to auto-close
	time.Sleep(1100 * time.Millisecond)

	p1.On("Invoke", mock.Anything, input).Return(fallbackOutput("vllm"), nil).Once()

	out, err = fi.Invoke(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, "vllm", out.Provider)
}

func TestFallbackInvoker_SingleProvider(t *testing.T) {
	p1 := new(mocks.MockVisionInvoker)

	input := fallbackInput()
	p1.On("Invoke", mock.Anything, input).Return(fallbackOutput("vllm"), nil)

	fi := vision.NewFallbackInvoker(
		[]port.VisionInvoker{p1},
		[]string{"vllm"},
	)

	out, err := fi.Invoke(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, "vllm", out.Provider)
}

func TestFallbackInvoker_ConcurrentSafety(t *testing.T) {
	p1 := new(mocks.MockVisionInvoker)
	p2 := new(mocks.MockVisionInvoker)

	input := fallbackInput()
	p1.On("Invoke", mock.Anything, input).Return(nil, vision.NewRateLimitError("vllm", errors.New("429"), 5)).Maybe()
	p2.On("Invoke", mock.Anything, input).Return(fallbackOutput("openrouter"), nil).Maybe()

	fi := vision.NewFallbackInvoker(
		[]port.VisionInvoker{p1, p2},
		[]string{"vllm", "openrouter"},
	)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := fi.Invoke(context.Background(), input)
			assert.NoError(t, err)
			assert.NotNil(t, out)
		}()
	}
	wg.Wait()
}
