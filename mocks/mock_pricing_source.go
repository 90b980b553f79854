package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPricingSource is a mock implementation of port.PricingSource.
type MockPricingSource struct {
	mock.Mock
}

func (m *MockPricingSource) Cost(ctx context.Context, provider, model string, promptTokens, completionTokens int) (float64, float64, float64) {
	args := m.Called(ctx, provider, model, promptTokens, completionTokens)
	return args.Get(0).(float64), args.Get(1).(float64), args.Get(2).(float64)
}
