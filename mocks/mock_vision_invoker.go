package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ledgerlens/internal/port"
)

// MockVisionInvoker is a mock implementation of port.VisionInvoker.
type MockVisionInvoker struct {
	mock.Mock
}

func (m *MockVisionInvoker) Invoke(ctx context.Context, input port.InvokeInput) (*port.InvokeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.InvokeOutput), args.Error(1)
}
