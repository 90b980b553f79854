package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ledgerlens/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendReviewRequest(ctx context.Context, req port.ReviewRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
