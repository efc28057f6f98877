package processor

import (
	"context"

	"github.com/stretchr/testify/mock"

	"texnomart/notification-worker-service/internal/app/notification/entity"
)

// MockNotificationService мок для NotificationServiceInterface
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Handle(ctx context.Context, event *entity.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotificationService) RetryPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
