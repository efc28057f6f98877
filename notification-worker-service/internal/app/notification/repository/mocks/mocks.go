package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"texnomart/notification-worker-service/internal/app/notification/entity"
)

// MockAuditSink мок для AuditSink
type MockAuditSink struct {
	mock.Mock
	name string
}

func NewMockAuditSink(name string) *MockAuditSink {
	return &MockAuditSink{name: name}
}

func (m *MockAuditSink) Name() string {
	return m.name
}

func (m *MockAuditSink) Write(ctx context.Context, record *entity.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockRetryQueue мок для RetryQueue
type MockRetryQueue struct {
	mock.Mock
}

func (m *MockRetryQueue) Push(ctx context.Context, item *entity.PendingNotification) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockRetryQueue) Pop(ctx context.Context) (*entity.PendingNotification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PendingNotification), args.Error(1)
}

func (m *MockRetryQueue) Len(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockMailer мок для Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}
