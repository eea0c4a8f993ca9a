package notifications

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pmbackend/models"
)

// MockNotificationsService is a mock implementation of the NotificationsService interface
type MockNotificationsService struct {
	mock.Mock
}

func (m *MockNotificationsService) CreateNotification(
	ctx context.Context,
	organizationID string,
	notificationType models.NotificationType,
	message string,
	computerID *string,
) (*models.Notification, error) {
	args := m.Called(ctx, organizationID, notificationType, message, computerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationsService) GetNotificationsByOrganizationID(
	ctx context.Context,
	organizationID string,
	limit int,
) ([]*models.Notification, error) {
	args := m.Called(ctx, organizationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationsService) CountUnacknowledged(
	ctx context.Context,
	organizationID string,
) (int, error) {
	args := m.Called(ctx, organizationID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationsService) AcknowledgeNotification(
	ctx context.Context,
	organizationID, id string,
) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockNotificationsService) MarkAllRead(
	ctx context.Context,
	organizationID string,
) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}
