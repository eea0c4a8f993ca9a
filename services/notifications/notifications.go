package notifications

import (
	"context"
	"fmt"
	"log"

	"pmbackend/core"
	"pmbackend/db"
	"pmbackend/models"
)

type NotificationsService struct {
	notificationsRepo *db.PostgresNotificationsRepository
}

func NewNotificationsService(repo *db.PostgresNotificationsRepository) *NotificationsService {
	return &NotificationsService{notificationsRepo: repo}
}

func (s *NotificationsService) CreateNotification(
	ctx context.Context,
	organizationID string,
	notificationType models.NotificationType,
	message string,
	computerID *string,
) (*models.Notification, error) {
	log.Printf("📋 Starting to create notification of type: %s", notificationType)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}
	if message == "" {
		return nil, fmt.Errorf("notification message cannot be empty")
	}

	notification := &models.Notification{
		ID:             core.NewID("n"),
		OrganizationID: organizationID,
		Type:           notificationType,
		Message:        message,
		ComputerID:     computerID,
	}

	if err := s.notificationsRepo.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	log.Printf("📋 Completed successfully - created notification with ID: %s", notification.ID)
	return notification, nil
}

func (s *NotificationsService) GetNotificationsByOrganizationID(
	ctx context.Context,
	organizationID string,
	limit int,
) ([]*models.Notification, error) {
	log.Printf("📋 Starting to get notifications for organization: %s", organizationID)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	notifications, err := s.notificationsRepo.GetNotificationsByOrganizationID(ctx, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications by organization ID: %w", err)
	}

	log.Printf("📋 Completed successfully - retrieved %d notifications", len(notifications))
	return notifications, nil
}

func (s *NotificationsService) CountUnacknowledged(
	ctx context.Context,
	organizationID string,
) (int, error) {
	log.Printf("📋 Starting to count unacknowledged notifications for organization: %s", organizationID)
	if !core.IsValidULID(organizationID) {
		return 0, fmt.Errorf("organization ID must be a valid ULID")
	}

	count, err := s.notificationsRepo.CountUnacknowledged(ctx, organizationID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unacknowledged notifications: %w", err)
	}

	log.Printf("📋 Completed successfully - counted %d unacknowledged notifications", count)
	return count, nil
}

func (s *NotificationsService) AcknowledgeNotification(
	ctx context.Context,
	organizationID, id string,
) error {
	log.Printf("📋 Starting to acknowledge notification: %s", id)
	if !core.IsValidULID(organizationID) {
		return fmt.Errorf("organization ID must be a valid ULID")
	}
	if !core.IsValidULID(id) {
		return fmt.Errorf("notification ID must be a valid ULID")
	}

	if err := s.notificationsRepo.AcknowledgeNotification(ctx, organizationID, id); err != nil {
		return fmt.Errorf("failed to acknowledge notification: %w", err)
	}

	log.Printf("📋 Completed successfully - acknowledged notification with ID: %s", id)
	return nil
}

func (s *NotificationsService) MarkAllRead(
	ctx context.Context,
	organizationID string,
) (int64, error) {
	log.Printf("📋 Starting to mark all notifications read for organization: %s", organizationID)
	if !core.IsValidULID(organizationID) {
		return 0, fmt.Errorf("organization ID must be a valid ULID")
	}

	marked, err := s.notificationsRepo.MarkAllRead(ctx, organizationID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	log.Printf("📋 Completed successfully - marked %d notifications read", marked)
	return marked, nil
}
