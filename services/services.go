package services

import (
	"context"
	"time"

	"github.com/samber/mo"

	"pmbackend/models"
)

// UsersService defines the interface for user-related operations
type UsersService interface {
	GetOrCreateUser(ctx context.Context, authProvider, authProviderID, email string) (*models.User, error)
}

// OrganizationsService defines the interface for organization-related operations
type OrganizationsService interface {
	CreateOrganization(ctx context.Context) (*models.Organization, error)
	GetOrganizationByID(ctx context.Context, id string) (mo.Option[*models.Organization], error)
	GetAllOrganizations(ctx context.Context) ([]*models.Organization, error)
	GenerateAgentSecretKey(ctx context.Context, organizationID string) (string, error)
	GetOrganizationBySecretKey(ctx context.Context, secretKey string) (mo.Option[*models.Organization], error)
}

// ComputersService defines the interface for computer-related operations
type ComputersService interface {
	UpsertComputer(
		ctx context.Context,
		organizationID, computerID, name, ipAddress string,
		status models.ComputerStatus,
		lastSeenAt time.Time,
	) (*models.Computer, error)
	GetComputerByID(ctx context.Context, organizationID, id string) (mo.Option[*models.Computer], error)
	GetComputersByOrganizationID(ctx context.Context, organizationID string) ([]*models.Computer, error)
	UpdateComputerStatus(ctx context.Context, organizationID, id string, status models.ComputerStatus) error
	TouchComputer(ctx context.Context, organizationID, id string, lastSeenAt time.Time) error
	MarkStaleComputersOffline(ctx context.Context, olderThan time.Duration) (int64, error)
	DeleteComputer(ctx context.Context, organizationID, id string) error
}

// SessionsService defines the interface for session-related operations
type SessionsService interface {
	UpsertSession(ctx context.Context, session *models.Session) (*models.Session, error)
	GetSessionByID(ctx context.Context, organizationID, id string) (mo.Option[*models.Session], error)
	GetSessionsByOrganizationID(ctx context.Context, organizationID string) ([]*models.Session, error)
	GetSessionsByComputerID(ctx context.Context, organizationID, computerID string) ([]*models.Session, error)
	PauseSession(ctx context.Context, organizationID, id string, at time.Time) (*models.Session, error)
	ResumeSession(ctx context.Context, organizationID, id string, at time.Time) (*models.Session, error)
	EndSession(ctx context.Context, organizationID, id string, endedAt time.Time) (*models.HistorySession, error)
	GetHistoryByOrganizationID(ctx context.Context, organizationID string, limit int) ([]*models.HistorySession, error)
	GetHistoryByDay(ctx context.Context, organizationID, day string) ([]*models.HistorySession, error)
	CountHistoryByDay(ctx context.Context, organizationID, day string) (int, error)
}

// NotificationsService defines the interface for notification-related operations
type NotificationsService interface {
	CreateNotification(
		ctx context.Context,
		organizationID string,
		notificationType models.NotificationType,
		message string,
		computerID *string,
	) (*models.Notification, error)
	GetNotificationsByOrganizationID(
		ctx context.Context,
		organizationID string,
		limit int,
	) ([]*models.Notification, error)
	CountUnacknowledged(ctx context.Context, organizationID string) (int, error)
	AcknowledgeNotification(ctx context.Context, organizationID, id string) error
	MarkAllRead(ctx context.Context, organizationID string) (int64, error)
}

// CommandsService defines the interface for the agent command queue
type CommandsService interface {
	EnqueueCommand(
		ctx context.Context,
		organizationID, computerID string,
		commandType models.CommandType,
	) (*models.Command, error)
	GetPendingCommandsByComputerID(ctx context.Context, organizationID, computerID string) ([]*models.Command, error)
	ConsumeCommand(ctx context.Context, organizationID, id string) error
	ClearCommandsForComputer(ctx context.Context, organizationID, computerID string) (int64, error)
}

// SettingsService defines the interface for typed settings operations
type SettingsService interface {
	UpsertBooleanSetting(ctx context.Context, organizationID, scopeID, key string, value bool) error
	UpsertStringSetting(ctx context.Context, organizationID, scopeID, key string, value string) error
	UpsertStringArraySetting(ctx context.Context, organizationID, scopeID, key string, value []string) error
	GetBooleanSetting(ctx context.Context, organizationID, scopeID, key string) (mo.Option[bool], error)
	GetStringSetting(ctx context.Context, organizationID, scopeID, key string) (mo.Option[string], error)
	GetStringArraySetting(ctx context.Context, organizationID, scopeID, key string) (mo.Option[[]string], error)
}

// TransactionManager handles database transactions via context
type TransactionManager interface {
	// Execute function within a transaction (recommended approach)
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Manual transaction control (for complex scenarios)
	BeginTransaction(ctx context.Context) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
}
