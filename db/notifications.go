package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	dbtx "pmbackend/db/tx"
	"pmbackend/models"
)

type PostgresNotificationsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for notifications table
var notificationsColumns = []string{
	"id",
	"organization_id",
	"type",
	"message",
	"computer_id",
	"acknowledged",
	"read",
	"created_at",
	"updated_at",
}

// "read" is a reserved word in postgres, quote it when listing columns.
func notificationsColumnsStr() string {
	quoted := make([]string, len(notificationsColumns))
	for i, col := range notificationsColumns {
		if col == "read" {
			quoted[i] = `"read"`
			continue
		}
		quoted[i] = col
	}
	return strings.Join(quoted, ", ")
}

func NewPostgresNotificationsRepository(db *sqlx.DB, schema string) *PostgresNotificationsRepository {
	return &PostgresNotificationsRepository{db: db, schema: schema}
}

func (r *PostgresNotificationsRepository) CreateNotification(
	ctx context.Context,
	notification *models.Notification,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := notificationsColumnsStr()

	query := fmt.Sprintf(`
		INSERT INTO %s.notifications (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s`, r.schema, columnsStr, columnsStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		notification.ID,
		notification.OrganizationID,
		notification.Type,
		notification.Message,
		notification.ComputerID,
		notification.Acknowledged,
		notification.Read,
	).StructScan(notification)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *PostgresNotificationsRepository) GetNotificationByID(
	ctx context.Context,
	organizationID, id string,
) (mo.Option[*models.Notification], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := notificationsColumnsStr()

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.notifications
		WHERE organization_id = $1 AND id = $2`, columnsStr, r.schema)

	notification := &models.Notification{}
	err := db.QueryRowxContext(ctx, query, organizationID, id).StructScan(notification)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return mo.None[*models.Notification](), nil
		}
		return mo.None[*models.Notification](), fmt.Errorf("failed to get notification by ID: %w", err)
	}

	return mo.Some(notification), nil
}

func (r *PostgresNotificationsRepository) GetNotificationsByOrganizationID(
	ctx context.Context,
	organizationID string,
	limit int,
) ([]*models.Notification, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := notificationsColumnsStr()

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.notifications
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, columnsStr, r.schema)

	notifications := []*models.Notification{}
	err := db.SelectContext(ctx, &notifications, query, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications by organization ID: %w", err)
	}

	return notifications, nil
}

func (r *PostgresNotificationsRepository) CountUnacknowledged(
	ctx context.Context,
	organizationID string,
) (int, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s.notifications
		WHERE organization_id = $1 AND acknowledged = FALSE`, r.schema)

	var count int
	err := db.GetContext(ctx, &count, query, organizationID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unacknowledged notifications: %w", err)
	}

	return count, nil
}

func (r *PostgresNotificationsRepository) AcknowledgeNotification(
	ctx context.Context,
	organizationID, id string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.notifications
		SET acknowledged = TRUE, "read" = TRUE, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2`, r.schema)

	result, err := db.ExecContext(ctx, query, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("notification with id %s not found", id)
	}

	return nil
}

func (r *PostgresNotificationsRepository) MarkAllRead(
	ctx context.Context,
	organizationID string,
) (int64, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.notifications
		SET "read" = TRUE, updated_at = NOW()
		WHERE organization_id = $1 AND "read" = FALSE`, r.schema)

	result, err := db.ExecContext(ctx, query, organizationID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
