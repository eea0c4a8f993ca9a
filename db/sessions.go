package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	dbtx "pmbackend/db/tx"
	"pmbackend/models"
)

type PostgresSessionsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for sessions table
var sessionsColumns = []string{
	"id",
	"organization_id",
	"computer_id",
	"computer_name",
	"user_name",
	"started_at",
	"current_activity",
	"run_state",
	"paused_at",
	"elapsed_at_pause_ms",
	"created_at",
	"updated_at",
}

// Column names for session_history table
var sessionHistoryColumns = []string{
	"id",
	"organization_id",
	"computer_id",
	"computer_name",
	"user_name",
	"started_at",
	"ended_at",
	"total_duration_minutes",
	"day",
	"created_at",
}

func NewPostgresSessionsRepository(db *sqlx.DB, schema string) *PostgresSessionsRepository {
	return &PostgresSessionsRepository{db: db, schema: schema}
}

// UpsertSession creates a session on first sight and refreshes its activity
// fields on later reports for the same session ID. Timer state (run_state,
// started_at, paused_at, elapsed_at_pause_ms) is owned by UpdateSessionTiming
// and is never overwritten here, so an agent re-announcing a paused session
// does not unfreeze it.
func (r *PostgresSessionsRepository) UpsertSession(
	ctx context.Context,
	session *models.Session,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(sessionsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.sessions (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (organization_id, id)
		DO UPDATE SET
			computer_name = EXCLUDED.computer_name,
			user_name = EXCLUDED.user_name,
			current_activity = EXCLUDED.current_activity,
			updated_at = NOW()
		RETURNING %s`, r.schema, columnsStr, columnsStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		session.ID,
		session.OrganizationID,
		session.ComputerID,
		session.ComputerName,
		session.UserName,
		session.StartedAt,
		session.CurrentActivity,
		session.RunState,
		session.PausedAt,
		session.ElapsedAtPauseMS,
	).StructScan(session)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	return nil
}

func (r *PostgresSessionsRepository) GetSessionByID(
	ctx context.Context,
	organizationID, id string,
) (mo.Option[*models.Session], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(sessionsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.sessions
		WHERE organization_id = $1 AND id = $2`, columnsStr, r.schema)

	session := &models.Session{}
	err := db.QueryRowxContext(ctx, query, organizationID, id).StructScan(session)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return mo.None[*models.Session](), nil
		}
		return mo.None[*models.Session](), fmt.Errorf("failed to get session by ID: %w", err)
	}

	return mo.Some(session), nil
}

func (r *PostgresSessionsRepository) GetSessionsByOrganizationID(
	ctx context.Context,
	organizationID string,
) ([]*models.Session, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(sessionsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.sessions
		WHERE organization_id = $1
		ORDER BY started_at ASC`, columnsStr, r.schema)

	sessions := []*models.Session{}
	err := db.SelectContext(ctx, &sessions, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by organization ID: %w", err)
	}

	return sessions, nil
}

func (r *PostgresSessionsRepository) GetSessionsByComputerID(
	ctx context.Context,
	organizationID, computerID string,
) ([]*models.Session, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(sessionsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.sessions
		WHERE organization_id = $1 AND computer_id = $2
		ORDER BY started_at ASC`, columnsStr, r.schema)

	sessions := []*models.Session{}
	err := db.SelectContext(ctx, &sessions, query, organizationID, computerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by computer ID: %w", err)
	}

	return sessions, nil
}

// UpdateSessionTiming persists the full timing state of a session in one
// statement. Pause writes paused_at and elapsed_at_pause_ms together; resume
// rewrites started_at and clears both. Writing them as a unit keeps the row
// from ever holding a half-paused state.
func (r *PostgresSessionsRepository) UpdateSessionTiming(
	ctx context.Context,
	session *models.Session,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.sessions
		SET started_at = $1,
		    run_state = $2,
		    paused_at = $3,
		    elapsed_at_pause_ms = $4,
		    updated_at = NOW()
		WHERE organization_id = $5 AND id = $6`, r.schema)

	result, err := db.ExecContext(
		ctx,
		query,
		session.StartedAt,
		session.RunState,
		session.PausedAt,
		session.ElapsedAtPauseMS,
		session.OrganizationID,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session timing: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session with id %s not found", session.ID)
	}

	return nil
}

func (r *PostgresSessionsRepository) DeleteSession(
	ctx context.Context,
	organizationID, id string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(
		"DELETE FROM %s.sessions WHERE organization_id = $1 AND id = $2",
		r.schema,
	)

	result, err := db.ExecContext(ctx, query, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session with id %s not found", id)
	}

	return nil
}

func (r *PostgresSessionsRepository) CreateHistorySession(
	ctx context.Context,
	history *models.HistorySession,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(sessionHistoryColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.session_history (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING %s`, r.schema, columnsStr, columnsStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		history.ID,
		history.OrganizationID,
		history.ComputerID,
		history.ComputerName,
		history.UserName,
		history.StartedAt,
		history.EndedAt,
		history.TotalDurationMinutes,
		history.Day,
	).StructScan(history)
	if err != nil {
		return fmt.Errorf("failed to create history session: %w", err)
	}

	return nil
}

func (r *PostgresSessionsRepository) GetHistoryByOrganizationID(
	ctx context.Context,
	organizationID string,
	limit int,
) ([]*models.HistorySession, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(sessionHistoryColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.session_history
		WHERE organization_id = $1
		ORDER BY ended_at DESC
		LIMIT $2`, columnsStr, r.schema)

	history := []*models.HistorySession{}
	err := db.SelectContext(ctx, &history, query, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get session history by organization ID: %w", err)
	}

	return history, nil
}

func (r *PostgresSessionsRepository) GetHistoryByDay(
	ctx context.Context,
	organizationID, day string,
) ([]*models.HistorySession, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(sessionHistoryColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.session_history
		WHERE organization_id = $1 AND day = $2
		ORDER BY ended_at DESC`, columnsStr, r.schema)

	history := []*models.HistorySession{}
	err := db.SelectContext(ctx, &history, query, organizationID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get session history by day: %w", err)
	}

	return history, nil
}

func (r *PostgresSessionsRepository) CountHistoryByDay(
	ctx context.Context,
	organizationID, day string,
) (int, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s.session_history
		WHERE organization_id = $1 AND day = $2`, r.schema)

	var count int
	err := db.GetContext(ctx, &count, query, organizationID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to count session history by day: %w", err)
	}

	return count, nil
}

// DeleteHistoryOlderThan prunes history rows whose ended_at is before the
// cutoff.
func (r *PostgresSessionsRepository) DeleteHistoryOlderThan(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf("DELETE FROM %s.session_history WHERE ended_at < $1", r.schema)

	result, err := db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old history sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
