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

type PostgresComputersRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for computers table
var computersColumns = []string{
	"id",
	"organization_id",
	"name",
	"ip_address",
	"status",
	"last_seen_at",
	"registered_at",
	"created_at",
	"updated_at",
}

func NewPostgresComputersRepository(db *sqlx.DB, schema string) *PostgresComputersRepository {
	return &PostgresComputersRepository{db: db, schema: schema}
}

// UpsertComputer registers a computer on first contact and refreshes its
// heartbeat fields on every subsequent status report.
func (r *PostgresComputersRepository) UpsertComputer(
	ctx context.Context,
	computer *models.Computer,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(computersColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.computers (%s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), NOW())
		ON CONFLICT (organization_id, id)
		DO UPDATE SET
			name = EXCLUDED.name,
			ip_address = EXCLUDED.ip_address,
			status = EXCLUDED.status,
			last_seen_at = EXCLUDED.last_seen_at,
			updated_at = NOW()
		RETURNING %s`, r.schema, columnsStr, columnsStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		computer.ID,
		computer.OrganizationID,
		computer.Name,
		computer.IPAddress,
		computer.ExplicitStatus,
		computer.LastSeenAt,
	).StructScan(computer)
	if err != nil {
		return fmt.Errorf("failed to upsert computer: %w", err)
	}

	return nil
}

func (r *PostgresComputersRepository) GetComputerByID(
	ctx context.Context,
	organizationID, id string,
) (mo.Option[*models.Computer], error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(computersColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.computers
		WHERE organization_id = $1 AND id = $2`, columnsStr, r.schema)

	computer := &models.Computer{}
	err := db.QueryRowxContext(ctx, query, organizationID, id).StructScan(computer)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return mo.None[*models.Computer](), nil
		}
		return mo.None[*models.Computer](), fmt.Errorf("failed to get computer by ID: %w", err)
	}

	return mo.Some(computer), nil
}

func (r *PostgresComputersRepository) GetComputersByOrganizationID(
	ctx context.Context,
	organizationID string,
) ([]*models.Computer, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(computersColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.computers
		WHERE organization_id = $1
		ORDER BY registered_at ASC`, columnsStr, r.schema)

	computers := []*models.Computer{}
	err := db.SelectContext(ctx, &computers, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get computers by organization ID: %w", err)
	}

	return computers, nil
}

func (r *PostgresComputersRepository) UpdateComputerStatus(
	ctx context.Context,
	organizationID, id string,
	status models.ComputerStatus,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.computers
		SET status = $1, updated_at = NOW()
		WHERE organization_id = $2 AND id = $3`, r.schema)

	result, err := db.ExecContext(ctx, query, status, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to update computer status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("computer with id %s not found", id)
	}

	return nil
}

// TouchComputer refreshes a computer's heartbeat timestamp without changing
// anything else.
func (r *PostgresComputersRepository) TouchComputer(
	ctx context.Context,
	organizationID, id string,
	lastSeenAt time.Time,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.computers
		SET last_seen_at = $1, updated_at = NOW()
		WHERE organization_id = $2 AND id = $3`, r.schema)

	result, err := db.ExecContext(ctx, query, lastSeenAt, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to touch computer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("computer with id %s not found", id)
	}

	return nil
}

// MarkStaleComputersOffline flags computers whose heartbeat is older than the
// cutoff with an explicit offline status. Computers in maintenance are left
// alone so the maintenance badge survives a quiet agent.
func (r *PostgresComputersRepository) MarkStaleComputersOffline(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(`
		UPDATE %s.computers
		SET status = 'offline', updated_at = NOW()
		WHERE last_seen_at < $1
		  AND status NOT IN ('offline', 'maintenance')`, r.schema)

	result, err := db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale computers offline: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *PostgresComputersRepository) DeleteComputer(
	ctx context.Context,
	organizationID, id string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(
		"DELETE FROM %s.computers WHERE organization_id = $1 AND id = $2",
		r.schema,
	)

	result, err := db.ExecContext(ctx, query, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to delete computer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("computer with id %s not found", id)
	}

	return nil
}
