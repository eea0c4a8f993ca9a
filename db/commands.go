package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	dbtx "pmbackend/db/tx"
	"pmbackend/models"
)

type PostgresCommandsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for commands table
var commandsColumns = []string{
	"id",
	"organization_id",
	"computer_id",
	"type",
	"issued_at",
}

func NewPostgresCommandsRepository(db *sqlx.DB, schema string) *PostgresCommandsRepository {
	return &PostgresCommandsRepository{db: db, schema: schema}
}

func (r *PostgresCommandsRepository) CreateCommand(
	ctx context.Context,
	command *models.Command,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(commandsColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.commands (%s)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING %s`, r.schema, columnsStr, columnsStr)

	err := db.QueryRowxContext(
		ctx,
		query,
		command.ID,
		command.OrganizationID,
		command.ComputerID,
		command.Type,
	).StructScan(command)
	if err != nil {
		return fmt.Errorf("failed to create command: %w", err)
	}

	return nil
}

func (r *PostgresCommandsRepository) GetPendingCommandsByComputerID(
	ctx context.Context,
	organizationID, computerID string,
) ([]*models.Command, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	columnsStr := strings.Join(commandsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.commands
		WHERE organization_id = $1 AND computer_id = $2
		ORDER BY issued_at ASC`, columnsStr, r.schema)

	commands := []*models.Command{}
	err := db.SelectContext(ctx, &commands, query, organizationID, computerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending commands by computer ID: %w", err)
	}

	return commands, nil
}

func (r *PostgresCommandsRepository) DeleteCommand(
	ctx context.Context,
	organizationID, id string,
) error {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(
		"DELETE FROM %s.commands WHERE organization_id = $1 AND id = $2",
		r.schema,
	)

	result, err := db.ExecContext(ctx, query, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to delete command: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("command with id %s not found", id)
	}

	return nil
}

// DeleteCommandsByComputerID clears the pending queue for a computer, used
// when the computer is deregistered.
func (r *PostgresCommandsRepository) DeleteCommandsByComputerID(
	ctx context.Context,
	organizationID, computerID string,
) (int64, error) {
	db := dbtx.GetTransactional(ctx, r.db)

	query := fmt.Sprintf(
		"DELETE FROM %s.commands WHERE organization_id = $1 AND computer_id = $2",
		r.schema,
	)

	result, err := db.ExecContext(ctx, query, organizationID, computerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete commands by computer ID: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
