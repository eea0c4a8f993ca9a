package commands

import (
	"context"
	"fmt"
	"log"

	"pmbackend/core"
	"pmbackend/db"
	"pmbackend/models"
)

type CommandsService struct {
	commandsRepo *db.PostgresCommandsRepository
}

func NewCommandsService(repo *db.PostgresCommandsRepository) *CommandsService {
	return &CommandsService{commandsRepo: repo}
}

// EnqueueCommand appends a command to a computer's pending queue. The queue
// row is the authoritative record of the requested state change; socket
// delivery to the agent is best-effort on top of it.
func (s *CommandsService) EnqueueCommand(
	ctx context.Context,
	organizationID, computerID string,
	commandType models.CommandType,
) (*models.Command, error) {
	log.Printf("📋 Starting to enqueue command %s for computer: %s", commandType, computerID)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}
	if computerID == "" {
		return nil, fmt.Errorf("computer ID cannot be empty")
	}

	switch commandType {
	case models.CommandTypeStartMonitoring, models.CommandTypeStopMonitoring:
	default:
		return nil, fmt.Errorf("unsupported command type: %s", commandType)
	}

	command := &models.Command{
		ID:             core.NewID("cmd"),
		OrganizationID: organizationID,
		ComputerID:     computerID,
		Type:           commandType,
	}

	if err := s.commandsRepo.CreateCommand(ctx, command); err != nil {
		return nil, fmt.Errorf("failed to enqueue command: %w", err)
	}

	log.Printf("📋 Completed successfully - enqueued command with ID: %s", command.ID)
	return command, nil
}

func (s *CommandsService) GetPendingCommandsByComputerID(
	ctx context.Context,
	organizationID, computerID string,
) ([]*models.Command, error) {
	log.Printf("📋 Starting to get pending commands for computer: %s", computerID)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}
	if computerID == "" {
		return nil, fmt.Errorf("computer ID cannot be empty")
	}

	commands, err := s.commandsRepo.GetPendingCommandsByComputerID(ctx, organizationID, computerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending commands: %w", err)
	}

	log.Printf("📋 Completed successfully - retrieved %d pending commands", len(commands))
	return commands, nil
}

func (s *CommandsService) ConsumeCommand(ctx context.Context, organizationID, id string) error {
	log.Printf("📋 Starting to consume command: %s", id)
	if !core.IsValidULID(organizationID) {
		return fmt.Errorf("organization ID must be a valid ULID")
	}
	if !core.IsValidULID(id) {
		return fmt.Errorf("command ID must be a valid ULID")
	}

	if err := s.commandsRepo.DeleteCommand(ctx, organizationID, id); err != nil {
		return fmt.Errorf("failed to consume command: %w", err)
	}

	log.Printf("📋 Completed successfully - consumed command with ID: %s", id)
	return nil
}

func (s *CommandsService) ClearCommandsForComputer(
	ctx context.Context,
	organizationID, computerID string,
) (int64, error) {
	log.Printf("📋 Starting to clear commands for computer: %s", computerID)
	if !core.IsValidULID(organizationID) {
		return 0, fmt.Errorf("organization ID must be a valid ULID")
	}
	if computerID == "" {
		return 0, fmt.Errorf("computer ID cannot be empty")
	}

	cleared, err := s.commandsRepo.DeleteCommandsByComputerID(ctx, organizationID, computerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear commands for computer: %w", err)
	}

	log.Printf("📋 Completed successfully - cleared %d commands for computer %s", cleared, computerID)
	return cleared, nil
}
