package computers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/samber/mo"

	"pmbackend/core"
	"pmbackend/db"
	"pmbackend/models"
	"pmbackend/utils"
)

type ComputersService struct {
	computersRepo *db.PostgresComputersRepository
}

func NewComputersService(repo *db.PostgresComputersRepository) *ComputersService {
	return &ComputersService{computersRepo: repo}
}

// UpsertComputer registers or refreshes a computer from an agent status
// report. A report with an unset status keeps whatever the row already held
// by storing the value as-is; status derivation happens at read time.
func (s *ComputersService) UpsertComputer(
	ctx context.Context,
	organizationID, computerID, name, ipAddress string,
	status models.ComputerStatus,
	lastSeenAt time.Time,
) (*models.Computer, error) {
	log.Printf("📋 Starting to upsert computer: %s for organization: %s", computerID, organizationID)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}
	if computerID == "" {
		return nil, fmt.Errorf("computer ID cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("computer name cannot be empty")
	}

	computer := &models.Computer{
		ID:             computerID,
		OrganizationID: organizationID,
		Name:           name,
		IPAddress:      ipAddress,
		ExplicitStatus: status,
		LastSeenAt:     lastSeenAt,
	}

	if err := s.computersRepo.UpsertComputer(ctx, computer); err != nil {
		return nil, fmt.Errorf("failed to upsert computer: %w", err)
	}

	log.Printf("📋 Completed successfully - upserted computer with ID: %s", computer.ID)
	return computer, nil
}

func (s *ComputersService) GetComputerByID(
	ctx context.Context,
	organizationID, id string,
) (mo.Option[*models.Computer], error) {
	log.Printf("📋 Starting to get computer by ID: %s", id)
	if !core.IsValidULID(organizationID) {
		return mo.None[*models.Computer](), fmt.Errorf("organization ID must be a valid ULID")
	}
	if id == "" {
		return mo.None[*models.Computer](), fmt.Errorf("computer ID cannot be empty")
	}

	computer, err := s.computersRepo.GetComputerByID(ctx, organizationID, id)
	if err != nil {
		return mo.None[*models.Computer](), fmt.Errorf("failed to get computer by ID: %w", err)
	}

	if computer.IsPresent() {
		log.Printf("📋 Completed successfully - retrieved computer with ID: %s", id)
	} else {
		log.Printf("📋 Completed successfully - computer not found with ID: %s", id)
	}
	return computer, nil
}

func (s *ComputersService) GetComputersByOrganizationID(
	ctx context.Context,
	organizationID string,
) ([]*models.Computer, error) {
	log.Printf("📋 Starting to get computers for organization: %s", organizationID)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}

	computers, err := s.computersRepo.GetComputersByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get computers by organization ID: %w", err)
	}

	log.Printf("📋 Completed successfully - retrieved %d computers", len(computers))
	return computers, nil
}

func (s *ComputersService) UpdateComputerStatus(
	ctx context.Context,
	organizationID, id string,
	status models.ComputerStatus,
) error {
	log.Printf("📋 Starting to update computer status: %s -> %s", id, status)
	if !core.IsValidULID(organizationID) {
		return fmt.Errorf("organization ID must be a valid ULID")
	}
	if id == "" {
		return fmt.Errorf("computer ID cannot be empty")
	}

	switch status {
	case models.ComputerStatusOnline, models.ComputerStatusOffline, models.ComputerStatusMaintenance:
	default:
		return fmt.Errorf("unsupported computer status: %s", status)
	}

	if err := s.computersRepo.UpdateComputerStatus(ctx, organizationID, id, status); err != nil {
		return fmt.Errorf("failed to update computer status: %w", err)
	}

	log.Printf("📋 Completed successfully - updated computer %s status to %s", id, status)
	return nil
}

// TouchComputer records a heartbeat for an already-registered computer.
// Unknown computers are a no-op failure surfaced to the caller; registration
// happens through status reports, not pings.
func (s *ComputersService) TouchComputer(
	ctx context.Context,
	organizationID, id string,
	lastSeenAt time.Time,
) error {
	log.Printf("📋 Starting to touch computer heartbeat: %s", id)
	if !core.IsValidULID(organizationID) {
		return fmt.Errorf("organization ID must be a valid ULID")
	}
	if id == "" {
		return fmt.Errorf("computer ID cannot be empty")
	}

	if err := s.computersRepo.TouchComputer(ctx, organizationID, id, lastSeenAt); err != nil {
		return fmt.Errorf("failed to touch computer heartbeat: %w", err)
	}

	log.Printf("📋 Completed successfully - touched heartbeat for computer %s", id)
	return nil
}

func (s *ComputersService) MarkStaleComputersOffline(
	ctx context.Context,
	olderThan time.Duration,
) (int64, error) {
	log.Printf("📋 Starting to mark stale computers offline (older than %s)", olderThan)
	utils.AssertInvariant(olderThan > 0, "stale cutoff duration must be positive")

	cutoff := time.Now().UTC().Add(-olderThan)
	marked, err := s.computersRepo.MarkStaleComputersOffline(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale computers offline: %w", err)
	}

	log.Printf("📋 Completed successfully - marked %d stale computers offline", marked)
	return marked, nil
}

func (s *ComputersService) DeleteComputer(ctx context.Context, organizationID, id string) error {
	log.Printf("📋 Starting to delete computer: %s", id)
	if !core.IsValidULID(organizationID) {
		return fmt.Errorf("organization ID must be a valid ULID")
	}
	if id == "" {
		return fmt.Errorf("computer ID cannot be empty")
	}

	if err := s.computersRepo.DeleteComputer(ctx, organizationID, id); err != nil {
		return fmt.Errorf("failed to delete computer: %w", err)
	}

	log.Printf("📋 Completed successfully - deleted computer with ID: %s", id)
	return nil
}
