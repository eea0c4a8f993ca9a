package organizations

import (
	"context"
	"fmt"
	"log"

	"github.com/samber/mo"

	"pmbackend/core"
	"pmbackend/db"
	"pmbackend/models"
)

type OrganizationsService struct {
	organizationsRepo *db.PostgresOrganizationsRepository
}

func NewOrganizationsService(repo *db.PostgresOrganizationsRepository) *OrganizationsService {
	return &OrganizationsService{organizationsRepo: repo}
}

func (s *OrganizationsService) CreateOrganization(ctx context.Context) (*models.Organization, error) {
	log.Printf("📋 Starting to create organization")

	organization := &models.Organization{
		ID: core.NewID("o"),
	}

	if err := s.organizationsRepo.CreateOrganization(ctx, organization); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	log.Printf("📋 Completed successfully - created organization with ID: %s", organization.ID)
	return organization, nil
}

func (s *OrganizationsService) GetOrganizationByID(
	ctx context.Context,
	id string,
) (mo.Option[*models.Organization], error) {
	log.Printf("📋 Starting to get organization by ID: %s", id)
	if !core.IsValidULID(id) {
		return mo.None[*models.Organization](), fmt.Errorf("organization ID must be a valid ULID")
	}

	organization, err := s.organizationsRepo.GetOrganizationByID(ctx, id)
	if err != nil {
		return mo.None[*models.Organization](), fmt.Errorf("failed to get organization by ID: %w", err)
	}

	if organization.IsPresent() {
		log.Printf("📋 Completed successfully - retrieved organization with ID: %s", id)
	} else {
		log.Printf("📋 Completed successfully - organization not found with ID: %s", id)
	}
	return organization, nil
}

func (s *OrganizationsService) GetAllOrganizations(ctx context.Context) ([]*models.Organization, error) {
	log.Printf("📋 Starting to get all organizations")

	organizations, err := s.organizationsRepo.GetAllOrganizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all organizations: %w", err)
	}

	log.Printf("📋 Completed successfully - retrieved %d organizations", len(organizations))
	return organizations, nil
}

// GenerateAgentSecretKey mints a fresh secret for the organization's agents.
// Rotating the key invalidates the previous one immediately.
func (s *OrganizationsService) GenerateAgentSecretKey(ctx context.Context, organizationID string) (string, error) {
	log.Printf("📋 Starting to generate agent secret key for organization: %s", organizationID)
	if !core.IsValidULID(organizationID) {
		return "", fmt.Errorf("organization ID must be a valid ULID")
	}

	secretKey, err := core.NewSecretKey("pma")
	if err != nil {
		return "", fmt.Errorf("failed to generate secret key: %w", err)
	}

	if err := s.organizationsRepo.UpdateAgentSecretKey(ctx, organizationID, secretKey); err != nil {
		return "", fmt.Errorf("failed to update organization with secret key: %w", err)
	}

	log.Printf("📋 Completed successfully - generated agent secret key for organization: %s", organizationID)
	return secretKey, nil
}

func (s *OrganizationsService) GetOrganizationBySecretKey(
	ctx context.Context,
	secretKey string,
) (mo.Option[*models.Organization], error) {
	log.Printf("📋 Starting to get organization by secret key")
	if secretKey == "" {
		return mo.None[*models.Organization](), fmt.Errorf("secret key cannot be empty")
	}

	maybeOrg, err := s.organizationsRepo.GetOrganizationBySecretKey(ctx, secretKey)
	if err != nil {
		return mo.None[*models.Organization](), fmt.Errorf("failed to get organization by secret key: %w", err)
	}

	if maybeOrg.IsPresent() {
		log.Printf("📋 Completed successfully - retrieved organization by secret key")
	} else {
		log.Printf("📋 Completed successfully - organization not found for secret key")
	}
	return maybeOrg, nil
}
