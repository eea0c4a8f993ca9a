package testutils

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"pmbackend/appctx"
	"pmbackend/config"
	"pmbackend/core"
	"pmbackend/db"
	"pmbackend/models"
)

// LoadTestConfig loads configuration for tests from environment variables
func LoadTestConfig() (*config.AppConfig, error) {
	// Try to load environment variables from various possible locations
	_ = godotenv.Load("../.env.test") // From services/ directory
	_ = godotenv.Load(".env.test")    // From root directory
	_ = godotenv.Load()               // Default .env file

	databaseURL := os.Getenv("DB_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DB_URL is not set")
	}

	databaseSchema := os.Getenv("DB_SCHEMA")
	if databaseSchema == "" {
		return nil, fmt.Errorf("DB_SCHEMA is not set")
	}

	return &config.AppConfig{
		DatabaseURL:    databaseURL,
		DatabaseSchema: databaseSchema,
	}, nil
}

// CreateTestOrganization creates an organization row for integration tests
func CreateTestOrganization(t *testing.T, organizationsRepo *db.PostgresOrganizationsRepository) *models.Organization {
	organization := &models.Organization{ID: core.NewID("o")}
	err := organizationsRepo.CreateOrganization(context.Background(), organization)
	require.NoError(t, err, "Failed to create test organization")
	return organization
}

// CreateTestUser creates a test user with a unique provider ID to avoid
// constraint violations across test runs
func CreateTestUser(
	t *testing.T,
	usersRepo *db.PostgresUsersRepository,
	organizationID string,
) *models.User {
	testProviderID := core.NewID("test")
	testUser, err := usersRepo.CreateUser(
		context.Background(),
		"test",
		testProviderID,
		testProviderID+"@example.com",
		organizationID,
		models.UserRoleMember,
	)
	require.NoError(t, err, "Failed to create test user")
	return testUser
}

// CreateTestSession builds an active session row owned by the organization
func CreateTestSession(
	t *testing.T,
	sessionsRepo *db.PostgresSessionsRepository,
	organizationID, computerID string,
) *models.Session {
	session := &models.Session{
		ID:             core.NewID("s"),
		OrganizationID: organizationID,
		ComputerID:     computerID,
		ComputerName:   "TEST-COMPUTER - tester",
		UserName:       "tester",
		StartedAt:      time.Now().UTC().Add(-time.Hour),
		RunState:       models.SessionRunStateActive,
	}
	err := sessionsRepo.UpsertSession(context.Background(), session)
	require.NoError(t, err, "Failed to create test session")
	return session
}

// CreateTestContext creates a context with the given user set for testing
func CreateTestContext(user *models.User) context.Context {
	ctx := context.Background()
	return appctx.SetUser(ctx, user)
}
