package txmanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmbackend/core"
	"pmbackend/db"
	"pmbackend/models"
	"pmbackend/services"
	"pmbackend/testutils"
)

func setupTransactionTest(
	t *testing.T,
) (services.TransactionManager, *db.PostgresSessionsRepository, *models.Organization, func()) {
	cfg, err := testutils.LoadTestConfig()
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	require.NoError(t, err, "Failed to create database connection")

	// Create transaction manager
	txManager := NewTransactionManager(dbConn)

	// Create repositories
	sessionsRepo := db.NewPostgresSessionsRepository(dbConn, cfg.DatabaseSchema)
	organizationsRepo := db.NewPostgresOrganizationsRepository(dbConn, cfg.DatabaseSchema)

	testOrganization := testutils.CreateTestOrganization(t, organizationsRepo)

	cleanup := func() {
		dbConn.Close()
	}

	return txManager, sessionsRepo, testOrganization, cleanup
}

func newTransactionTestSession(organizationID string) *models.Session {
	return &models.Session{
		ID:             core.NewID("s"),
		OrganizationID: organizationID,
		ComputerID:     core.NewID("c"),
		ComputerName:   "TX-TEST - tester",
		UserName:       "tester",
		StartedAt:      time.Now().UTC(),
		RunState:       models.SessionRunStateActive,
	}
}

func TestTransactionManager_WithTransaction_Success(t *testing.T) {
	txManager, sessionsRepo, testOrganization, cleanup := setupTransactionTest(t)
	defer cleanup()

	ctx := context.Background()
	session := newTransactionTestSession(testOrganization.ID)

	err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return sessionsRepo.UpsertSession(ctx, session)
	})
	require.NoError(t, err)

	// The session should be visible after commit
	maybeSession, err := sessionsRepo.GetSessionByID(ctx, testOrganization.ID, session.ID)
	require.NoError(t, err)
	stored, ok := maybeSession.Get()
	require.True(t, ok, "Session should exist after committed transaction")
	assert.Equal(t, session.ID, stored.ID)

	require.NoError(t, sessionsRepo.DeleteSession(ctx, testOrganization.ID, session.ID))
}

func TestTransactionManager_WithTransaction_Rollback(t *testing.T) {
	txManager, sessionsRepo, testOrganization, cleanup := setupTransactionTest(t)
	defer cleanup()

	ctx := context.Background()
	session := newTransactionTestSession(testOrganization.ID)
	expectedErr := errors.New("intentional failure")

	err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := sessionsRepo.UpsertSession(ctx, session); err != nil {
			return err
		}
		return expectedErr
	})
	require.ErrorIs(t, err, expectedErr)

	// The session should not exist after rollback
	maybeSession, err := sessionsRepo.GetSessionByID(ctx, testOrganization.ID, session.ID)
	require.NoError(t, err)
	assert.False(t, maybeSession.IsPresent(), "Session should not exist after rolled back transaction")
}

func TestTransactionManager_WithTransaction_Nested(t *testing.T) {
	txManager, sessionsRepo, testOrganization, cleanup := setupTransactionTest(t)
	defer cleanup()

	ctx := context.Background()
	outerSession := newTransactionTestSession(testOrganization.ID)
	innerSession := newTransactionTestSession(testOrganization.ID)

	// A nested WithTransaction joins the outer transaction instead of
	// opening a second one
	err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := sessionsRepo.UpsertSession(ctx, outerSession); err != nil {
			return err
		}
		return txManager.WithTransaction(ctx, func(ctx context.Context) error {
			return sessionsRepo.UpsertSession(ctx, innerSession)
		})
	})
	require.NoError(t, err)

	for _, sessionID := range []string{outerSession.ID, innerSession.ID} {
		maybeSession, err := sessionsRepo.GetSessionByID(ctx, testOrganization.ID, sessionID)
		require.NoError(t, err)
		assert.True(t, maybeSession.IsPresent(), "Session should exist after nested commit")
		require.NoError(t, sessionsRepo.DeleteSession(ctx, testOrganization.ID, sessionID))
	}
}
