package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmbackend/core"
	"pmbackend/db"
	"pmbackend/models"
	"pmbackend/services/txmanager"
	"pmbackend/testutils"
)

func setupSessionsServiceTest(t *testing.T) (*SessionsService, *models.Organization, func()) {
	cfg, err := testutils.LoadTestConfig()
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}

	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	require.NoError(t, err, "Failed to create database connection")

	sessionsRepo := db.NewPostgresSessionsRepository(dbConn, cfg.DatabaseSchema)
	organizationsRepo := db.NewPostgresOrganizationsRepository(dbConn, cfg.DatabaseSchema)
	txManager := txmanager.NewTransactionManager(dbConn)

	service := NewSessionsService(sessionsRepo, txManager)
	testOrganization := testutils.CreateTestOrganization(t, organizationsRepo)

	cleanup := func() {
		dbConn.Close()
	}

	return service, testOrganization, cleanup
}

func newServiceTestSession(organizationID string) *models.Session {
	return &models.Session{
		ID:              core.NewID("s"),
		OrganizationID:  organizationID,
		ComputerID:      core.NewID("c"),
		ComputerName:    "SVC-TEST - tester",
		UserName:        "tester",
		StartedAt:       time.Now().UTC().Add(-30 * time.Minute),
		CurrentActivity: "editor",
		RunState:        models.SessionRunStateActive,
	}
}

func TestSessionsService_PauseResumeLifecycle(t *testing.T) {
	service, testOrganization, cleanup := setupSessionsServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	session := newServiceTestSession(testOrganization.ID)
	created, err := service.UpsertSession(ctx, session)
	require.NoError(t, err)
	defer func() {
		_ = service.sessionsRepo.DeleteSession(ctx, testOrganization.ID, created.ID)
	}()

	t.Run("PauseFreezesElapsed", func(t *testing.T) {
		pausedAt := time.Now().UTC()
		paused, err := service.PauseSession(ctx, testOrganization.ID, created.ID, pausedAt)
		require.NoError(t, err)

		assert.Equal(t, models.SessionRunStatePaused, paused.RunState)
		require.NotNil(t, paused.PausedAt)
		require.NotNil(t, paused.ElapsedAtPauseMS)
		assert.InDelta(t, (30 * time.Minute).Milliseconds(), *paused.ElapsedAtPauseMS, float64(5*time.Second.Milliseconds()))

		// The paused state must be readable back, not just returned.
		maybeStored, err := service.GetSessionByID(ctx, testOrganization.ID, created.ID)
		require.NoError(t, err)
		stored, ok := maybeStored.Get()
		require.True(t, ok)
		assert.Equal(t, models.SessionRunStatePaused, stored.RunState)
		require.NotNil(t, stored.ElapsedAtPauseMS)
		assert.Equal(t, *paused.ElapsedAtPauseMS, *stored.ElapsedAtPauseMS)
	})

	t.Run("PauseAgainIsNoOp", func(t *testing.T) {
		pausedAgain, err := service.PauseSession(ctx, testOrganization.ID, created.ID, time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, models.SessionRunStatePaused, pausedAgain.RunState)
		assert.InDelta(t, (30 * time.Minute).Milliseconds(), *pausedAgain.ElapsedAtPauseMS, float64(5*time.Second.Milliseconds()))
	})

	t.Run("ResumeRewritesStartedAt", func(t *testing.T) {
		resumeAt := time.Now().UTC().Add(2 * time.Hour)
		resumed, err := service.ResumeSession(ctx, testOrganization.ID, created.ID, resumeAt)
		require.NoError(t, err)

		assert.Equal(t, models.SessionRunStateActive, resumed.RunState)
		assert.Nil(t, resumed.PausedAt)
		assert.Nil(t, resumed.ElapsedAtPauseMS)
		// StartedAt lands 30 minutes before the resume instant, so the
		// elapsed clock keeps flowing from where pause stopped it.
		assert.InDelta(t, float64(resumeAt.Add(-30*time.Minute).Unix()), float64(resumed.StartedAt.Unix()), 5)
	})

	t.Run("ResumeActiveSessionFails", func(t *testing.T) {
		_, err := service.ResumeSession(ctx, testOrganization.ID, created.ID, time.Now().UTC())
		require.Error(t, err)
	})
}

func TestSessionsService_UpsertPreservesPauseState(t *testing.T) {
	service, testOrganization, cleanup := setupSessionsServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	session := newServiceTestSession(testOrganization.ID)
	created, err := service.UpsertSession(ctx, session)
	require.NoError(t, err)
	defer func() {
		_ = service.sessionsRepo.DeleteSession(ctx, testOrganization.ID, created.ID)
	}()

	pausedAt := time.Now().UTC()
	paused, err := service.PauseSession(ctx, testOrganization.ID, created.ID, pausedAt)
	require.NoError(t, err)
	require.NotNil(t, paused.ElapsedAtPauseMS)
	frozenElapsedMS := *paused.ElapsedAtPauseMS

	// An agent restart re-announces the session as active with no pause
	// markers. The upsert refreshes activity fields but must not unfreeze
	// the timer.
	reannounced := &models.Session{
		ID:              created.ID,
		OrganizationID:  created.OrganizationID,
		ComputerID:      created.ComputerID,
		ComputerName:    created.ComputerName,
		UserName:        created.UserName,
		StartedAt:       created.StartedAt,
		CurrentActivity: "browser",
		RunState:        models.SessionRunStateActive,
	}
	stored, err := service.UpsertSession(ctx, reannounced)
	require.NoError(t, err)

	assert.Equal(t, models.SessionRunStatePaused, stored.RunState)
	require.NotNil(t, stored.PausedAt)
	require.NotNil(t, stored.ElapsedAtPauseMS)
	assert.Equal(t, frozenElapsedMS, *stored.ElapsedAtPauseMS)
	assert.Equal(t, "browser", stored.CurrentActivity)

	// No active-with-stale-pause-markers state: resume still works and
	// clears both fields together.
	resumed, err := service.ResumeSession(ctx, testOrganization.ID, created.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, models.SessionRunStateActive, resumed.RunState)
	assert.Nil(t, resumed.PausedAt)
	assert.Nil(t, resumed.ElapsedAtPauseMS)
}

func TestSessionsService_EndSession(t *testing.T) {
	service, testOrganization, cleanup := setupSessionsServiceTest(t)
	defer cleanup()
	ctx := context.Background()

	session := newServiceTestSession(testOrganization.ID)
	created, err := service.UpsertSession(ctx, session)
	require.NoError(t, err)

	endedAt := time.Now().UTC()
	history, err := service.EndSession(ctx, testOrganization.ID, created.ID, endedAt)
	require.NoError(t, err)

	assert.Equal(t, created.ComputerID, history.ComputerID)
	assert.Equal(t, created.UserName, history.UserName)
	assert.Equal(t, 30, history.TotalDurationMinutes)
	assert.Equal(t, endedAt.Format("2006-01-02"), history.Day)

	// Live row is gone once the history row exists.
	maybeSession, err := service.GetSessionByID(ctx, testOrganization.ID, created.ID)
	require.NoError(t, err)
	assert.False(t, maybeSession.IsPresent())

	dayHistory, err := service.GetHistoryByDay(ctx, testOrganization.ID, history.Day)
	require.NoError(t, err)

	found := false
	for _, row := range dayHistory {
		if row.ID == history.ID {
			found = true
		}
	}
	assert.True(t, found, "ended session should appear in that day's history")
}

func TestSessionsService_EndSession_NotFound(t *testing.T) {
	service, testOrganization, cleanup := setupSessionsServiceTest(t)
	defer cleanup()

	_, err := service.EndSession(context.Background(), testOrganization.ID, core.NewID("s"), time.Now().UTC())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
