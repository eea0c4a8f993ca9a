package sessions

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/samber/mo"

	"pmbackend/core"
	"pmbackend/db"
	"pmbackend/liveness"
	"pmbackend/models"
	"pmbackend/services"
)

type SessionsService struct {
	sessionsRepo *db.PostgresSessionsRepository
	txManager    services.TransactionManager
}

func NewSessionsService(
	repo *db.PostgresSessionsRepository,
	txManager services.TransactionManager,
) *SessionsService {
	return &SessionsService{sessionsRepo: repo, txManager: txManager}
}

func (s *SessionsService) UpsertSession(
	ctx context.Context,
	session *models.Session,
) (*models.Session, error) {
	log.Printf("📋 Starting to upsert session: %s for organization: %s", session.ID, session.OrganizationID)
	if !core.IsValidULID(session.OrganizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}
	if session.ID == "" {
		return nil, fmt.Errorf("session ID cannot be empty")
	}
	if session.ComputerID == "" {
		return nil, fmt.Errorf("computer ID cannot be empty")
	}

	if session.RunState == "" {
		session.RunState = models.SessionRunStateActive
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	if err := s.sessionsRepo.UpsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to upsert session: %w", err)
	}

	log.Printf("📋 Completed successfully - upserted session with ID: %s", session.ID)
	return session, nil
}

func (s *SessionsService) GetSessionByID(
	ctx context.Context,
	organizationID, id string,
) (mo.Option[*models.Session], error) {
	log.Printf("📋 Starting to get session by ID: %s", id)
	if !core.IsValidULID(organizationID) {
		return mo.None[*models.Session](), fmt.Errorf("organization ID must be a valid ULID")
	}
	if id == "" {
		return mo.None[*models.Session](), fmt.Errorf("session ID cannot be empty")
	}

	session, err := s.sessionsRepo.GetSessionByID(ctx, organizationID, id)
	if err != nil {
		return mo.None[*models.Session](), fmt.Errorf("failed to get session by ID: %w", err)
	}

	if session.IsPresent() {
		log.Printf("📋 Completed successfully - retrieved session with ID: %s", id)
	} else {
		log.Printf("📋 Completed successfully - session not found with ID: %s", id)
	}
	return session, nil
}

func (s *SessionsService) GetSessionsByOrganizationID(
	ctx context.Context,
	organizationID string,
) ([]*models.Session, error) {
	log.Printf("📋 Starting to get sessions for organization: %s", organizationID)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}

	sessions, err := s.sessionsRepo.GetSessionsByOrganizationID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by organization ID: %w", err)
	}

	log.Printf("📋 Completed successfully - retrieved %d sessions", len(sessions))
	return sessions, nil
}

func (s *SessionsService) GetSessionsByComputerID(
	ctx context.Context,
	organizationID, computerID string,
) ([]*models.Session, error) {
	log.Printf("📋 Starting to get sessions for computer: %s", computerID)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}
	if computerID == "" {
		return nil, fmt.Errorf("computer ID cannot be empty")
	}

	sessions, err := s.sessionsRepo.GetSessionsByComputerID(ctx, organizationID, computerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions by computer ID: %w", err)
	}

	log.Printf("📋 Completed successfully - retrieved %d sessions for computer %s", len(sessions), computerID)
	return sessions, nil
}

// PauseSession freezes a session's clock. Pausing an already-paused session
// is a no-op and returns the stored state unchanged.
func (s *SessionsService) PauseSession(
	ctx context.Context,
	organizationID, id string,
	at time.Time,
) (*models.Session, error) {
	log.Printf("📋 Starting to pause session: %s", id)

	maybeSession, err := s.GetSessionByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	session, ok := maybeSession.Get()
	if !ok {
		return nil, fmt.Errorf("failed to pause session: %w", core.ErrNotFound)
	}

	if session.RunState == models.SessionRunStatePaused {
		log.Printf("📋 Completed successfully - session %s already paused", id)
		return session, nil
	}

	paused := liveness.Pause(*session, at)
	if err := s.sessionsRepo.UpdateSessionTiming(ctx, &paused); err != nil {
		return nil, fmt.Errorf("failed to pause session: %w", err)
	}

	log.Printf("📋 Completed successfully - paused session with ID: %s", id)
	return &paused, nil
}

// ResumeSession restarts a paused session's clock. StartedAt is rewritten to
// now minus the elapsed time accumulated before the pause, so elapsed time
// keeps flowing from where it stopped.
func (s *SessionsService) ResumeSession(
	ctx context.Context,
	organizationID, id string,
	at time.Time,
) (*models.Session, error) {
	log.Printf("📋 Starting to resume session: %s", id)

	maybeSession, err := s.GetSessionByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	session, ok := maybeSession.Get()
	if !ok {
		return nil, fmt.Errorf("failed to resume session: %w", core.ErrNotFound)
	}

	resumed, err := liveness.Resume(*session, at)
	if err != nil {
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}

	if err := s.sessionsRepo.UpdateSessionTiming(ctx, &resumed); err != nil {
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}

	log.Printf("📋 Completed successfully - resumed session with ID: %s", id)
	return &resumed, nil
}

// EndSession moves a session into history. The history row and the live row
// deletion commit together, so a session is never counted twice or lost.
func (s *SessionsService) EndSession(
	ctx context.Context,
	organizationID, id string,
	endedAt time.Time,
) (*models.HistorySession, error) {
	log.Printf("📋 Starting to end session: %s", id)

	var history *models.HistorySession
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		maybeSession, err := s.GetSessionByID(txCtx, organizationID, id)
		if err != nil {
			return err
		}
		session, ok := maybeSession.Get()
		if !ok {
			return fmt.Errorf("failed to end session: %w", core.ErrNotFound)
		}

		elapsed := liveness.SessionElapsed(*session, endedAt)
		history = &models.HistorySession{
			ID:                   core.NewID("h"),
			OrganizationID:       session.OrganizationID,
			ComputerID:           session.ComputerID,
			ComputerName:         session.ComputerName,
			UserName:             session.UserName,
			StartedAt:            session.StartedAt,
			EndedAt:              endedAt,
			TotalDurationMinutes: int(elapsed / time.Minute),
			Day:                  liveness.DayOf(endedAt),
		}

		if err := s.sessionsRepo.CreateHistorySession(txCtx, history); err != nil {
			return fmt.Errorf("failed to create history session: %w", err)
		}
		if err := s.sessionsRepo.DeleteSession(txCtx, organizationID, id); err != nil {
			return fmt.Errorf("failed to delete ended session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📋 Completed successfully - ended session %s (%d minutes)", id, history.TotalDurationMinutes)
	return history, nil
}

func (s *SessionsService) GetHistoryByOrganizationID(
	ctx context.Context,
	organizationID string,
	limit int,
) ([]*models.HistorySession, error) {
	log.Printf("📋 Starting to get session history for organization: %s", organizationID)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	history, err := s.sessionsRepo.GetHistoryByOrganizationID(ctx, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get session history by organization ID: %w", err)
	}

	log.Printf("📋 Completed successfully - retrieved %d history sessions", len(history))
	return history, nil
}

func (s *SessionsService) GetHistoryByDay(
	ctx context.Context,
	organizationID, day string,
) ([]*models.HistorySession, error) {
	log.Printf("📋 Starting to get session history for day: %s", day)
	if !core.IsValidULID(organizationID) {
		return nil, fmt.Errorf("organization ID must be a valid ULID")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return nil, fmt.Errorf("day must be formatted as YYYY-MM-DD: %w", err)
	}

	history, err := s.sessionsRepo.GetHistoryByDay(ctx, organizationID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get session history by day: %w", err)
	}

	log.Printf("📋 Completed successfully - retrieved %d history sessions for day %s", len(history), day)
	return history, nil
}

func (s *SessionsService) CountHistoryByDay(
	ctx context.Context,
	organizationID, day string,
) (int, error) {
	log.Printf("📋 Starting to count session history for day: %s", day)
	if !core.IsValidULID(organizationID) {
		return 0, fmt.Errorf("organization ID must be a valid ULID")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return 0, fmt.Errorf("day must be formatted as YYYY-MM-DD: %w", err)
	}

	count, err := s.sessionsRepo.CountHistoryByDay(ctx, organizationID, day)
	if err != nil {
		return 0, fmt.Errorf("failed to count session history by day: %w", err)
	}

	log.Printf("📋 Completed successfully - counted %d history sessions for day %s", count, day)
	return count, nil
}
