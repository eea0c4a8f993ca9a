package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"pmbackend/liveness"
	"pmbackend/models"
	"pmbackend/services"
)

const defaultNotificationsLimit = 200

// DashboardUseCase assembles tenant snapshots and derives the dashboard
// numbers from them through the liveness engine. It never caches counters;
// every request re-evaluates from current state.
type DashboardUseCase struct {
	organizationsService services.OrganizationsService
	computersService     services.ComputersService
	sessionsService      services.SessionsService
	notificationsService services.NotificationsService
	evaluator            liveness.Evaluator
}

func NewDashboardUseCase(
	organizationsService services.OrganizationsService,
	computersService services.ComputersService,
	sessionsService services.SessionsService,
	notificationsService services.NotificationsService,
	evaluator liveness.Evaluator,
) *DashboardUseCase {
	return &DashboardUseCase{
		organizationsService: organizationsService,
		computersService:     computersService,
		sessionsService:      sessionsService,
		notificationsService: notificationsService,
		evaluator:            evaluator,
	}
}

// GetStats computes the dashboard counters for the caller's organization.
// A missing user is an error, never a fall-through to another tenant's data.
func (u *DashboardUseCase) GetStats(ctx context.Context, user *models.User) (liveness.Counters, error) {
	if user == nil {
		return liveness.Counters{}, fmt.Errorf("authenticated user required for dashboard stats")
	}

	now := time.Now().UTC()
	snapshot, err := u.buildSnapshot(ctx, user.OrganizationID, now)
	if err != nil {
		return liveness.Counters{}, err
	}

	counters := u.evaluator.Aggregate(snapshot, liveness.DayOf(now), now)
	log.Printf("📊 Dashboard stats for organization %s: %+v", user.OrganizationID, counters)
	return counters, nil
}

// GetAdminStats folds per-tenant counters across every organization. Each
// tenant goes through the exact same Aggregate as the single-tenant path.
func (u *DashboardUseCase) GetAdminStats(ctx context.Context, user *models.User) (liveness.Counters, error) {
	if user == nil {
		return liveness.Counters{}, fmt.Errorf("authenticated user required for dashboard stats")
	}
	if !user.IsAdmin() {
		return liveness.Counters{}, fmt.Errorf("admin role required for cross-organization stats")
	}

	organizations, err := u.organizationsService.GetAllOrganizations(ctx)
	if err != nil {
		return liveness.Counters{}, fmt.Errorf("failed to list organizations for admin stats: %w", err)
	}

	now := time.Now().UTC()
	today := liveness.DayOf(now)

	var total liveness.Counters
	for _, organization := range organizations {
		snapshot, err := u.buildSnapshot(ctx, organization.ID, now)
		if err != nil {
			return liveness.Counters{}, fmt.Errorf(
				"failed to build snapshot for organization %s: %w", organization.ID, err)
		}
		total = total.Add(u.evaluator.Aggregate(snapshot, today, now))
	}

	log.Printf("📊 Admin dashboard stats across %d organizations: %+v", len(organizations), total)
	return total, nil
}

// GetComputers returns an organization's computers paired with their derived
// liveness status. The stored explicit status is an input to the derivation,
// never the value shown to users.
func (u *DashboardUseCase) GetComputers(
	ctx context.Context,
	user *models.User,
) ([]*models.Computer, map[string]liveness.Status, error) {
	if user == nil {
		return nil, nil, fmt.Errorf("authenticated user required for computer listing")
	}

	computers, err := u.computersService.GetComputersByOrganizationID(ctx, user.OrganizationID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	statusByComputer := make(map[string]liveness.Status, len(computers))
	for _, computer := range computers {
		statusByComputer[computer.ID] = u.evaluator.ComputeStatus(computer.ExplicitStatus, computer.LastSeenAt, now)
	}
	return computers, statusByComputer, nil
}

// GetVisibleSessions returns the sessions the dashboard should show for an
// organization, paired with their live elapsed durations.
func (u *DashboardUseCase) GetVisibleSessions(
	ctx context.Context,
	user *models.User,
) ([]*models.Session, map[string]int64, error) {
	if user == nil {
		return nil, nil, fmt.Errorf("authenticated user required for session listing")
	}

	sessions, err := u.sessionsService.GetSessionsByOrganizationID(ctx, user.OrganizationID)
	if err != nil {
		return nil, nil, err
	}
	computers, err := u.computersService.GetComputersByOrganizationID(ctx, user.OrganizationID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	visible := u.evaluator.VisibleSessions(sessions, computers, now)

	elapsedBySession := make(map[string]int64, len(visible))
	for _, session := range visible {
		elapsedBySession[session.ID] = liveness.SessionElapsed(*session, now).Milliseconds()
	}
	return visible, elapsedBySession, nil
}

func (u *DashboardUseCase) buildSnapshot(
	ctx context.Context,
	organizationID string,
	now time.Time,
) (liveness.TenantSnapshot, error) {
	sessions, err := u.sessionsService.GetSessionsByOrganizationID(ctx, organizationID)
	if err != nil {
		return liveness.TenantSnapshot{}, fmt.Errorf("failed to get sessions for snapshot: %w", err)
	}

	computers, err := u.computersService.GetComputersByOrganizationID(ctx, organizationID)
	if err != nil {
		return liveness.TenantSnapshot{}, fmt.Errorf("failed to get computers for snapshot: %w", err)
	}

	history, err := u.sessionsService.GetHistoryByDay(ctx, organizationID, liveness.DayOf(now))
	if err != nil {
		return liveness.TenantSnapshot{}, fmt.Errorf("failed to get today's history for snapshot: %w", err)
	}

	notifications, err := u.notificationsService.GetNotificationsByOrganizationID(
		ctx, organizationID, defaultNotificationsLimit)
	if err != nil {
		return liveness.TenantSnapshot{}, fmt.Errorf("failed to get notifications for snapshot: %w", err)
	}

	return liveness.TenantSnapshot{
		Sessions:      sessions,
		Computers:     computers,
		History:       history,
		Notifications: notifications,
	}, nil
}
