package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"

	"pmbackend/liveness"
	"pmbackend/models"
	"pmbackend/services"
	"pmbackend/usecases/agents"
	"pmbackend/usecases/dashboard"
)

const (
	defaultHistoryLimit       = 500
	defaultNotificationsLimit = 200
)

type DashboardAPIHandler struct {
	dashboardUseCase     *dashboard.DashboardUseCase
	agentsUseCase        *agents.AgentsUseCase
	organizationsService services.OrganizationsService
	computersService     services.ComputersService
	sessionsService      services.SessionsService
	notificationsService services.NotificationsService
	settingsService      services.SettingsService
}

func NewDashboardAPIHandler(
	dashboardUseCase *dashboard.DashboardUseCase,
	agentsUseCase *agents.AgentsUseCase,
	organizationsService services.OrganizationsService,
	computersService services.ComputersService,
	sessionsService services.SessionsService,
	notificationsService services.NotificationsService,
	settingsService services.SettingsService,
) *DashboardAPIHandler {
	return &DashboardAPIHandler{
		dashboardUseCase:     dashboardUseCase,
		agentsUseCase:        agentsUseCase,
		organizationsService: organizationsService,
		computersService:     computersService,
		sessionsService:      sessionsService,
		notificationsService: notificationsService,
		settingsService:      settingsService,
	}
}

// GetStats returns the dashboard counters for the user's organization
func (h *DashboardAPIHandler) GetStats(ctx context.Context, user *models.User) (liveness.Counters, error) {
	log.Printf("📋 Getting dashboard stats for organization: %s", user.OrganizationID)
	counters, err := h.dashboardUseCase.GetStats(ctx, user)
	if err != nil {
		log.Printf("❌ Failed to get dashboard stats: %v", err)
		return liveness.Counters{}, err
	}

	log.Printf("✅ Dashboard stats retrieved for organization: %s", user.OrganizationID)
	return counters, nil
}

// GetAdminStats returns counters folded across all organizations
func (h *DashboardAPIHandler) GetAdminStats(ctx context.Context, user *models.User) (liveness.Counters, error) {
	log.Printf("📋 Getting admin dashboard stats for user: %s", user.ID)
	counters, err := h.dashboardUseCase.GetAdminStats(ctx, user)
	if err != nil {
		log.Printf("❌ Failed to get admin dashboard stats: %v", err)
		return liveness.Counters{}, err
	}

	log.Printf("✅ Admin dashboard stats retrieved for user: %s", user.ID)
	return counters, nil
}

// ListComputers returns the organization's computers with derived statuses
func (h *DashboardAPIHandler) ListComputers(
	ctx context.Context,
	user *models.User,
) ([]*models.Computer, map[string]liveness.Status, error) {
	log.Printf("📋 Listing computers for organization: %s", user.OrganizationID)
	computers, statuses, err := h.dashboardUseCase.GetComputers(ctx, user)
	if err != nil {
		log.Printf("❌ Failed to list computers: %v", err)
		return nil, nil, err
	}

	log.Printf("✅ Retrieved %d computers for organization: %s", len(computers), user.OrganizationID)
	return computers, statuses, nil
}

// DeleteComputer removes a computer and everything queued for it
func (h *DashboardAPIHandler) DeleteComputer(ctx context.Context, user *models.User, computerID string) error {
	log.Printf("🗑️ Deleting computer %s for organization: %s", computerID, user.OrganizationID)
	if err := h.computersService.DeleteComputer(ctx, user.OrganizationID, computerID); err != nil {
		log.Printf("❌ Failed to delete computer: %v", err)
		return err
	}

	log.Printf("✅ Computer deleted successfully: %s", computerID)
	return nil
}

// ListSessions returns visible sessions with live elapsed durations
func (h *DashboardAPIHandler) ListSessions(
	ctx context.Context,
	user *models.User,
) ([]*models.Session, map[string]int64, error) {
	log.Printf("📋 Listing sessions for organization: %s", user.OrganizationID)
	sessions, elapsed, err := h.dashboardUseCase.GetVisibleSessions(ctx, user)
	if err != nil {
		log.Printf("❌ Failed to list sessions: %v", err)
		return nil, nil, err
	}

	log.Printf("✅ Retrieved %d visible sessions for organization: %s", len(sessions), user.OrganizationID)
	return sessions, elapsed, nil
}

// PauseSession pauses a session and tells the agent to stop monitoring.
// A delivery failure comes back as an advisory alongside the paused session.
func (h *DashboardAPIHandler) PauseSession(
	ctx context.Context,
	user *models.User,
	sessionID string,
) (*models.Session, error) {
	log.Printf("⏸️ Pausing session %s for organization: %s", sessionID, user.OrganizationID)
	session, err := h.agentsUseCase.PauseSessionWithCommand(ctx, user.OrganizationID, sessionID)
	if err != nil && !agents.IsCommandDeliveryError(err) {
		log.Printf("❌ Failed to pause session: %v", err)
		return nil, err
	}

	log.Printf("✅ Session paused: %s", sessionID)
	return session, err
}

// ResumeSession resumes a session and tells the agent to start monitoring
func (h *DashboardAPIHandler) ResumeSession(
	ctx context.Context,
	user *models.User,
	sessionID string,
) (*models.Session, error) {
	log.Printf("▶️ Resuming session %s for organization: %s", sessionID, user.OrganizationID)
	session, err := h.agentsUseCase.ResumeSessionWithCommand(ctx, user.OrganizationID, sessionID)
	if err != nil && !agents.IsCommandDeliveryError(err) {
		log.Printf("❌ Failed to resume session: %v", err)
		return nil, err
	}

	log.Printf("✅ Session resumed: %s", sessionID)
	return session, err
}

// ListSessionHistory returns recently completed sessions
func (h *DashboardAPIHandler) ListSessionHistory(
	ctx context.Context,
	user *models.User,
	day string,
) ([]*models.HistorySession, error) {
	log.Printf("📋 Listing session history for organization: %s", user.OrganizationID)

	if day != "" {
		history, err := h.sessionsService.GetHistoryByDay(ctx, user.OrganizationID, day)
		if err != nil {
			log.Printf("❌ Failed to get session history for day %s: %v", day, err)
			return nil, err
		}
		return history, nil
	}

	history, err := h.sessionsService.GetHistoryByOrganizationID(ctx, user.OrganizationID, defaultHistoryLimit)
	if err != nil {
		log.Printf("❌ Failed to get session history: %v", err)
		return nil, err
	}

	log.Printf("✅ Retrieved %d history sessions for organization: %s", len(history), user.OrganizationID)
	return history, nil
}

// ListNotifications returns recent notifications with the unacknowledged count
func (h *DashboardAPIHandler) ListNotifications(
	ctx context.Context,
	user *models.User,
	limit int,
) ([]*models.Notification, int, error) {
	log.Printf("📋 Listing notifications for organization: %s", user.OrganizationID)

	notifications, err := h.notificationsService.GetNotificationsByOrganizationID(ctx, user.OrganizationID, limit)
	if err != nil {
		log.Printf("❌ Failed to get notifications: %v", err)
		return nil, 0, err
	}

	unacknowledged, err := h.notificationsService.CountUnacknowledged(ctx, user.OrganizationID)
	if err != nil {
		log.Printf("❌ Failed to count unacknowledged notifications: %v", err)
		return nil, 0, err
	}

	log.Printf("✅ Retrieved %d notifications for organization: %s", len(notifications), user.OrganizationID)
	return notifications, unacknowledged, nil
}

// AcknowledgeNotification acknowledges a single notification
func (h *DashboardAPIHandler) AcknowledgeNotification(ctx context.Context, user *models.User, notificationID string) error {
	log.Printf("📋 Acknowledging notification %s for organization: %s", notificationID, user.OrganizationID)
	if err := h.notificationsService.AcknowledgeNotification(ctx, user.OrganizationID, notificationID); err != nil {
		log.Printf("❌ Failed to acknowledge notification: %v", err)
		return err
	}

	log.Printf("✅ Notification acknowledged: %s", notificationID)
	return nil
}

// MarkAllNotificationsRead marks every notification in the organization read
func (h *DashboardAPIHandler) MarkAllNotificationsRead(ctx context.Context, user *models.User) (int64, error) {
	log.Printf("📋 Marking all notifications read for organization: %s", user.OrganizationID)
	marked, err := h.notificationsService.MarkAllRead(ctx, user.OrganizationID)
	if err != nil {
		log.Printf("❌ Failed to mark notifications read: %v", err)
		return 0, err
	}

	log.Printf("✅ Marked %d notifications read for organization: %s", marked, user.OrganizationID)
	return marked, nil
}

// scopeIDForKey derives the settings scope ID from the key's prefix: user
// settings are keyed by the calling user, org settings share one row.
func scopeIDForKey(user *models.User, key string) string {
	if definition, ok := models.SupportedSettings[key]; ok && strings.HasPrefix(definition.Key, "user/") {
		return user.ID
	}
	return ""
}

// UpsertSetting stores a typed setting value for the user's organization
func (h *DashboardAPIHandler) UpsertSetting(
	ctx context.Context,
	user *models.User,
	key string,
	settingType models.SettingType,
	value any,
) error {
	log.Printf("📋 Upserting setting %s for organization: %s", key, user.OrganizationID)
	scopeID := scopeIDForKey(user, key)

	switch settingType {
	case models.SettingTypeBool:
		boolValue, ok := value.(bool)
		if !ok {
			return fmt.Errorf("setting %s expects a boolean value", key)
		}
		if err := h.settingsService.UpsertBooleanSetting(ctx, user.OrganizationID, scopeID, key, boolValue); err != nil {
			log.Printf("❌ Failed to upsert boolean setting: %v", err)
			return err
		}
	case models.SettingTypeString:
		stringValue, ok := value.(string)
		if !ok {
			return fmt.Errorf("setting %s expects a string value", key)
		}
		if err := h.settingsService.UpsertStringSetting(ctx, user.OrganizationID, scopeID, key, stringValue); err != nil {
			log.Printf("❌ Failed to upsert string setting: %v", err)
			return err
		}
	case models.SettingTypeStringArr:
		arrayValue, err := toStringSlice(value)
		if err != nil {
			return fmt.Errorf("setting %s expects a string array value: %w", key, err)
		}
		if err := h.settingsService.UpsertStringArraySetting(ctx, user.OrganizationID, scopeID, key, arrayValue); err != nil {
			log.Printf("❌ Failed to upsert string array setting: %v", err)
			return err
		}
	default:
		return fmt.Errorf("unsupported setting type: %s", settingType)
	}

	log.Printf("✅ Setting upserted successfully: %s", key)
	return nil
}

// GetSetting reads a typed setting value. The second return value reports
// whether the setting has ever been written.
func (h *DashboardAPIHandler) GetSetting(
	ctx context.Context,
	user *models.User,
	key string,
) (any, bool, error) {
	log.Printf("📋 Getting setting %s for organization: %s", key, user.OrganizationID)

	definition, ok := models.SupportedSettings[key]
	if !ok {
		return nil, false, fmt.Errorf("unsupported setting key: %s", key)
	}
	scopeID := scopeIDForKey(user, key)

	switch definition.Type {
	case models.SettingTypeBool:
		maybeValue, err := h.settingsService.GetBooleanSetting(ctx, user.OrganizationID, scopeID, key)
		if err != nil {
			return nil, false, err
		}
		value, present := maybeValue.Get()
		return value, present, nil
	case models.SettingTypeString:
		maybeValue, err := h.settingsService.GetStringSetting(ctx, user.OrganizationID, scopeID, key)
		if err != nil {
			return nil, false, err
		}
		value, present := maybeValue.Get()
		return value, present, nil
	case models.SettingTypeStringArr:
		maybeValue, err := h.settingsService.GetStringArraySetting(ctx, user.OrganizationID, scopeID, key)
		if err != nil {
			return nil, false, err
		}
		value, present := maybeValue.Get()
		return value, present, nil
	default:
		return nil, false, fmt.Errorf("unsupported setting type: %s", definition.Type)
	}
}

// toStringSlice normalizes JSON-decoded arrays ([]any) into []string
func toStringSlice(value any) ([]string, error) {
	switch typed := value.(type) {
	case []string:
		return typed, nil
	case []any:
		result := make([]string, 0, len(typed))
		for _, item := range typed {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("array element is not a string: %v", item)
			}
			result = append(result, str)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("value is not an array")
	}
}

// GetOrganization returns the user's organization
func (h *DashboardAPIHandler) GetOrganization(ctx context.Context, user *models.User) (*models.Organization, error) {
	log.Printf("📋 Getting organization: %s", user.OrganizationID)
	maybeOrg, err := h.organizationsService.GetOrganizationByID(ctx, user.OrganizationID)
	if err != nil {
		log.Printf("❌ Failed to get organization: %v", err)
		return nil, err
	}
	organization, ok := maybeOrg.Get()
	if !ok {
		return nil, fmt.Errorf("organization not found: %s", user.OrganizationID)
	}

	log.Printf("✅ Organization retrieved successfully: %s", organization.ID)
	return organization, nil
}

// GenerateAgentSecretKey rotates the organization's agent secret key.
// Connected agents keep their sockets; new connections must present the new key.
func (h *DashboardAPIHandler) GenerateAgentSecretKey(ctx context.Context, user *models.User) (string, error) {
	log.Printf("🔑 Generating agent secret key for organization: %s", user.OrganizationID)
	secretKey, err := h.organizationsService.GenerateAgentSecretKey(ctx, user.OrganizationID)
	if err != nil {
		log.Printf("❌ Failed to generate agent secret key: %v", err)
		return "", err
	}

	log.Printf("✅ Agent secret key generated successfully for organization: %s", user.OrganizationID)
	return secretKey, nil
}
