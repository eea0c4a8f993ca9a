package api

import "pmbackend/models"

// DomainUserToAPIUser converts a domain User model to an API UserModel
func DomainUserToAPIUser(domainUser *models.User) *UserModel {
	if domainUser == nil {
		return nil
	}

	return &UserModel{
		ID:             domainUser.ID,
		Email:          domainUser.Email,
		OrganizationID: domainUser.OrganizationID,
		Role:           string(domainUser.Role),
		CreatedAt:      domainUser.CreatedAt,
		UpdatedAt:      domainUser.UpdatedAt,
	}
}

// DomainComputerToAPIComputer converts a domain Computer to an API model.
// The status argument is the derived liveness status, not the raw stored one.
func DomainComputerToAPIComputer(computer *models.Computer, status string) *ComputerModel {
	if computer == nil {
		return nil
	}

	return &ComputerModel{
		ID:           computer.ID,
		Name:         computer.Name,
		IPAddress:    computer.IPAddress,
		Status:       status,
		LastSeenAt:   computer.LastSeenAt,
		RegisteredAt: computer.RegisteredAt,
	}
}

// DomainSessionToAPISession converts a domain Session to an API model with
// its elapsed duration computed by the caller.
func DomainSessionToAPISession(session *models.Session, elapsedMS int64) *SessionModel {
	if session == nil {
		return nil
	}

	return &SessionModel{
		ID:              session.ID,
		ComputerID:      session.ComputerID,
		ComputerName:    session.ComputerName,
		UserName:        session.UserName,
		StartedAt:       session.StartedAt,
		CurrentActivity: session.CurrentActivity,
		RunState:        string(session.RunState),
		ElapsedMS:       elapsedMS,
	}
}

// DomainHistorySessionToAPIHistorySession converts a completed session to an API model
func DomainHistorySessionToAPIHistorySession(session *models.HistorySession) *HistorySessionModel {
	if session == nil {
		return nil
	}

	return &HistorySessionModel{
		ID:                   session.ID,
		ComputerID:           session.ComputerID,
		ComputerName:         session.ComputerName,
		UserName:             session.UserName,
		StartedAt:            session.StartedAt,
		EndedAt:              session.EndedAt,
		TotalDurationMinutes: session.TotalDurationMinutes,
		Day:                  session.Day,
	}
}

// DomainNotificationToAPINotification converts a domain Notification to an API model
func DomainNotificationToAPINotification(notification *models.Notification) *NotificationModel {
	if notification == nil {
		return nil
	}

	return &NotificationModel{
		ID:           notification.ID,
		Type:         string(notification.Type),
		Message:      notification.Message,
		ComputerID:   notification.ComputerID,
		Acknowledged: notification.Acknowledged.Bool(),
		Read:         notification.Read.Bool(),
		CreatedAt:    notification.CreatedAt,
	}
}

// DomainNotificationsToAPINotifications converts a slice of notifications
func DomainNotificationsToAPINotifications(notifications []*models.Notification) []*NotificationModel {
	apiNotifications := make([]*NotificationModel, 0, len(notifications))
	for _, n := range notifications {
		apiNotifications = append(apiNotifications, DomainNotificationToAPINotification(n))
	}
	return apiNotifications
}

// DomainHistorySessionsToAPIHistorySessions converts a slice of completed sessions
func DomainHistorySessionsToAPIHistorySessions(sessions []*models.HistorySession) []*HistorySessionModel {
	apiSessions := make([]*HistorySessionModel, 0, len(sessions))
	for _, s := range sessions {
		apiSessions = append(apiSessions, DomainHistorySessionToAPIHistorySession(s))
	}
	return apiSessions
}
