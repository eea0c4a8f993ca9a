package agents

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pmbackend/clients"
	"pmbackend/core"
	"pmbackend/models"
	"pmbackend/services"
)

// CommandDeliveryError signals that a command was persisted but could not be
// delivered to the agent right now. The state change it accompanies has
// already committed; callers surface this as an advisory, never a rollback.
type CommandDeliveryError struct {
	ComputerID string
	Reason     string
}

func (e *CommandDeliveryError) Error() string {
	return fmt.Sprintf("command for computer %s not delivered: %s", e.ComputerID, e.Reason)
}

// IsCommandDeliveryError reports whether err is an advisory delivery failure.
func IsCommandDeliveryError(err error) bool {
	var cde *CommandDeliveryError
	return errors.As(err, &cde)
}

// AgentsUseCase orchestrates everything agents do against the backend:
// connection lifecycle, heartbeats, session event ingestion and the remote
// command queue.
type AgentsUseCase struct {
	wsClient             clients.SocketIOClient
	computersService     services.ComputersService
	sessionsService      services.SessionsService
	notificationsService services.NotificationsService
	commandsService      services.CommandsService
}

func NewAgentsUseCase(
	wsClient clients.SocketIOClient,
	computersService services.ComputersService,
	sessionsService services.SessionsService,
	notificationsService services.NotificationsService,
	commandsService services.CommandsService,
) *AgentsUseCase {
	return &AgentsUseCase{
		wsClient:             wsClient,
		computersService:     computersService,
		sessionsService:      sessionsService,
		notificationsService: notificationsService,
		commandsService:      commandsService,
	}
}

// OnAgentConnected flushes the pending command queue to a freshly connected
// agent. Commands that fail to emit stay queued for the next connect.
func (u *AgentsUseCase) OnAgentConnected(ctx context.Context, client *clients.Client) error {
	log.Printf("🔗 Agent connected for computer %s (organization: %s)", client.ComputerID, client.OrganizationID)

	pending, err := u.commandsService.GetPendingCommandsByComputerID(ctx, client.OrganizationID, client.ComputerID)
	if err != nil {
		return fmt.Errorf("failed to get pending commands for computer %s: %w", client.ComputerID, err)
	}

	for _, command := range pending {
		if err := u.emitCommand(ctx, client.ID, command); err != nil {
			log.Printf("⚠️ Failed to flush command %s to computer %s: %v", command.ID, command.ComputerID, err)
			continue
		}
	}

	return nil
}

// OnAgentPing records a heartbeat for the agent's computer. A ping from a
// computer that never sent a status report is ignored.
func (u *AgentsUseCase) OnAgentPing(ctx context.Context, client *clients.Client) error {
	err := u.computersService.TouchComputer(ctx, client.OrganizationID, client.ComputerID, time.Now().UTC())
	if err != nil {
		log.Printf("⚠️ Heartbeat for unregistered computer %s: %v", client.ComputerID, err)
		return nil
	}
	return nil
}

// OnAgentDisconnected only logs. The computer's derived status decays on its
// own once heartbeats stop arriving.
func (u *AgentsUseCase) OnAgentDisconnected(ctx context.Context, client *clients.Client) error {
	log.Printf("🔌 Agent disconnected for computer %s (organization: %s)", client.ComputerID, client.OrganizationID)
	return nil
}

// ProcessComputerStatus ingests an agent status report: registration,
// heartbeat and explicit status all travel in the same message. An explicit
// offline report raises a notification for the dashboard.
func (u *AgentsUseCase) ProcessComputerStatus(
	ctx context.Context,
	client *clients.Client,
	payload models.ComputerStatusPayload,
) error {
	log.Printf("📋 Processing computer status from %s: %s", client.ComputerID, payload.Status)

	if payload.ComputerID != "" && payload.ComputerID != client.ComputerID {
		return fmt.Errorf("computer ID mismatch: connection is %s, payload says %s", client.ComputerID, payload.ComputerID)
	}

	status := models.ComputerStatus(payload.Status)
	switch status {
	case models.ComputerStatusOnline, models.ComputerStatusOffline, models.ComputerStatusMaintenance, models.ComputerStatusUnset:
	default:
		return fmt.Errorf("unsupported computer status: %s", payload.Status)
	}

	_, err := u.computersService.UpsertComputer(
		ctx,
		client.OrganizationID,
		client.ComputerID,
		payload.Name,
		payload.IPAddress,
		status,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert computer from status report: %w", err)
	}

	if status == models.ComputerStatusOffline {
		computerID := client.ComputerID
		message := fmt.Sprintf("Computer %s reported going offline", payload.Name)
		if _, err := u.notificationsService.CreateNotification(
			ctx,
			client.OrganizationID,
			models.NotificationTypeComputerOffline,
			message,
			&computerID,
		); err != nil {
			log.Printf("⚠️ Failed to create offline notification for computer %s: %v", client.ComputerID, err)
		}
	}

	log.Printf("✅ Computer status processed for %s", client.ComputerID)
	return nil
}

// ProcessSessionStarted registers a new live session reported by the agent.
func (u *AgentsUseCase) ProcessSessionStarted(
	ctx context.Context,
	client *clients.Client,
	payload models.SessionStartedPayload,
) error {
	log.Printf("📋 Processing session started from %s: %s", client.ComputerID, payload.SessionID)

	if payload.SessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}

	sessionID := payload.SessionID
	if !core.IsValidULID(sessionID) {
		// Agents predating ULID session IDs send opaque strings; re-key them
		// from org+computer+reported ID so a restarted agent announcing the
		// same session lands on the same row.
		sessionID = core.DeterministicID("s", client.OrganizationID, client.ComputerID, payload.SessionID)
	}

	session := &models.Session{
		ID:              sessionID,
		OrganizationID:  client.OrganizationID,
		ComputerID:      client.ComputerID,
		ComputerName:    payload.ComputerName,
		UserName:        payload.UserName,
		StartedAt:       payload.StartedAt,
		CurrentActivity: payload.CurrentActivity,
		RunState:        models.SessionRunStateActive,
	}

	if _, err := u.sessionsService.UpsertSession(ctx, session); err != nil {
		return fmt.Errorf("failed to upsert started session: %w", err)
	}

	log.Printf("✅ Session %s started on computer %s", session.ID, client.ComputerID)
	return nil
}

// ProcessSessionActivity updates the current activity label of a live
// session. Reports for unknown sessions are dropped with a warning; the
// agent will re-announce the session on its next full report.
func (u *AgentsUseCase) ProcessSessionActivity(
	ctx context.Context,
	client *clients.Client,
	payload models.SessionActivityPayload,
) error {
	log.Printf("📋 Processing session activity from %s: %s", client.ComputerID, payload.SessionID)

	maybeSession, err := u.sessionsService.GetSessionByID(ctx, client.OrganizationID, payload.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session for activity update: %w", err)
	}
	session, ok := maybeSession.Get()
	if !ok {
		log.Printf("⚠️ Activity report for unknown session %s, dropping", payload.SessionID)
		return nil
	}
	if session.ComputerID != client.ComputerID {
		return fmt.Errorf("session %s belongs to computer %s, not %s", session.ID, session.ComputerID, client.ComputerID)
	}

	session.CurrentActivity = payload.CurrentActivity
	if _, err := u.sessionsService.UpsertSession(ctx, session); err != nil {
		return fmt.Errorf("failed to update session activity: %w", err)
	}

	log.Printf("✅ Session %s activity updated", session.ID)
	return nil
}

// ProcessSessionEnded moves the session into history.
func (u *AgentsUseCase) ProcessSessionEnded(
	ctx context.Context,
	client *clients.Client,
	payload models.SessionEndedPayload,
) error {
	log.Printf("📋 Processing session ended from %s: %s", client.ComputerID, payload.SessionID)

	endedAt := payload.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now().UTC()
	}

	history, err := u.sessionsService.EndSession(ctx, client.OrganizationID, payload.SessionID, endedAt)
	if err != nil {
		if core.IsNotFoundError(err) {
			log.Printf("⚠️ End report for unknown session %s, dropping", payload.SessionID)
			return nil
		}
		return fmt.Errorf("failed to end session: %w", err)
	}

	log.Printf("✅ Session %s archived (%d minutes)", payload.SessionID, history.TotalDurationMinutes)
	return nil
}

// DispatchCommand persists a command and then tries to push it to the
// connected agent. Persisting is authoritative; a delivery failure returns
// the stored command together with a CommandDeliveryError advisory.
func (u *AgentsUseCase) DispatchCommand(
	ctx context.Context,
	organizationID, computerID string,
	commandType models.CommandType,
) (*models.Command, error) {
	log.Printf("📋 Dispatching command %s to computer %s", commandType, computerID)

	command, err := u.commandsService.EnqueueCommand(ctx, organizationID, computerID, commandType)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue command: %w", err)
	}

	client := u.findClientForComputer(organizationID, computerID)
	if client == nil {
		log.Printf("⚠️ No connected agent for computer %s, command %s stays queued", computerID, command.ID)
		return command, &CommandDeliveryError{ComputerID: computerID, Reason: "agent not connected"}
	}

	if err := u.emitCommand(ctx, client.ID, command); err != nil {
		log.Printf("⚠️ Failed to deliver command %s to computer %s: %v", command.ID, computerID, err)
		return command, &CommandDeliveryError{ComputerID: computerID, Reason: err.Error()}
	}

	log.Printf("✅ Command %s delivered to computer %s", command.ID, computerID)
	return command, nil
}

// PauseSessionWithCommand pauses the session and then asks the agent to stop
// monitoring. The pause commits regardless of what happens to the command.
func (u *AgentsUseCase) PauseSessionWithCommand(
	ctx context.Context,
	organizationID, sessionID string,
) (*models.Session, error) {
	session, err := u.sessionsService.PauseSession(ctx, organizationID, sessionID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	_, err = u.DispatchCommand(ctx, organizationID, session.ComputerID, models.CommandTypeStopMonitoring)
	if err != nil && !IsCommandDeliveryError(err) {
		// Session is already paused; a hard enqueue failure is still advisory
		// from the caller's point of view.
		return session, &CommandDeliveryError{ComputerID: session.ComputerID, Reason: err.Error()}
	}
	return session, err
}

// ResumeSessionWithCommand resumes the session and then asks the agent to
// start monitoring again.
func (u *AgentsUseCase) ResumeSessionWithCommand(
	ctx context.Context,
	organizationID, sessionID string,
) (*models.Session, error) {
	session, err := u.sessionsService.ResumeSession(ctx, organizationID, sessionID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	_, err = u.DispatchCommand(ctx, organizationID, session.ComputerID, models.CommandTypeStartMonitoring)
	if err != nil && !IsCommandDeliveryError(err) {
		return session, &CommandDeliveryError{ComputerID: session.ComputerID, Reason: err.Error()}
	}
	return session, err
}

// MarkStaleComputersOffline is run from the background ticker. Polling is a
// scheduled re-evaluation of the same liveness rule the read path applies.
func (u *AgentsUseCase) MarkStaleComputersOffline(ctx context.Context, olderThan time.Duration) error {
	marked, err := u.computersService.MarkStaleComputersOffline(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("failed to mark stale computers offline: %w", err)
	}
	if marked > 0 {
		log.Printf("🕐 Marked %d stale computers offline", marked)
	}
	return nil
}

// emitCommand pushes a queued command to a connected client and deletes the
// queue row on success. Delivery is consumption; there is no ack channel.
func (u *AgentsUseCase) emitCommand(ctx context.Context, clientID string, command *models.Command) error {
	var msgType string
	var payload any
	switch command.Type {
	case models.CommandTypeStartMonitoring:
		msgType = models.MessageTypeStartMonitoring
		payload = models.StartMonitoringPayload{
			CommandID:  command.ID,
			ComputerID: command.ComputerID,
			IssuedAt:   command.IssuedAt,
		}
	case models.CommandTypeStopMonitoring:
		msgType = models.MessageTypeStopMonitoring
		payload = models.StopMonitoringPayload{
			CommandID:  command.ID,
			ComputerID: command.ComputerID,
			IssuedAt:   command.IssuedAt,
		}
	default:
		return fmt.Errorf("unsupported command type: %s", command.Type)
	}

	msg := models.BaseMessage{
		ID:      core.NewID("msg"),
		Type:    msgType,
		Payload: payload,
	}

	if err := u.wsClient.SendMessage(clientID, msg); err != nil {
		return fmt.Errorf("failed to send command message: %w", err)
	}

	if err := u.commandsService.ConsumeCommand(ctx, command.OrganizationID, command.ID); err != nil {
		return fmt.Errorf("failed to consume delivered command: %w", err)
	}
	return nil
}

func (u *AgentsUseCase) findClientForComputer(organizationID, computerID string) *clients.Client {
	for _, clientID := range u.wsClient.GetClientIDs() {
		raw := u.wsClient.GetClientByID(clientID)
		client, ok := raw.(*clients.Client)
		if !ok || client == nil {
			continue
		}
		if client.OrganizationID == organizationID && client.ComputerID == computerID {
			return client
		}
	}
	return nil
}
