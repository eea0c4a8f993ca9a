package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"pmbackend/appctx"
	"pmbackend/core"
	"pmbackend/liveness"
	"pmbackend/middleware"
	"pmbackend/models"
	"pmbackend/models/api"
	"pmbackend/usecases/agents"
)

type DashboardHTTPHandler struct {
	handler *DashboardAPIHandler
}

func NewDashboardHTTPHandler(handler *DashboardAPIHandler) *DashboardHTTPHandler {
	return &DashboardHTTPHandler{
		handler: handler,
	}
}

type SessionCommandResponse struct {
	Session          *api.SessionModel `json:"session"`
	CommandDelivered bool              `json:"command_delivered"`
	Warning          string            `json:"warning,omitempty"`
}

type NotificationsResponse struct {
	Notifications  []*api.NotificationModel `json:"notifications"`
	Unacknowledged int                      `json:"unacknowledged"`
}

type MarkAllReadResponse struct {
	Marked int64 `json:"marked"`
}

type SettingUpsertRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type SettingResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Set   bool   `json:"set"`
}

type AgentSecretKeyResponse struct {
	SecretKey   string `json:"secret_key"`
	GeneratedAt string `json:"generated_at"`
}

func (h *DashboardHTTPHandler) HandleUserAuthenticate(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔐 User authentication request received from %s", r.RemoteAddr)

	if r.Method != http.MethodPost {
		log.Printf("❌ Invalid method: %s", r.Method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Get user entity from context (set by authentication middleware)
	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	log.Printf("✅ User data retrieved from context: %s", user.ID)

	// Convert domain user to API model
	apiUser := api.DomainUserToAPIUser(user)

	h.writeJSONResponse(w, http.StatusOK, apiUser)
}

func (h *DashboardHTTPHandler) HandleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	log.Printf("👤 Get user profile request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	log.Printf("✅ User profile retrieved from context: %s (email: %s)", user.ID, user.Email)

	apiUser := api.DomainUserToAPIUser(user)

	h.writeJSONResponse(w, http.StatusOK, apiUser)
}

func (h *DashboardHTTPHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	log.Printf("📊 Dashboard stats request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	counters, err := h.handler.GetStats(r.Context(), user)
	if err != nil {
		log.Printf("❌ Failed to get dashboard stats: %v", err)
		http.Error(w, "failed to get dashboard stats", http.StatusInternalServerError)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, api.DashboardStatsModel{
		ActiveComputers: counters.ActiveComputers,
		ActiveUsers:     counters.ActiveUsers,
		TodaySessions:   counters.TodaySessions,
		OpenAlerts:      counters.OpenAlerts,
	})
}

func (h *DashboardHTTPHandler) HandleGetAdminStats(w http.ResponseWriter, r *http.Request) {
	log.Printf("📊 Admin dashboard stats request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	counters, err := h.handler.GetAdminStats(r.Context(), user)
	if err != nil {
		log.Printf("❌ Failed to get admin dashboard stats: %v", err)
		if strings.Contains(err.Error(), "admin role required") {
			http.Error(w, "admin role required", http.StatusForbidden)
		} else {
			http.Error(w, "failed to get admin dashboard stats", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, api.DashboardStatsModel{
		ActiveComputers: counters.ActiveComputers,
		ActiveUsers:     counters.ActiveUsers,
		TodaySessions:   counters.TodaySessions,
		OpenAlerts:      counters.OpenAlerts,
	})
}

func (h *DashboardHTTPHandler) HandleListComputers(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 List computers request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	computers, statuses, err := h.handler.ListComputers(r.Context(), user)
	if err != nil {
		log.Printf("❌ Failed to list computers: %v", err)
		http.Error(w, "failed to list computers", http.StatusInternalServerError)
		return
	}

	apiComputers := make([]*api.ComputerModel, 0, len(computers))
	for _, computer := range computers {
		apiComputers = append(apiComputers, api.DomainComputerToAPIComputer(computer, string(statuses[computer.ID])))
	}

	h.writeJSONResponse(w, http.StatusOK, apiComputers)
}

func (h *DashboardHTTPHandler) HandleDeleteComputer(w http.ResponseWriter, r *http.Request) {
	log.Printf("🗑️ Delete computer request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	computerIDStr, ok := vars["id"]
	if !ok || !core.IsValidULID(computerIDStr) {
		log.Printf("❌ Missing or invalid computer ID in URL path")
		http.Error(w, "computer ID must be a valid ULID", http.StatusBadRequest)
		return
	}

	err := h.handler.DeleteComputer(r.Context(), user, computerIDStr)
	if err != nil {
		log.Printf("❌ Failed to delete computer: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "computer not found", http.StatusNotFound)
		} else {
			http.Error(w, "failed to delete computer", http.StatusInternalServerError)
		}
		return
	}

	log.Printf("✅ Computer deleted successfully: %s", computerIDStr)

	w.WriteHeader(http.StatusNoContent)
}

func (h *DashboardHTTPHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 List sessions request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	sessions, elapsed, err := h.handler.ListSessions(r.Context(), user)
	if err != nil {
		log.Printf("❌ Failed to list sessions: %v", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}

	apiSessions := make([]*api.SessionModel, 0, len(sessions))
	for _, session := range sessions {
		apiSessions = append(apiSessions, api.DomainSessionToAPISession(session, elapsed[session.ID]))
	}

	h.writeJSONResponse(w, http.StatusOK, apiSessions)
}

func (h *DashboardHTTPHandler) HandlePauseSession(w http.ResponseWriter, r *http.Request) {
	log.Printf("⏸️ Pause session request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	sessionIDStr, ok := vars["id"]
	if !ok || !core.IsValidULID(sessionIDStr) {
		log.Printf("❌ Missing or invalid session ID in URL path")
		http.Error(w, "session ID must be a valid ULID", http.StatusBadRequest)
		return
	}

	session, err := h.handler.PauseSession(r.Context(), user, sessionIDStr)
	h.writeSessionCommandResponse(w, session, err, "failed to pause session")
}

func (h *DashboardHTTPHandler) HandleResumeSession(w http.ResponseWriter, r *http.Request) {
	log.Printf("▶️ Resume session request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	sessionIDStr, ok := vars["id"]
	if !ok || !core.IsValidULID(sessionIDStr) {
		log.Printf("❌ Missing or invalid session ID in URL path")
		http.Error(w, "session ID must be a valid ULID", http.StatusBadRequest)
		return
	}

	session, err := h.handler.ResumeSession(r.Context(), user, sessionIDStr)
	h.writeSessionCommandResponse(w, session, err, "failed to resume session")
}

// writeSessionCommandResponse maps pause/resume outcomes to HTTP. A delivery
// advisory still returns 200: the state change committed, only the push to
// the agent is pending.
func (h *DashboardHTTPHandler) writeSessionCommandResponse(
	w http.ResponseWriter,
	session *models.Session,
	err error,
	failureMessage string,
) {
	if err != nil && !agents.IsCommandDeliveryError(err) {
		if core.IsNotFoundError(err) || strings.Contains(err.Error(), "not found") {
			http.Error(w, "session not found", http.StatusNotFound)
		} else {
			http.Error(w, failureMessage, http.StatusInternalServerError)
		}
		return
	}

	var elapsedMS int64
	if session != nil {
		elapsedMS = liveness.SessionElapsed(*session, time.Now().UTC()).Milliseconds()
	}
	response := SessionCommandResponse{
		Session:          api.DomainSessionToAPISession(session, elapsedMS),
		CommandDelivered: err == nil,
	}
	if err != nil {
		response.Warning = err.Error()
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

func (h *DashboardHTTPHandler) HandleListSessionHistory(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 List session history request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	day := r.URL.Query().Get("day")
	history, err := h.handler.ListSessionHistory(r.Context(), user, day)
	if err != nil {
		log.Printf("❌ Failed to list session history: %v", err)
		if strings.Contains(err.Error(), "invalid day") {
			http.Error(w, "day must be formatted as YYYY-MM-DD", http.StatusBadRequest)
		} else {
			http.Error(w, "failed to list session history", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, api.DomainHistorySessionsToAPIHistorySessions(history))
}

func (h *DashboardHTTPHandler) HandleListNotifications(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 List notifications request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	notifications, unacknowledged, err := h.handler.ListNotifications(r.Context(), user, defaultNotificationsLimit)
	if err != nil {
		log.Printf("❌ Failed to list notifications: %v", err)
		http.Error(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, NotificationsResponse{
		Notifications:  api.DomainNotificationsToAPINotifications(notifications),
		Unacknowledged: unacknowledged,
	})
}

func (h *DashboardHTTPHandler) HandleAcknowledgeNotification(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Acknowledge notification request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	notificationIDStr, ok := vars["id"]
	if !ok || !core.IsValidULID(notificationIDStr) {
		log.Printf("❌ Missing or invalid notification ID in URL path")
		http.Error(w, "notification ID must be a valid ULID", http.StatusBadRequest)
		return
	}

	err := h.handler.AcknowledgeNotification(r.Context(), user, notificationIDStr)
	if err != nil {
		log.Printf("❌ Failed to acknowledge notification: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "notification not found", http.StatusNotFound)
		} else {
			http.Error(w, "failed to acknowledge notification", http.StatusInternalServerError)
		}
		return
	}

	log.Printf("✅ Notification acknowledged successfully: %s", notificationIDStr)

	w.WriteHeader(http.StatusNoContent)
}

func (h *DashboardHTTPHandler) HandleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Mark all notifications read request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	marked, err := h.handler.MarkAllNotificationsRead(r.Context(), user)
	if err != nil {
		log.Printf("❌ Failed to mark notifications read: %v", err)
		http.Error(w, "failed to mark notifications read", http.StatusInternalServerError)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, MarkAllReadResponse{Marked: marked})
}

func (h *DashboardHTTPHandler) HandleUpsertSetting(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Upsert setting request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req SettingUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Failed to parse request body: %v", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	definition, ok := models.SupportedSettings[req.Key]
	if !ok {
		log.Printf("❌ Unsupported setting key: %s", req.Key)
		http.Error(w, "unsupported setting key", http.StatusBadRequest)
		return
	}

	if err := h.handler.UpsertSetting(r.Context(), user, req.Key, definition.Type, req.Value); err != nil {
		log.Printf("❌ Failed to upsert setting: %v", err)
		if strings.Contains(err.Error(), "expects") {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			http.Error(w, "failed to upsert setting", http.StatusInternalServerError)
		}
		return
	}

	log.Printf("✅ Setting upserted successfully: %s", req.Key)

	w.WriteHeader(http.StatusNoContent)
}

func (h *DashboardHTTPHandler) HandleGetSetting(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Get setting request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		log.Printf("❌ Missing key query parameter")
		http.Error(w, "key query parameter is required", http.StatusBadRequest)
		return
	}

	value, set, err := h.handler.GetSetting(r.Context(), user, key)
	if err != nil {
		log.Printf("❌ Failed to get setting: %v", err)
		if strings.Contains(err.Error(), "unsupported setting key") {
			http.Error(w, "unsupported setting key", http.StatusBadRequest)
		} else {
			http.Error(w, "failed to get setting", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSONResponse(w, http.StatusOK, SettingResponse{Key: key, Value: value, Set: set})
}

func (h *DashboardHTTPHandler) HandleGetOrganization(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Get organization request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	organization, err := h.handler.GetOrganization(r.Context(), user)
	if err != nil {
		log.Printf("❌ Failed to get organization: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "organization not found", http.StatusNotFound)
		} else {
			http.Error(w, "failed to get organization", http.StatusInternalServerError)
		}
		return
	}

	log.Printf("✅ Organization retrieved successfully: %s", organization.ID)

	h.writeJSONResponse(w, http.StatusOK, organization)
}

func (h *DashboardHTTPHandler) HandleGenerateAgentSecretKey(w http.ResponseWriter, r *http.Request) {
	log.Printf("🔑 Generate agent secret key request received from %s", r.RemoteAddr)

	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	secretKey, err := h.handler.GenerateAgentSecretKey(r.Context(), user)
	if err != nil {
		log.Printf("❌ Failed to generate agent secret key: %v", err)
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "organization not found", http.StatusNotFound)
		} else {
			http.Error(w, "failed to generate secret key", http.StatusInternalServerError)
		}
		return
	}

	// Re-read the organization to report the rotation timestamp
	organization, err := h.handler.GetOrganization(r.Context(), user)
	if err != nil {
		log.Printf("❌ Failed to get organization after key rotation: %v", err)
		http.Error(w, "organization not found", http.StatusNotFound)
		return
	}

	log.Printf("✅ Agent secret key generated successfully")

	generatedAt := ""
	if organization.AgentSecretKeyGeneratedAt != nil {
		generatedAt = organization.AgentSecretKeyGeneratedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	response := AgentSecretKeyResponse{
		SecretKey:   secretKey,
		GeneratedAt: generatedAt,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

func (h *DashboardHTTPHandler) SetupEndpoints(router *mux.Router, authMiddleware *middleware.ClerkAuthMiddleware) {
	log.Printf("🚀 Registering dashboard API endpoints")

	// User authentication endpoint
	router.HandleFunc("/users/authenticate", authMiddleware.WithAuth(h.HandleUserAuthenticate)).Methods("POST")
	log.Printf("✅ POST /users/authenticate endpoint registered")

	// User profile endpoint
	router.HandleFunc("/users/profile", authMiddleware.WithAuth(h.HandleGetUserProfile)).Methods("GET")
	log.Printf("✅ GET /users/profile endpoint registered")

	// Dashboard stats endpoints
	router.HandleFunc("/dashboard/stats", authMiddleware.WithAuth(h.HandleGetStats)).Methods("GET")
	log.Printf("✅ GET /dashboard/stats endpoint registered")

	router.HandleFunc("/dashboard/admin/stats", authMiddleware.WithAuth(h.HandleGetAdminStats)).Methods("GET")
	log.Printf("✅ GET /dashboard/admin/stats endpoint registered")

	// Computer endpoints
	router.HandleFunc("/computers", authMiddleware.WithAuth(h.HandleListComputers)).Methods("GET")
	log.Printf("✅ GET /computers endpoint registered")

	router.HandleFunc("/computers/{id}", authMiddleware.WithAuth(h.HandleDeleteComputer)).Methods("DELETE")
	log.Printf("✅ DELETE /computers/{id} endpoint registered")

	// Session endpoints
	router.HandleFunc("/sessions", authMiddleware.WithAuth(h.HandleListSessions)).Methods("GET")
	log.Printf("✅ GET /sessions endpoint registered")

	router.HandleFunc("/sessions/history", authMiddleware.WithAuth(h.HandleListSessionHistory)).Methods("GET")
	log.Printf("✅ GET /sessions/history endpoint registered")

	router.HandleFunc("/sessions/{id}/pause", authMiddleware.WithAuth(h.HandlePauseSession)).Methods("POST")
	log.Printf("✅ POST /sessions/{id}/pause endpoint registered")

	router.HandleFunc("/sessions/{id}/resume", authMiddleware.WithAuth(h.HandleResumeSession)).Methods("POST")
	log.Printf("✅ POST /sessions/{id}/resume endpoint registered")

	// Notification endpoints
	router.HandleFunc("/notifications", authMiddleware.WithAuth(h.HandleListNotifications)).Methods("GET")
	log.Printf("✅ GET /notifications endpoint registered")

	router.HandleFunc("/notifications/read_all", authMiddleware.WithAuth(h.HandleMarkAllNotificationsRead)).
		Methods("POST")
	log.Printf("✅ POST /notifications/read_all endpoint registered")

	router.HandleFunc("/notifications/{id}/ack", authMiddleware.WithAuth(h.HandleAcknowledgeNotification)).
		Methods("POST")
	log.Printf("✅ POST /notifications/{id}/ack endpoint registered")

	// Settings endpoints
	router.HandleFunc("/settings", authMiddleware.WithAuth(h.HandleGetSetting)).Methods("GET")
	log.Printf("✅ GET /settings endpoint registered")

	router.HandleFunc("/settings", authMiddleware.WithAuth(h.HandleUpsertSetting)).Methods("PUT")
	log.Printf("✅ PUT /settings endpoint registered")

	// Organization endpoints
	router.HandleFunc("/organizations", authMiddleware.WithAuth(h.HandleGetOrganization)).Methods("GET")
	log.Printf("✅ GET /organizations endpoint registered")

	router.HandleFunc("/organizations/agent-secret-key", authMiddleware.WithAuth(h.HandleGenerateAgentSecretKey)).
		Methods("POST")
	log.Printf("✅ POST /organizations/agent-secret-key endpoint registered")

	log.Printf("✅ All dashboard API endpoints registered successfully")
}

func (h *DashboardHTTPHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("❌ Failed to encode JSON response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
