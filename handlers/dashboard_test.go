package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pmbackend/models"
	"pmbackend/usecases/agents"
	computersservice "pmbackend/services/computers"
	notificationsservice "pmbackend/services/notifications"
	organizationsservice "pmbackend/services/organizations"
	sessionsservice "pmbackend/services/sessions"
	settingsservice "pmbackend/services/settings"
)

var testUser = &models.User{
	ID:             "u_test123",
	Email:          "user@example.com",
	OrganizationID: "o_test123",
	Role:           models.UserRoleMember,
}

// Test data for settings
var (
	testBooleanSetting     = true
	testStringSetting      = "ABC123"
	testStringArraySetting = []string{"c_one1", "c_two2"}
)

func newTestAPIHandler(
	settingsService *settingsservice.MockSettingsService,
	notificationsService *notificationsservice.MockNotificationsService,
	sessionsService *sessionsservice.MockSessionsService,
	organizationsService *organizationsservice.MockOrganizationsService,
	computersService *computersservice.MockComputersService,
) *DashboardAPIHandler {
	return NewDashboardAPIHandler(
		nil,
		nil,
		organizationsService,
		computersService,
		sessionsService,
		notificationsService,
		settingsService,
	)
}

func TestDashboardAPIHandler_UpsertSetting(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		settingType models.SettingType
		value       any
		mockSetup   func(*settingsservice.MockSettingsService)
	}{
		{
			name:        "success - boolean setting",
			key:         "org/agent_linking_active",
			settingType: models.SettingTypeBool,
			value:       testBooleanSetting,
			mockSetup: func(m *settingsservice.MockSettingsService) {
				m.On("UpsertBooleanSetting", mock.Anything, testUser.OrganizationID, "", "org/agent_linking_active", testBooleanSetting).
					Return(nil)
			},
		},
		{
			name:        "success - string setting",
			key:         "org/agent_linking_code",
			settingType: models.SettingTypeString,
			value:       testStringSetting,
			mockSetup: func(m *settingsservice.MockSettingsService) {
				m.On("UpsertStringSetting", mock.Anything, testUser.OrganizationID, "", "org/agent_linking_code", testStringSetting).
					Return(nil)
			},
		},
		{
			name:        "success - user-scoped string array setting",
			key:         "user/pinned_computers",
			settingType: models.SettingTypeStringArr,
			value:       testStringArraySetting,
			mockSetup: func(m *settingsservice.MockSettingsService) {
				m.On("UpsertStringArraySetting", mock.Anything, testUser.OrganizationID, testUser.ID, "user/pinned_computers", testStringArraySetting).
					Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSettingsService := &settingsservice.MockSettingsService{}
			tt.mockSetup(mockSettingsService)

			handler := newTestAPIHandler(mockSettingsService, nil, nil, nil, nil)

			err := handler.UpsertSetting(context.Background(), testUser, tt.key, tt.settingType, tt.value)

			require.NoError(t, err)
			mockSettingsService.AssertExpectations(t)
		})
	}
}

func TestDashboardAPIHandler_UpsertSetting_TypeMismatch(t *testing.T) {
	mockSettingsService := &settingsservice.MockSettingsService{}
	handler := newTestAPIHandler(mockSettingsService, nil, nil, nil, nil)

	err := handler.UpsertSetting(
		context.Background(),
		testUser,
		"org/agent_linking_active",
		models.SettingTypeBool,
		"not-a-bool",
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects a boolean")
	mockSettingsService.AssertNotCalled(t, "UpsertBooleanSetting",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardAPIHandler_GetSetting(t *testing.T) {
	tests := []struct {
		name          string
		key           string
		expectedValue any
		expectedSet   bool
		mockSetup     func(*settingsservice.MockSettingsService)
	}{
		{
			name:          "success - boolean setting",
			key:           "org/agent_linking_active",
			expectedValue: testBooleanSetting,
			expectedSet:   true,
			mockSetup: func(m *settingsservice.MockSettingsService) {
				m.On("GetBooleanSetting", mock.Anything, testUser.OrganizationID, "", "org/agent_linking_active").
					Return(mo.Some(testBooleanSetting), nil)
			},
		},
		{
			name:          "success - unset string setting",
			key:           "org/agent_linking_code",
			expectedValue: "",
			expectedSet:   false,
			mockSetup: func(m *settingsservice.MockSettingsService) {
				m.On("GetStringSetting", mock.Anything, testUser.OrganizationID, "", "org/agent_linking_code").
					Return(mo.None[string](), nil)
			},
		},
		{
			name:          "success - user-scoped string array setting",
			key:           "user/pinned_computers",
			expectedValue: testStringArraySetting,
			expectedSet:   true,
			mockSetup: func(m *settingsservice.MockSettingsService) {
				m.On("GetStringArraySetting", mock.Anything, testUser.OrganizationID, testUser.ID, "user/pinned_computers").
					Return(mo.Some(testStringArraySetting), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSettingsService := &settingsservice.MockSettingsService{}
			tt.mockSetup(mockSettingsService)

			handler := newTestAPIHandler(mockSettingsService, nil, nil, nil, nil)

			value, set, err := handler.GetSetting(context.Background(), testUser, tt.key)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSet, set)
			if tt.expectedSet {
				assert.Equal(t, tt.expectedValue, value)
			}
			mockSettingsService.AssertExpectations(t)
		})
	}
}

func TestDashboardAPIHandler_GetSetting_UnsupportedKey(t *testing.T) {
	handler := newTestAPIHandler(&settingsservice.MockSettingsService{}, nil, nil, nil, nil)

	_, _, err := handler.GetSetting(context.Background(), testUser, "org/no_such_setting")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported setting key")
}

func TestDashboardAPIHandler_ListNotifications(t *testing.T) {
	mockNotificationsService := &notificationsservice.MockNotificationsService{}
	handler := newTestAPIHandler(nil, mockNotificationsService, nil, nil, nil)

	notifications := []*models.Notification{
		{ID: "n_test123", OrganizationID: testUser.OrganizationID, Type: models.NotificationTypeComputerOffline},
	}
	mockNotificationsService.On("GetNotificationsByOrganizationID", mock.Anything, testUser.OrganizationID, defaultNotificationsLimit).
		Return(notifications, nil)
	mockNotificationsService.On("CountUnacknowledged", mock.Anything, testUser.OrganizationID).
		Return(1, nil)

	result, unacknowledged, err := handler.ListNotifications(context.Background(), testUser, defaultNotificationsLimit)

	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, 1, unacknowledged)
	mockNotificationsService.AssertExpectations(t)
}

func TestDashboardAPIHandler_ListSessionHistory(t *testing.T) {
	t.Run("without day filter uses the default limit", func(t *testing.T) {
		mockSessionsService := &sessionsservice.MockSessionsService{}
		handler := newTestAPIHandler(nil, nil, mockSessionsService, nil, nil)

		history := []*models.HistorySession{{ID: "h_test123", Day: "2026-08-31"}}
		mockSessionsService.On("GetHistoryByOrganizationID", mock.Anything, testUser.OrganizationID, defaultHistoryLimit).
			Return(history, nil)

		result, err := handler.ListSessionHistory(context.Background(), testUser, "")

		require.NoError(t, err)
		assert.Len(t, result, 1)
		mockSessionsService.AssertExpectations(t)
	})

	t.Run("with day filter queries that day only", func(t *testing.T) {
		mockSessionsService := &sessionsservice.MockSessionsService{}
		handler := newTestAPIHandler(nil, nil, mockSessionsService, nil, nil)

		mockSessionsService.On("GetHistoryByDay", mock.Anything, testUser.OrganizationID, "2026-08-30").
			Return([]*models.HistorySession{}, nil)

		result, err := handler.ListSessionHistory(context.Background(), testUser, "2026-08-30")

		require.NoError(t, err)
		assert.Empty(t, result)
		mockSessionsService.AssertExpectations(t)
	})
}

func TestDashboardHTTPHandler_WriteSessionCommandResponse(t *testing.T) {
	httpHandler := &DashboardHTTPHandler{}
	startedAt := time.Now().UTC().Add(-45 * time.Minute)

	t.Run("Paused session reports its frozen elapsed", func(t *testing.T) {
		pausedAt := startedAt.Add(20 * time.Minute)
		elapsedMS := (20 * time.Minute).Milliseconds()
		session := &models.Session{
			ID:               "s_test123",
			OrganizationID:   testUser.OrganizationID,
			ComputerID:       "c_test123",
			StartedAt:        startedAt,
			RunState:         models.SessionRunStatePaused,
			PausedAt:         &pausedAt,
			ElapsedAtPauseMS: &elapsedMS,
		}

		recorder := httptest.NewRecorder()
		httpHandler.writeSessionCommandResponse(recorder, session, nil, "failed to pause session")

		require.Equal(t, http.StatusOK, recorder.Code)
		var response SessionCommandResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.True(t, response.CommandDelivered)
		require.NotNil(t, response.Session)
		assert.Equal(t, (20 * time.Minute).Milliseconds(), response.Session.ElapsedMS)
	})

	t.Run("Active session reports elapsed since start", func(t *testing.T) {
		session := &models.Session{
			ID:             "s_test123",
			OrganizationID: testUser.OrganizationID,
			ComputerID:     "c_test123",
			StartedAt:      startedAt,
			RunState:       models.SessionRunStateActive,
		}

		recorder := httptest.NewRecorder()
		httpHandler.writeSessionCommandResponse(recorder, session, nil, "failed to resume session")

		require.Equal(t, http.StatusOK, recorder.Code)
		var response SessionCommandResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		require.NotNil(t, response.Session)
		assert.InDelta(t, (45 * time.Minute).Milliseconds(), response.Session.ElapsedMS,
			float64((5 * time.Second).Milliseconds()))
	})

	t.Run("Delivery advisory still returns the session with a warning", func(t *testing.T) {
		pausedAt := startedAt.Add(20 * time.Minute)
		elapsedMS := (20 * time.Minute).Milliseconds()
		session := &models.Session{
			ID:               "s_test123",
			OrganizationID:   testUser.OrganizationID,
			ComputerID:       "c_test123",
			StartedAt:        startedAt,
			RunState:         models.SessionRunStatePaused,
			PausedAt:         &pausedAt,
			ElapsedAtPauseMS: &elapsedMS,
		}
		deliveryErr := &agents.CommandDeliveryError{ComputerID: "c_test123", Reason: "agent not connected"}

		recorder := httptest.NewRecorder()
		httpHandler.writeSessionCommandResponse(recorder, session, deliveryErr, "failed to pause session")

		require.Equal(t, http.StatusOK, recorder.Code)
		var response SessionCommandResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.False(t, response.CommandDelivered)
		assert.NotEmpty(t, response.Warning)
		assert.Equal(t, (20 * time.Minute).Milliseconds(), response.Session.ElapsedMS)
	})
}
