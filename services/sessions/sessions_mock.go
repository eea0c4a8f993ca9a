package sessions

import (
	"context"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"pmbackend/models"
)

// MockSessionsService is a mock implementation of the SessionsService interface
type MockSessionsService struct {
	mock.Mock
}

func (m *MockSessionsService) UpsertSession(
	ctx context.Context,
	session *models.Session,
) (*models.Session, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionsService) GetSessionByID(
	ctx context.Context,
	organizationID, id string,
) (mo.Option[*models.Session], error) {
	args := m.Called(ctx, organizationID, id)
	return args.Get(0).(mo.Option[*models.Session]), args.Error(1)
}

func (m *MockSessionsService) GetSessionsByOrganizationID(
	ctx context.Context,
	organizationID string,
) ([]*models.Session, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionsService) GetSessionsByComputerID(
	ctx context.Context,
	organizationID, computerID string,
) ([]*models.Session, error) {
	args := m.Called(ctx, organizationID, computerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}

func (m *MockSessionsService) PauseSession(
	ctx context.Context,
	organizationID, id string,
	at time.Time,
) (*models.Session, error) {
	args := m.Called(ctx, organizationID, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionsService) ResumeSession(
	ctx context.Context,
	organizationID, id string,
	at time.Time,
) (*models.Session, error) {
	args := m.Called(ctx, organizationID, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionsService) EndSession(
	ctx context.Context,
	organizationID, id string,
	endedAt time.Time,
) (*models.HistorySession, error) {
	args := m.Called(ctx, organizationID, id, endedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HistorySession), args.Error(1)
}

func (m *MockSessionsService) GetHistoryByOrganizationID(
	ctx context.Context,
	organizationID string,
	limit int,
) ([]*models.HistorySession, error) {
	args := m.Called(ctx, organizationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistorySession), args.Error(1)
}

func (m *MockSessionsService) GetHistoryByDay(
	ctx context.Context,
	organizationID, day string,
) ([]*models.HistorySession, error) {
	args := m.Called(ctx, organizationID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HistorySession), args.Error(1)
}

func (m *MockSessionsService) CountHistoryByDay(
	ctx context.Context,
	organizationID, day string,
) (int, error) {
	args := m.Called(ctx, organizationID, day)
	return args.Int(0), args.Error(1)
}
