package computers

import (
	"context"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"pmbackend/models"
)

// MockComputersService is a mock implementation of the ComputersService interface
type MockComputersService struct {
	mock.Mock
}

func (m *MockComputersService) UpsertComputer(
	ctx context.Context,
	organizationID, computerID, name, ipAddress string,
	status models.ComputerStatus,
	lastSeenAt time.Time,
) (*models.Computer, error) {
	args := m.Called(ctx, organizationID, computerID, name, ipAddress, status, lastSeenAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Computer), args.Error(1)
}

func (m *MockComputersService) GetComputerByID(
	ctx context.Context,
	organizationID, id string,
) (mo.Option[*models.Computer], error) {
	args := m.Called(ctx, organizationID, id)
	return args.Get(0).(mo.Option[*models.Computer]), args.Error(1)
}

func (m *MockComputersService) GetComputersByOrganizationID(
	ctx context.Context,
	organizationID string,
) ([]*models.Computer, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Computer), args.Error(1)
}

func (m *MockComputersService) UpdateComputerStatus(
	ctx context.Context,
	organizationID, id string,
	status models.ComputerStatus,
) error {
	args := m.Called(ctx, organizationID, id, status)
	return args.Error(0)
}

func (m *MockComputersService) TouchComputer(
	ctx context.Context,
	organizationID, id string,
	lastSeenAt time.Time,
) error {
	args := m.Called(ctx, organizationID, id, lastSeenAt)
	return args.Error(0)
}

func (m *MockComputersService) MarkStaleComputersOffline(
	ctx context.Context,
	olderThan time.Duration,
) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockComputersService) DeleteComputer(ctx context.Context, organizationID, id string) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}
