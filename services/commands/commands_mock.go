package commands

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pmbackend/models"
)

// MockCommandsService is a mock implementation of the CommandsService interface
type MockCommandsService struct {
	mock.Mock
}

func (m *MockCommandsService) EnqueueCommand(
	ctx context.Context,
	organizationID, computerID string,
	commandType models.CommandType,
) (*models.Command, error) {
	args := m.Called(ctx, organizationID, computerID, commandType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Command), args.Error(1)
}

func (m *MockCommandsService) GetPendingCommandsByComputerID(
	ctx context.Context,
	organizationID, computerID string,
) ([]*models.Command, error) {
	args := m.Called(ctx, organizationID, computerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Command), args.Error(1)
}

func (m *MockCommandsService) ConsumeCommand(ctx context.Context, organizationID, id string) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockCommandsService) ClearCommandsForComputer(
	ctx context.Context,
	organizationID, computerID string,
) (int64, error) {
	args := m.Called(ctx, organizationID, computerID)
	return args.Get(0).(int64), args.Error(1)
}
