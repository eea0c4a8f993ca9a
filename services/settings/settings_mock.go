package settings

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"
)

// MockSettingsService is a mock implementation of the SettingsService interface
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) UpsertBooleanSetting(
	ctx context.Context,
	organizationID, scopeID, key string,
	value bool,
) error {
	args := m.Called(ctx, organizationID, scopeID, key, value)
	return args.Error(0)
}

func (m *MockSettingsService) UpsertStringSetting(
	ctx context.Context,
	organizationID, scopeID, key string,
	value string,
) error {
	args := m.Called(ctx, organizationID, scopeID, key, value)
	return args.Error(0)
}

func (m *MockSettingsService) UpsertStringArraySetting(
	ctx context.Context,
	organizationID, scopeID, key string,
	value []string,
) error {
	args := m.Called(ctx, organizationID, scopeID, key, value)
	return args.Error(0)
}

func (m *MockSettingsService) GetBooleanSetting(
	ctx context.Context,
	organizationID, scopeID, key string,
) (mo.Option[bool], error) {
	args := m.Called(ctx, organizationID, scopeID, key)
	return args.Get(0).(mo.Option[bool]), args.Error(1)
}

func (m *MockSettingsService) GetStringSetting(
	ctx context.Context,
	organizationID, scopeID, key string,
) (mo.Option[string], error) {
	args := m.Called(ctx, organizationID, scopeID, key)
	return args.Get(0).(mo.Option[string]), args.Error(1)
}

func (m *MockSettingsService) GetStringArraySetting(
	ctx context.Context,
	organizationID, scopeID, key string,
) (mo.Option[[]string], error) {
	args := m.Called(ctx, organizationID, scopeID, key)
	return args.Get(0).(mo.Option[[]string]), args.Error(1)
}
