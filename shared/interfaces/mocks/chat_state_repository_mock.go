package mocks

import (
	"context"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/stretchr/testify/mock"
)

// MockChatStateRepository is a mock type for the ChatStateRepository type
type MockChatStateRepository struct {
	mock.Mock
}

var _ interfaces.ChatStateRepository = (*MockChatStateRepository)(nil)

func (_m *MockChatStateRepository) Get(ctx context.Context, chatID int64) (*models.ChatState, error) {
	ret := _m.Called(ctx, chatID)
	var r0 *models.ChatState
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ChatState)
	}
	return r0, ret.Error(1)
}

func (_m *MockChatStateRepository) Save(ctx context.Context, state *models.ChatState) error {
	ret := _m.Called(ctx, state)
	return ret.Error(0)
}

func (_m *MockChatStateRepository) Delete(ctx context.Context, chatID int64) error {
	ret := _m.Called(ctx, chatID)
	return ret.Error(0)
}

// NewMockChatStateRepository creates a new instance of MockChatStateRepository.
// It also registers a testing interface on the mock.
func NewMockChatStateRepository(t interface {
	mock.TestingT
	Helper()
}) *MockChatStateRepository {
	m := &MockChatStateRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
