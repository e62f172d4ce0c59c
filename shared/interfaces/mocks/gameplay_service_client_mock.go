package mocks

import (
	"context"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGameplayServiceClient is a mock type for the GameplayServiceClient type
type MockGameplayServiceClient struct {
	mock.Mock
}

var _ interfaces.GameplayServiceClient = (*MockGameplayServiceClient)(nil)

func (_m *MockGameplayServiceClient) ListGames(ctx context.Context, limit int) ([]*models.Game, error) {
	ret := _m.Called(ctx, limit)
	var r0 []*models.Game
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Game)
	}
	return r0, ret.Error(1)
}

func (_m *MockGameplayServiceClient) StartSession(ctx context.Context, userID, gameID uuid.UUID) (*interfaces.StartedSession, error) {
	ret := _m.Called(ctx, userID, gameID)
	var r0 *interfaces.StartedSession
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*interfaces.StartedSession)
	}
	return r0, ret.Error(1)
}

func (_m *MockGameplayServiceClient) GetView(ctx context.Context, userID, sessionID uuid.UUID) (*models.GameView, error) {
	ret := _m.Called(ctx, userID, sessionID)
	var r0 *models.GameView
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GameView)
	}
	return r0, ret.Error(1)
}

func (_m *MockGameplayServiceClient) ApplyAction(ctx context.Context, userID, sessionID, actionID uuid.UUID) (*interfaces.ActionResult, error) {
	ret := _m.Called(ctx, userID, sessionID, actionID)
	var r0 *interfaces.ActionResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*interfaces.ActionResult)
	}
	return r0, ret.Error(1)
}

// NewMockGameplayServiceClient creates a new instance of MockGameplayServiceClient.
// It also registers a testing interface on the mock.
func NewMockGameplayServiceClient(t interface {
	mock.TestingT
	Helper()
}) *MockGameplayServiceClient {
	m := &MockGameplayServiceClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
