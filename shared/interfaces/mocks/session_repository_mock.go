package mocks

import (
	"context"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository is a mock type for the SessionRepository type
type MockSessionRepository struct {
	mock.Mock
}

var _ interfaces.SessionRepository = (*MockSessionRepository)(nil)

func (_m *MockSessionRepository) CreateSession(ctx context.Context, q interfaces.DBTX, session *models.Session) error {
	ret := _m.Called(ctx, q, session)
	return ret.Error(0)
}

func (_m *MockSessionRepository) GetSession(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Session, error) {
	ret := _m.Called(ctx, q, id)
	var r0 *models.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Session)
	}
	return r0, ret.Error(1)
}

func (_m *MockSessionRepository) FinishActiveSessions(ctx context.Context, q interfaces.DBTX, userID, gameID uuid.UUID) (int64, error) {
	ret := _m.Called(ctx, q, userID, gameID)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *MockSessionRepository) UpdateSessionStatus(ctx context.Context, q interfaces.DBTX, id uuid.UUID, status models.SessionStatus) error {
	ret := _m.Called(ctx, q, id, status)
	return ret.Error(0)
}

func (_m *MockSessionRepository) SetActiveCharacter(ctx context.Context, q interfaces.DBTX, sessionID, sessionCharacterID uuid.UUID) error {
	ret := _m.Called(ctx, q, sessionID, sessionCharacterID)
	return ret.Error(0)
}

func (_m *MockSessionRepository) CreateSessionCharacter(ctx context.Context, q interfaces.DBTX, sc *models.SessionCharacter) error {
	ret := _m.Called(ctx, q, sc)
	return ret.Error(0)
}

func (_m *MockSessionRepository) GetSessionCharacter(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.SessionCharacter, error) {
	ret := _m.Called(ctx, q, id)
	var r0 *models.SessionCharacter
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.SessionCharacter)
	}
	return r0, ret.Error(1)
}

func (_m *MockSessionRepository) ListSessionCharacters(ctx context.Context, q interfaces.DBTX, sessionID uuid.UUID) ([]*models.SessionCharacter, error) {
	ret := _m.Called(ctx, q, sessionID)
	var r0 []*models.SessionCharacter
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.SessionCharacter)
	}
	return r0, ret.Error(1)
}

func (_m *MockSessionRepository) UpdatePosition(ctx context.Context, q interfaces.DBTX, sessionCharacterID, sceneID, momentID uuid.UUID) error {
	ret := _m.Called(ctx, q, sessionCharacterID, sceneID, momentID)
	return ret.Error(0)
}

func (_m *MockSessionRepository) GetPropertyOverride(ctx context.Context, q interfaces.DBTX, sessionCharacterID, propertyID uuid.UUID) (*models.SessionProperty, error) {
	ret := _m.Called(ctx, q, sessionCharacterID, propertyID)
	var r0 *models.SessionProperty
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.SessionProperty)
	}
	return r0, ret.Error(1)
}

func (_m *MockSessionRepository) UpsertPropertyOverride(ctx context.Context, q interfaces.DBTX, sessionCharacterID, propertyID uuid.UUID, value string) error {
	ret := _m.Called(ctx, q, sessionCharacterID, propertyID, value)
	return ret.Error(0)
}

func (_m *MockSessionRepository) GetBlockOverrides(ctx context.Context, q interfaces.DBTX, sessionCharacterID uuid.UUID, blockIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	ret := _m.Called(ctx, q, sessionCharacterID, blockIDs)
	var r0 map[uuid.UUID]bool
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[uuid.UUID]bool)
	}
	return r0, ret.Error(1)
}

func (_m *MockSessionRepository) GetActionOverrides(ctx context.Context, q interfaces.DBTX, sessionCharacterID uuid.UUID, actionIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	ret := _m.Called(ctx, q, sessionCharacterID, actionIDs)
	var r0 map[uuid.UUID]bool
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[uuid.UUID]bool)
	}
	return r0, ret.Error(1)
}

func (_m *MockSessionRepository) UpsertBlockVisibility(ctx context.Context, q interfaces.DBTX, sessionCharacterID, blockID uuid.UUID, visible bool) error {
	ret := _m.Called(ctx, q, sessionCharacterID, blockID, visible)
	return ret.Error(0)
}

func (_m *MockSessionRepository) UpsertActionVisibility(ctx context.Context, q interfaces.DBTX, sessionCharacterID, actionID uuid.UUID, visible bool) error {
	ret := _m.Called(ctx, q, sessionCharacterID, actionID, visible)
	return ret.Error(0)
}

func (_m *MockSessionRepository) HideBlocks(ctx context.Context, q interfaces.DBTX, sessionCharacterID uuid.UUID, blockIDs []uuid.UUID) error {
	ret := _m.Called(ctx, q, sessionCharacterID, blockIDs)
	return ret.Error(0)
}

func (_m *MockSessionRepository) HideActions(ctx context.Context, q interfaces.DBTX, sessionCharacterID uuid.UUID, actionIDs []uuid.UUID) error {
	ret := _m.Called(ctx, q, sessionCharacterID, actionIDs)
	return ret.Error(0)
}

// NewMockSessionRepository creates a new instance of MockSessionRepository.
// It also registers a testing interface on the mock.
func NewMockSessionRepository(t interface {
	mock.TestingT
	Helper()
}) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
