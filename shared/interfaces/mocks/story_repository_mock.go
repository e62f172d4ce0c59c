package mocks

import (
	"context"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStoryRepository is a mock type for the StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

var _ interfaces.StoryRepository = (*MockStoryRepository)(nil)

func (_m *MockStoryRepository) GetGame(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Game, error) {
	ret := _m.Called(ctx, q, id)
	var r0 *models.Game
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Game)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) UpdateGameStatus(ctx context.Context, q interfaces.DBTX, id uuid.UUID, status models.GameStatus) error {
	ret := _m.Called(ctx, q, id, status)
	return ret.Error(0)
}

func (_m *MockStoryRepository) ListCharacters(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Character, error) {
	ret := _m.Called(ctx, q, gameID)
	var r0 []*models.Character
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Character)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) GetScene(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Scene, error) {
	ret := _m.Called(ctx, q, id)
	var r0 *models.Scene
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Scene)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) GetFirstScene(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) (*models.Scene, error) {
	ret := _m.Called(ctx, q, gameID)
	var r0 *models.Scene
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Scene)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListScenes(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Scene, error) {
	ret := _m.Called(ctx, q, gameID)
	var r0 []*models.Scene
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Scene)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) GetMoment(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Moment, error) {
	ret := _m.Called(ctx, q, id)
	var r0 *models.Moment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Moment)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) GetDefaultMoment(ctx context.Context, q interfaces.DBTX, sceneID uuid.UUID) (*models.Moment, error) {
	ret := _m.Called(ctx, q, sceneID)
	var r0 *models.Moment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Moment)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) CountMoments(ctx context.Context, q interfaces.DBTX, sceneID uuid.UUID) (int, error) {
	ret := _m.Called(ctx, q, sceneID)
	return ret.Get(0).(int), ret.Error(1)
}

func (_m *MockStoryRepository) ListBlocksAt(ctx context.Context, q interfaces.DBTX, sceneID, momentID uuid.UUID) ([]*models.Block, error) {
	ret := _m.Called(ctx, q, sceneID, momentID)
	var r0 []*models.Block
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Block)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListActionsAt(ctx context.Context, q interfaces.DBTX, sceneID, momentID uuid.UUID) ([]*models.Action, error) {
	ret := _m.Called(ctx, q, sceneID, momentID)
	var r0 []*models.Action
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Action)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) GetAction(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Action, error) {
	ret := _m.Called(ctx, q, id)
	var r0 *models.Action
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Action)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListSceneBlockIDs(ctx context.Context, q interfaces.DBTX, sceneID uuid.UUID) ([]uuid.UUID, error) {
	ret := _m.Called(ctx, q, sceneID)
	var r0 []uuid.UUID
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]uuid.UUID)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListSceneActionIDs(ctx context.Context, q interfaces.DBTX, sceneID uuid.UUID) ([]uuid.UUID, error) {
	ret := _m.Called(ctx, q, sceneID)
	var r0 []uuid.UUID
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]uuid.UUID)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) GetProperty(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Property, error) {
	ret := _m.Called(ctx, q, id)
	var r0 *models.Property
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Property)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListProperties(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Property, error) {
	ret := _m.Called(ctx, q, gameID)
	var r0 []*models.Property
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Property)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListBlocks(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Block, error) {
	ret := _m.Called(ctx, q, gameID)
	var r0 []*models.Block
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Block)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListActions(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Action, error) {
	ret := _m.Called(ctx, q, gameID)
	var r0 []*models.Action
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Action)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListPublishedGames(ctx context.Context, q interfaces.DBTX, limit int) ([]*models.Game, error) {
	ret := _m.Called(ctx, q, limit)
	var r0 []*models.Game
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Game)
	}
	return r0, ret.Error(1)
}

// NewMockStoryRepository creates a new instance of MockStoryRepository.
// It also registers a testing interface on the mock.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Helper()
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}
