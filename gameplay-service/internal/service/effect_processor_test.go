package service_test

import (
	"context"
	"testing"

	"gamebook-server/gameplay-service/internal/service"
	sharedMocks "gamebook-server/shared/interfaces/mocks"
	sharedModels "gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newProcessor(storyRepo *sharedMocks.MockStoryRepository, sessionRepo *sharedMocks.MockSessionRepository) *service.EffectProcessor {
	logger := zap.NewNop()
	props := service.NewPropertyStore(sessionRepo, logger)
	evaluator := service.NewConditionEvaluator(storyRepo, props, logger)
	tracker := service.NewSessionTracker(storyRepo, sessionRepo, logger)
	return service.NewEffectProcessor(storyRepo, sessionRepo, tracker, props, evaluator, logger)
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestEffectProcessorFire(t *testing.T) {
	ctx := context.Background()

	t.Run("Gated action does not fire", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		processor := newProcessor(storyRepo, sessionRepo)

		sc := &sharedModels.SessionCharacter{ID: uuid.New()}
		prop := &sharedModels.Property{ID: uuid.New(), Type: sharedModels.PropertyTypeString, DefaultValue: "no"}
		storyRepo.On("GetProperty", mock.Anything, mock.Anything, prop.ID).Return(prop, nil)
		sessionRepo.On("GetPropertyOverride", mock.Anything, mock.Anything, sc.ID, prop.ID).
			Return(nil, sharedModels.ErrNotFound)

		action := &sharedModels.Action{
			ID:        uuid.New(),
			Condition: conditionJSON([3]string{prop.ID.String(), "==", "yes"}),
			Effects: []sharedModels.AfterEffect{
				{Kind: sharedModels.EffectSetProperty, PropertyID: ptr(prop.ID), Value: "yes"},
			},
		}

		fired, err := processor.Fire(ctx, nil, action, sc)
		assert.NoError(t, err)
		assert.False(t, fired)
		// Эффекты закрытого действия не применяются.
		sessionRepo.AssertNotCalled(t, "UpsertPropertyOverride", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Effects run in authored order", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		processor := newProcessor(storyRepo, sessionRepo)

		sc := &sharedModels.SessionCharacter{ID: uuid.New(), CurrentSceneID: uuid.New(), CurrentMomentID: uuid.New()}
		prop := &sharedModels.Property{ID: uuid.New(), Type: sharedModels.PropertyTypeString}
		scene := &sharedModels.Scene{ID: uuid.New()}
		moment := &sharedModels.Moment{ID: uuid.New(), SceneID: scene.ID}

		var order []string
		storyRepo.On("GetProperty", mock.Anything, mock.Anything, prop.ID).Return(prop, nil).Once()
		sessionRepo.On("UpsertPropertyOverride", mock.Anything, mock.Anything, sc.ID, prop.ID, "yes").
			Run(func(mock.Arguments) { order = append(order, "set") }).Return(nil).Once()
		storyRepo.On("GetScene", mock.Anything, mock.Anything, scene.ID).Return(scene, nil).Once()
		storyRepo.On("GetDefaultMoment", mock.Anything, mock.Anything, scene.ID).Return(moment, nil).Once()
		sessionRepo.On("UpdatePosition", mock.Anything, mock.Anything, sc.ID, scene.ID, moment.ID).
			Run(func(mock.Arguments) { order = append(order, "goto") }).Return(nil).Once()

		action := &sharedModels.Action{
			ID: uuid.New(),
			Effects: []sharedModels.AfterEffect{
				{Order: 0, Kind: sharedModels.EffectSetProperty, PropertyID: ptr(prop.ID), Value: "yes"},
				{Order: 1, Kind: sharedModels.EffectGoToScene, SceneID: ptr(scene.ID)},
			},
		}

		fired, err := processor.Fire(ctx, nil, action, sc)
		assert.NoError(t, err)
		assert.True(t, fired)
		assert.Equal(t, []string{"set", "goto"}, order)
		assert.Equal(t, scene.ID, sc.CurrentSceneID)
	})

	t.Run("Invalid target is skipped, remaining effects still run", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		processor := newProcessor(storyRepo, sessionRepo)

		sc := &sharedModels.SessionCharacter{ID: uuid.New(), CurrentSceneID: uuid.New()}
		deadScene := uuid.New()
		blockID := uuid.New()

		storyRepo.On("GetScene", mock.Anything, mock.Anything, deadScene).
			Return(nil, sharedModels.ErrNotFound).Once()
		sessionRepo.On("UpsertBlockVisibility", mock.Anything, mock.Anything, sc.ID, blockID, false).
			Return(nil).Once()

		action := &sharedModels.Action{
			ID: uuid.New(),
			Effects: []sharedModels.AfterEffect{
				{Kind: sharedModels.EffectGoToScene, SceneID: ptr(deadScene)},
				{Kind: sharedModels.EffectHideBlock, BlockID: ptr(blockID)},
			},
		}

		fired, err := processor.Fire(ctx, nil, action, sc)
		assert.NoError(t, err)
		assert.True(t, fired)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("Show and hide write visibility overrides", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		processor := newProcessor(storyRepo, sessionRepo)

		sc := &sharedModels.SessionCharacter{ID: uuid.New()}
		blockID := uuid.New()
		actionID := uuid.New()

		sessionRepo.On("UpsertBlockVisibility", mock.Anything, mock.Anything, sc.ID, blockID, true).
			Return(nil).Once()
		sessionRepo.On("UpsertActionVisibility", mock.Anything, mock.Anything, sc.ID, actionID, false).
			Return(nil).Once()

		action := &sharedModels.Action{
			ID: uuid.New(),
			Effects: []sharedModels.AfterEffect{
				{Kind: sharedModels.EffectShowBlock, BlockID: ptr(blockID)},
				{Kind: sharedModels.EffectHideAction, TargetActionID: ptr(actionID)},
			},
		}

		fired, err := processor.Fire(ctx, nil, action, sc)
		assert.NoError(t, err)
		assert.True(t, fired)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("Clear effects default to the current scene", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		processor := newProcessor(storyRepo, sessionRepo)

		sc := &sharedModels.SessionCharacter{ID: uuid.New(), CurrentSceneID: uuid.New()}
		blockIDs := []uuid.UUID{uuid.New(), uuid.New()}

		storyRepo.On("ListSceneBlockIDs", mock.Anything, mock.Anything, sc.CurrentSceneID).
			Return(blockIDs, nil).Once()
		sessionRepo.On("HideBlocks", mock.Anything, mock.Anything, sc.ID, blockIDs).
			Return(nil).Once()

		action := &sharedModels.Action{
			ID: uuid.New(),
			Effects: []sharedModels.AfterEffect{
				{Kind: sharedModels.EffectClearSceneBlocks},
			},
		}

		fired, err := processor.Fire(ctx, nil, action, sc)
		assert.NoError(t, err)
		assert.True(t, fired)
		storyRepo.AssertExpectations(t)
		sessionRepo.AssertExpectations(t)
	})
}
