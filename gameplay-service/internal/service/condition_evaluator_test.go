package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"gamebook-server/gameplay-service/internal/service"
	sharedMocks "gamebook-server/shared/interfaces/mocks"
	sharedModels "gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newEvaluator(storyRepo *sharedMocks.MockStoryRepository, sessionRepo *sharedMocks.MockSessionRepository) *service.ConditionEvaluator {
	props := service.NewPropertyStore(sessionRepo, zap.NewNop())
	return service.NewConditionEvaluator(storyRepo, props, zap.NewNop())
}

func conditionJSON(clauses ...[3]string) json.RawMessage {
	data, err := json.Marshal(clauses)
	if err != nil {
		panic(err)
	}
	return data
}

func TestConditionEvaluator(t *testing.T) {
	ctx := context.Background()
	sc := &sharedModels.SessionCharacter{ID: uuid.New()}

	t.Run("Empty condition is always true", func(t *testing.T) {
		evaluator := newEvaluator(new(sharedMocks.MockStoryRepository), new(sharedMocks.MockSessionRepository))

		ok, err := evaluator.Evaluate(ctx, nil, nil, sc)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = evaluator.Evaluate(ctx, nil, json.RawMessage(`[]`), sc)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Malformed condition closes the gate without error", func(t *testing.T) {
		evaluator := newEvaluator(new(sharedMocks.MockStoryRepository), new(sharedMocks.MockSessionRepository))

		ok, err := evaluator.Evaluate(ctx, nil, json.RawMessage(`{"not":"triples"}`), sc)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Unknown property closes the gate without error", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		evaluator := newEvaluator(storyRepo, sessionRepo)

		propID := uuid.New()
		storyRepo.On("GetProperty", mock.Anything, mock.Anything, propID).
			Return(nil, sharedModels.ErrNotFound).Once()

		ok, err := evaluator.Evaluate(ctx, nil, conditionJSON([3]string{propID.String(), "==", "yes"}), sc)
		assert.NoError(t, err)
		assert.False(t, ok)
		storyRepo.AssertExpectations(t)
	})

	t.Run("String equality reads the authored default", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		evaluator := newEvaluator(storyRepo, sessionRepo)

		prop := &sharedModels.Property{
			ID:           uuid.New(),
			Name:         "has_key",
			Type:         sharedModels.PropertyTypeString,
			DefaultValue: "no",
		}
		storyRepo.On("GetProperty", mock.Anything, mock.Anything, prop.ID).Return(prop, nil)
		sessionRepo.On("GetPropertyOverride", mock.Anything, mock.Anything, sc.ID, prop.ID).
			Return(nil, sharedModels.ErrNotFound)

		ok, err := evaluator.Evaluate(ctx, nil, conditionJSON([3]string{prop.ID.String(), "==", "no"}), sc)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = evaluator.Evaluate(ctx, nil, conditionJSON([3]string{prop.ID.String(), "==", "yes"}), sc)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Override shadows the authored default", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		evaluator := newEvaluator(storyRepo, sessionRepo)

		prop := &sharedModels.Property{
			ID:           uuid.New(),
			Name:         "has_key",
			Type:         sharedModels.PropertyTypeString,
			DefaultValue: "no",
		}
		storyRepo.On("GetProperty", mock.Anything, mock.Anything, prop.ID).Return(prop, nil)
		sessionRepo.On("GetPropertyOverride", mock.Anything, mock.Anything, sc.ID, prop.ID).
			Return(&sharedModels.SessionProperty{CurrentValue: "yes"}, nil)

		ok, err := evaluator.Evaluate(ctx, nil, conditionJSON([3]string{prop.ID.String(), "==", "yes"}), sc)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Numeric comparison uses numeric order", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		evaluator := newEvaluator(storyRepo, sessionRepo)

		prop := &sharedModels.Property{
			ID:           uuid.New(),
			Name:         "trust_level",
			Type:         sharedModels.PropertyTypeNumber,
			DefaultValue: "10",
		}
		storyRepo.On("GetProperty", mock.Anything, mock.Anything, prop.ID).Return(prop, nil)
		sessionRepo.On("GetPropertyOverride", mock.Anything, mock.Anything, sc.ID, prop.ID).
			Return(nil, sharedModels.ErrNotFound)

		// Строковое сравнение дало бы "10" < "9"; числовое - наоборот.
		cases := []struct {
			op       string
			value    string
			expected bool
		}{
			{">", "9", true},
			{"<", "9", false},
			{">=", "10", true},
			{"<=", "10", true},
			{"==", "10", true},
			{"!=", "10", false},
		}
		for _, tc := range cases {
			ok, err := evaluator.Evaluate(ctx, nil, conditionJSON([3]string{prop.ID.String(), tc.op, tc.value}), sc)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, ok, fmt.Sprintf("10 %s %s", tc.op, tc.value))
		}
	})

	t.Run("Non-numeric value for numeric property closes the gate", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		evaluator := newEvaluator(storyRepo, sessionRepo)

		prop := &sharedModels.Property{
			ID:           uuid.New(),
			Name:         "trust_level",
			Type:         sharedModels.PropertyTypeNumber,
			DefaultValue: "not-a-number",
		}
		storyRepo.On("GetProperty", mock.Anything, mock.Anything, prop.ID).Return(prop, nil)
		sessionRepo.On("GetPropertyOverride", mock.Anything, mock.Anything, sc.ID, prop.ID).
			Return(nil, sharedModels.ErrNotFound)

		ok, err := evaluator.Evaluate(ctx, nil, conditionJSON([3]string{prop.ID.String(), ">", "5"}), sc)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("All clauses must hold", func(t *testing.T) {
		storyRepo := new(sharedMocks.MockStoryRepository)
		sessionRepo := new(sharedMocks.MockSessionRepository)
		evaluator := newEvaluator(storyRepo, sessionRepo)

		propA := &sharedModels.Property{ID: uuid.New(), Name: "a", Type: sharedModels.PropertyTypeString, DefaultValue: "yes"}
		propB := &sharedModels.Property{ID: uuid.New(), Name: "b", Type: sharedModels.PropertyTypeString, DefaultValue: "no"}
		storyRepo.On("GetProperty", mock.Anything, mock.Anything, propA.ID).Return(propA, nil)
		storyRepo.On("GetProperty", mock.Anything, mock.Anything, propB.ID).Return(propB, nil)
		sessionRepo.On("GetPropertyOverride", mock.Anything, mock.Anything, sc.ID, mock.Anything).
			Return(nil, sharedModels.ErrNotFound)

		// Первое сравнение истинно, второе ложно: конъюнкция ложна.
		cond := conditionJSON(
			[3]string{propA.ID.String(), "==", "yes"},
			[3]string{propB.ID.String(), "==", "yes"},
		)
		ok, err := evaluator.Evaluate(ctx, nil, cond, sc)
		assert.NoError(t, err)
		assert.False(t, ok)

		// Оба истинны: конъюнкция истинна.
		cond = conditionJSON(
			[3]string{propA.ID.String(), "==", "yes"},
			[3]string{propB.ID.String(), "==", "no"},
		)
		ok, err = evaluator.Evaluate(ctx, nil, cond, sc)
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}
