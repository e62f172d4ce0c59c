package service_test

import (
	"context"
	"errors"
	"testing"

	"gamebook-server/gameplay-service/internal/service"
	sharedMocks "gamebook-server/shared/interfaces/mocks"
	sharedModels "gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestPropertyStore(t *testing.T) {
	ctx := context.Background()
	scID := uuid.New()
	prop := &sharedModels.Property{
		ID:           uuid.New(),
		Name:         "has_key",
		Type:         sharedModels.PropertyTypeString,
		DefaultValue: "no",
	}

	t.Run("Read without override returns authored default", func(t *testing.T) {
		sessionRepo := new(sharedMocks.MockSessionRepository)
		store := service.NewPropertyStore(sessionRepo, zap.NewNop())

		sessionRepo.On("GetPropertyOverride", mock.Anything, mock.Anything, scID, prop.ID).
			Return(nil, sharedModels.ErrNotFound).Once()

		value, err := store.GetEffectiveValue(ctx, nil, prop, scID)
		assert.NoError(t, err)
		assert.Equal(t, "no", value)

		// Чтение не создает переопределение.
		sessionRepo.AssertNotCalled(t, "UpsertPropertyOverride", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("Read with override returns the override", func(t *testing.T) {
		sessionRepo := new(sharedMocks.MockSessionRepository)
		store := service.NewPropertyStore(sessionRepo, zap.NewNop())

		sessionRepo.On("GetPropertyOverride", mock.Anything, mock.Anything, scID, prop.ID).
			Return(&sharedModels.SessionProperty{CurrentValue: "yes"}, nil).Once()

		value, err := store.GetEffectiveValue(ctx, nil, prop, scID)
		assert.NoError(t, err)
		assert.Equal(t, "yes", value)
	})

	t.Run("Write upserts the override", func(t *testing.T) {
		sessionRepo := new(sharedMocks.MockSessionRepository)
		store := service.NewPropertyStore(sessionRepo, zap.NewNop())

		sessionRepo.On("UpsertPropertyOverride", mock.Anything, mock.Anything, scID, prop.ID, "yes").
			Return(nil).Once()

		err := store.SetEffectiveValue(ctx, nil, prop, scID, "yes")
		assert.NoError(t, err)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("Storage failure propagates", func(t *testing.T) {
		sessionRepo := new(sharedMocks.MockSessionRepository)
		store := service.NewPropertyStore(sessionRepo, zap.NewNop())

		dbErr := errors.New("connection reset")
		sessionRepo.On("GetPropertyOverride", mock.Anything, mock.Anything, scID, prop.ID).
			Return(nil, dbErr).Once()

		_, err := store.GetEffectiveValue(ctx, nil, prop, scID)
		assert.ErrorIs(t, err, dbErr)
	})
}
