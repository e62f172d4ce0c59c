package service

import (
	"context"
	"errors"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropertyStore разрешает эффективное значение свойства для конкретного
// SessionCharacter: запись-переопределение, если она есть, иначе авторское
// значение по умолчанию.
//
// Контракт ленивый-по-записи: чтение НЕ создает переопределение, запись
// всегда делает upsert. Так чтение остается свободным от гонок и побочных
// эффектов.
type PropertyStore struct {
	sessionRepo interfaces.SessionRepository
	logger      *zap.Logger
}

// NewPropertyStore создает новое хранилище свойств.
func NewPropertyStore(sessionRepo interfaces.SessionRepository, logger *zap.Logger) *PropertyStore {
	return &PropertyStore{
		sessionRepo: sessionRepo,
		logger:      logger.Named("PropertyStore"),
	}
}

// GetEffectiveValue возвращает текущее значение свойства для персонажа сессии.
func (s *PropertyStore) GetEffectiveValue(ctx context.Context, q interfaces.DBTX, property *models.Property, sessionCharacterID uuid.UUID) (string, error) {
	override, err := s.sessionRepo.GetPropertyOverride(ctx, q, sessionCharacterID, property.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Переопределения нет - персонаж все еще читает авторское значение
			return property.DefaultValue, nil
		}
		return "", err
	}
	return override.CurrentValue, nil
}

// SetEffectiveValue записывает значение свойства для персонажа сессии.
// Создает запись-переопределение при первой записи.
func (s *PropertyStore) SetEffectiveValue(ctx context.Context, q interfaces.DBTX, property *models.Property, sessionCharacterID uuid.UUID, value string) error {
	if err := s.sessionRepo.UpsertPropertyOverride(ctx, q, sessionCharacterID, property.ID, value); err != nil {
		return err
	}
	s.logger.Debug("Property value set",
		zap.String("sessionCharacterID", sessionCharacterID.String()),
		zap.String("property", property.Name),
		zap.String("value", value))
	return nil
}
