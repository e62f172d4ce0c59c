package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"go.uber.org/zap"
)

// ConditionEvaluator вычисляет сериализованные условия видимости против
// состояния конкретного SessionCharacter.
//
// Семантика конъюнктивная: условие выполнено, только если выполнены ВСЕ
// сравнения. Пустое условие всегда истинно. Любая проблема с авторскими
// данными (несуществующее свойство, нечитаемое условие, нечисловое значение
// у числового свойства) закрывает гейт (fail-closed): ход живого игрока не
// должен падать из-за плохих авторских данных.
//
// Вычисление никогда не мутирует состояние.
type ConditionEvaluator struct {
	storyRepo interfaces.StoryRepository
	props     *PropertyStore
	logger    *zap.Logger
}

// NewConditionEvaluator создает новый вычислитель условий.
func NewConditionEvaluator(storyRepo interfaces.StoryRepository, props *PropertyStore, logger *zap.Logger) *ConditionEvaluator {
	return &ConditionEvaluator{
		storyRepo: storyRepo,
		props:     props,
		logger:    logger.Named("ConditionEvaluator"),
	}
}

// Evaluate возвращает true, если условие выполнено для персонажа сессии.
// Возвращает ошибку только при сбое хранилища; проблемы авторских данных
// дают (false, nil).
func (e *ConditionEvaluator) Evaluate(ctx context.Context, q interfaces.DBTX, raw json.RawMessage, sc *models.SessionCharacter) (bool, error) {
	cond, err := models.ParseCondition(raw)
	if err != nil {
		e.logger.Warn("Malformed condition, gate closed",
			zap.String("sessionCharacterID", sc.ID.String()),
			zap.Error(err))
		return false, nil
	}

	for _, clause := range cond {
		property, err := e.storyRepo.GetProperty(ctx, q, clause.PropertyID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				// Ссылка на несуществующее свойство - авторская ошибка
				e.logger.Warn("Condition references unknown property, gate closed",
					zap.String("propertyID", clause.PropertyID.String()))
				return false, nil
			}
			return false, err
		}

		value, err := e.props.GetEffectiveValue(ctx, q, property, sc.ID)
		if err != nil {
			return false, err
		}

		ok, err := e.compare(property, value, clause)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// compare применяет одно сравнение с учетом типа свойства.
func (e *ConditionEvaluator) compare(property *models.Property, value string, clause models.ConditionClause) (bool, error) {
	if property.Type == models.PropertyTypeNumber {
		left, errL := strconv.ParseFloat(value, 64)
		right, errR := strconv.ParseFloat(clause.Value, 64)
		if errL != nil || errR != nil {
			e.logger.Warn("Non-numeric value for numeric property, gate closed",
				zap.String("property", property.Name),
				zap.String("value", value),
				zap.String("clauseValue", clause.Value))
			return false, nil
		}
		return compareOrdered(left, right, clause.Operator), nil
	}
	return compareOrdered(value, clause.Value, clause.Operator), nil
}

func compareOrdered[T string | float64](left, right T, op models.ConditionOperator) bool {
	switch op {
	case models.OpEqual:
		return left == right
	case models.OpNotEqual:
		return left != right
	case models.OpGreater:
		return left > right
	case models.OpGreaterEqual:
		return left >= right
	case models.OpLess:
		return left < right
	case models.OpLessEqual:
		return left <= right
	}
	return false
}
