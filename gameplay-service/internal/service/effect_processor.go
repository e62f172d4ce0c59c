package service

import (
	"context"
	"errors"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EffectProcessor применяет эффекты выбранного действия к состоянию
// персонажа сессии. Эффекты выполняются строго в авторском порядке;
// после прохождения гейта самого действия они безусловны.
//
// Единственный компонент движка, который мутирует игровое состояние.
type EffectProcessor struct {
	storyRepo   interfaces.StoryRepository
	sessionRepo interfaces.SessionRepository
	tracker     *SessionTracker
	props       *PropertyStore
	evaluator   *ConditionEvaluator
	logger      *zap.Logger
}

// NewEffectProcessor создает новый обработчик эффектов.
func NewEffectProcessor(
	storyRepo interfaces.StoryRepository,
	sessionRepo interfaces.SessionRepository,
	tracker *SessionTracker,
	props *PropertyStore,
	evaluator *ConditionEvaluator,
	logger *zap.Logger,
) *EffectProcessor {
	return &EffectProcessor{
		storyRepo:   storyRepo,
		sessionRepo: sessionRepo,
		tracker:     tracker,
		props:       props,
		evaluator:   evaluator,
		logger:      logger.Named("EffectProcessor"),
	}
}

// Fire проверяет условие действия и, если оно выполнено, применяет все его
// эффекты в авторском порядке. Возвращает false, если гейт действия закрыт
// (защитный случай: вызывающий не должен был предлагать такое действие).
func (p *EffectProcessor) Fire(ctx context.Context, q interfaces.DBTX, action *models.Action, sc *models.SessionCharacter) (bool, error) {
	ok, err := p.evaluator.Evaluate(ctx, q, action.Condition, sc)
	if err != nil {
		return false, err
	}
	if !ok {
		p.logger.Warn("Suppressed fire of gated action",
			zap.String("actionID", action.ID.String()),
			zap.String("sessionCharacterID", sc.ID.String()))
		return false, nil
	}

	p.logger.Debug("Firing action effects",
		zap.String("actionID", action.ID.String()),
		zap.String("sessionCharacterID", sc.ID.String()),
		zap.Int("effects", len(action.Effects)))

	for _, effect := range action.Effects {
		if err := p.apply(ctx, q, effect, sc); err != nil {
			return false, err
		}
	}
	return true, nil
}

// apply выполняет один эффект. Невалидная цель (nil ссылка, удаленная
// сущность) - восстановимая авторская ошибка: эффект пропускается с логом,
// остальные эффекты действия все равно выполняются.
func (p *EffectProcessor) apply(ctx context.Context, q interfaces.DBTX, effect models.AfterEffect, sc *models.SessionCharacter) error {
	switch effect.Kind {
	case models.EffectGoToScene:
		if effect.SceneID == nil {
			p.skip(effect, "no scene target")
			return nil
		}
		scene, err := p.storyRepo.GetScene(ctx, q, *effect.SceneID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				p.skip(effect, "scene not found")
				return nil
			}
			return err
		}
		return p.tracker.GoToScene(ctx, q, sc, scene)

	case models.EffectGoToMoment:
		if effect.MomentID == nil {
			p.skip(effect, "no moment target")
			return nil
		}
		moment, err := p.storyRepo.GetMoment(ctx, q, *effect.MomentID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				p.skip(effect, "moment not found")
				return nil
			}
			return err
		}
		return p.tracker.GoToMoment(ctx, q, sc, moment)

	case models.EffectSetProperty:
		if effect.PropertyID == nil {
			p.skip(effect, "no property target")
			return nil
		}
		property, err := p.storyRepo.GetProperty(ctx, q, *effect.PropertyID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				p.skip(effect, "property not found")
				return nil
			}
			return err
		}
		return p.props.SetEffectiveValue(ctx, q, property, sc.ID, effect.Value)

	case models.EffectHideBlock, models.EffectShowBlock:
		if effect.BlockID == nil {
			p.skip(effect, "no block target")
			return nil
		}
		visible := effect.Kind == models.EffectShowBlock
		return p.sessionRepo.UpsertBlockVisibility(ctx, q, sc.ID, *effect.BlockID, visible)

	case models.EffectHideAction, models.EffectShowAction:
		if effect.TargetActionID == nil {
			p.skip(effect, "no action target")
			return nil
		}
		visible := effect.Kind == models.EffectShowAction
		return p.sessionRepo.UpsertActionVisibility(ctx, q, sc.ID, *effect.TargetActionID, visible)

	case models.EffectClearSceneBlocks:
		ids, err := p.storyRepo.ListSceneBlockIDs(ctx, q, p.targetScene(effect, sc))
		if err != nil {
			return err
		}
		return p.sessionRepo.HideBlocks(ctx, q, sc.ID, ids)

	case models.EffectClearSceneActions:
		ids, err := p.storyRepo.ListSceneActionIDs(ctx, q, p.targetScene(effect, sc))
		if err != nil {
			return err
		}
		return p.sessionRepo.HideActions(ctx, q, sc.ID, ids)
	}

	p.skip(effect, "unknown effect kind")
	return nil
}

// targetScene - сцена, к которой применяется clear-эффект: явная цель,
// иначе текущая сцена персонажа.
func (p *EffectProcessor) targetScene(effect models.AfterEffect, sc *models.SessionCharacter) uuid.UUID {
	if effect.SceneID != nil {
		return *effect.SceneID
	}
	return sc.CurrentSceneID
}

func (p *EffectProcessor) skip(effect models.AfterEffect, reason string) {
	p.logger.Warn("Skipping after effect",
		zap.String("effectID", effect.ID.String()),
		zap.String("kind", string(effect.Kind)),
		zap.String("reason", reason))
}
