package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PublishingService управляет жизненным циклом публикации квеста.
// Публикация проходит только через валидацию авторского контента:
// битые ссылки и условия должны ловиться здесь, а не на игроке.
type PublishingService interface {
	// Validate проверяет игру на готовность к публикации и возвращает
	// список найденных проблем (пустой список - игра готова).
	Validate(ctx context.Context, gameID uuid.UUID) ([]string, error)

	// Publish валидирует игру и переводит ее в статус published.
	// Разрешено только автору игры.
	Publish(ctx context.Context, userID, gameID uuid.UUID) error

	// Unpublish возвращает игру в черновик. Активные сессии доигрываются.
	Unpublish(ctx context.Context, userID, gameID uuid.UUID) error
}

type publishingServiceImpl struct {
	db        interfaces.DBTX
	storyRepo interfaces.StoryRepository
	logger    *zap.Logger
}

var _ PublishingService = (*publishingServiceImpl)(nil)

// NewPublishingService создает сервис публикации.
func NewPublishingService(db interfaces.DBTX, storyRepo interfaces.StoryRepository, logger *zap.Logger) PublishingService {
	return &publishingServiceImpl{
		db:        db,
		storyRepo: storyRepo,
		logger:    logger.Named("PublishingService"),
	}
}

func (s *publishingServiceImpl) Publish(ctx context.Context, userID, gameID uuid.UUID) error {
	game, err := s.storyRepo.GetGame(ctx, s.db, gameID)
	if err != nil {
		return err
	}
	if game.AuthorID != userID {
		return models.ErrForbidden
	}
	if game.IsPublished() {
		return nil
	}

	issues, err := s.Validate(ctx, gameID)
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		s.logger.Info("Publish rejected by validation",
			zap.String("gameID", gameID.String()),
			zap.Int("issues", len(issues)))
		return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(issues, "; "))
	}

	if err := s.storyRepo.UpdateGameStatus(ctx, s.db, gameID, models.GameStatusPublished); err != nil {
		return err
	}
	s.logger.Info("Game published", zap.String("gameID", gameID.String()))
	return nil
}

func (s *publishingServiceImpl) Unpublish(ctx context.Context, userID, gameID uuid.UUID) error {
	game, err := s.storyRepo.GetGame(ctx, s.db, gameID)
	if err != nil {
		return err
	}
	if game.AuthorID != userID {
		return models.ErrForbidden
	}
	if !game.IsPublished() {
		return nil
	}
	if err := s.storyRepo.UpdateGameStatus(ctx, s.db, gameID, models.GameStatusDraft); err != nil {
		return err
	}
	s.logger.Info("Game unpublished", zap.String("gameID", gameID.String()))
	return nil
}

// Validate собирает весь контент игры и проверяет структурные инварианты:
// наличие сцен, моментов и персонажей, целостность ссылок в условиях
// и эффектах, корректность типов значений.
func (s *publishingServiceImpl) Validate(ctx context.Context, gameID uuid.UUID) ([]string, error) {
	var issues []string

	scenes, err := s.storyRepo.ListScenes(ctx, s.db, gameID)
	if err != nil {
		return nil, err
	}
	characters, err := s.storyRepo.ListCharacters(ctx, s.db, gameID)
	if err != nil {
		return nil, err
	}
	properties, err := s.storyRepo.ListProperties(ctx, s.db, gameID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.storyRepo.ListBlocks(ctx, s.db, gameID)
	if err != nil {
		return nil, err
	}
	actions, err := s.storyRepo.ListActions(ctx, s.db, gameID)
	if err != nil {
		return nil, err
	}

	if len(scenes) == 0 {
		issues = append(issues, "в игре нет ни одной сцены")
	}
	if len(characters) == 0 {
		issues = append(issues, "в игре нет ни одного персонажа")
	}

	sceneIDs := make(map[uuid.UUID]bool, len(scenes))
	for _, scene := range scenes {
		sceneIDs[scene.ID] = true
		count, err := s.storyRepo.CountMoments(ctx, s.db, scene.ID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			issues = append(issues, fmt.Sprintf("сцена '%s' не содержит моментов", scene.Name))
		}
	}

	for _, character := range characters {
		if character.StartSceneID != nil && !sceneIDs[*character.StartSceneID] {
			issues = append(issues, fmt.Sprintf("стартовая сцена персонажа '%s' не принадлежит игре", character.Name))
		}
	}

	propsByID := make(map[uuid.UUID]*models.Property, len(properties))
	for _, prop := range properties {
		propsByID[prop.ID] = prop
	}
	blockIDs := make(map[uuid.UUID]bool, len(blocks))
	for _, block := range blocks {
		blockIDs[block.ID] = true
	}
	actionIDs := make(map[uuid.UUID]bool, len(actions))
	for _, action := range actions {
		actionIDs[action.ID] = true
	}

	for _, block := range blocks {
		issues = append(issues, s.validateCondition(fmt.Sprintf("блок %s", block.ID), block.Condition, propsByID)...)
	}
	for _, action := range actions {
		label := fmt.Sprintf("действие %s", action.ID)
		issues = append(issues, s.validateCondition(label, action.Condition, propsByID)...)
		for _, effect := range action.Effects {
			issues = append(issues, s.validateEffect(ctx, label, effect, sceneIDs, blockIDs, actionIDs, propsByID)...)
		}
	}

	return issues, nil
}

func (s *publishingServiceImpl) validateCondition(label string, raw []byte, propsByID map[uuid.UUID]*models.Property) []string {
	if len(raw) == 0 {
		return nil
	}
	condition, err := models.ParseCondition(raw)
	if err != nil {
		return []string{fmt.Sprintf("%s: условие не разбирается: %v", label, err)}
	}

	var issues []string
	for _, clause := range condition {
		prop, ok := propsByID[clause.PropertyID]
		if !ok {
			issues = append(issues, fmt.Sprintf("%s: условие ссылается на чужое или удаленное свойство %s", label, clause.PropertyID))
			continue
		}
		if !clause.Operator.Valid() {
			issues = append(issues, fmt.Sprintf("%s: неизвестный оператор '%s'", label, clause.Operator))
		}
		if prop.Type == models.PropertyTypeNumber {
			if _, err := strconv.ParseFloat(clause.Value, 64); err != nil {
				issues = append(issues, fmt.Sprintf("%s: значение '%s' не является числом для свойства '%s'", label, clause.Value, prop.Name))
			}
		}
	}
	return issues
}

func (s *publishingServiceImpl) validateEffect(
	ctx context.Context,
	label string,
	effect models.AfterEffect,
	sceneIDs, blockIDs, actionIDs map[uuid.UUID]bool,
	propsByID map[uuid.UUID]*models.Property,
) []string {
	if !effect.Kind.Valid() {
		return []string{fmt.Sprintf("%s: неизвестный вид эффекта '%s'", label, effect.Kind)}
	}

	var issues []string
	switch effect.Kind {
	case models.EffectGoToScene:
		if effect.SceneID == nil {
			issues = append(issues, fmt.Sprintf("%s: у эффекта goToScene не задана сцена", label))
		} else if !sceneIDs[*effect.SceneID] {
			issues = append(issues, fmt.Sprintf("%s: эффект goToScene ссылается на чужую сцену %s", label, effect.SceneID))
		}
	case models.EffectGoToMoment:
		if effect.MomentID == nil {
			issues = append(issues, fmt.Sprintf("%s: у эффекта goToMoment не задан момент", label))
		} else {
			moment, err := s.storyRepo.GetMoment(ctx, s.db, *effect.MomentID)
			if err != nil || !sceneIDs[moment.SceneID] {
				issues = append(issues, fmt.Sprintf("%s: эффект goToMoment ссылается на чужой или удаленный момент %s", label, effect.MomentID))
			}
		}
	case models.EffectSetProperty:
		if effect.PropertyID == nil {
			issues = append(issues, fmt.Sprintf("%s: у эффекта setProperty не задано свойство", label))
			break
		}
		prop, ok := propsByID[*effect.PropertyID]
		if !ok {
			issues = append(issues, fmt.Sprintf("%s: эффект setProperty ссылается на чужое свойство %s", label, effect.PropertyID))
			break
		}
		if prop.Type == models.PropertyTypeNumber {
			if _, err := strconv.ParseFloat(effect.Value, 64); err != nil {
				issues = append(issues, fmt.Sprintf("%s: значение '%s' не является числом для свойства '%s'", label, effect.Value, prop.Name))
			}
		}
	case models.EffectHideBlock, models.EffectShowBlock:
		if effect.BlockID == nil {
			issues = append(issues, fmt.Sprintf("%s: у эффекта %s не задан блок", label, effect.Kind))
		} else if !blockIDs[*effect.BlockID] {
			issues = append(issues, fmt.Sprintf("%s: эффект %s ссылается на чужой блок %s", label, effect.Kind, effect.BlockID))
		}
	case models.EffectHideAction, models.EffectShowAction:
		if effect.TargetActionID == nil {
			issues = append(issues, fmt.Sprintf("%s: у эффекта %s не задано целевое действие", label, effect.Kind))
		} else if !actionIDs[*effect.TargetActionID] {
			issues = append(issues, fmt.Sprintf("%s: эффект %s ссылается на чужое действие %s", label, effect.Kind, effect.TargetActionID))
		}
	case models.EffectClearSceneBlocks, models.EffectClearSceneActions:
		// Сцена опциональна: nil означает текущую сцену персонажа.
		if effect.SceneID != nil && !sceneIDs[*effect.SceneID] {
			issues = append(issues, fmt.Sprintf("%s: эффект %s ссылается на чужую сцену %s", label, effect.Kind, effect.SceneID))
		}
	}
	return issues
}
