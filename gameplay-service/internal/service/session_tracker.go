package service

import (
	"context"
	"errors"
	"fmt"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionTracker управляет жизненным циклом сессий и курсором персонажей:
// старт нового прохождения, навигация по сценам и моментам, завершение.
type SessionTracker struct {
	storyRepo   interfaces.StoryRepository
	sessionRepo interfaces.SessionRepository
	logger      *zap.Logger
}

// NewSessionTracker создает новый трекер сессий.
func NewSessionTracker(storyRepo interfaces.StoryRepository, sessionRepo interfaces.SessionRepository, logger *zap.Logger) *SessionTracker {
	return &SessionTracker{
		storyRepo:   storyRepo,
		sessionRepo: sessionRepo,
		logger:      logger.Named("SessionTracker"),
	}
}

// StartNewSession завершает предыдущую активную сессию пары (игрок, игра)
// и создает свежую: по одному SessionCharacter на каждого персонажа игры,
// каждый на своей стартовой сцене и ее первом моменте. Активным становится
// персонаж с пометкой primary, иначе первый созданный.
func (t *SessionTracker) StartNewSession(ctx context.Context, q interfaces.DBTX, game *models.Game, userID uuid.UUID) (*models.Session, error) {
	finished, err := t.sessionRepo.FinishActiveSessions(ctx, q, userID, game.ID)
	if err != nil {
		return nil, fmt.Errorf("finish previous sessions: %w", err)
	}
	if finished > 0 {
		t.logger.Info("Finished previous active sessions",
			zap.String("userID", userID.String()),
			zap.String("gameID", game.ID.String()),
			zap.Int64("count", finished))
	}

	characters, err := t.storyRepo.ListCharacters(ctx, q, game.ID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	if len(characters) == 0 {
		return nil, models.ErrGameNotPlayable
	}

	session := &models.Session{
		ID:     uuid.New(),
		GameID: game.ID,
		UserID: userID,
		Status: models.SessionStatusActive,
	}
	if err := t.sessionRepo.CreateSession(ctx, q, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	var activeID uuid.UUID
	for _, character := range characters {
		sc, err := t.spawnCharacter(ctx, q, session, character)
		if err != nil {
			return nil, err
		}
		if activeID == uuid.Nil || character.IsPrimary {
			activeID = sc.ID
		}
	}

	if err := t.sessionRepo.SetActiveCharacter(ctx, q, session.ID, activeID); err != nil {
		return nil, fmt.Errorf("set active character: %w", err)
	}
	session.ActiveCharacterID = &activeID

	t.logger.Info("New session started",
		zap.String("sessionID", session.ID.String()),
		zap.String("userID", userID.String()),
		zap.String("gameID", game.ID.String()),
		zap.Int("characters", len(characters)))
	return session, nil
}

// spawnCharacter создает SessionCharacter на стартовой позиции персонажа.
func (t *SessionTracker) spawnCharacter(ctx context.Context, q interfaces.DBTX, session *models.Session, character *models.Character) (*models.SessionCharacter, error) {
	var startScene *models.Scene
	var err error

	if character.StartSceneID != nil {
		startScene, err = t.storyRepo.GetScene(ctx, q, *character.StartSceneID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("get start scene: %w", err)
		}
	}
	if startScene == nil {
		// Явной стартовой сцены нет - берем первую сцену игры по порядку
		startScene, err = t.storyRepo.GetFirstScene(ctx, q, session.GameID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.ErrGameNotPlayable
			}
			return nil, fmt.Errorf("get first scene: %w", err)
		}
	}

	startMoment, err := t.storyRepo.GetDefaultMoment(ctx, q, startScene.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Сцена без моментов - авторские данные не готовы к игре
			return nil, models.ErrGameNotPlayable
		}
		return nil, fmt.Errorf("get default moment: %w", err)
	}

	sc := &models.SessionCharacter{
		ID:              uuid.New(),
		SessionID:       session.ID,
		CharacterID:     character.ID,
		CurrentSceneID:  startScene.ID,
		CurrentMomentID: startMoment.ID,
	}
	if err := t.sessionRepo.CreateSessionCharacter(ctx, q, sc); err != nil {
		return nil, fmt.Errorf("create session character: %w", err)
	}
	return sc, nil
}

// GoToScene переводит курсор персонажа на сцену и ее момент по умолчанию.
// Невалидная цель (nil, сцена без моментов) - восстановимая авторская
// ошибка: позиция не меняется, пишется лог.
func (t *SessionTracker) GoToScene(ctx context.Context, q interfaces.DBTX, sc *models.SessionCharacter, scene *models.Scene) error {
	if scene == nil {
		t.logger.Warn("Cannot go to scene: no target",
			zap.String("sessionCharacterID", sc.ID.String()))
		return nil
	}

	moment, err := t.storyRepo.GetDefaultMoment(ctx, q, scene.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			t.logger.Warn("Cannot go to scene: scene has no moments",
				zap.String("sessionCharacterID", sc.ID.String()),
				zap.String("sceneID", scene.ID.String()))
			return nil
		}
		return err
	}

	if err := t.sessionRepo.UpdatePosition(ctx, q, sc.ID, scene.ID, moment.ID); err != nil {
		return err
	}
	sc.CurrentSceneID = scene.ID
	sc.CurrentMomentID = moment.ID
	return nil
}

// GoToMoment переводит курсор персонажа на момент. Переходы между сценами
// легальны: текущая сцена следует за сценой момента.
func (t *SessionTracker) GoToMoment(ctx context.Context, q interfaces.DBTX, sc *models.SessionCharacter, moment *models.Moment) error {
	if moment == nil {
		t.logger.Warn("Cannot go to moment: no target",
			zap.String("sessionCharacterID", sc.ID.String()))
		return nil
	}

	if err := t.sessionRepo.UpdatePosition(ctx, q, sc.ID, moment.SceneID, moment.ID); err != nil {
		return err
	}
	sc.CurrentSceneID = moment.SceneID
	sc.CurrentMomentID = moment.ID
	return nil
}

// Finish помечает сессию завершенной. Завершенные сессии неизменяемы:
// дальнейшие действия против них отклоняются на уровне PlayService.
func (t *SessionTracker) Finish(ctx context.Context, q interfaces.DBTX, sessionID uuid.UUID) error {
	return t.sessionRepo.UpdateSessionStatus(ctx, q, sessionID, models.SessionStatusFinished)
}
