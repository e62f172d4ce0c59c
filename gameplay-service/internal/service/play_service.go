package service

import (
	"context"
	"fmt"
	"strings"

	"gamebook-server/gameplay-service/internal/messaging"
	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultGamelogLimit = 50
	maxGamelogLimit     = 200

	defaultListLimit = 50
	maxListLimit     = 200
)

// StartedGame - результат запуска игры: созданная сессия и стартовый вид.
type StartedGame struct {
	Session *models.Session
	View    models.GameView
}

// ActionOutcome - результат попытки применить действие. Applied = false
// означает, что действие не предлагалось игроку в текущей позиции;
// View в любом случае содержит актуальное состояние сцены.
type ActionOutcome struct {
	Applied  bool
	Finished bool
	View     models.GameView
}

// PlayService - внешняя граница игрового движка. Оркестрирует трекер сессий,
// вычислитель условий и обработчик эффектов; все мутации выполняет в одной
// транзакции на операцию.
type PlayService interface {
	// ListPublishedGames возвращает каталог опубликованных игр.
	ListPublishedGames(ctx context.Context, limit int) ([]*models.Game, error)

	// StartGame завершает предыдущие активные сессии пары (игрок, игра)
	// и создает новую с персонажами на стартовых позициях.
	StartGame(ctx context.Context, userID, gameID uuid.UUID) (*StartedGame, error)

	// GetView возвращает текущий вид активного персонажа сессии.
	GetView(ctx context.Context, userID, sessionID uuid.UUID) (*models.GameView, error)

	// ApplyAction применяет выбранное игроком действие: пишет журнал,
	// выполняет эффекты и возвращает обновленный вид.
	ApplyAction(ctx context.Context, userID, sessionID, actionID uuid.UUID) (*ActionOutcome, error)

	// SetActiveCharacter переключает управление на другого персонажа партии.
	SetActiveCharacter(ctx context.Context, userID, sessionID, sessionCharacterID uuid.UUID) error

	// FinishGame явно завершает сессию. Повторный вызов - no-op.
	FinishGame(ctx context.Context, userID, sessionID uuid.UUID) error

	// GetGamelog возвращает журнал сессии, новые записи первыми.
	GetGamelog(ctx context.Context, userID, sessionID uuid.UUID, limit int) ([]*models.GamelogEntry, error)
}

type playServiceImpl struct {
	db          interfaces.DBTX
	txm         TxManager
	storyRepo   interfaces.StoryRepository
	sessionRepo interfaces.SessionRepository
	gamelogRepo interfaces.GamelogRepository
	tracker     *SessionTracker
	evaluator   *ConditionEvaluator
	effects     *EffectProcessor
	updatePub   messaging.GameUpdatePublisher
	logger      *zap.Logger
}

var _ PlayService = (*playServiceImpl)(nil)

// NewPlayService создает игровой сервис. updatePub может быть nil -
// тогда клиентские обновления просто не публикуются (удобно в тестах).
func NewPlayService(
	db interfaces.DBTX,
	txm TxManager,
	storyRepo interfaces.StoryRepository,
	sessionRepo interfaces.SessionRepository,
	gamelogRepo interfaces.GamelogRepository,
	tracker *SessionTracker,
	evaluator *ConditionEvaluator,
	effects *EffectProcessor,
	updatePub messaging.GameUpdatePublisher,
	logger *zap.Logger,
) PlayService {
	return &playServiceImpl{
		db:          db,
		txm:         txm,
		storyRepo:   storyRepo,
		sessionRepo: sessionRepo,
		gamelogRepo: gamelogRepo,
		tracker:     tracker,
		evaluator:   evaluator,
		effects:     effects,
		updatePub:   updatePub,
		logger:      logger.Named("PlayService"),
	}
}

func (s *playServiceImpl) ListPublishedGames(ctx context.Context, limit int) ([]*models.Game, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	return s.storyRepo.ListPublishedGames(ctx, s.db, limit)
}

func (s *playServiceImpl) StartGame(ctx context.Context, userID, gameID uuid.UUID) (*StartedGame, error) {
	game, err := s.storyRepo.GetGame(ctx, s.db, gameID)
	if err != nil {
		return nil, err
	}
	// Черновик доступен для игры только его автору (предпросмотр).
	if !game.IsPublished() && game.AuthorID != userID {
		return nil, models.ErrGameNotPublished
	}

	var session *models.Session
	err = s.txm.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		session, err = s.tracker.StartNewSession(ctx, q, game, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	sc, err := s.activeCharacter(ctx, s.db, session)
	if err != nil {
		return nil, err
	}
	view, err := s.buildView(ctx, s.db, sc)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Game started",
		zap.String("gameID", gameID.String()),
		zap.String("userID", userID.String()),
		zap.String("sessionID", session.ID.String()))

	return &StartedGame{Session: session, View: *view}, nil
}

func (s *playServiceImpl) GetView(ctx context.Context, userID, sessionID uuid.UUID) (*models.GameView, error) {
	session, err := s.authorizeSession(ctx, s.db, userID, sessionID)
	if err != nil {
		return nil, err
	}
	sc, err := s.activeCharacter(ctx, s.db, session)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, s.db, sc)
}

func (s *playServiceImpl) ApplyAction(ctx context.Context, userID, sessionID, actionID uuid.UUID) (*ActionOutcome, error) {
	outcome := &ActionOutcome{}
	var session *models.Session
	var sc *models.SessionCharacter

	err := s.txm.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		var err error
		session, err = s.authorizeSession(ctx, q, userID, sessionID)
		if err != nil {
			return err
		}
		if session.IsFinished() {
			return models.ErrSessionFinished
		}
		sc, err = s.activeCharacter(ctx, q, session)
		if err != nil {
			return err
		}

		available, err := s.visibleActions(ctx, q, sc)
		if err != nil {
			return err
		}
		var chosen *models.Action
		for _, action := range available {
			if action.ID == actionID {
				chosen = action
				break
			}
		}
		if chosen == nil {
			s.logger.Warn("Action not available at current position",
				zap.String("sessionID", sessionID.String()),
				zap.String("actionID", actionID.String()))
			return nil
		}

		// Журнал фиксирует вид до применения эффектов: сначала то, что
		// игрок видел, затем что он выбрал.
		preView, err := s.buildView(ctx, q, sc)
		if err != nil {
			return err
		}
		if err := s.gamelogRepo.Append(ctx, q, &models.GamelogEntry{
			SessionID: sessionID,
			Source:    models.GamelogSourceGame,
			Text:      preView.Vision,
		}); err != nil {
			return err
		}
		if err := s.gamelogRepo.Append(ctx, q, &models.GamelogEntry{
			SessionID: sessionID,
			Source:    models.GamelogSourceUser,
			Text:      chosen.Content,
		}); err != nil {
			return err
		}

		// Действие из листинга без эффектов; перечитываем целиком.
		full, err := s.storyRepo.GetAction(ctx, q, chosen.ID)
		if err != nil {
			return err
		}
		fired, err := s.effects.Fire(ctx, q, full, sc)
		if err != nil {
			return err
		}
		if !fired {
			s.logger.Warn("Action gate rejected an offered action",
				zap.String("actionID", chosen.ID.String()))
		}
		outcome.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := s.buildView(ctx, s.db, sc)
	if err != nil {
		return nil, err
	}
	outcome.View = *view
	outcome.Finished = session.IsFinished()

	if outcome.Applied && s.updatePub != nil {
		pubErr := s.updatePub.PublishGameUpdate(ctx, models.ClientGameUpdate{
			SessionID: sessionID,
			UserID:    userID,
			View:      outcome.View,
			Finished:  outcome.Finished,
		})
		if pubErr != nil {
			// Доставка обновления - best effort; действие уже применено.
			s.logger.Error("Failed to publish client game update",
				zap.String("sessionID", sessionID.String()),
				zap.Error(pubErr))
		}
	}

	return outcome, nil
}

func (s *playServiceImpl) SetActiveCharacter(ctx context.Context, userID, sessionID, sessionCharacterID uuid.UUID) error {
	return s.txm.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		session, err := s.authorizeSession(ctx, q, userID, sessionID)
		if err != nil {
			return err
		}
		if session.IsFinished() {
			return models.ErrSessionFinished
		}
		sc, err := s.sessionRepo.GetSessionCharacter(ctx, q, sessionCharacterID)
		if err != nil {
			return err
		}
		if sc.SessionID != sessionID {
			return fmt.Errorf("%w: персонаж принадлежит другой сессии", models.ErrValidation)
		}
		return s.sessionRepo.SetActiveCharacter(ctx, q, sessionID, sessionCharacterID)
	})
}

func (s *playServiceImpl) FinishGame(ctx context.Context, userID, sessionID uuid.UUID) error {
	return s.txm.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		session, err := s.authorizeSession(ctx, q, userID, sessionID)
		if err != nil {
			return err
		}
		if session.IsFinished() {
			return nil
		}
		return s.tracker.Finish(ctx, q, sessionID)
	})
}

func (s *playServiceImpl) GetGamelog(ctx context.Context, userID, sessionID uuid.UUID, limit int) ([]*models.GamelogEntry, error) {
	if _, err := s.authorizeSession(ctx, s.db, userID, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultGamelogLimit
	}
	if limit > maxGamelogLimit {
		limit = maxGamelogLimit
	}
	return s.gamelogRepo.ListBySession(ctx, s.db, sessionID, limit)
}

// authorizeSession загружает сессию и проверяет, что она принадлежит игроку.
func (s *playServiceImpl) authorizeSession(ctx context.Context, q interfaces.DBTX, userID, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessionRepo.GetSession(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, models.ErrForbidden
	}
	return session, nil
}

// activeCharacter возвращает персонажа, которым игрок управляет сейчас.
func (s *playServiceImpl) activeCharacter(ctx context.Context, q interfaces.DBTX, session *models.Session) (*models.SessionCharacter, error) {
	if session.ActiveCharacterID == nil {
		return nil, models.ErrNoActiveCharacter
	}
	return s.sessionRepo.GetSessionCharacter(ctx, q, *session.ActiveCharacterID)
}

// buildView собирает вид текущей позиции персонажа: текст из видимых блоков
// с выполненными условиями плюс список доступных действий. Блок или действие
// видимы, если переопределение сессии (а при его отсутствии - авторский флаг)
// разрешает показ И условие выполняется на текущих значениях свойств.
func (s *playServiceImpl) buildView(ctx context.Context, q interfaces.DBTX, sc *models.SessionCharacter) (*models.GameView, error) {
	blocks, err := s.storyRepo.ListBlocksAt(ctx, q, sc.CurrentSceneID, sc.CurrentMomentID)
	if err != nil {
		return nil, err
	}
	blockIDs := make([]uuid.UUID, 0, len(blocks))
	for _, b := range blocks {
		blockIDs = append(blockIDs, b.ID)
	}
	blockOverrides, err := s.sessionRepo.GetBlockOverrides(ctx, q, sc.ID, blockIDs)
	if err != nil {
		return nil, err
	}

	var parts []string
	for _, block := range blocks {
		visible := block.Visible
		if override, ok := blockOverrides[block.ID]; ok {
			visible = override
		}
		if !visible {
			continue
		}
		ok, err := s.evaluator.Evaluate(ctx, q, block.Condition, sc)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		parts = append(parts, block.Content)
	}

	actions, err := s.visibleActions(ctx, q, sc)
	if err != nil {
		return nil, err
	}
	options := make([]models.ActionOption, 0, len(actions))
	for _, action := range actions {
		options = append(options, models.ActionOption{ID: action.ID, Content: action.Content})
	}

	return &models.GameView{
		Vision:  strings.Join(parts, "\n\n"),
		Actions: options,
	}, nil
}

// visibleActions возвращает действия, доступные персонажу в текущей позиции,
// в авторском порядке. Правила видимости те же, что и у блоков.
func (s *playServiceImpl) visibleActions(ctx context.Context, q interfaces.DBTX, sc *models.SessionCharacter) ([]*models.Action, error) {
	actions, err := s.storyRepo.ListActionsAt(ctx, q, sc.CurrentSceneID, sc.CurrentMomentID)
	if err != nil {
		return nil, err
	}
	actionIDs := make([]uuid.UUID, 0, len(actions))
	for _, a := range actions {
		actionIDs = append(actionIDs, a.ID)
	}
	overrides, err := s.sessionRepo.GetActionOverrides(ctx, q, sc.ID, actionIDs)
	if err != nil {
		return nil, err
	}

	var visible []*models.Action
	for _, action := range actions {
		show := action.Visible
		if override, ok := overrides[action.ID]; ok {
			show = override
		}
		if !show {
			continue
		}
		ok, err := s.evaluator.Evaluate(ctx, q, action.Condition, sc)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		visible = append(visible, action)
	}
	return visible, nil
}
