package service_test

import (
	"context"
	"testing"

	"gamebook-server/gameplay-service/internal/service"
	"gamebook-server/shared/interfaces"
	sharedMocks "gamebook-server/shared/interfaces/mocks"
	sharedModels "gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// passthroughTxManager выполняет функцию без реальной транзакции.
type passthroughTxManager struct{}

func (passthroughTxManager) WithTransaction(ctx context.Context, fn func(context.Context, interfaces.DBTX) error) error {
	return fn(ctx, nil)
}

type playFixture struct {
	storyRepo   *sharedMocks.MockStoryRepository
	sessionRepo *sharedMocks.MockSessionRepository
	gamelogRepo *sharedMocks.MockGamelogRepository
	play        service.PlayService
}

func newPlayFixture() *playFixture {
	logger := zap.NewNop()
	storyRepo := new(sharedMocks.MockStoryRepository)
	sessionRepo := new(sharedMocks.MockSessionRepository)
	gamelogRepo := new(sharedMocks.MockGamelogRepository)

	props := service.NewPropertyStore(sessionRepo, logger)
	evaluator := service.NewConditionEvaluator(storyRepo, props, logger)
	tracker := service.NewSessionTracker(storyRepo, sessionRepo, logger)
	effects := service.NewEffectProcessor(storyRepo, sessionRepo, tracker, props, evaluator, logger)

	play := service.NewPlayService(
		nil, passthroughTxManager{}, storyRepo, sessionRepo, gamelogRepo,
		tracker, evaluator, effects, nil, logger,
	)
	return &playFixture{
		storyRepo:   storyRepo,
		sessionRepo: sessionRepo,
		gamelogRepo: gamelogRepo,
		play:        play,
	}
}

func TestGetView(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("View joins visible blocks and lists visible actions", func(t *testing.T) {
		f := newPlayFixture()

		sc := &sharedModels.SessionCharacter{ID: uuid.New(), SessionID: uuid.New(), CurrentSceneID: uuid.New(), CurrentMomentID: uuid.New()}
		session := &sharedModels.Session{
			ID: sc.SessionID, UserID: userID,
			Status: sharedModels.SessionStatusActive, ActiveCharacterID: &sc.ID,
		}

		shown := &sharedModels.Block{ID: uuid.New(), Content: "Дверь заперта.", Visible: true}
		authorHidden := &sharedModels.Block{ID: uuid.New(), Content: "скрытый", Visible: false}
		overrideHidden := &sharedModels.Block{ID: uuid.New(), Content: "погашенный", Visible: true}
		overrideShown := &sharedModels.Block{ID: uuid.New(), Content: "Из-за двери слышен шорох.", Visible: false}

		offered := &sharedModels.Action{ID: uuid.New(), Content: "Открыть дверь", Visible: true}
		hiddenAction := &sharedModels.Action{ID: uuid.New(), Content: "Уйти", Visible: true}

		f.sessionRepo.On("GetSession", mock.Anything, mock.Anything, session.ID).Return(session, nil)
		f.sessionRepo.On("GetSessionCharacter", mock.Anything, mock.Anything, sc.ID).Return(sc, nil)
		f.storyRepo.On("ListBlocksAt", mock.Anything, mock.Anything, sc.CurrentSceneID, sc.CurrentMomentID).
			Return([]*sharedModels.Block{shown, authorHidden, overrideHidden, overrideShown}, nil)
		f.sessionRepo.On("GetBlockOverrides", mock.Anything, mock.Anything, sc.ID, mock.Anything).
			Return(map[uuid.UUID]bool{overrideHidden.ID: false, overrideShown.ID: true}, nil)
		f.storyRepo.On("ListActionsAt", mock.Anything, mock.Anything, sc.CurrentSceneID, sc.CurrentMomentID).
			Return([]*sharedModels.Action{offered, hiddenAction}, nil)
		f.sessionRepo.On("GetActionOverrides", mock.Anything, mock.Anything, sc.ID, mock.Anything).
			Return(map[uuid.UUID]bool{hiddenAction.ID: false}, nil)

		view, err := f.play.GetView(ctx, userID, session.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Дверь заперта.\n\nИз-за двери слышен шорох.", view.Vision)
		assert.Len(t, view.Actions, 1)
		assert.Equal(t, offered.ID, view.Actions[0].ID)
		assert.Equal(t, "Открыть дверь", view.Actions[0].Content)
	})

	t.Run("Foreign session is forbidden", func(t *testing.T) {
		f := newPlayFixture()

		session := &sharedModels.Session{ID: uuid.New(), UserID: uuid.New(), Status: sharedModels.SessionStatusActive}
		f.sessionRepo.On("GetSession", mock.Anything, mock.Anything, session.ID).Return(session, nil)

		_, err := f.play.GetView(ctx, userID, session.ID)
		assert.ErrorIs(t, err, sharedModels.ErrForbidden)
	})
}

func TestApplyAction(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	// Базовая раскладка: одна сцена, один момент, один блок, одно действие
	// без условия и без эффектов.
	setup := func(f *playFixture) (*sharedModels.Session, *sharedModels.SessionCharacter, *sharedModels.Action) {
		sc := &sharedModels.SessionCharacter{ID: uuid.New(), SessionID: uuid.New(), CurrentSceneID: uuid.New(), CurrentMomentID: uuid.New()}
		session := &sharedModels.Session{
			ID: sc.SessionID, UserID: userID,
			Status: sharedModels.SessionStatusActive, ActiveCharacterID: &sc.ID,
		}
		action := &sharedModels.Action{ID: uuid.New(), Content: "Открыть дверь", Visible: true}
		block := &sharedModels.Block{ID: uuid.New(), Content: "Дверь заперта.", Visible: true}

		f.sessionRepo.On("GetSession", mock.Anything, mock.Anything, session.ID).Return(session, nil)
		f.sessionRepo.On("GetSessionCharacter", mock.Anything, mock.Anything, sc.ID).Return(sc, nil)
		f.storyRepo.On("ListBlocksAt", mock.Anything, mock.Anything, sc.CurrentSceneID, sc.CurrentMomentID).
			Return([]*sharedModels.Block{block}, nil)
		f.sessionRepo.On("GetBlockOverrides", mock.Anything, mock.Anything, sc.ID, mock.Anything).
			Return(map[uuid.UUID]bool{}, nil)
		f.storyRepo.On("ListActionsAt", mock.Anything, mock.Anything, sc.CurrentSceneID, sc.CurrentMomentID).
			Return([]*sharedModels.Action{action}, nil)
		f.sessionRepo.On("GetActionOverrides", mock.Anything, mock.Anything, sc.ID, mock.Anything).
			Return(map[uuid.UUID]bool{}, nil)
		return session, sc, action
	}

	t.Run("Applied action writes vision then choice to the gamelog", func(t *testing.T) {
		f := newPlayFixture()
		session, _, action := setup(f)

		var logged []*sharedModels.GamelogEntry
		f.gamelogRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				logged = append(logged, args.Get(2).(*sharedModels.GamelogEntry))
			}).Return(nil).Twice()
		f.storyRepo.On("GetAction", mock.Anything, mock.Anything, action.ID).Return(action, nil).Once()

		outcome, err := f.play.ApplyAction(ctx, userID, session.ID, action.ID)
		assert.NoError(t, err)
		assert.True(t, outcome.Applied)
		assert.False(t, outcome.Finished)

		// Сначала то, что игрок видел, затем что он выбрал.
		assert.Len(t, logged, 2)
		assert.Equal(t, sharedModels.GamelogSourceGame, logged[0].Source)
		assert.Equal(t, "Дверь заперта.", logged[0].Text)
		assert.Equal(t, sharedModels.GamelogSourceUser, logged[1].Source)
		assert.Equal(t, "Открыть дверь", logged[1].Text)
	})

	t.Run("Action outside the current position is not applied", func(t *testing.T) {
		f := newPlayFixture()
		session, _, _ := setup(f)

		outcome, err := f.play.ApplyAction(ctx, userID, session.ID, uuid.New())
		assert.NoError(t, err)
		assert.False(t, outcome.Applied)
		// Непредложенное действие не оставляет следов в журнале.
		f.gamelogRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Finished session rejects actions", func(t *testing.T) {
		f := newPlayFixture()

		session := &sharedModels.Session{ID: uuid.New(), UserID: userID, Status: sharedModels.SessionStatusFinished}
		f.sessionRepo.On("GetSession", mock.Anything, mock.Anything, session.ID).Return(session, nil)

		_, err := f.play.ApplyAction(ctx, userID, session.ID, uuid.New())
		assert.ErrorIs(t, err, sharedModels.ErrSessionFinished)
	})

	t.Run("Hidden-by-override action is treated as not offered", func(t *testing.T) {
		f := newPlayFixture()

		sc := &sharedModels.SessionCharacter{ID: uuid.New(), SessionID: uuid.New(), CurrentSceneID: uuid.New(), CurrentMomentID: uuid.New()}
		session := &sharedModels.Session{
			ID: sc.SessionID, UserID: userID,
			Status: sharedModels.SessionStatusActive, ActiveCharacterID: &sc.ID,
		}
		action := &sharedModels.Action{ID: uuid.New(), Content: "Открыть дверь", Visible: true}

		f.sessionRepo.On("GetSession", mock.Anything, mock.Anything, session.ID).Return(session, nil)
		f.sessionRepo.On("GetSessionCharacter", mock.Anything, mock.Anything, sc.ID).Return(sc, nil)
		f.storyRepo.On("ListBlocksAt", mock.Anything, mock.Anything, sc.CurrentSceneID, sc.CurrentMomentID).
			Return([]*sharedModels.Block{}, nil)
		f.sessionRepo.On("GetBlockOverrides", mock.Anything, mock.Anything, sc.ID, mock.Anything).
			Return(map[uuid.UUID]bool{}, nil)
		f.storyRepo.On("ListActionsAt", mock.Anything, mock.Anything, sc.CurrentSceneID, sc.CurrentMomentID).
			Return([]*sharedModels.Action{action}, nil)
		f.sessionRepo.On("GetActionOverrides", mock.Anything, mock.Anything, sc.ID, mock.Anything).
			Return(map[uuid.UUID]bool{action.ID: false}, nil)

		outcome, err := f.play.ApplyAction(ctx, userID, session.ID, action.ID)
		assert.NoError(t, err)
		assert.False(t, outcome.Applied)
	})
}

func TestStartGame(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Draft is playable only by its author", func(t *testing.T) {
		f := newPlayFixture()

		game := &sharedModels.Game{ID: uuid.New(), AuthorID: uuid.New(), Status: sharedModels.GameStatusDraft}
		f.storyRepo.On("GetGame", mock.Anything, mock.Anything, game.ID).Return(game, nil)

		_, err := f.play.StartGame(ctx, userID, game.ID)
		assert.ErrorIs(t, err, sharedModels.ErrGameNotPublished)
	})
}

func TestGetGamelog(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Transcript is returned newest first with a clamped limit", func(t *testing.T) {
		f := newPlayFixture()

		session := &sharedModels.Session{ID: uuid.New(), UserID: userID, Status: sharedModels.SessionStatusActive}
		entries := []*sharedModels.GamelogEntry{
			{Source: sharedModels.GamelogSourceUser, Text: "Открыть дверь"},
			{Source: sharedModels.GamelogSourceGame, Text: "Дверь заперта."},
		}
		f.sessionRepo.On("GetSession", mock.Anything, mock.Anything, session.ID).Return(session, nil)
		// limit <= 0 заменяется значением по умолчанию.
		f.gamelogRepo.On("ListBySession", mock.Anything, mock.Anything, session.ID, 50).
			Return(entries, nil).Once()

		got, err := f.play.GetGamelog(ctx, userID, session.ID, 0)
		assert.NoError(t, err)
		assert.Equal(t, entries, got)
		f.gamelogRepo.AssertExpectations(t)
	})
}

func TestListPublishedGames(t *testing.T) {
	ctx := context.Background()

	t.Run("Catalogue limit is clamped to its default", func(t *testing.T) {
		f := newPlayFixture()

		games := []*sharedModels.Game{{ID: uuid.New(), Name: "Побег из подземелья"}}
		f.storyRepo.On("ListPublishedGames", mock.Anything, mock.Anything, 50).
			Return(games, nil).Twice()

		got, err := f.play.ListPublishedGames(ctx, 0)
		assert.NoError(t, err)
		assert.Equal(t, games, got)

		// Слишком большой лимит тоже приводится к значению по умолчанию.
		_, err = f.play.ListPublishedGames(ctx, 10000)
		assert.NoError(t, err)
		f.storyRepo.AssertExpectations(t)
	})
}
