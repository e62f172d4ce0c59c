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
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Сценарные тесты гоняют движок против хранилища состояния в памяти:
// моки фиксируют вызовы, но не умеют показать, что записи разных
// персонажей действительно не пересекаются.

type overrideKey struct {
	ownerID  uuid.UUID
	targetID uuid.UUID
}

// fakeSessionRepository - in-memory реализация SessionRepository.
// Переопределения лежат в картах с ключом (персонаж сессии, цель) -
// та же уникальность, что и у таблиц.
type fakeSessionRepository struct {
	sessions   map[uuid.UUID]*sharedModels.Session
	characters map[uuid.UUID]*sharedModels.SessionCharacter
	created    []uuid.UUID
	props      map[overrideKey]string
	blockVis   map[overrideKey]bool
	actionVis  map[overrideKey]bool
}

var _ interfaces.SessionRepository = (*fakeSessionRepository)(nil)

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{
		sessions:   make(map[uuid.UUID]*sharedModels.Session),
		characters: make(map[uuid.UUID]*sharedModels.SessionCharacter),
		props:      make(map[overrideKey]string),
		blockVis:   make(map[overrideKey]bool),
		actionVis:  make(map[overrideKey]bool),
	}
}

func (f *fakeSessionRepository) CreateSession(_ context.Context, _ interfaces.DBTX, session *sharedModels.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepository) GetSession(_ context.Context, _ interfaces.DBTX, id uuid.UUID) (*sharedModels.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, sharedModels.ErrNotFound
	}
	return session, nil
}

func (f *fakeSessionRepository) FinishActiveSessions(_ context.Context, _ interfaces.DBTX, userID, gameID uuid.UUID) (int64, error) {
	var finished int64
	for _, session := range f.sessions {
		if session.UserID == userID && session.GameID == gameID && !session.IsFinished() {
			session.Status = sharedModels.SessionStatusFinished
			finished++
		}
	}
	return finished, nil
}

func (f *fakeSessionRepository) UpdateSessionStatus(_ context.Context, _ interfaces.DBTX, id uuid.UUID, status sharedModels.SessionStatus) error {
	session, ok := f.sessions[id]
	if !ok {
		return sharedModels.ErrNotFound
	}
	session.Status = status
	return nil
}

func (f *fakeSessionRepository) SetActiveCharacter(_ context.Context, _ interfaces.DBTX, sessionID, sessionCharacterID uuid.UUID) error {
	session, ok := f.sessions[sessionID]
	if !ok {
		return sharedModels.ErrNotFound
	}
	id := sessionCharacterID
	session.ActiveCharacterID = &id
	return nil
}

func (f *fakeSessionRepository) CreateSessionCharacter(_ context.Context, _ interfaces.DBTX, sc *sharedModels.SessionCharacter) error {
	f.characters[sc.ID] = sc
	f.created = append(f.created, sc.ID)
	return nil
}

func (f *fakeSessionRepository) GetSessionCharacter(_ context.Context, _ interfaces.DBTX, id uuid.UUID) (*sharedModels.SessionCharacter, error) {
	sc, ok := f.characters[id]
	if !ok {
		return nil, sharedModels.ErrNotFound
	}
	return sc, nil
}

func (f *fakeSessionRepository) ListSessionCharacters(_ context.Context, _ interfaces.DBTX, sessionID uuid.UUID) ([]*sharedModels.SessionCharacter, error) {
	var out []*sharedModels.SessionCharacter
	for _, id := range f.created {
		if sc := f.characters[id]; sc.SessionID == sessionID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeSessionRepository) UpdatePosition(_ context.Context, _ interfaces.DBTX, sessionCharacterID, sceneID, momentID uuid.UUID) error {
	sc, ok := f.characters[sessionCharacterID]
	if !ok {
		return sharedModels.ErrNotFound
	}
	sc.CurrentSceneID = sceneID
	sc.CurrentMomentID = momentID
	return nil
}

func (f *fakeSessionRepository) GetPropertyOverride(_ context.Context, _ interfaces.DBTX, sessionCharacterID, propertyID uuid.UUID) (*sharedModels.SessionProperty, error) {
	value, ok := f.props[overrideKey{sessionCharacterID, propertyID}]
	if !ok {
		return nil, sharedModels.ErrNotFound
	}
	return &sharedModels.SessionProperty{
		SessionCharacterID: sessionCharacterID,
		PropertyID:         propertyID,
		CurrentValue:       value,
	}, nil
}

func (f *fakeSessionRepository) UpsertPropertyOverride(_ context.Context, _ interfaces.DBTX, sessionCharacterID, propertyID uuid.UUID, value string) error {
	f.props[overrideKey{sessionCharacterID, propertyID}] = value
	return nil
}

func (f *fakeSessionRepository) GetBlockOverrides(_ context.Context, _ interfaces.DBTX, sessionCharacterID uuid.UUID, blockIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool)
	for _, blockID := range blockIDs {
		if visible, ok := f.blockVis[overrideKey{sessionCharacterID, blockID}]; ok {
			out[blockID] = visible
		}
	}
	return out, nil
}

func (f *fakeSessionRepository) GetActionOverrides(_ context.Context, _ interfaces.DBTX, sessionCharacterID uuid.UUID, actionIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool)
	for _, actionID := range actionIDs {
		if visible, ok := f.actionVis[overrideKey{sessionCharacterID, actionID}]; ok {
			out[actionID] = visible
		}
	}
	return out, nil
}

func (f *fakeSessionRepository) UpsertBlockVisibility(_ context.Context, _ interfaces.DBTX, sessionCharacterID, blockID uuid.UUID, visible bool) error {
	f.blockVis[overrideKey{sessionCharacterID, blockID}] = visible
	return nil
}

func (f *fakeSessionRepository) UpsertActionVisibility(_ context.Context, _ interfaces.DBTX, sessionCharacterID, actionID uuid.UUID, visible bool) error {
	f.actionVis[overrideKey{sessionCharacterID, actionID}] = visible
	return nil
}

func (f *fakeSessionRepository) HideBlocks(_ context.Context, _ interfaces.DBTX, sessionCharacterID uuid.UUID, blockIDs []uuid.UUID) error {
	for _, blockID := range blockIDs {
		f.blockVis[overrideKey{sessionCharacterID, blockID}] = false
	}
	return nil
}

func (f *fakeSessionRepository) HideActions(_ context.Context, _ interfaces.DBTX, sessionCharacterID uuid.UUID, actionIDs []uuid.UUID) error {
	for _, actionID := range actionIDs {
		f.actionVis[overrideKey{sessionCharacterID, actionID}] = false
	}
	return nil
}

// fakeGamelogRepository копит записи журнала в порядке добавления.
type fakeGamelogRepository struct {
	entries []*sharedModels.GamelogEntry
}

var _ interfaces.GamelogRepository = (*fakeGamelogRepository)(nil)

func (f *fakeGamelogRepository) Append(_ context.Context, _ interfaces.DBTX, entry *sharedModels.GamelogEntry) error {
	stored := *entry
	f.entries = append(f.entries, &stored)
	return nil
}

func (f *fakeGamelogRepository) ListBySession(_ context.Context, _ interfaces.DBTX, sessionID uuid.UUID, limit int) ([]*sharedModels.GamelogEntry, error) {
	var out []*sharedModels.GamelogEntry
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if f.entries[i].SessionID == sessionID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func TestOverrideIsolation(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	storyRepo := new(sharedMocks.MockStoryRepository)
	sessions := newFakeSessionRepository()
	props := service.NewPropertyStore(sessions, logger)
	evaluator := service.NewConditionEvaluator(storyRepo, props, logger)

	hasKey := &sharedModels.Property{
		ID:           uuid.New(),
		Name:         "has_key",
		Type:         sharedModels.PropertyTypeString,
		DefaultValue: "false",
	}
	storyRepo.On("GetProperty", mock.Anything, mock.Anything, hasKey.ID).Return(hasKey, nil)

	// Три персонажа в трех разных сессиях одной игры.
	first := &sharedModels.SessionCharacter{ID: uuid.New(), SessionID: uuid.New()}
	second := &sharedModels.SessionCharacter{ID: uuid.New(), SessionID: uuid.New()}
	third := &sharedModels.SessionCharacter{ID: uuid.New(), SessionID: uuid.New()}

	require.NoError(t, props.SetEffectiveValue(ctx, nil, hasKey, first.ID, "true"))
	require.NoError(t, props.SetEffectiveValue(ctx, nil, hasKey, second.ID, "stolen"))

	t.Run("Each character reads only its own override", func(t *testing.T) {
		got, err := props.GetEffectiveValue(ctx, nil, hasKey, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "true", got)

		got, err = props.GetEffectiveValue(ctx, nil, hasKey, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "stolen", got)
	})

	t.Run("Untouched character still reads the authored default", func(t *testing.T) {
		got, err := props.GetEffectiveValue(ctx, nil, hasKey, third.ID)
		require.NoError(t, err)
		assert.Equal(t, "false", got)
	})

	t.Run("Conditions see per-character values", func(t *testing.T) {
		cond := conditionJSON([3]string{hasKey.ID.String(), "==", "true"})

		ok, err := evaluator.Evaluate(ctx, nil, cond, first)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = evaluator.Evaluate(ctx, nil, cond, second)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = evaluator.Evaluate(ctx, nil, cond, third)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

// TestLockedDoorPlaythrough проходит маленький квест целиком: гейт по
// свойству прячет действие, запись свойства открывает его, выбор действия
// двигает персонажа на следующую сцену и оставляет две записи в журнале.
func TestLockedDoorPlaythrough(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	userID := uuid.New()

	storyRepo := new(sharedMocks.MockStoryRepository)
	sessions := newFakeSessionRepository()
	gamelog := &fakeGamelogRepository{}

	props := service.NewPropertyStore(sessions, logger)
	evaluator := service.NewConditionEvaluator(storyRepo, props, logger)
	tracker := service.NewSessionTracker(storyRepo, sessions, logger)
	effects := service.NewEffectProcessor(storyRepo, sessions, tracker, props, evaluator, logger)
	play := service.NewPlayService(
		nil, passthroughTxManager{}, storyRepo, sessions, gamelog,
		tracker, evaluator, effects, nil, logger,
	)

	game := &sharedModels.Game{ID: uuid.New(), AuthorID: uuid.New(), Status: sharedModels.GameStatusPublished}
	hall := &sharedModels.Scene{ID: uuid.New(), GameID: game.ID}
	corridor := &sharedModels.Scene{ID: uuid.New(), GameID: game.ID}
	hallStart := &sharedModels.Moment{ID: uuid.New(), GameID: game.ID, SceneID: hall.ID}
	corridorStart := &sharedModels.Moment{ID: uuid.New(), GameID: game.ID, SceneID: corridor.ID}

	hasKey := &sharedModels.Property{
		ID:           uuid.New(),
		GameID:       game.ID,
		Name:         "has_key",
		Type:         sharedModels.PropertyTypeString,
		DefaultValue: "false",
	}
	hero := &sharedModels.Character{ID: uuid.New(), GameID: game.ID, StartSceneID: &hall.ID}

	lockedDoor := &sharedModels.Block{
		ID: uuid.New(), GameID: game.ID, SceneID: hall.ID, MomentID: &hallStart.ID,
		Content: "Перед вами запертая дверь.", Visible: true,
	}
	behindDoor := &sharedModels.Block{
		ID: uuid.New(), GameID: game.ID, SceneID: corridor.ID, MomentID: &corridorStart.ID,
		Content: "За дверью темный коридор.", Visible: true,
	}
	openDoor := &sharedModels.Action{
		ID: uuid.New(), GameID: game.ID, SceneID: hall.ID, MomentID: &hallStart.ID,
		Content:   "Открыть дверь",
		Visible:   true,
		Condition: conditionJSON([3]string{hasKey.ID.String(), "==", "true"}),
	}
	openDoorFull := &sharedModels.Action{
		ID: openDoor.ID, GameID: game.ID, SceneID: hall.ID, MomentID: &hallStart.ID,
		Content:   openDoor.Content,
		Visible:   true,
		Condition: openDoor.Condition,
		Effects: []sharedModels.AfterEffect{
			{ID: uuid.New(), ActionID: openDoor.ID, Kind: sharedModels.EffectGoToScene, SceneID: &corridor.ID},
		},
	}

	storyRepo.On("GetGame", mock.Anything, mock.Anything, game.ID).Return(game, nil)
	storyRepo.On("ListCharacters", mock.Anything, mock.Anything, game.ID).
		Return([]*sharedModels.Character{hero}, nil)
	storyRepo.On("GetScene", mock.Anything, mock.Anything, hall.ID).Return(hall, nil)
	storyRepo.On("GetScene", mock.Anything, mock.Anything, corridor.ID).Return(corridor, nil)
	storyRepo.On("GetDefaultMoment", mock.Anything, mock.Anything, hall.ID).Return(hallStart, nil)
	storyRepo.On("GetDefaultMoment", mock.Anything, mock.Anything, corridor.ID).Return(corridorStart, nil)
	storyRepo.On("GetProperty", mock.Anything, mock.Anything, hasKey.ID).Return(hasKey, nil)
	storyRepo.On("GetAction", mock.Anything, mock.Anything, openDoor.ID).Return(openDoorFull, nil)
	storyRepo.On("ListBlocksAt", mock.Anything, mock.Anything, hall.ID, hallStart.ID).
		Return([]*sharedModels.Block{lockedDoor}, nil)
	storyRepo.On("ListActionsAt", mock.Anything, mock.Anything, hall.ID, hallStart.ID).
		Return([]*sharedModels.Action{openDoor}, nil)
	storyRepo.On("ListBlocksAt", mock.Anything, mock.Anything, corridor.ID, corridorStart.ID).
		Return([]*sharedModels.Block{behindDoor}, nil)
	storyRepo.On("ListActionsAt", mock.Anything, mock.Anything, corridor.ID, corridorStart.ID).
		Return([]*sharedModels.Action{}, nil)

	// Свежая сессия: дверь видна, действие спрятано гейтом has_key.
	started, err := play.StartGame(ctx, userID, game.ID)
	require.NoError(t, err)
	assert.Equal(t, "Перед вами запертая дверь.", started.View.Vision)
	assert.Empty(t, started.View.Actions)

	require.NotNil(t, started.Session.ActiveCharacterID)
	heroSC := *started.Session.ActiveCharacterID

	// Повторный просмотр без действий ничего не меняет.
	again, err := play.GetView(ctx, userID, started.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, &started.View, again)

	// Ключ найден - действие появляется.
	require.NoError(t, props.SetEffectiveValue(ctx, nil, hasKey, heroSC, "true"))

	view, err := play.GetView(ctx, userID, started.Session.ID)
	require.NoError(t, err)
	require.Len(t, view.Actions, 1)
	assert.Equal(t, openDoor.ID, view.Actions[0].ID)

	// Выбор действия: переход на следующую сцену и две записи журнала.
	outcome, err := play.ApplyAction(ctx, userID, started.Session.ID, openDoor.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, "За дверью темный коридор.", outcome.View.Vision)

	sc, err := sessions.GetSessionCharacter(ctx, nil, heroSC)
	require.NoError(t, err)
	assert.Equal(t, corridor.ID, sc.CurrentSceneID)
	assert.Equal(t, corridorStart.ID, sc.CurrentMomentID)

	require.Len(t, gamelog.entries, 2)
	assert.Equal(t, sharedModels.GamelogSourceGame, gamelog.entries[0].Source)
	assert.Equal(t, "Перед вами запертая дверь.", gamelog.entries[0].Text)
	assert.Equal(t, sharedModels.GamelogSourceUser, gamelog.entries[1].Source)
	assert.Equal(t, "Открыть дверь", gamelog.entries[1].Text)

	// Журнал читается свежими записями вперед.
	log, err := play.GetGamelog(ctx, userID, started.Session.ID, 10)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, sharedModels.GamelogSourceUser, log[0].Source)

	// Повторный старт завершает первую сессию, новая начинает с чистого листа.
	restarted, err := play.StartGame(ctx, userID, game.ID)
	require.NoError(t, err)
	firstSession, err := sessions.GetSession(ctx, nil, started.Session.ID)
	require.NoError(t, err)
	assert.True(t, firstSession.IsFinished())
	assert.Empty(t, restarted.View.Actions, "переопределения первой сессии не видны новой")
}
