package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.SessionRepository = (*pgSessionRepository)(nil)

// pgSessionRepository реализует интерфейс SessionRepository для PostgreSQL.
// Записи-переопределения держатся уникальными парами через ON CONFLICT
// upsert: не более одной строки на (session_character, property/block/action).
type pgSessionRepository struct {
	logger *zap.Logger
}

// NewPgSessionRepository создает новый экземпляр репозитория.
func NewPgSessionRepository(logger *zap.Logger) interfaces.SessionRepository {
	return &pgSessionRepository{
		logger: logger.Named("PgSessionRepo"),
	}
}

const createSessionQuery = `
INSERT INTO sessions (id, game_id, user_id, status, active_character_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (r *pgSessionRepository) CreateSession(ctx context.Context, q interfaces.DBTX, session *models.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := q.Exec(ctx, createSessionQuery,
		session.ID, session.GameID, session.UserID, session.Status,
		session.ActiveCharacterID, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create session",
			zap.String("sessionID", session.ID.String()),
			zap.String("userID", session.UserID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

const getSessionQuery = `
SELECT id, game_id, user_id, status, active_character_id, created_at, updated_at
FROM sessions
WHERE id = $1`

func (r *pgSessionRepository) GetSession(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Session, error) {
	session := &models.Session{}
	err := q.QueryRow(ctx, getSessionQuery, id).Scan(
		&session.ID, &session.GameID, &session.UserID, &session.Status,
		&session.ActiveCharacterID, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get session", zap.String("sessionID", id.String()), zap.Error(err))
		return nil, err
	}
	return session, nil
}

const finishActiveSessionsQuery = `
UPDATE sessions SET status = $3, updated_at = NOW()
WHERE user_id = $1 AND game_id = $2 AND status = $4`

func (r *pgSessionRepository) FinishActiveSessions(ctx context.Context, q interfaces.DBTX, userID, gameID uuid.UUID) (int64, error) {
	tag, err := q.Exec(ctx, finishActiveSessionsQuery, userID, gameID, models.SessionStatusFinished, models.SessionStatusActive)
	if err != nil {
		r.logger.Error("Failed to finish active sessions",
			zap.String("userID", userID.String()),
			zap.String("gameID", gameID.String()),
			zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const updateSessionStatusQuery = `
UPDATE sessions SET status = $2, updated_at = NOW()
WHERE id = $1`

func (r *pgSessionRepository) UpdateSessionStatus(ctx context.Context, q interfaces.DBTX, id uuid.UUID, status models.SessionStatus) error {
	tag, err := q.Exec(ctx, updateSessionStatusQuery, id, status)
	if err != nil {
		r.logger.Error("Failed to update session status", zap.String("sessionID", id.String()), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const setActiveCharacterQuery = `
UPDATE sessions SET active_character_id = $2, updated_at = NOW()
WHERE id = $1`

func (r *pgSessionRepository) SetActiveCharacter(ctx context.Context, q interfaces.DBTX, sessionID, sessionCharacterID uuid.UUID) error {
	tag, err := q.Exec(ctx, setActiveCharacterQuery, sessionID, sessionCharacterID)
	if err != nil {
		r.logger.Error("Failed to set active character",
			zap.String("sessionID", sessionID.String()),
			zap.String("sessionCharacterID", sessionCharacterID.String()),
			zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const createSessionCharacterQuery = `
INSERT INTO session_characters (id, session_id, character_id, current_scene_id, current_moment_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (r *pgSessionRepository) CreateSessionCharacter(ctx context.Context, q interfaces.DBTX, sc *models.SessionCharacter) error {
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	now := time.Now().UTC()
	sc.CreatedAt = now
	sc.UpdatedAt = now

	_, err := q.Exec(ctx, createSessionCharacterQuery,
		sc.ID, sc.SessionID, sc.CharacterID, sc.CurrentSceneID, sc.CurrentMomentID, sc.CreatedAt, sc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create session character",
			zap.String("sessionID", sc.SessionID.String()),
			zap.String("characterID", sc.CharacterID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

const getSessionCharacterQuery = `
SELECT id, session_id, character_id, current_scene_id, current_moment_id, created_at, updated_at
FROM session_characters
WHERE id = $1`

func (r *pgSessionRepository) GetSessionCharacter(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.SessionCharacter, error) {
	sc := &models.SessionCharacter{}
	err := q.QueryRow(ctx, getSessionCharacterQuery, id).Scan(
		&sc.ID, &sc.SessionID, &sc.CharacterID, &sc.CurrentSceneID, &sc.CurrentMomentID, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get session character", zap.String("sessionCharacterID", id.String()), zap.Error(err))
		return nil, err
	}
	return sc, nil
}

const listSessionCharactersQuery = `
SELECT id, session_id, character_id, current_scene_id, current_moment_id, created_at, updated_at
FROM session_characters
WHERE session_id = $1
ORDER BY created_at ASC, id ASC`

func (r *pgSessionRepository) ListSessionCharacters(ctx context.Context, q interfaces.DBTX, sessionID uuid.UUID) ([]*models.SessionCharacter, error) {
	rows, err := q.Query(ctx, listSessionCharactersQuery, sessionID)
	if err != nil {
		r.logger.Error("Failed to list session characters", zap.String("sessionID", sessionID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	characters := make([]*models.SessionCharacter, 0)
	for rows.Next() {
		var sc models.SessionCharacter
		if err := rows.Scan(&sc.ID, &sc.SessionID, &sc.CharacterID, &sc.CurrentSceneID, &sc.CurrentMomentID, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session character row: %w", err)
		}
		characters = append(characters, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session character rows: %w", err)
	}
	return characters, nil
}

const updatePositionQuery = `
UPDATE session_characters SET current_scene_id = $2, current_moment_id = $3, updated_at = NOW()
WHERE id = $1`

func (r *pgSessionRepository) UpdatePosition(ctx context.Context, q interfaces.DBTX, sessionCharacterID, sceneID, momentID uuid.UUID) error {
	tag, err := q.Exec(ctx, updatePositionQuery, sessionCharacterID, sceneID, momentID)
	if err != nil {
		r.logger.Error("Failed to update position",
			zap.String("sessionCharacterID", sessionCharacterID.String()),
			zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const getPropertyOverrideQuery = `
SELECT session_character_id, property_id, current_value, updated_at
FROM session_properties
WHERE session_character_id = $1 AND property_id = $2`

func (r *pgSessionRepository) GetPropertyOverride(ctx context.Context, q interfaces.DBTX, sessionCharacterID, propertyID uuid.UUID) (*models.SessionProperty, error) {
	sp := &models.SessionProperty{}
	err := q.QueryRow(ctx, getPropertyOverrideQuery, sessionCharacterID, propertyID).Scan(
		&sp.SessionCharacterID, &sp.PropertyID, &sp.CurrentValue, &sp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get property override",
			zap.String("sessionCharacterID", sessionCharacterID.String()),
			zap.String("propertyID", propertyID.String()),
			zap.Error(err))
		return nil, err
	}
	return sp, nil
}

const upsertPropertyOverrideQuery = `
INSERT INTO session_properties (session_character_id, property_id, current_value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (session_character_id, property_id) DO UPDATE SET
    current_value = EXCLUDED.current_value,
    updated_at = EXCLUDED.updated_at`

func (r *pgSessionRepository) UpsertPropertyOverride(ctx context.Context, q interfaces.DBTX, sessionCharacterID, propertyID uuid.UUID, value string) error {
	_, err := q.Exec(ctx, upsertPropertyOverrideQuery, sessionCharacterID, propertyID, value)
	if err != nil {
		r.logger.Error("Failed to upsert property override",
			zap.String("sessionCharacterID", sessionCharacterID.String()),
			zap.String("propertyID", propertyID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

const getBlockOverridesQuery = `
SELECT block_id, visible
FROM session_blocks
WHERE session_character_id = $1 AND block_id = ANY($2)`

func (r *pgSessionRepository) GetBlockOverrides(ctx context.Context, q interfaces.DBTX, sessionCharacterID uuid.UUID, blockIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return r.getVisibilityOverrides(ctx, q, getBlockOverridesQuery, sessionCharacterID, blockIDs)
}

const getActionOverridesQuery = `
SELECT action_id, visible
FROM session_actions
WHERE session_character_id = $1 AND action_id = ANY($2)`

func (r *pgSessionRepository) GetActionOverrides(ctx context.Context, q interfaces.DBTX, sessionCharacterID uuid.UUID, actionIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return r.getVisibilityOverrides(ctx, q, getActionOverridesQuery, sessionCharacterID, actionIDs)
}

func (r *pgSessionRepository) getVisibilityOverrides(ctx context.Context, q interfaces.DBTX, query string, sessionCharacterID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	overrides := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return overrides, nil
	}

	rows, err := q.Query(ctx, query, sessionCharacterID, ids)
	if err != nil {
		r.logger.Error("Failed to get visibility overrides",
			zap.String("sessionCharacterID", sessionCharacterID.String()),
			zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var visible bool
		if err := rows.Scan(&id, &visible); err != nil {
			return nil, fmt.Errorf("scan visibility override row: %w", err)
		}
		overrides[id] = visible
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visibility override rows: %w", err)
	}
	return overrides, nil
}

const upsertBlockVisibilityQuery = `
INSERT INTO session_blocks (session_character_id, block_id, visible, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (session_character_id, block_id) DO UPDATE SET
    visible = EXCLUDED.visible,
    updated_at = EXCLUDED.updated_at`

func (r *pgSessionRepository) UpsertBlockVisibility(ctx context.Context, q interfaces.DBTX, sessionCharacterID, blockID uuid.UUID, visible bool) error {
	_, err := q.Exec(ctx, upsertBlockVisibilityQuery, sessionCharacterID, blockID, visible)
	if err != nil {
		r.logger.Error("Failed to upsert block visibility",
			zap.String("sessionCharacterID", sessionCharacterID.String()),
			zap.String("blockID", blockID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

const upsertActionVisibilityQuery = `
INSERT INTO session_actions (session_character_id, action_id, visible, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (session_character_id, action_id) DO UPDATE SET
    visible = EXCLUDED.visible,
    updated_at = EXCLUDED.updated_at`

func (r *pgSessionRepository) UpsertActionVisibility(ctx context.Context, q interfaces.DBTX, sessionCharacterID, actionID uuid.UUID, visible bool) error {
	_, err := q.Exec(ctx, upsertActionVisibilityQuery, sessionCharacterID, actionID, visible)
	if err != nil {
		r.logger.Error("Failed to upsert action visibility",
			zap.String("sessionCharacterID", sessionCharacterID.String()),
			zap.String("actionID", actionID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

const hideBlocksQuery = `
INSERT INTO session_blocks (session_character_id, block_id, visible, updated_at)
SELECT $1, unnest($2::uuid[]), FALSE, NOW()
ON CONFLICT (session_character_id, block_id) DO UPDATE SET
    visible = FALSE,
    updated_at = EXCLUDED.updated_at`

func (r *pgSessionRepository) HideBlocks(ctx context.Context, q interfaces.DBTX, sessionCharacterID uuid.UUID, blockIDs []uuid.UUID) error {
	if len(blockIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, hideBlocksQuery, sessionCharacterID, blockIDs)
	if err != nil {
		r.logger.Error("Failed to bulk hide blocks",
			zap.String("sessionCharacterID", sessionCharacterID.String()),
			zap.Int("count", len(blockIDs)),
			zap.Error(err))
		return err
	}
	return nil
}

const hideActionsQuery = `
INSERT INTO session_actions (session_character_id, action_id, visible, updated_at)
SELECT $1, unnest($2::uuid[]), FALSE, NOW()
ON CONFLICT (session_character_id, action_id) DO UPDATE SET
    visible = FALSE,
    updated_at = EXCLUDED.updated_at`

func (r *pgSessionRepository) HideActions(ctx context.Context, q interfaces.DBTX, sessionCharacterID uuid.UUID, actionIDs []uuid.UUID) error {
	if len(actionIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, hideActionsQuery, sessionCharacterID, actionIDs)
	if err != nil {
		r.logger.Error("Failed to bulk hide actions",
			zap.String("sessionCharacterID", sessionCharacterID.String()),
			zap.Int("count", len(actionIDs)),
			zap.Error(err))
		return err
	}
	return nil
}
