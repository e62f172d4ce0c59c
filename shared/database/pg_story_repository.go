package database

import (
	"context"
	"errors"
	"fmt"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

// pgStoryRepository реализует интерфейс StoryRepository для PostgreSQL.
// Авторский контент read-mostly: единственная запись - смена статуса игры.
type pgStoryRepository struct {
	logger *zap.Logger
}

// NewPgStoryRepository создает новый экземпляр репозитория.
func NewPgStoryRepository(logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		logger: logger.Named("PgStoryRepo"),
	}
}

const getGameQuery = `
SELECT id, author_id, name, description, status, created_at, updated_at
FROM games
WHERE id = $1`

func (r *pgStoryRepository) GetGame(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Game, error) {
	game := &models.Game{}
	err := q.QueryRow(ctx, getGameQuery, id).Scan(
		&game.ID,
		&game.AuthorID,
		&game.Name,
		&game.Description,
		&game.Status,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get game", zap.String("gameID", id.String()), zap.Error(err))
		return nil, err
	}
	return game, nil
}

const updateGameStatusQuery = `
UPDATE games SET status = $2, updated_at = NOW()
WHERE id = $1`

func (r *pgStoryRepository) UpdateGameStatus(ctx context.Context, q interfaces.DBTX, id uuid.UUID, status models.GameStatus) error {
	tag, err := q.Exec(ctx, updateGameStatusQuery, id, status)
	if err != nil {
		r.logger.Error("Failed to update game status", zap.String("gameID", id.String()), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const listCharactersQuery = `
SELECT id, game_id, name, description, start_scene_id, is_primary, created_at, updated_at
FROM characters
WHERE game_id = $1
ORDER BY created_at ASC, id ASC`

func (r *pgStoryRepository) ListCharacters(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Character, error) {
	rows, err := q.Query(ctx, listCharactersQuery, gameID)
	if err != nil {
		r.logger.Error("Failed to list characters", zap.String("gameID", gameID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	characters := make([]*models.Character, 0)
	for rows.Next() {
		var c models.Character
		if err := rows.Scan(&c.ID, &c.GameID, &c.Name, &c.Description, &c.StartSceneID, &c.IsPrimary, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan character row: %w", err)
		}
		characters = append(characters, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate character rows: %w", err)
	}
	return characters, nil
}

const getSceneQuery = `
SELECT id, game_id, name, sort_order, description, created_at, updated_at
FROM scenes
WHERE id = $1`

func (r *pgStoryRepository) GetScene(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Scene, error) {
	return r.scanScene(q.QueryRow(ctx, getSceneQuery, id))
}

const getFirstSceneQuery = `
SELECT id, game_id, name, sort_order, description, created_at, updated_at
FROM scenes
WHERE game_id = $1
ORDER BY sort_order ASC, created_at ASC, id ASC
LIMIT 1`

func (r *pgStoryRepository) GetFirstScene(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) (*models.Scene, error) {
	return r.scanScene(q.QueryRow(ctx, getFirstSceneQuery, gameID))
}

func (r *pgStoryRepository) scanScene(row pgx.Row) (*models.Scene, error) {
	scene := &models.Scene{}
	err := row.Scan(&scene.ID, &scene.GameID, &scene.Name, &scene.Order, &scene.Description, &scene.CreatedAt, &scene.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get scene", zap.Error(err))
		return nil, err
	}
	return scene, nil
}

const listScenesQuery = `
SELECT id, game_id, name, sort_order, description, created_at, updated_at
FROM scenes
WHERE game_id = $1
ORDER BY sort_order ASC, created_at ASC, id ASC`

func (r *pgStoryRepository) ListScenes(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Scene, error) {
	rows, err := q.Query(ctx, listScenesQuery, gameID)
	if err != nil {
		r.logger.Error("Failed to list scenes", zap.String("gameID", gameID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	scenes := make([]*models.Scene, 0)
	for rows.Next() {
		var s models.Scene
		if err := rows.Scan(&s.ID, &s.GameID, &s.Name, &s.Order, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan scene row: %w", err)
		}
		scenes = append(scenes, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scene rows: %w", err)
	}
	return scenes, nil
}

const getMomentQuery = `
SELECT id, game_id, scene_id, name, sort_order, description, created_at, updated_at
FROM moments
WHERE id = $1`

func (r *pgStoryRepository) GetMoment(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Moment, error) {
	return r.scanMoment(q.QueryRow(ctx, getMomentQuery, id))
}

const getDefaultMomentQuery = `
SELECT id, game_id, scene_id, name, sort_order, description, created_at, updated_at
FROM moments
WHERE scene_id = $1
ORDER BY sort_order ASC, created_at ASC, id ASC
LIMIT 1`

func (r *pgStoryRepository) GetDefaultMoment(ctx context.Context, q interfaces.DBTX, sceneID uuid.UUID) (*models.Moment, error) {
	return r.scanMoment(q.QueryRow(ctx, getDefaultMomentQuery, sceneID))
}

func (r *pgStoryRepository) scanMoment(row pgx.Row) (*models.Moment, error) {
	moment := &models.Moment{}
	err := row.Scan(&moment.ID, &moment.GameID, &moment.SceneID, &moment.Name, &moment.Order, &moment.Description, &moment.CreatedAt, &moment.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get moment", zap.Error(err))
		return nil, err
	}
	return moment, nil
}

const countMomentsQuery = `
SELECT COUNT(*) FROM moments WHERE scene_id = $1`

func (r *pgStoryRepository) CountMoments(ctx context.Context, q interfaces.DBTX, sceneID uuid.UUID) (int, error) {
	var count int
	if err := q.QueryRow(ctx, countMomentsQuery, sceneID).Scan(&count); err != nil {
		r.logger.Error("Failed to count moments", zap.String("sceneID", sceneID.String()), zap.Error(err))
		return 0, err
	}
	return count, nil
}

// Блоки позиции: блоки момента плюс блоки уровня сцены (moment_id IS NULL).
const listBlocksAtQuery = `
SELECT id, game_id, scene_id, moment_id, sort_order, content, condition, visible, created_at, updated_at
FROM blocks
WHERE scene_id = $1 AND (moment_id = $2 OR moment_id IS NULL)
ORDER BY sort_order ASC, created_at ASC, id ASC`

func (r *pgStoryRepository) ListBlocksAt(ctx context.Context, q interfaces.DBTX, sceneID, momentID uuid.UUID) ([]*models.Block, error) {
	rows, err := q.Query(ctx, listBlocksAtQuery, sceneID, momentID)
	if err != nil {
		r.logger.Error("Failed to list blocks at position",
			zap.String("sceneID", sceneID.String()),
			zap.String("momentID", momentID.String()),
			zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	return scanBlocks(rows)
}

const listGameBlocksQuery = `
SELECT id, game_id, scene_id, moment_id, sort_order, content, condition, visible, created_at, updated_at
FROM blocks
WHERE game_id = $1
ORDER BY sort_order ASC, created_at ASC, id ASC`

func (r *pgStoryRepository) ListBlocks(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Block, error) {
	rows, err := q.Query(ctx, listGameBlocksQuery, gameID)
	if err != nil {
		r.logger.Error("Failed to list game blocks", zap.String("gameID", gameID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	return scanBlocks(rows)
}

func scanBlocks(rows pgx.Rows) ([]*models.Block, error) {
	blocks := make([]*models.Block, 0)
	for rows.Next() {
		var b models.Block
		if err := rows.Scan(&b.ID, &b.GameID, &b.SceneID, &b.MomentID, &b.Order, &b.Content, &b.Condition, &b.Visible, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan block row: %w", err)
		}
		blocks = append(blocks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate block rows: %w", err)
	}
	return blocks, nil
}

const listActionsAtQuery = `
SELECT id, game_id, scene_id, moment_id, sort_order, content, condition, visible, created_at, updated_at
FROM actions
WHERE scene_id = $1 AND (moment_id = $2 OR moment_id IS NULL)
ORDER BY sort_order ASC, created_at ASC, id ASC`

func (r *pgStoryRepository) ListActionsAt(ctx context.Context, q interfaces.DBTX, sceneID, momentID uuid.UUID) ([]*models.Action, error) {
	rows, err := q.Query(ctx, listActionsAtQuery, sceneID, momentID)
	if err != nil {
		r.logger.Error("Failed to list actions at position",
			zap.String("sceneID", sceneID.String()),
			zap.String("momentID", momentID.String()),
			zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	return scanActions(rows)
}

const listGameActionsQuery = `
SELECT id, game_id, scene_id, moment_id, sort_order, content, condition, visible, created_at, updated_at
FROM actions
WHERE game_id = $1
ORDER BY sort_order ASC, created_at ASC, id ASC`

func (r *pgStoryRepository) ListActions(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Action, error) {
	rows, err := q.Query(ctx, listGameActionsQuery, gameID)
	if err != nil {
		r.logger.Error("Failed to list game actions", zap.String("gameID", gameID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	actions, err := scanActions(rows)
	if err != nil {
		return nil, err
	}
	// Валидации нужны эффекты каждого действия
	for _, action := range actions {
		effects, err := r.listEffects(ctx, q, action.ID)
		if err != nil {
			return nil, err
		}
		action.Effects = effects
	}
	return actions, nil
}

func scanActions(rows pgx.Rows) ([]*models.Action, error) {
	actions := make([]*models.Action, 0)
	for rows.Next() {
		var a models.Action
		if err := rows.Scan(&a.ID, &a.GameID, &a.SceneID, &a.MomentID, &a.Order, &a.Content, &a.Condition, &a.Visible, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		actions = append(actions, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action rows: %w", err)
	}
	return actions, nil
}

const getActionQuery = `
SELECT id, game_id, scene_id, moment_id, sort_order, content, condition, visible, created_at, updated_at
FROM actions
WHERE id = $1`

func (r *pgStoryRepository) GetAction(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Action, error) {
	action := &models.Action{}
	err := q.QueryRow(ctx, getActionQuery, id).Scan(
		&action.ID, &action.GameID, &action.SceneID, &action.MomentID,
		&action.Order, &action.Content, &action.Condition, &action.Visible,
		&action.CreatedAt, &action.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get action", zap.String("actionID", id.String()), zap.Error(err))
		return nil, err
	}

	effects, err := r.listEffects(ctx, q, action.ID)
	if err != nil {
		return nil, err
	}
	action.Effects = effects
	return action, nil
}

const listEffectsQuery = `
SELECT id, action_id, sort_order, kind, scene_id, moment_id, block_id, target_action_id, property_id, value, created_at
FROM after_effects
WHERE action_id = $1
ORDER BY sort_order ASC, created_at ASC, id ASC`

func (r *pgStoryRepository) listEffects(ctx context.Context, q interfaces.DBTX, actionID uuid.UUID) ([]models.AfterEffect, error) {
	rows, err := q.Query(ctx, listEffectsQuery, actionID)
	if err != nil {
		r.logger.Error("Failed to list after effects", zap.String("actionID", actionID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	effects := make([]models.AfterEffect, 0)
	for rows.Next() {
		var e models.AfterEffect
		if err := rows.Scan(&e.ID, &e.ActionID, &e.Order, &e.Kind, &e.SceneID, &e.MomentID, &e.BlockID, &e.TargetActionID, &e.PropertyID, &e.Value, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan after effect row: %w", err)
		}
		effects = append(effects, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate after effect rows: %w", err)
	}
	return effects, nil
}

const listSceneBlockIDsQuery = `
SELECT id FROM blocks WHERE scene_id = $1`

func (r *pgStoryRepository) ListSceneBlockIDs(ctx context.Context, q interfaces.DBTX, sceneID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDs(ctx, q, listSceneBlockIDsQuery, sceneID)
}

const listSceneActionIDsQuery = `
SELECT id FROM actions WHERE scene_id = $1`

func (r *pgStoryRepository) ListSceneActionIDs(ctx context.Context, q interfaces.DBTX, sceneID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDs(ctx, q, listSceneActionIDsQuery, sceneID)
}

func (r *pgStoryRepository) listIDs(ctx context.Context, q interfaces.DBTX, query string, arg any) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		r.logger.Error("Failed to list ids", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate id rows: %w", err)
	}
	return ids, nil
}

const getPropertyQuery = `
SELECT id, game_id, character_id, name, type, default_value, created_at, updated_at
FROM properties
WHERE id = $1`

func (r *pgStoryRepository) GetProperty(ctx context.Context, q interfaces.DBTX, id uuid.UUID) (*models.Property, error) {
	property := &models.Property{}
	err := q.QueryRow(ctx, getPropertyQuery, id).Scan(
		&property.ID, &property.GameID, &property.CharacterID,
		&property.Name, &property.Type, &property.DefaultValue,
		&property.CreatedAt, &property.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get property", zap.String("propertyID", id.String()), zap.Error(err))
		return nil, err
	}
	return property, nil
}

const listPropertiesQuery = `
SELECT id, game_id, character_id, name, type, default_value, created_at, updated_at
FROM properties
WHERE game_id = $1
ORDER BY created_at ASC, id ASC`

func (r *pgStoryRepository) ListProperties(ctx context.Context, q interfaces.DBTX, gameID uuid.UUID) ([]*models.Property, error) {
	rows, err := q.Query(ctx, listPropertiesQuery, gameID)
	if err != nil {
		r.logger.Error("Failed to list properties", zap.String("gameID", gameID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	properties := make([]*models.Property, 0)
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.GameID, &p.CharacterID, &p.Name, &p.Type, &p.DefaultValue, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan property row: %w", err)
		}
		properties = append(properties, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate property rows: %w", err)
	}
	return properties, nil
}

const listPublishedGamesQuery = `
SELECT id, author_id, name, description, status, created_at, updated_at
FROM games
WHERE status = $1
ORDER BY created_at ASC, id ASC
LIMIT $2`

func (r *pgStoryRepository) ListPublishedGames(ctx context.Context, q interfaces.DBTX, limit int) ([]*models.Game, error) {
	rows, err := q.Query(ctx, listPublishedGamesQuery, models.GameStatusPublished, limit)
	if err != nil {
		r.logger.Error("Failed to list published games", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.AuthorID, &g.Name, &g.Description, &g.Status, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}
	return games, nil
}
