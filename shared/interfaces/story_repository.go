package interfaces

import (
	"context"

	"gamebook-server/shared/models"

	"github.com/google/uuid"
)

// StoryRepository defines read access to authored game content plus the
// publication status transition. Authored content is read-only at play time.
//
//go:generate mockery --name StoryRepository --output ./mocks --outpkg mocks --case=underscore
type StoryRepository interface {
	// GetGame retrieves a game by its unique ID.
	GetGame(ctx context.Context, q DBTX, id uuid.UUID) (*models.Game, error)

	// UpdateGameStatus flips the publication status (draft <-> published).
	UpdateGameStatus(ctx context.Context, q DBTX, id uuid.UUID, status models.GameStatus) error

	// ListCharacters returns the game's characters in creation order.
	ListCharacters(ctx context.Context, q DBTX, gameID uuid.UUID) ([]*models.Character, error)

	// GetScene retrieves a scene by ID.
	GetScene(ctx context.Context, q DBTX, id uuid.UUID) (*models.Scene, error)

	// GetFirstScene returns the game's first scene by order. Used as the
	// fallback start scene for characters without an explicit one.
	GetFirstScene(ctx context.Context, q DBTX, gameID uuid.UUID) (*models.Scene, error)

	// ListScenes returns all scenes of a game in graph order.
	ListScenes(ctx context.Context, q DBTX, gameID uuid.UUID) ([]*models.Scene, error)

	// GetMoment retrieves a moment by ID.
	GetMoment(ctx context.Context, q DBTX, id uuid.UUID) (*models.Moment, error)

	// GetDefaultMoment returns the scene's first moment by order.
	// Returns models.ErrNotFound for a scene with zero moments.
	GetDefaultMoment(ctx context.Context, q DBTX, sceneID uuid.UUID) (*models.Moment, error)

	// CountMoments returns the number of moments in a scene. Used by
	// authoring validation.
	CountMoments(ctx context.Context, q DBTX, sceneID uuid.UUID) (int, error)

	// ListBlocksAt returns the blocks visible from a position: blocks bound
	// to the moment plus scene-level blocks (moment_id IS NULL), graph order.
	ListBlocksAt(ctx context.Context, q DBTX, sceneID, momentID uuid.UUID) ([]*models.Block, error)

	// ListActionsAt returns the actions offered at a position, same scoping
	// and ordering rules as ListBlocksAt. Effects are not loaded.
	ListActionsAt(ctx context.Context, q DBTX, sceneID, momentID uuid.UUID) ([]*models.Action, error)

	// GetAction retrieves an action together with its effects in authored order.
	GetAction(ctx context.Context, q DBTX, id uuid.UUID) (*models.Action, error)

	// ListSceneBlockIDs returns the IDs of every block in a scene.
	// Used by the clearSceneBlocks effect.
	ListSceneBlockIDs(ctx context.Context, q DBTX, sceneID uuid.UUID) ([]uuid.UUID, error)

	// ListSceneActionIDs returns the IDs of every action in a scene.
	// Used by the clearSceneActions effect.
	ListSceneActionIDs(ctx context.Context, q DBTX, sceneID uuid.UUID) ([]uuid.UUID, error)

	// GetProperty retrieves a property by ID.
	GetProperty(ctx context.Context, q DBTX, id uuid.UUID) (*models.Property, error)

	// ListProperties returns all properties of a game.
	ListProperties(ctx context.Context, q DBTX, gameID uuid.UUID) ([]*models.Property, error)

	// ListBlocks returns every block of a game. Used by authoring validation.
	ListBlocks(ctx context.Context, q DBTX, gameID uuid.UUID) ([]*models.Block, error)

	// ListActions returns every action of a game with effects loaded.
	// Used by authoring validation.
	ListActions(ctx context.Context, q DBTX, gameID uuid.UUID) ([]*models.Action, error)

	// ListPublishedGames returns published games in creation order.
	// Consumed by the chat bot to render the game catalogue.
	ListPublishedGames(ctx context.Context, q DBTX, limit int) ([]*models.Game, error)
}
