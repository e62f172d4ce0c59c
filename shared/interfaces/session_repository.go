package interfaces

import (
	"context"

	"gamebook-server/shared/models"

	"github.com/google/uuid"
)

// SessionRepository defines read-write access to play-time state: sessions,
// session characters and the per-character override records.
//
//go:generate mockery --name SessionRepository --output ./mocks --outpkg mocks --case=underscore
type SessionRepository interface {
	// CreateSession inserts a new session record.
	CreateSession(ctx context.Context, q DBTX, session *models.Session) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, q DBTX, id uuid.UUID) (*models.Session, error)

	// FinishActiveSessions marks every active session of (user, game) as
	// finished. Returns the number of sessions finished.
	FinishActiveSessions(ctx context.Context, q DBTX, userID, gameID uuid.UUID) (int64, error)

	// UpdateSessionStatus sets the session status.
	UpdateSessionStatus(ctx context.Context, q DBTX, id uuid.UUID, status models.SessionStatus) error

	// SetActiveCharacter points the session at a different party member.
	SetActiveCharacter(ctx context.Context, q DBTX, sessionID, sessionCharacterID uuid.UUID) error

	// CreateSessionCharacter inserts a new session character record.
	CreateSessionCharacter(ctx context.Context, q DBTX, sc *models.SessionCharacter) error

	// GetSessionCharacter retrieves a session character by ID.
	GetSessionCharacter(ctx context.Context, q DBTX, id uuid.UUID) (*models.SessionCharacter, error)

	// ListSessionCharacters returns all characters of a session in creation order.
	ListSessionCharacters(ctx context.Context, q DBTX, sessionID uuid.UUID) ([]*models.SessionCharacter, error)

	// UpdatePosition moves the session character's cursor.
	UpdatePosition(ctx context.Context, q DBTX, sessionCharacterID, sceneID, momentID uuid.UUID) error

	// GetPropertyOverride returns the override record for (session character,
	// property), or models.ErrNotFound when the character still reads the
	// authored default.
	GetPropertyOverride(ctx context.Context, q DBTX, sessionCharacterID, propertyID uuid.UUID) (*models.SessionProperty, error)

	// UpsertPropertyOverride creates or updates the override record.
	// At most one row exists per (session character, property).
	UpsertPropertyOverride(ctx context.Context, q DBTX, sessionCharacterID, propertyID uuid.UUID, value string) error

	// GetBlockOverrides returns the visibility overrides the character has
	// for the given blocks, keyed by block ID. Blocks without an override
	// are absent from the map.
	GetBlockOverrides(ctx context.Context, q DBTX, sessionCharacterID uuid.UUID, blockIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// GetActionOverrides is GetBlockOverrides for actions.
	GetActionOverrides(ctx context.Context, q DBTX, sessionCharacterID uuid.UUID, actionIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// UpsertBlockVisibility writes a block visibility override.
	UpsertBlockVisibility(ctx context.Context, q DBTX, sessionCharacterID, blockID uuid.UUID, visible bool) error

	// UpsertActionVisibility writes an action visibility override.
	UpsertActionVisibility(ctx context.Context, q DBTX, sessionCharacterID, actionID uuid.UUID, visible bool) error

	// HideBlocks bulk-hides the given blocks for the character.
	HideBlocks(ctx context.Context, q DBTX, sessionCharacterID uuid.UUID, blockIDs []uuid.UUID) error

	// HideActions bulk-hides the given actions for the character.
	HideActions(ctx context.Context, q DBTX, sessionCharacterID uuid.UUID, actionIDs []uuid.UUID) error
}
