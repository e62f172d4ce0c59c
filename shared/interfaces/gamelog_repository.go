package interfaces

import (
	"context"

	"gamebook-server/shared/models"

	"github.com/google/uuid"
)

// GamelogRepository defines the append-only play transcript. The engine only
// appends; entries are never updated or deleted.
//
//go:generate mockery --name GamelogRepository --output ./mocks --outpkg mocks --case=underscore
type GamelogRepository interface {
	// Append writes a new transcript entry.
	Append(ctx context.Context, q DBTX, entry *models.GamelogEntry) error

	// ListBySession returns up to limit entries of a session transcript in
	// reverse chronological order (newest first).
	ListBySession(ctx context.Context, q DBTX, sessionID uuid.UUID, limit int) ([]*models.GamelogEntry, error)
}
