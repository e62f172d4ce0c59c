package interfaces

import (
	"context"

	"gamebook-server/shared/models"
)

// ChatStateRepository stores per-chat bot dialogue state (current session,
// last presented numbered menu). Backed by Redis with a TTL.
//
//go:generate mockery --name ChatStateRepository --output ./mocks --outpkg mocks --case=underscore
type ChatStateRepository interface {
	// Get returns the state of a chat, or models.ErrNotFound.
	Get(ctx context.Context, chatID int64) (*models.ChatState, error)

	// Save stores the chat state, refreshing its TTL.
	Save(ctx context.Context, state *models.ChatState) error

	// Delete removes the chat state (e.g. on /stop).
	Delete(ctx context.Context, chatID int64) error
}
