package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisChatStateRepository implements ChatStateRepository
var _ interfaces.ChatStateRepository = (*redisChatStateRepository)(nil)

// redisChatStateRepository хранит состояние диалога бота в Redis.
// Ключ - chat_state:{chatID}, значение - JSON models.ChatState.
type redisChatStateRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisChatStateRepository creates a new Redis-backed ChatStateRepository.
// Состояние диалога живое, пока игрок переписывается с ботом; ttl продлевается
// при каждом сохранении.
func NewRedisChatStateRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.ChatStateRepository {
	return &redisChatStateRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisChatStateRepo"),
	}
}

func chatStateKey(chatID int64) string {
	return fmt.Sprintf("chat_state:%d", chatID)
}

func (r *redisChatStateRepository) Get(ctx context.Context, chatID int64) (*models.ChatState, error) {
	data, err := r.client.Get(ctx, chatStateKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get chat state", zap.Int64("chatID", chatID), zap.Error(err))
		return nil, err
	}

	state := &models.ChatState{}
	if err := json.Unmarshal(data, state); err != nil {
		r.logger.Error("Failed to unmarshal chat state", zap.Int64("chatID", chatID), zap.Error(err))
		return nil, fmt.Errorf("unmarshal chat state: %w", err)
	}
	return state, nil
}

func (r *redisChatStateRepository) Save(ctx context.Context, state *models.ChatState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal chat state: %w", err)
	}

	if err := r.client.Set(ctx, chatStateKey(state.ChatID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save chat state", zap.Int64("chatID", state.ChatID), zap.Error(err))
		return err
	}
	r.logger.Debug("Chat state saved", zap.Int64("chatID", state.ChatID), zap.String("sessionID", state.SessionID.String()))
	return nil
}

func (r *redisChatStateRepository) Delete(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, chatStateKey(chatID)).Err(); err != nil {
		r.logger.Error("Failed to delete chat state", zap.Int64("chatID", chatID), zap.Error(err))
		return err
	}
	return nil
}
