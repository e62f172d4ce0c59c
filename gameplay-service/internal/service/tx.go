package service

import (
	"context"
	"fmt"

	"gamebook-server/shared/interfaces"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TxManager выполняет функцию в одной транзакции БД. Выделен в интерфейс,
// чтобы игровой цикл можно было тестировать без реального пула соединений.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, q interfaces.DBTX) error) error
}

// pgxTxManager - реализация TxManager поверх pgxpool.
type pgxTxManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgxTxManager создает новый менеджер транзакций.
func NewPgxTxManager(pool *pgxpool.Pool, logger *zap.Logger) TxManager {
	return &pgxTxManager{
		pool:   pool,
		logger: logger.Named("TxManager"),
	}
}

// WithTransaction выполняет функцию в транзакции с автоматическим rollback при ошибке.
func (m *pgxTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, q interfaces.DBTX) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				m.logger.Error("Failed to rollback transaction after panic",
					zap.Error(rollbackErr),
					zap.Any("panic", p))
			}
			panic(p) // re-throw panic after rollback
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			m.logger.Error("Failed to rollback transaction",
				zap.Error(rollbackErr),
				zap.NamedError("original_error", err))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
