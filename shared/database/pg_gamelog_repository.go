package database

import (
	"context"
	"fmt"
	"time"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.GamelogRepository = (*pgGamelogRepository)(nil)

// pgGamelogRepository реализует append-only журнал прохождения.
type pgGamelogRepository struct {
	logger *zap.Logger
}

// NewPgGamelogRepository создает новый экземпляр репозитория.
func NewPgGamelogRepository(logger *zap.Logger) interfaces.GamelogRepository {
	return &pgGamelogRepository{
		logger: logger.Named("PgGamelogRepo"),
	}
}

const appendGamelogQuery = `
INSERT INTO gamelogs (id, session_id, source, text, created_at)
VALUES ($1, $2, $3, $4, $5)`

func (r *pgGamelogRepository) Append(ctx context.Context, q interfaces.DBTX, entry *models.GamelogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := q.Exec(ctx, appendGamelogQuery, entry.ID, entry.SessionID, entry.Source, entry.Text, entry.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to append gamelog entry",
			zap.String("sessionID", entry.SessionID.String()),
			zap.String("source", string(entry.Source)),
			zap.Error(err))
		return err
	}
	return nil
}

// Журнал читается в обратном хронологическом порядке (свежие записи первыми).
// Порядок задает seq (BIGSERIAL): у пары записей game/user одного действия
// created_at совпадает с точностью до микросекунды, а UUID не упорядочен.
const listGamelogQuery = `
SELECT id, session_id, source, text, created_at
FROM gamelogs
WHERE session_id = $1
ORDER BY seq DESC
LIMIT $2`

func (r *pgGamelogRepository) ListBySession(ctx context.Context, q interfaces.DBTX, sessionID uuid.UUID, limit int) ([]*models.GamelogEntry, error) {
	rows, err := q.Query(ctx, listGamelogQuery, sessionID, limit)
	if err != nil {
		r.logger.Error("Failed to list gamelog entries", zap.String("sessionID", sessionID.String()), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.GamelogEntry, 0)
	for rows.Next() {
		var e models.GamelogEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Source, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gamelog row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gamelog rows: %w", err)
	}
	return entries, nil
}
