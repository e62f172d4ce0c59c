package models

import (
	"time"

	"github.com/google/uuid"
)

// GamelogSource определяет источник записи в журнале прохождения.
type GamelogSource string

const (
	GamelogSourceUser GamelogSource = "user"
	GamelogSourceGame GamelogSource = "game"
)

// GamelogEntry - одна запись append-only журнала сессии. Движок только
// добавляет записи; чтение идет в обратном хронологическом порядке.
type GamelogEntry struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	SessionID uuid.UUID     `json:"session_id" db:"session_id"`
	Source    GamelogSource `json:"source" db:"source"`
	Text      string        `json:"text" db:"text"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
