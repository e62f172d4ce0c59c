package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus определяет статус публикации игры.
type GameStatus string

const (
	GameStatusDraft     GameStatus = "draft"     // Черновик, виден только автору
	GameStatusPublished GameStatus = "published" // Опубликована, доступна игрокам
)

// Game - авторский корень: квест со сценами, персонажами и свойствами.
type Game struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	AuthorID    uuid.UUID  `json:"author_id" db:"author_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Status      GameStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsPublished сообщает, доступна ли игра для прохождения игроками.
func (g *Game) IsPublished() bool {
	return g.Status == GameStatusPublished
}

// Character - авторский архетип игрового персонажа внутри игры.
// Инстанцируется в SessionCharacter при старте сессии.
type Character struct {
	ID          uuid.UUID `json:"id" db:"id"`
	GameID      uuid.UUID `json:"game_id" db:"game_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	// StartSceneID - явно назначенная стартовая сцена. Если nil,
	// используется первая сцена игры по порядку.
	StartSceneID *uuid.UUID `json:"start_scene_id,omitempty" db:"start_scene_id"`
	// IsPrimary помечает персонажа, который становится активным при старте сессии.
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PropertyType определяет тип значения свойства.
type PropertyType string

const (
	PropertyTypeString PropertyType = "string"
	PropertyTypeNumber PropertyType = "number"
)

// Property - именованное типизированное свойство состояния квеста
// (например "has_key", "trust_level") с авторским значением по умолчанию.
type Property struct {
	ID     uuid.UUID `json:"id" db:"id"`
	GameID uuid.UUID `json:"game_id" db:"game_id"`
	// CharacterID ограничивает свойство одним персонажем; nil - общее для игры.
	CharacterID  *uuid.UUID   `json:"character_id,omitempty" db:"character_id"`
	Name         string       `json:"name" db:"name"`
	Type         PropertyType `json:"type" db:"type"`
	DefaultValue string       `json:"default_value" db:"default_value"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
