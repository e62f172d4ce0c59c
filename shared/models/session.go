package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus определяет статус игровой сессии.
type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "active"
	SessionStatusFinished SessionStatus = "finished"
)

// Session - одно прохождение игры конкретным игроком. Игрок может проходить
// один и тот же квест несколько раз; активной для пары (игрок, игра)
// остается не более одной сессии.
type Session struct {
	ID     uuid.UUID     `json:"id" db:"id"`
	GameID uuid.UUID     `json:"game_id" db:"game_id"`
	UserID uuid.UUID     `json:"user_id" db:"user_id"`
	Status SessionStatus `json:"status" db:"status"`
	// ActiveCharacterID - персонаж, которым игрок управляет в данный момент.
	// Сессия может содержать несколько персонажей партии, активен ровно один.
	ActiveCharacterID *uuid.UUID `json:"active_character_id,omitempty" db:"active_character_id"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// IsFinished сообщает, завершена ли сессия. Завершенные сессии неизменяемы.
func (s *Session) IsFinished() bool {
	return s.Status == SessionStatusFinished
}

// SessionCharacter - живой экземпляр персонажа внутри сессии: курсор
// (текущие сцена и момент) плюс принадлежащие ему переопределения свойств
// и видимости. Все изменяемое во время игры состояние живет здесь или в
// записях, которыми он владеет.
type SessionCharacter struct {
	ID              uuid.UUID `json:"id" db:"id"`
	SessionID       uuid.UUID `json:"session_id" db:"session_id"`
	CharacterID     uuid.UUID `json:"character_id" db:"character_id"`
	CurrentSceneID  uuid.UUID `json:"current_scene_id" db:"current_scene_id"`
	CurrentMomentID uuid.UUID `json:"current_moment_id" db:"current_moment_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// SessionProperty - переопределение значения свойства для конкретного
// SessionCharacter. Создается лениво при первой записи; после создания
// затеняет авторское значение по умолчанию до конца сессии.
// Уникально по паре (session_character_id, property_id).
type SessionProperty struct {
	SessionCharacterID uuid.UUID `json:"session_character_id" db:"session_character_id"`
	PropertyID         uuid.UUID `json:"property_id" db:"property_id"`
	CurrentValue       string    `json:"current_value" db:"current_value"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// SessionBlock - переопределение видимости блока для SessionCharacter.
// Создается лениво эффектами hideBlock/showBlock/clearSceneBlocks.
// Уникально по паре (session_character_id, block_id).
type SessionBlock struct {
	SessionCharacterID uuid.UUID `json:"session_character_id" db:"session_character_id"`
	BlockID            uuid.UUID `json:"block_id" db:"block_id"`
	Visible            bool      `json:"visible" db:"visible"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// SessionAction - переопределение видимости действия для SessionCharacter.
// Уникально по паре (session_character_id, action_id).
type SessionAction struct {
	SessionCharacterID uuid.UUID `json:"session_character_id" db:"session_character_id"`
	ActionID           uuid.UUID `json:"action_id" db:"action_id"`
	Visible            bool      `json:"visible" db:"visible"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
