package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Scene - упорядоченный контейнер моментов внутри игры.
// Порядок во всех авторских коллекциях стабильный: order ASC, затем created_at/id ASC.
type Scene struct {
	ID          uuid.UUID `json:"id" db:"id"`
	GameID      uuid.UUID `json:"game_id" db:"game_id"`
	Name        string    `json:"name" db:"name"`
	Order       int       `json:"order" db:"sort_order"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Moment - атомарная адресуемая точка истории, на которую указывает
// курсор игрока. Содержит блоки повествования и действия.
type Moment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	GameID      uuid.UUID `json:"game_id" db:"game_id"`
	SceneID     uuid.UUID `json:"scene_id" db:"scene_id"`
	Name        string    `json:"name" db:"name"`
	Order       int       `json:"order" db:"sort_order"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Block - фрагмент повествовательного текста. Привязан к сцене и,
// опционально, к конкретному моменту (MomentID == nil означает, что блок
// виден в любом моменте сцены).
type Block struct {
	ID      uuid.UUID  `json:"id" db:"id"`
	GameID  uuid.UUID  `json:"game_id" db:"game_id"`
	SceneID uuid.UUID  `json:"scene_id" db:"scene_id"`
	MomentID *uuid.UUID `json:"moment_id,omitempty" db:"moment_id"`
	Order   int        `json:"order" db:"sort_order"`
	Content string     `json:"content" db:"content"`
	// Condition - сырой JSON условия видимости (см. models.Condition).
	// Разбирается вычислителем условий; нечитаемое условие закрывает блок
	// (fail-closed). Пустое условие всегда истинно.
	Condition json.RawMessage `json:"condition,omitempty" db:"condition"`
	// Visible - авторская видимость по умолчанию; может быть переопределена
	// записью SessionBlock через эффекты hideBlock/showBlock.
	Visible   bool      `json:"visible" db:"visible"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Action - выбор, предлагаемый игроку в моменте, с упорядоченным списком
// эффектов, срабатывающих при выборе.
type Action struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	GameID   uuid.UUID  `json:"game_id" db:"game_id"`
	SceneID  uuid.UUID  `json:"scene_id" db:"scene_id"`
	MomentID *uuid.UUID `json:"moment_id,omitempty" db:"moment_id"`
	Order    int        `json:"order" db:"sort_order"`
	Content  string     `json:"content" db:"content"`
	Condition json.RawMessage `json:"condition,omitempty" db:"condition"`
	Visible   bool            `json:"visible" db:"visible"`
	// Effects - эффекты действия в авторском порядке. Заполняется
	// репозиторием при загрузке действия целиком.
	Effects   []AfterEffect `json:"effects,omitempty" db:"-"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// EffectKind определяет вид атомарной мутации, привязанной к действию.
type EffectKind string

const (
	EffectGoToScene         EffectKind = "goToScene"
	EffectGoToMoment        EffectKind = "goToMoment"
	EffectSetProperty       EffectKind = "setProperty"
	EffectHideBlock         EffectKind = "hideBlock"
	EffectShowBlock         EffectKind = "showBlock"
	EffectHideAction        EffectKind = "hideAction"
	EffectShowAction        EffectKind = "showAction"
	EffectClearSceneBlocks  EffectKind = "clearSceneBlocks"
	EffectClearSceneActions EffectKind = "clearSceneActions"
)

// Valid сообщает, является ли вид эффекта одним из поддерживаемых.
func (k EffectKind) Valid() bool {
	switch k {
	case EffectGoToScene, EffectGoToMoment, EffectSetProperty,
		EffectHideBlock, EffectShowBlock, EffectHideAction, EffectShowAction,
		EffectClearSceneBlocks, EffectClearSceneActions:
		return true
	}
	return false
}

// AfterEffect - одна атомарная мутация, срабатывающая при выборе действия.
// Ровно одно из целевых полей заполнено в зависимости от Kind; Value
// используется только для setProperty.
type AfterEffect struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	ActionID uuid.UUID  `json:"action_id" db:"action_id"`
	Order    int        `json:"order" db:"sort_order"`
	Kind     EffectKind `json:"kind" db:"kind"`

	SceneID        *uuid.UUID `json:"scene_id,omitempty" db:"scene_id"`
	MomentID       *uuid.UUID `json:"moment_id,omitempty" db:"moment_id"`
	BlockID        *uuid.UUID `json:"block_id,omitempty" db:"block_id"`
	TargetActionID *uuid.UUID `json:"target_action_id,omitempty" db:"target_action_id"`
	PropertyID     *uuid.UUID `json:"property_id,omitempty" db:"property_id"`
	Value          string     `json:"value,omitempty" db:"value"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
