package models

import "github.com/google/uuid"

// ActionOption - один пункт списка доступных игроку действий.
type ActionOption struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
}

// GameView - то, что игрок видит в текущей позиции: текст сцены и список
// доступных действий. Именно эта структура отдается веб-клиенту и боту.
type GameView struct {
	Vision  string         `json:"vision"`
	Actions []ActionOption `json:"actions"`
}
