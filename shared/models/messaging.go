package models

import "github.com/google/uuid"

// ClientGameUpdate - событие для клиентских транспортов (бот, веб-сокет):
// свежее состояние сцены после применения действия игрока.
type ClientGameUpdate struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    uuid.UUID `json:"user_id"`
	View      GameView  `json:"view"`
	Finished  bool      `json:"finished"`
}

// ChatCommand - входящее сообщение игрока из чат-транспорта.
// Разбор протокола конкретного мессенджера остается на стороне шлюза;
// сюда приходит уже нормализованная команда.
type ChatCommand struct {
	ChatID int64     `json:"chat_id"`
	UserID uuid.UUID `json:"user_id"`
	Text   string    `json:"text"`
}

// ChatReply - исходящее сообщение бота в чат.
type ChatReply struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// ChatState - состояние диалога с конкретным чатом: какой игрой и сессией
// живет чат и какое нумерованное меню было показано последним.
// Хранится в Redis с TTL.
type ChatState struct {
	ChatID    int64     `json:"chat_id"`
	UserID    uuid.UUID `json:"user_id"`
	GameID    uuid.UUID `json:"game_id"`
	SessionID uuid.UUID `json:"session_id"`
	// Menu - ID действий в том порядке, в котором они были пронумерованы
	// в последнем ответе бота. Ответ "2" игрока выбирает Menu[1].
	Menu []uuid.UUID `json:"menu"`
}
