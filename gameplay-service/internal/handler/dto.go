package handler

import (
	"time"

	"gamebook-server/shared/models"

	"github.com/google/uuid"
)

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// GameSummary - сокращенная карточка игры для каталога.
type GameSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidateGameResponse - список проблем авторского контента. Пустой список
// означает, что игра готова к публикации.
type ValidateGameResponse struct {
	Issues []string `json:"issues"`
}

// StartGameResponse - ответ на запуск игры: новая сессия и стартовый вид.
type StartGameResponse struct {
	SessionID uuid.UUID       `json:"sessionId"`
	View      models.GameView `json:"view"`
}

// ApplyActionResponse - результат применения действия.
type ApplyActionResponse struct {
	Applied  bool            `json:"applied"`
	Finished bool            `json:"finished"`
	View     models.GameView `json:"view"`
}

// SetActiveCharacterRequest - запрос на переключение активного персонажа.
type SetActiveCharacterRequest struct {
	SessionCharacterID uuid.UUID `json:"sessionCharacterId"`
}

// GamelogEntryResponse - одна запись журнала прохождения.
type GamelogEntryResponse struct {
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// InternalUserRequest - тело внутренних запросов от бота: бот аутентифицирует
// игрока сам и передает его ID явно.
type InternalUserRequest struct {
	UserID uuid.UUID `json:"userId"`
}

func toGameSummaries(games []*models.Game) []GameSummary {
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, GameSummary{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			CreatedAt:   g.CreatedAt,
		})
	}
	return out
}

func toGamelogResponses(entries []*models.GamelogEntry) []GamelogEntryResponse {
	out := make([]GamelogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, GamelogEntryResponse{
			Source:    string(e.Source),
			Text:      e.Text,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
