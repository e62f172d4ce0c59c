package interfaces

import (
	"context"

	"gamebook-server/shared/models"

	"github.com/google/uuid"
)

// StartedSession - результат старта сессии для клиентов gameplay-сервиса.
type StartedSession struct {
	SessionID uuid.UUID       `json:"session_id"`
	View      models.GameView `json:"view"`
}

// ActionResult - результат применения действия.
type ActionResult struct {
	// Applied=false означает, что действие не найдено в текущей позиции
	// (невалидный выбор, не ошибка транспорта).
	Applied bool `json:"applied"`
	// Finished сообщает, что сессия завершилась: дальнейшие действия
	// против нее не принимаются.
	Finished bool            `json:"finished"`
	View     models.GameView `json:"view"`
}

// GameplayServiceClient - клиент внутреннего API gameplay-сервиса.
// Используется bot-сервисом для ведения игры от имени игрока.
//
//go:generate mockery --name GameplayServiceClient --output ./mocks --outpkg mocks --case=underscore
type GameplayServiceClient interface {
	// ListGames возвращает опубликованные игры для каталога бота.
	ListGames(ctx context.Context, limit int) ([]*models.Game, error)

	// StartSession начинает новое прохождение (завершая предыдущее активное).
	StartSession(ctx context.Context, userID, gameID uuid.UUID) (*StartedSession, error)

	// GetView возвращает текущее представление сессии.
	GetView(ctx context.Context, userID, sessionID uuid.UUID) (*models.GameView, error)

	// ApplyAction применяет выбранное игроком действие.
	ApplyAction(ctx context.Context, userID, sessionID, actionID uuid.UUID) (*ActionResult, error)
}
