package handler

import (
	"net/http"
	"strconv"

	sharedModels "gamebook-server/shared/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// userIDFromContext извлекает ID игрока, положенный auth middleware.
func userIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := sharedModels.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "user_id не найден в контексте")
	}
	return userID, nil
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "невалидный "+name)
	}
	return id, nil
}

func limitParam(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil {
		return 0 // сервис подставит значение по умолчанию
	}
	return limit
}

func (h *PlayHandler) listPublishedGames(c echo.Context) error {
	if _, err := userIDFromContext(c); err != nil {
		return err
	}
	games, err := h.play.ListPublishedGames(c.Request().Context(), limitParam(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toGameSummaries(games))
}

func (h *PlayHandler) startGame(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	gameID, err := pathUUID(c, "gameID")
	if err != nil {
		return err
	}

	started, err := h.play.StartGame(c.Request().Context(), userID, gameID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, StartGameResponse{
		SessionID: started.Session.ID,
		View:      started.View,
	})
}

func (h *PlayHandler) getView(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	sessionID, err := pathUUID(c, "sessionID")
	if err != nil {
		return err
	}

	view, err := h.play.GetView(c.Request().Context(), userID, sessionID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *PlayHandler) applyAction(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	sessionID, err := pathUUID(c, "sessionID")
	if err != nil {
		return err
	}
	actionID, err := pathUUID(c, "actionID")
	if err != nil {
		return err
	}

	outcome, err := h.play.ApplyAction(c.Request().Context(), userID, sessionID, actionID)
	if err != nil {
		return handleServiceError(c, err)
	}
	if !outcome.Applied {
		// Действие не предлагалось в текущей позиции; отдаем актуальный
		// вид, чтобы клиент перерисовал сцену.
		return c.JSON(http.StatusConflict, ApplyActionResponse{
			Applied:  false,
			Finished: outcome.Finished,
			View:     outcome.View,
		})
	}
	return c.JSON(http.StatusOK, ApplyActionResponse{
		Applied:  true,
		Finished: outcome.Finished,
		View:     outcome.View,
	})
}

func (h *PlayHandler) setActiveCharacter(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	sessionID, err := pathUUID(c, "sessionID")
	if err != nil {
		return err
	}

	var req SetActiveCharacterRequest
	if err := c.Bind(&req); err != nil || req.SessionCharacterID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "невалидное тело запроса")
	}

	if err := h.play.SetActiveCharacter(c.Request().Context(), userID, sessionID, req.SessionCharacterID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PlayHandler) finishGame(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	sessionID, err := pathUUID(c, "sessionID")
	if err != nil {
		return err
	}

	if err := h.play.FinishGame(c.Request().Context(), userID, sessionID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PlayHandler) getGamelog(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	sessionID, err := pathUUID(c, "sessionID")
	if err != nil {
		return err
	}

	entries, err := h.play.GetGamelog(c.Request().Context(), userID, sessionID, limitParam(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toGamelogResponses(entries))
}

func (h *PlayHandler) publishGame(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	gameID, err := pathUUID(c, "gameID")
	if err != nil {
		return err
	}

	if err := h.publishing.Publish(c.Request().Context(), userID, gameID); err != nil {
		return handleServiceError(c, err)
	}
	h.logger.Info("Game published via API", zap.String("gameID", gameID.String()))
	return c.NoContent(http.StatusNoContent)
}

func (h *PlayHandler) unpublishGame(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}
	gameID, err := pathUUID(c, "gameID")
	if err != nil {
		return err
	}

	if err := h.publishing.Unpublish(c.Request().Context(), userID, gameID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// validateGame прогоняет валидацию публикации без смены статуса, чтобы автор
// мог увидеть список проблем до нажатия "опубликовать".
func (h *PlayHandler) validateGame(c echo.Context) error {
	if _, err := userIDFromContext(c); err != nil {
		return err
	}
	gameID, err := pathUUID(c, "gameID")
	if err != nil {
		return err
	}

	issues, err := h.publishing.Validate(c.Request().Context(), gameID)
	if err != nil {
		return handleServiceError(c, err)
	}
	if issues == nil {
		issues = []string{}
	}
	return c.JSON(http.StatusOK, ValidateGameResponse{Issues: issues})
}

// --- Внутренние обработчики для чат-бота ---
// Бот аутентифицирует игрока сам, поэтому ID игрока приходит в теле запроса,
// а не из JWT.

func (h *PlayHandler) internalListGames(c echo.Context) error {
	games, err := h.play.ListPublishedGames(c.Request().Context(), limitParam(c))
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toGameSummaries(games))
}

func (h *PlayHandler) internalStartGame(c echo.Context) error {
	gameID, err := pathUUID(c, "gameID")
	if err != nil {
		return err
	}
	var req InternalUserRequest
	if err := c.Bind(&req); err != nil || req.UserID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "невалидное тело запроса")
	}

	started, err := h.play.StartGame(c.Request().Context(), req.UserID, gameID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, StartGameResponse{
		SessionID: started.Session.ID,
		View:      started.View,
	})
}

func (h *PlayHandler) internalGetView(c echo.Context) error {
	sessionID, err := pathUUID(c, "sessionID")
	if err != nil {
		return err
	}
	var req InternalUserRequest
	if err := c.Bind(&req); err != nil || req.UserID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "невалидное тело запроса")
	}

	view, err := h.play.GetView(c.Request().Context(), req.UserID, sessionID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *PlayHandler) internalApplyAction(c echo.Context) error {
	sessionID, err := pathUUID(c, "sessionID")
	if err != nil {
		return err
	}
	actionID, err := pathUUID(c, "actionID")
	if err != nil {
		return err
	}
	var req InternalUserRequest
	if err := c.Bind(&req); err != nil || req.UserID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "невалидное тело запроса")
	}

	outcome, err := h.play.ApplyAction(c.Request().Context(), req.UserID, sessionID, actionID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ApplyActionResponse{
		Applied:  outcome.Applied,
		Finished: outcome.Finished,
		View:     outcome.View,
	})
}
