package handler

import (
	"errors"
	"net/http"

	"gamebook-server/gameplay-service/internal/service"
	"gamebook-server/shared/authutils"
	sharedMiddleware "gamebook-server/shared/middleware"
	sharedModels "gamebook-server/shared/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PlayHandler обрабатывает HTTP запросы игрового сервиса.
type PlayHandler struct {
	play              service.PlayService
	publishing        service.PublishingService
	logger            *zap.Logger
	userTokenVerifier *authutils.JWTVerifier
	// internalServiceToken защищает маршруты /internal, которыми пользуется бот.
	internalServiceToken string
}

// NewPlayHandler создает новый PlayHandler.
func NewPlayHandler(
	play service.PlayService,
	publishing service.PublishingService,
	logger *zap.Logger,
	jwtSecret, internalServiceToken string,
) *PlayHandler {
	userVerifier, err := authutils.NewJWTVerifier(jwtSecret, logger)
	if err != nil {
		logger.Fatal("Failed to create User JWT Verifier", zap.Error(err))
	}

	return &PlayHandler{
		play:                 play,
		publishing:           publishing,
		logger:               logger.Named("PlayHandler"),
		userTokenVerifier:    userVerifier,
		internalServiceToken: internalServiceToken,
	}
}

// RegisterRoutes регистрирует маршруты игрового сервиса.
func (h *PlayHandler) RegisterRoutes(e *echo.Echo) {
	authMiddleware := sharedMiddleware.Auth(h.userTokenVerifier.VerifyToken, h.logger)
	interServiceAuthMiddleware := sharedMiddleware.InterServiceAuth(h.internalServiceToken, h.logger)

	// --- Каталог и жизненный цикл игры (API для пользователей) ---
	gamesGroup := e.Group("/games", authMiddleware)
	{
		gamesGroup.GET("", h.listPublishedGames)
		gamesGroup.POST("/:gameID/play", h.startGame)
		gamesGroup.POST("/:gameID/publish", h.publishGame)
		gamesGroup.POST("/:gameID/unpublish", h.unpublishGame)
		gamesGroup.POST("/:gameID/validate", h.validateGame)
	}

	// --- Прохождение (API для пользователей) ---
	playGroup := e.Group("/play", authMiddleware)
	{
		playGroup.GET("/:sessionID", h.getView)
		playGroup.POST("/:sessionID/actions/:actionID", h.applyAction)
		playGroup.POST("/:sessionID/character", h.setActiveCharacter)
		playGroup.POST("/:sessionID/finish", h.finishGame)
		playGroup.GET("/:sessionID/log", h.getGamelog)
	}

	// --- Внутренние маршруты для чат-бота ---
	internalGroup := e.Group("/internal/play", interServiceAuthMiddleware)
	{
		internalGroup.GET("/games", h.internalListGames)
		internalGroup.POST("/games/:gameID/start", h.internalStartGame)
		internalGroup.POST("/sessions/:sessionID/view", h.internalGetView)
		internalGroup.POST("/sessions/:sessionID/actions/:actionID", h.internalApplyAction)
	}
}

// handleServiceError переводит ошибки сервисного слоя в HTTP статусы.
func handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var apiErr APIError

	switch {
	case errors.Is(err, sharedModels.ErrUnauthorized),
		errors.Is(err, sharedModels.ErrTokenInvalid),
		errors.Is(err, sharedModels.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		apiErr = APIError{Message: "Unauthorized"}
	case errors.Is(err, sharedModels.ErrForbidden):
		statusCode = http.StatusForbidden
		apiErr = APIError{Message: "Forbidden"}
	case errors.Is(err, sharedModels.ErrNotFound):
		statusCode = http.StatusNotFound
		apiErr = APIError{Message: "Resource not found"}
	case errors.Is(err, sharedModels.ErrGameNotPublished):
		statusCode = http.StatusForbidden
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, sharedModels.ErrGameNotPlayable),
		errors.Is(err, sharedModels.ErrSessionFinished),
		errors.Is(err, sharedModels.ErrNoActiveCharacter):
		statusCode = http.StatusConflict
		apiErr = APIError{Message: err.Error()}
	case errors.Is(err, sharedModels.ErrValidation),
		errors.Is(err, sharedModels.ErrBadRequest),
		errors.Is(err, sharedModels.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		apiErr = APIError{Message: err.Error()}
	default:
		statusCode = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}

	return c.JSON(statusCode, apiErr)
}
