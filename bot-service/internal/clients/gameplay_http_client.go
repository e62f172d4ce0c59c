package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	interfaces "gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.GameplayServiceClient = (*HTTPGameplayServiceClient)(nil)

// HTTPGameplayServiceClient ходит во внутренний API gameplay-сервиса.
// Бот аутентифицирует игрока сам, поэтому передает его ID в теле запроса,
// а сам авторизуется межсервисным токеном.
type HTTPGameplayServiceClient struct {
	baseURL           string // например "http://gameplay-service:8082"
	httpClient        *http.Client
	logger            *zap.Logger
	interServiceToken string
}

// NewHTTPGameplayServiceClient создает HTTP клиент gameplay-сервиса.
func NewHTTPGameplayServiceClient(baseURL string, interServiceToken string, logger *zap.Logger) *HTTPGameplayServiceClient {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &HTTPGameplayServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		interServiceToken: interServiceToken,
		logger:            logger.Named("HTTPGameplayServiceClient"),
	}
}

type gameSummaryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type startGameResponseDTO struct {
	SessionID uuid.UUID       `json:"sessionId"`
	View      models.GameView `json:"view"`
}

type applyActionResponseDTO struct {
	Applied  bool            `json:"applied"`
	Finished bool            `json:"finished"`
	View     models.GameView `json:"view"`
}

type internalUserRequestDTO struct {
	UserID uuid.UUID `json:"userId"`
}

// ListGames implements interfaces.GameplayServiceClient.
func (c *HTTPGameplayServiceClient) ListGames(ctx context.Context, limit int) ([]*models.Game, error) {
	url := fmt.Sprintf("%s/internal/play/games?limit=%d", c.baseURL, limit)
	var dtos []gameSummaryDTO
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &dtos); err != nil {
		return nil, err
	}

	games := make([]*models.Game, 0, len(dtos))
	for _, dto := range dtos {
		games = append(games, &models.Game{
			ID:          dto.ID,
			Name:        dto.Name,
			Description: dto.Description,
			Status:      models.GameStatusPublished,
			CreatedAt:   dto.CreatedAt,
		})
	}
	return games, nil
}

// StartSession implements interfaces.GameplayServiceClient.
func (c *HTTPGameplayServiceClient) StartSession(ctx context.Context, userID, gameID uuid.UUID) (*interfaces.StartedSession, error) {
	url := fmt.Sprintf("%s/internal/play/games/%s/start", c.baseURL, gameID)
	var dto startGameResponseDTO
	if err := c.doJSON(ctx, http.MethodPost, url, internalUserRequestDTO{UserID: userID}, &dto); err != nil {
		return nil, err
	}
	return &interfaces.StartedSession{SessionID: dto.SessionID, View: dto.View}, nil
}

// GetView implements interfaces.GameplayServiceClient.
func (c *HTTPGameplayServiceClient) GetView(ctx context.Context, userID, sessionID uuid.UUID) (*models.GameView, error) {
	url := fmt.Sprintf("%s/internal/play/sessions/%s/view", c.baseURL, sessionID)
	var view models.GameView
	if err := c.doJSON(ctx, http.MethodPost, url, internalUserRequestDTO{UserID: userID}, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// ApplyAction implements interfaces.GameplayServiceClient.
func (c *HTTPGameplayServiceClient) ApplyAction(ctx context.Context, userID, sessionID, actionID uuid.UUID) (*interfaces.ActionResult, error) {
	url := fmt.Sprintf("%s/internal/play/sessions/%s/actions/%s", c.baseURL, sessionID, actionID)
	var dto applyActionResponseDTO
	if err := c.doJSON(ctx, http.MethodPost, url, internalUserRequestDTO{UserID: userID}, &dto); err != nil {
		return nil, err
	}
	return &interfaces.ActionResult{Applied: dto.Applied, Finished: dto.Finished, View: dto.View}, nil
}

// doJSON выполняет запрос с межсервисным токеном и декодирует JSON ответа.
func (c *HTTPGameplayServiceClient) doJSON(ctx context.Context, method, url string, reqBody, respBody any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request to gameplay service: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.interServiceToken != "" {
		req.Header.Set("X-Internal-Service-Token", c.interServiceToken)
	} else {
		c.logger.Warn("Inter-service token is not set for gameplay service client, API call might fail")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request to gameplay service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusConflict:
		// 409 означает валидный игровой отказ (например, действие недоступно);
		// тело все равно содержит актуальное состояние.
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusForbidden:
		return models.ErrForbidden
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Gameplay service returned unexpected status",
			zap.Int("status", resp.StatusCode),
			zap.String("url", url),
			zap.ByteString("body", body))
		return fmt.Errorf("gameplay service returned status %d", resp.StatusCode)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("failed to decode gameplay service response: %w", err)
		}
	}
	return nil
}
