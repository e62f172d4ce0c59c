package service

import (
	"context"
	"errors"
	"strings"

	"gamebook-server/shared/interfaces"
	"gamebook-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const gameCatalogueLimit = 20

const helpText = "Команды:\n" +
	"/games — список игр\n" +
	"/restart — начать текущую игру заново\n" +
	"/stop — закончить и забыть прогресс\n\n" +
	"Во время игры отвечайте номером варианта."

// BotService ведет диалог с игроком в чате: показывает каталог игр,
// переводит числовые ответы в действия и ходит в gameplay-сервис.
// Состояние диалога (текущая сессия, последнее меню) живет в Redis.
type BotService struct {
	gameplay interfaces.GameplayServiceClient
	states   interfaces.ChatStateRepository
	logger   *zap.Logger
}

// NewBotService создает новый BotService.
func NewBotService(gameplay interfaces.GameplayServiceClient, states interfaces.ChatStateRepository, logger *zap.Logger) *BotService {
	return &BotService{
		gameplay: gameplay,
		states:   states,
		logger:   logger.Named("BotService"),
	}
}

// HandleCommand обрабатывает одно входящее сообщение чата и возвращает ответ
// бота. Ошибки игровой логики превращаются в дружелюбные реплики; наружу
// уходят только ошибки инфраструктуры.
func (s *BotService) HandleCommand(ctx context.Context, cmd models.ChatCommand) (models.ChatReply, error) {
	text := strings.TrimSpace(cmd.Text)

	switch {
	case text == "/start":
		return s.reply(cmd, helpText+"\n\nНачните с /games."), nil
	case text == "/games":
		return s.showCatalogue(ctx, cmd)
	case text == "/restart":
		return s.restart(ctx, cmd)
	case text == "/stop":
		if err := s.states.Delete(ctx, cmd.ChatID); err != nil && !errors.Is(err, models.ErrNotFound) {
			return models.ChatReply{}, err
		}
		return s.reply(cmd, "Прогресс забыт. /games — начать заново."), nil
	}

	// Не команда - значит числовой выбор из последнего меню.
	state, err := s.states.Get(ctx, cmd.ChatID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return s.reply(cmd, helpText), nil
		}
		return models.ChatReply{}, err
	}

	chosen, ok := parseChoice(text, state.Menu)
	if !ok {
		return s.reply(cmd, "Не понял. Ответьте номером из списка или используйте /games."), nil
	}

	if state.SessionID == uuid.Nil {
		// Меню было каталогом игр.
		return s.startGame(ctx, cmd, state, chosen)
	}
	return s.applyAction(ctx, cmd, state, chosen)
}

func (s *BotService) showCatalogue(ctx context.Context, cmd models.ChatCommand) (models.ChatReply, error) {
	games, err := s.gameplay.ListGames(ctx, gameCatalogueLimit)
	if err != nil {
		return models.ChatReply{}, err
	}

	text, menu := renderGameMenu(games)
	if len(menu) > 0 {
		if err := s.saveState(ctx, &models.ChatState{
			ChatID: cmd.ChatID,
			UserID: cmd.UserID,
			Menu:   menu,
		}); err != nil {
			return models.ChatReply{}, err
		}
	}
	return s.reply(cmd, text), nil
}

func (s *BotService) startGame(ctx context.Context, cmd models.ChatCommand, state *models.ChatState, gameID uuid.UUID) (models.ChatReply, error) {
	started, err := s.gameplay.StartSession(ctx, cmd.UserID, gameID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrForbidden) {
			return s.reply(cmd, "Эта игра сейчас недоступна. /games — обновить список."), nil
		}
		return models.ChatReply{}, err
	}

	text, menu := renderView(&started.View)
	state.GameID = gameID
	state.SessionID = started.SessionID
	state.Menu = menu
	if err := s.saveState(ctx, state); err != nil {
		return models.ChatReply{}, err
	}

	s.logger.Info("Chat started game",
		zap.Int64("chatID", cmd.ChatID),
		zap.String("gameID", gameID.String()),
		zap.String("sessionID", started.SessionID.String()))
	return s.reply(cmd, text), nil
}

func (s *BotService) applyAction(ctx context.Context, cmd models.ChatCommand, state *models.ChatState, actionID uuid.UUID) (models.ChatReply, error) {
	result, err := s.gameplay.ApplyAction(ctx, cmd.UserID, state.SessionID, actionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Сессия потерялась (например, истек TTL на другом транспорте).
			return s.reply(cmd, "Сессия не найдена. /restart — начать игру заново."), nil
		}
		return models.ChatReply{}, err
	}

	text, menu := renderView(&result.View)
	if !result.Applied {
		text = "Этот вариант уже недоступен.\n\n" + text
	}
	if result.Finished {
		// Сессия закончилась: меню сбрасываем, чтобы числа не улетали
		// в завершенную сессию.
		text += "\n\nИгра завершена. /restart — сыграть заново, /games — выбрать другую."
		menu = nil
	}
	state.Menu = menu
	if err := s.saveState(ctx, state); err != nil {
		return models.ChatReply{}, err
	}
	return s.reply(cmd, text), nil
}

func (s *BotService) restart(ctx context.Context, cmd models.ChatCommand) (models.ChatReply, error) {
	state, err := s.states.Get(ctx, cmd.ChatID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return s.reply(cmd, "Вы еще не выбрали игру. /games — список игр."), nil
		}
		return models.ChatReply{}, err
	}
	if state.GameID == uuid.Nil {
		return s.reply(cmd, "Вы еще не выбрали игру. /games — список игр."), nil
	}
	return s.startGame(ctx, cmd, state, state.GameID)
}

func (s *BotService) saveState(ctx context.Context, state *models.ChatState) error {
	if err := s.states.Save(ctx, state); err != nil {
		s.logger.Error("Failed to save chat state",
			zap.Int64("chatID", state.ChatID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *BotService) reply(cmd models.ChatCommand, text string) models.ChatReply {
	return models.ChatReply{ChatID: cmd.ChatID, Text: text}
}
