package service

import (
	"fmt"
	"strconv"
	"strings"

	"gamebook-server/shared/models"

	"github.com/google/uuid"
)

// Нумерованные меню - единственный способ ввода в чате: бот показывает
// пронумерованный список, игрок отвечает числом. Порядок ID в возвращаемом
// срезе соответствует номерам в тексте (ответ "2" выбирает ids[1]).

// renderGameMenu строит каталог игр с номерами для выбора.
func renderGameMenu(games []*models.Game) (string, []uuid.UUID) {
	if len(games) == 0 {
		return "Пока нет ни одной опубликованной игры. Загляните позже!", nil
	}

	var sb strings.Builder
	sb.WriteString("Выберите игру (ответьте номером):\n")
	ids := make([]uuid.UUID, 0, len(games))
	for i, game := range games {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, game.Name))
		if game.Description != "" {
			sb.WriteString(" — " + game.Description)
		}
		ids = append(ids, game.ID)
	}
	return sb.String(), ids
}

// renderView строит текст сцены со списком доступных действий.
func renderView(view *models.GameView) (string, []uuid.UUID) {
	var sb strings.Builder
	if view.Vision != "" {
		sb.WriteString(view.Vision)
	}

	if len(view.Actions) == 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Действий больше нет. /games — выбрать другую игру, /restart — начать заново.")
		return sb.String(), nil
	}

	sb.WriteString("\n")
	ids := make([]uuid.UUID, 0, len(view.Actions))
	for i, action := range view.Actions {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, action.Content))
		ids = append(ids, action.ID)
	}
	return sb.String(), ids
}

// parseChoice распознает числовой ответ игрока. Возвращает выбранный ID
// из последнего показанного меню.
func parseChoice(text string, menu []uuid.UUID) (uuid.UUID, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > len(menu) {
		return uuid.Nil, false
	}
	return menu[n-1], true
}
