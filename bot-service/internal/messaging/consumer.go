package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gamebook-server/bot-service/internal/service"
	"gamebook-server/shared/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// CommandConsumer читает входящие команды чата из RabbitMQ, прогоняет их
// через BotService и публикует ответы.
type CommandConsumer struct {
	conn        *amqp.Connection
	bot         *service.BotService
	replies     ReplyPublisher
	queueName   string
	logger      *zap.Logger
	stopChannel chan struct{}
}

// NewCommandConsumer создает нового консьюмера команд чата.
func NewCommandConsumer(
	conn *amqp.Connection,
	bot *service.BotService,
	replies ReplyPublisher,
	queueName string,
	logger *zap.Logger,
) *CommandConsumer {
	return &CommandConsumer{
		conn:        conn,
		bot:         bot,
		replies:     replies,
		queueName:   queueName,
		logger:      logger.Named("CommandConsumer"),
		stopChannel: make(chan struct{}),
	}
}

// StartConsuming начинает прослушивание очереди команд.
// Функция блокирующая, запускать в отдельной горутине.
func (c *CommandConsumer) StartConsuming() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("не удалось открыть канал RabbitMQ: %w", err)
	}
	defer ch.Close()

	// Объявляем очередь на случай, если шлюз еще не поднялся.
	// Важно: параметры должны совпадать с параметрами на стороне шлюза.
	q, err := ch.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("не удалось объявить очередь '%s': %w", c.queueName, err)
	}

	// Обрабатываем по одной команде за раз: порядок сообщений игрока важен.
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("не удалось установить QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"bot-service-consumer", // consumer tag
		false,                  // auto-ack
		false,                  // exclusive
		false,                  // no-local
		false,                  // no-wait
		nil,                    // args
	)
	if err != nil {
		return fmt.Errorf("не удалось зарегистрировать консьюмера: %w", err)
	}

	c.logger.Info("Консьюмер запущен, ожидание команд чата",
		zap.String("queue", q.Name))

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				c.logger.Info("Канал сообщений RabbitMQ закрыт")
				return nil
			}
			c.handleDelivery(d)
		case <-c.stopChannel:
			c.logger.Info("Получен сигнал остановки консьюмера")
			return nil
		}
	}
}

// Stop останавливает консьюмер.
func (c *CommandConsumer) Stop() {
	close(c.stopChannel)
}

func (c *CommandConsumer) handleDelivery(d amqp.Delivery) {
	var cmd models.ChatCommand
	if err := json.Unmarshal(d.Body, &cmd); err != nil {
		c.logger.Error("Нечитаемая команда чата, отбрасываем",
			zap.Uint64("deliveryTag", d.DeliveryTag),
			zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reply, err := c.bot.HandleCommand(ctx, cmd)
	if err != nil {
		c.logger.Error("Ошибка обработки команды чата",
			zap.Int64("chatID", cmd.ChatID),
			zap.Error(err))
		// Requeue один раз: повторная ошибка отбрасывает сообщение.
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	if err := c.replies.PublishReply(ctx, reply); err != nil {
		c.logger.Error("Не удалось опубликовать ответ бота",
			zap.Int64("chatID", cmd.ChatID),
			zap.Error(err))
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
}
