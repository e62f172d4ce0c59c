package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gamebook-server/shared/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// GameUpdatePublisher defines the interface for publishing game state updates
// to client transports (chat bot, web client).
type GameUpdatePublisher interface {
	PublishGameUpdate(ctx context.Context, payload models.ClientGameUpdate) error
}

// rabbitMQGameUpdatePublisher реализует GameUpdatePublisher поверх RabbitMQ.
type rabbitMQGameUpdatePublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQGameUpdatePublisher создает паблишер обновлений для клиентов.
// Объявляет очередь сам, чтобы система не зависела от порядка запуска сервисов.
// Важно: параметры очереди должны совпадать с параметрами у консьюмера.
func NewRabbitMQGameUpdatePublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (GameUpdatePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("game update publisher: не удалось открыть канал: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("game update publisher: не удалось объявить очередь '%s': %w", queueName, err)
	}

	return &rabbitMQGameUpdatePublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("GameUpdatePublisher"),
	}, nil
}

// PublishGameUpdate отправляет обновление состояния игры в очередь клиентских
// обновлений.
func (p *rabbitMQGameUpdatePublisher) PublishGameUpdate(ctx context.Context, payload models.ClientGameUpdate) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal game update: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(pubCtx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish game update",
			zap.String("sessionID", payload.SessionID.String()),
			zap.Error(err))
		return fmt.Errorf("publish game update: %w", err)
	}

	p.logger.Debug("Game update published",
		zap.String("sessionID", payload.SessionID.String()),
		zap.Int("actions", len(payload.View.Actions)))
	return nil
}
