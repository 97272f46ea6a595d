package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"chat-eats-backend/internal/models"
)

const (
	ordersExchange        = "orders_topic"
	notificationsExchange = "notifications_fanout"
)

// Publisher sends events to RabbitMQ. Order lifecycle events go to a topic
// exchange keyed by event name; people-facing notifications fan out to every
// gateway instance.
type Publisher struct {
	conn   *amqp091.Connection
	ch     *amqp091.Channel
	logger *slog.Logger
}

func NewPublisher(conn *amqp091.Connection, logger *slog.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("messaging.NewPublisher: open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ordersExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("messaging.NewPublisher: declare %s: %w", ordersExchange, err)
	}
	if err := ch.ExchangeDeclare(notificationsExchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("messaging.NewPublisher: declare %s: %w", notificationsExchange, err)
	}
	return &Publisher{conn: conn, ch: ch, logger: logger}, nil
}

func (p *Publisher) publish(ctx context.Context, exchange, routingKey string, message any, persistent bool) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("messaging: marshal message: %w", err)
	}

	deliveryMode := amqp091.Transient
	if persistent {
		deliveryMode = amqp091.Persistent
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: uint8(deliveryMode),
		Timestamp:    time.Now(),
	})
	if err != nil {
		p.logger.Error("message publish failed",
			slog.String("exchange", exchange),
			slog.String("routing_key", routingKey),
			slog.String("error", err.Error()))
		return fmt.Errorf("messaging: publish to %s: %w", exchange, err)
	}

	p.logger.Debug("message published",
		slog.String("exchange", exchange),
		slog.String("routing_key", routingKey),
		slog.Int("size", len(body)))
	return nil
}

func (p *Publisher) OrderPublished(ctx context.Context, header *models.OrderHeader) error {
	return p.publish(ctx, ordersExchange, "order.created", map[string]any{
		"order_id":  header.ID,
		"client_id": header.ClientID,
		"total":     header.Total(),
	}, true)
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, headerID int64, status models.OrderStatus) error {
	return p.publish(ctx, ordersExchange, "order.status", map[string]any{
		"order_id": headerID,
		"status":   status,
	}, true)
}

func (p *Publisher) PromotionApplied(ctx context.Context, application *models.PromotionApplication, adminIDs []int64) error {
	return p.publish(ctx, notificationsExchange, "", map[string]any{
		"event":           "promotion.applied",
		"user_id":         application.UserID,
		"role_to_promote": application.RoleToPromote,
		"admin_ids":       adminIDs,
	}, false)
}

func (p *Publisher) PromotionDecided(ctx context.Context, userID int64, role models.Role, accepted bool) error {
	return p.publish(ctx, notificationsExchange, "", map[string]any{
		"event":    "promotion.decided",
		"user_id":  userID,
		"role":     role,
		"accepted": accepted,
	}, false)
}

func (p *Publisher) ShiftClosed(ctx context.Context, courierID int64, elapsed time.Duration) error {
	return p.publish(ctx, notificationsExchange, "", map[string]any{
		"event":           "shift.closed",
		"courier_id":      courierID,
		"elapsed_seconds": int(elapsed.Seconds()),
	}, false)
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
