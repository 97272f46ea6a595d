package messaging

import (
	"context"
	"time"

	"chat-eats-backend/internal/models"
)

// Notifier publishes events the chat gateway turns into messages. Delivery is
// fire-and-forget: the core never fails an operation because an event could
// not be published.
type Notifier interface {
	OrderPublished(ctx context.Context, header *models.OrderHeader) error
	OrderStatusChanged(ctx context.Context, headerID int64, status models.OrderStatus) error
	PromotionApplied(ctx context.Context, application *models.PromotionApplication, adminIDs []int64) error
	PromotionDecided(ctx context.Context, userID int64, role models.Role, accepted bool) error
	ShiftClosed(ctx context.Context, courierID int64, elapsed time.Duration) error
}

// NopNotifier discards all events. Used in tests and when AMQP is not
// configured.
type NopNotifier struct{}

func (NopNotifier) OrderPublished(context.Context, *models.OrderHeader) error { return nil }

func (NopNotifier) OrderStatusChanged(context.Context, int64, models.OrderStatus) error { return nil }

func (NopNotifier) PromotionApplied(context.Context, *models.PromotionApplication, []int64) error {
	return nil
}

func (NopNotifier) PromotionDecided(context.Context, int64, models.Role, bool) error { return nil }

func (NopNotifier) ShiftClosed(context.Context, int64, time.Duration) error { return nil }
