package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chat-eats-backend/internal/messaging"
	"chat-eats-backend/internal/models"
)

// ServiceInterface defines the contract for the order engine.
//
// Every quantity-affecting operation takes identifiers and re-reads the cart
// inside the call. The caller may hold a cached header for display, but it is
// stale the moment any mutation happens and is never consulted for decisions.
type ServiceInterface interface {
	CreateCart(ctx context.Context, clientID, restaurantLocationID, clientLocationID int64) (*models.OrderHeader, error)
	Refresh(ctx context.Context, headerID int64) (*models.OrderHeader, error)

	AddItem(ctx context.Context, headerID, menuItemID int64) (int, error)
	RemoveItem(ctx context.Context, headerID, menuItemID int64) (int, error)
	HasItem(ctx context.Context, headerID, menuItemID int64) (*models.OrderItem, error)
	ListItems(ctx context.Context, headerID int64) ([]models.OrderItem, float64, error)
	SetComment(ctx context.Context, headerID int64, comment string) error

	Publish(ctx context.Context, headerID int64) (*models.OrderHeader, error)
	AdvanceStatus(ctx context.Context, headerID int64, next models.OrderStatus, courierID *int64) error
	StatusHistory(ctx context.Context, headerID int64) ([]models.OrderStatusUpdate, error)

	ListClientOrders(ctx context.Context, clientID int64) ([]*models.OrderHeader, error)
	ListAwaitingCourier(ctx context.Context) ([]*models.OrderHeader, error)
}

// Service implements the order engine.
type Service struct {
	repo     RepositoryInterface
	notifier messaging.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryInterface, notifier messaging.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// CreateCart eagerly creates an empty cart. Reuse within one ordering session
// is the caller's job (see session.Manager); duplicate creation is a caller
// bug, not a rejected operation.
func (s *Service) CreateCart(ctx context.Context, clientID, restaurantLocationID, clientLocationID int64) (*models.OrderHeader, error) {
	header, err := s.repo.CreateHeader(ctx, clientID, restaurantLocationID, clientLocationID)
	if err != nil {
		return nil, fmt.Errorf("service.CreateCart: %w", err)
	}
	return header, nil
}

func (s *Service) Refresh(ctx context.Context, headerID int64) (*models.OrderHeader, error) {
	header, err := s.repo.FindHeaderByID(ctx, headerID)
	if err != nil {
		return nil, fmt.Errorf("service.Refresh: %w", err)
	}
	return header, nil
}

// mutableHeader re-fetches the header and rejects mutation of published
// carts. The fresh read happens before every quantity decision.
func (s *Service) mutableHeader(ctx context.Context, headerID int64) (*models.OrderHeader, error) {
	header, err := s.repo.FindHeaderByID(ctx, headerID)
	if err != nil {
		return nil, err
	}
	if header.Published {
		return nil, models.ErrCartPublished
	}
	return header, nil
}

// AddItem adds one unit of the menu item, creating the line at quantity 1 or
// bumping the existing one. Returns the resulting quantity.
func (s *Service) AddItem(ctx context.Context, headerID, menuItemID int64) (int, error) {
	if _, err := s.mutableHeader(ctx, headerID); err != nil {
		return 0, fmt.Errorf("service.AddItem: %w", err)
	}
	quantity, err := s.repo.UpsertItem(ctx, headerID, menuItemID)
	if err != nil {
		return 0, fmt.Errorf("service.AddItem: %w", err)
	}
	return quantity, nil
}

// RemoveItem removes one unit; the line disappears at zero. Removing an
// absent item is a precondition violation, so callers check HasItem first.
func (s *Service) RemoveItem(ctx context.Context, headerID, menuItemID int64) (int, error) {
	if _, err := s.mutableHeader(ctx, headerID); err != nil {
		return 0, fmt.Errorf("service.RemoveItem: %w", err)
	}
	quantity, err := s.repo.DecrementItem(ctx, headerID, menuItemID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, fmt.Errorf("service.RemoveItem: %w", models.ErrItemNotInCart)
		}
		return 0, fmt.Errorf("service.RemoveItem: %w", err)
	}
	return quantity, nil
}

func (s *Service) HasItem(ctx context.Context, headerID, menuItemID int64) (*models.OrderItem, error) {
	item, err := s.repo.FindItem(ctx, headerID, menuItemID)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, headerID int64) ([]models.OrderItem, float64, error) {
	items, err := s.repo.ListItems(ctx, headerID)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListItems: %w", err)
	}
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.Price
	}
	return items, total, nil
}

func (s *Service) SetComment(ctx context.Context, headerID int64, comment string) error {
	if _, err := s.mutableHeader(ctx, headerID); err != nil {
		return fmt.Errorf("service.SetComment: %w", err)
	}
	if err := s.repo.SetComment(ctx, headerID, comment); err != nil {
		return fmt.Errorf("service.SetComment: %w", err)
	}
	return nil
}

// Publish finalizes the cart: the published flag flips and the first CREATED
// status row is appended atomically. A second publish fails with a conflict
// and never writes a second CREATED row.
func (s *Service) Publish(ctx context.Context, headerID int64) (*models.OrderHeader, error) {
	if err := s.repo.MarkPublished(ctx, headerID, s.now()); err != nil {
		return nil, fmt.Errorf("service.Publish: %w", err)
	}

	header, err := s.repo.FindHeaderByID(ctx, headerID)
	if err != nil {
		return nil, fmt.Errorf("service.Publish: %w", err)
	}

	if err := s.notifier.OrderPublished(ctx, header); err != nil {
		s.logger.Warn("order published event not delivered",
			slog.Int64("order_id", header.ID), slog.String("error", err.Error()))
	}
	return header, nil
}

// AdvanceStatus appends the next lifecycle status. The order may only move
// exactly one rank forward; choosing the order assigns the courier.
func (s *Service) AdvanceStatus(ctx context.Context, headerID int64, next models.OrderStatus, courierID *int64) error {
	if !next.Valid() {
		return fmt.Errorf("service.AdvanceStatus: %w", models.ErrPrecondition)
	}
	header, err := s.repo.FindHeaderByID(ctx, headerID)
	if err != nil {
		return fmt.Errorf("service.AdvanceStatus: %w", err)
	}
	if !header.Published {
		return fmt.Errorf("service.AdvanceStatus: unpublished cart: %w", models.ErrPrecondition)
	}
	if next.Rank() != header.CurrentStatus.Rank()+1 {
		return fmt.Errorf("service.AdvanceStatus: %s -> %s: %w", header.CurrentStatus, next, models.ErrStatusOutOfOrder)
	}
	if next == models.StatusChosenByCourier && courierID == nil {
		return fmt.Errorf("service.AdvanceStatus: courier required: %w", models.ErrPrecondition)
	}
	if next != models.StatusChosenByCourier {
		// A courier is only recorded at the moment they take the order.
		courierID = nil
	}

	if err := s.repo.AppendStatus(ctx, headerID, next, courierID, s.now()); err != nil {
		return fmt.Errorf("service.AdvanceStatus: %w", err)
	}

	if err := s.notifier.OrderStatusChanged(ctx, headerID, next); err != nil {
		s.logger.Warn("order status event not delivered",
			slog.Int64("order_id", headerID), slog.String("error", err.Error()))
	}
	return nil
}

func (s *Service) StatusHistory(ctx context.Context, headerID int64) ([]models.OrderStatusUpdate, error) {
	updates, err := s.repo.ListStatusUpdates(ctx, headerID)
	if err != nil {
		return nil, fmt.Errorf("service.StatusHistory: %w", err)
	}
	return updates, nil
}

func (s *Service) ListClientOrders(ctx context.Context, clientID int64) ([]*models.OrderHeader, error) {
	return s.repo.ListPublishedByClient(ctx, clientID)
}

func (s *Service) ListAwaitingCourier(ctx context.Context) ([]*models.OrderHeader, error) {
	return s.repo.ListAwaitingCourier(ctx)
}
