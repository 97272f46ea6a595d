package shifts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chat-eats-backend/internal/messaging"
	"chat-eats-backend/internal/models"
)

// ServiceInterface defines the contract for courier shift tracking.
type ServiceInterface interface {
	// CheckIn appends a shift entry. It fails with a conflict when the
	// requested state equals the current one, enforcing strict alternation.
	// elapsed is the time since the previous entry; known is false for a
	// courier's very first entry.
	CheckIn(ctx context.Context, courierID int64, active bool) (elapsed time.Duration, known bool, err error)
	CurrentStatus(ctx context.Context, courierID int64) (*models.ShiftEntry, error)
	// Seed writes the initial inactive entry for a freshly promoted courier
	// so their first real check-in must be active. No-op when a log exists.
	Seed(ctx context.Context, courierID int64) error
}

// Service implements shift tracking over the append-only status log.
type Service struct {
	repo     RepositoryInterface
	notifier messaging.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryInterface, notifier messaging.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

func (s *Service) CheckIn(ctx context.Context, courierID int64, active bool) (time.Duration, bool, error) {
	last, err := s.repo.LastEntry(ctx, courierID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return 0, false, fmt.Errorf("service.CheckIn: %w", err)
	}
	if last != nil && last.Active == active {
		return 0, false, fmt.Errorf("service.CheckIn: %w", models.ErrSameShiftState)
	}

	entry, err := s.repo.Insert(ctx, courierID, active, s.now())
	if err != nil {
		return 0, false, fmt.Errorf("service.CheckIn: %w", err)
	}
	if last == nil {
		return 0, false, nil
	}

	elapsed := entry.Timestamp.Sub(last.Timestamp)
	if !active {
		if err := s.notifier.ShiftClosed(ctx, courierID, elapsed); err != nil {
			s.logger.Warn("shift closed event not published",
				slog.Int64("courier_id", courierID), slog.String("error", err.Error()))
		}
	}
	return elapsed, true, nil
}

func (s *Service) CurrentStatus(ctx context.Context, courierID int64) (*models.ShiftEntry, error) {
	entry, err := s.repo.LastEntry(ctx, courierID)
	if err != nil {
		return nil, fmt.Errorf("service.CurrentStatus: %w", err)
	}
	return entry, nil
}

func (s *Service) Seed(ctx context.Context, courierID int64) error {
	_, err := s.repo.LastEntry(ctx, courierID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("service.Seed: %w", err)
	}
	if _, err := s.repo.Insert(ctx, courierID, false, s.now()); err != nil {
		return fmt.Errorf("service.Seed: %w", err)
	}
	return nil
}
