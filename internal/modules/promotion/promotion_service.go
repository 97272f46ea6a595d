package promotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chat-eats-backend/internal/messaging"
	"chat-eats-backend/internal/models"
)

// UserRegistry is the slice of the identity service the workflow needs.
type UserRegistry interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
	FindByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	SetRole(ctx context.Context, userID int64, role models.Role) error
}

// ShiftSeeder writes the initial inactive shift entry for a new courier.
type ShiftSeeder interface {
	Seed(ctx context.Context, courierID int64) error
}

// ServiceInterface defines the contract for the promotion workflow:
// NONE -> OPEN -> closed, where closing either changed the role (accept)
// or did not (reject).
type ServiceInterface interface {
	Apply(ctx context.Context, userID int64, roleToPromote models.Role) (*models.PromotionApplication, error)
	ListOpen(ctx context.Context, role models.Role) ([]*models.PromotionApplication, error)
	Accept(ctx context.Context, userID int64) (models.Role, error)
	Reject(ctx context.Context, userID int64) error
	Demote(ctx context.Context, userID int64) error
}

// Service implements the promotion workflow.
type Service struct {
	repo     RepositoryInterface
	users    UserRegistry
	shifts   ShiftSeeder
	notifier messaging.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryInterface, users UserRegistry, shifts ShiftSeeder, notifier messaging.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		shifts:   shifts,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Apply opens an application and tells every admin there is one to review.
func (s *Service) Apply(ctx context.Context, userID int64, roleToPromote models.Role) (*models.PromotionApplication, error) {
	if !roleToPromote.Promotable() {
		return nil, fmt.Errorf("service.Apply: %w", models.ErrNotPromotable)
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Apply: %w", err)
	}
	if user.Role == roleToPromote {
		return nil, fmt.Errorf("service.Apply: %w", models.ErrRoleUnchanged)
	}

	if _, err := s.repo.FindOpenByUser(ctx, userID); err == nil {
		return nil, fmt.Errorf("service.Apply: %w", models.ErrApplicationOpen)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Apply: %w", err)
	}

	appl, err := s.repo.Create(ctx, userID, roleToPromote, s.now())
	if err != nil {
		return nil, fmt.Errorf("service.Apply: %w", err)
	}

	admins, err := s.users.FindByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.logger.Warn("could not list admins for promotion notice", slog.String("error", err.Error()))
	} else {
		adminIDs := make([]int64, 0, len(admins))
		for _, admin := range admins {
			adminIDs = append(adminIDs, admin.ID)
		}
		if err := s.notifier.PromotionApplied(ctx, appl, adminIDs); err != nil {
			s.logger.Warn("promotion applied event not delivered",
				slog.Int64("user_id", userID), slog.String("error", err.Error()))
		}
	}
	return appl, nil
}

func (s *Service) ListOpen(ctx context.Context, role models.Role) ([]*models.PromotionApplication, error) {
	if !role.Promotable() {
		return nil, fmt.Errorf("service.ListOpen: %w", models.ErrNotPromotable)
	}
	return s.repo.ListOpen(ctx, role)
}

// Accept grants the requested role and closes the application. A freshly
// promoted courier gets an inactive shift entry so their first real check-in
// must be active.
func (s *Service) Accept(ctx context.Context, userID int64) (models.Role, error) {
	appl, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("service.Accept: %w", err)
	}

	if err := s.users.SetRole(ctx, userID, appl.RoleToPromote); err != nil {
		return "", fmt.Errorf("service.Accept: %w", err)
	}
	if err := s.repo.Close(ctx, appl.ID, s.now()); err != nil {
		return "", fmt.Errorf("service.Accept: %w", err)
	}
	if appl.RoleToPromote == models.RoleDeliveryGuy {
		if err := s.shifts.Seed(ctx, userID); err != nil {
			return "", fmt.Errorf("service.Accept: %w", err)
		}
	}

	if err := s.notifier.PromotionDecided(ctx, userID, appl.RoleToPromote, true); err != nil {
		s.logger.Warn("promotion decision event not delivered",
			slog.Int64("user_id", userID), slog.String("error", err.Error()))
	}
	return appl.RoleToPromote, nil
}

// Reject closes the application without touching the role. The user may
// apply again afterwards.
func (s *Service) Reject(ctx context.Context, userID int64) error {
	appl, err := s.repo.FindOpenByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("service.Reject: %w", err)
	}
	if err := s.repo.Close(ctx, appl.ID, s.now()); err != nil {
		return fmt.Errorf("service.Reject: %w", err)
	}

	if err := s.notifier.PromotionDecided(ctx, userID, appl.RoleToPromote, false); err != nil {
		s.logger.Warn("promotion decision event not delivered",
			slog.Int64("user_id", userID), slog.String("error", err.Error()))
	}
	return nil
}

// Demote resets a promoted user back to client. Demoting a client is a
// conflict so a double tap in the admin panel fails loudly.
func (s *Service) Demote(ctx context.Context, userID int64) error {
	if err := s.users.SetRole(ctx, userID, models.RoleClient); err != nil {
		return fmt.Errorf("service.Demote: %w", err)
	}
	if err := s.notifier.PromotionDecided(ctx, userID, models.RoleClient, true); err != nil {
		s.logger.Warn("demotion event not delivered",
			slog.Int64("user_id", userID), slog.String("error", err.Error()))
	}
	return nil
}
