package identity

import (
	"context"
	"fmt"

	"chat-eats-backend/internal/models"
)

// ServiceInterface defines the contract for the identity service.
type ServiceInterface interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
	FindByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	SetRole(ctx context.Context, userID int64, role models.Role) error
	Profile(ctx context.Context, userID int64) (*models.ProfileSummary, error)

	AddLocation(ctx context.Context, userID int64, req models.SavedLocationRequest) (*models.SavedLocation, error)
	ListLocations(ctx context.Context, userID int64) ([]models.SavedLocation, error)
	RenameLocation(ctx context.Context, userID, locationID int64, name string) error
	DeleteLocation(ctx context.Context, userID, locationID int64) error
}

// Service implements the identity logic.
type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// Register creates a user with the client role. The id, handle and phone all
// come from the chat platform's contact capture.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	user := &models.User{
		ID:          req.ID,
		Username:    req.Username,
		PhoneNumber: req.PhoneNumber,
		FullName:    req.FullName,
		Role:        models.RoleClient,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service.Register: %w", err)
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Get: %w", err)
	}
	return user, nil
}

func (s *Service) FindByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("service.FindByRole: %w", models.ErrPrecondition)
	}
	return s.repo.FindByRole(ctx, role)
}

// SetRole moves a user to a new role. Re-assigning the current role is a
// conflict so that a double accept or double demote fails loudly.
func (s *Service) SetRole(ctx context.Context, userID int64, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("service.SetRole: %w", models.ErrPrecondition)
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("service.SetRole: %w", err)
	}
	if user.Role == role {
		return fmt.Errorf("service.SetRole: %w", models.ErrRoleUnchanged)
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return fmt.Errorf("service.SetRole: %w", err)
	}
	return nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (*models.ProfileSummary, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Profile: %w", err)
	}
	placed, delivered, restaurantName, err := s.repo.ProfileCounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Profile: %w", err)
	}
	return &models.ProfileSummary{
		User:           *user,
		OrdersPlaced:   placed,
		Deliveries:     delivered,
		RestaurantName: restaurantName,
	}, nil
}

func (s *Service) AddLocation(ctx context.Context, userID int64, req models.SavedLocationRequest) (*models.SavedLocation, error) {
	loc := &models.SavedLocation{
		UserID:    userID,
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	loc, err := s.repo.InsertLocation(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("service.AddLocation: %w", err)
	}
	return loc, nil
}

func (s *Service) ListLocations(ctx context.Context, userID int64) ([]models.SavedLocation, error) {
	return s.repo.ListLocations(ctx, userID)
}

func (s *Service) RenameLocation(ctx context.Context, userID, locationID int64, name string) error {
	if err := s.repo.RenameLocation(ctx, userID, locationID, name); err != nil {
		return fmt.Errorf("service.RenameLocation: %w", err)
	}
	return nil
}

func (s *Service) DeleteLocation(ctx context.Context, userID, locationID int64) error {
	if err := s.repo.DeleteLocation(ctx, userID, locationID); err != nil {
		return fmt.Errorf("service.DeleteLocation: %w", err)
	}
	return nil
}
