package catalog

import (
	"context"
	"errors"
	"fmt"

	"chat-eats-backend/internal/models"
)

// UserDirectory is the slice of the identity module the catalog needs: enough
// to verify that a would-be owner exists and holds the right role.
type UserDirectory interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
}

// ServiceInterface defines the contract for the catalog service.
type ServiceInterface interface {
	CreateRestaurant(ctx context.Context, ownerID int64, req models.CreateRestaurantRequest) (*models.Restaurant, error)
	GetRestaurant(ctx context.Context, restaurantID int64) (*models.Restaurant, error)
	MyRestaurant(ctx context.Context, ownerID int64) (*models.Restaurant, error)
	ListRestaurants(ctx context.Context) ([]*models.Restaurant, error)
	DeleteRestaurant(ctx context.Context, ownerID int64) error

	AddLocation(ctx context.Context, ownerID int64, req models.RestaurantLocationRequest) (*models.RestaurantLocation, error)
	ListLocations(ctx context.Context, restaurantID int64) ([]models.RestaurantLocation, error)
	AddTag(ctx context.Context, ownerID int64, tag string) error
	RemoveTag(ctx context.Context, ownerID int64, tag string) error

	CreateCategory(ctx context.Context, ownerID int64, name string) (*models.MenuCategory, error)
	ListCategories(ctx context.Context, restaurantID int64) ([]models.MenuCategory, error)
	RenameCategory(ctx context.Context, ownerID, categoryID int64, name string) error
	DeleteCategory(ctx context.Context, ownerID, categoryID int64) error

	CreateMenuItem(ctx context.Context, ownerID, categoryID int64, req models.MenuItemRequest) (*models.MenuItem, error)
	ListMenuItems(ctx context.Context, categoryID int64) ([]models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, ownerID, itemID int64, req models.MenuItemRequest) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, ownerID, itemID int64) error
}

// Service implements the catalog logic.
type Service struct {
	repo  RepositoryInterface
	users UserDirectory
}

func NewService(repo RepositoryInterface, users UserDirectory) *Service {
	return &Service{repo: repo, users: users}
}

// CreateRestaurant registers the owner's one restaurant. An owner holds at
// most one live restaurant and names are unique among live restaurants.
func (s *Service) CreateRestaurant(ctx context.Context, ownerID int64, req models.CreateRestaurantRequest) (*models.Restaurant, error) {
	owner, err := s.users.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.CreateRestaurant: %w", err)
	}
	if owner.Role != models.RoleRestaurantOwner {
		return nil, fmt.Errorf("service.CreateRestaurant: %w", models.ErrForbidden)
	}

	if _, err := s.repo.FindLiveRestaurantByOwner(ctx, ownerID); err == nil {
		return nil, fmt.Errorf("service.CreateRestaurant: %w", models.ErrOwnerHasRestaurant)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.CreateRestaurant: %w", err)
	}

	rest, err := s.repo.CreateRestaurant(ctx, req.Name, req.Description, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.CreateRestaurant: %w", err)
	}
	return rest, nil
}

func (s *Service) GetRestaurant(ctx context.Context, restaurantID int64) (*models.Restaurant, error) {
	return s.repo.FindRestaurantByID(ctx, restaurantID)
}

func (s *Service) MyRestaurant(ctx context.Context, ownerID int64) (*models.Restaurant, error) {
	return s.repo.FindLiveRestaurantByOwner(ctx, ownerID)
}

func (s *Service) ListRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	return s.repo.ListLiveRestaurants(ctx)
}

// DeleteRestaurant soft-deletes the owner's restaurant. There is no undelete;
// the name and the ownership slot are both freed.
func (s *Service) DeleteRestaurant(ctx context.Context, ownerID int64) error {
	rest, err := s.repo.FindLiveRestaurantByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("service.DeleteRestaurant: %w", err)
	}
	if err := s.repo.SoftDeleteRestaurant(ctx, rest.ID); err != nil {
		return fmt.Errorf("service.DeleteRestaurant: %w", err)
	}
	return nil
}

func (s *Service) AddLocation(ctx context.Context, ownerID int64, req models.RestaurantLocationRequest) (*models.RestaurantLocation, error) {
	rest, err := s.repo.FindLiveRestaurantByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.AddLocation: %w", err)
	}
	loc := &models.RestaurantLocation{
		RestaurantID: rest.ID,
		Description:  req.Description,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}
	loc, err = s.repo.AddRestaurantLocation(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("service.AddLocation: %w", err)
	}
	return loc, nil
}

func (s *Service) ListLocations(ctx context.Context, restaurantID int64) ([]models.RestaurantLocation, error) {
	return s.repo.ListRestaurantLocations(ctx, restaurantID)
}

func (s *Service) AddTag(ctx context.Context, ownerID int64, tag string) error {
	rest, err := s.repo.FindLiveRestaurantByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("service.AddTag: %w", err)
	}
	return s.repo.AddRestaurantTag(ctx, rest.ID, tag)
}

func (s *Service) RemoveTag(ctx context.Context, ownerID int64, tag string) error {
	rest, err := s.repo.FindLiveRestaurantByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("service.RemoveTag: %w", err)
	}
	return s.repo.DeleteRestaurantTag(ctx, rest.ID, tag)
}

func (s *Service) CreateCategory(ctx context.Context, ownerID int64, name string) (*models.MenuCategory, error) {
	rest, err := s.repo.FindLiveRestaurantByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service.CreateCategory: %w", err)
	}
	cat, err := s.repo.CreateCategory(ctx, rest.ID, name)
	if err != nil {
		return nil, fmt.Errorf("service.CreateCategory: %w", err)
	}
	return cat, nil
}

func (s *Service) ListCategories(ctx context.Context, restaurantID int64) ([]models.MenuCategory, error) {
	return s.repo.ListCategories(ctx, restaurantID)
}

// ownCategory loads a category and verifies it belongs to the owner's live
// restaurant. Returns NotFound rather than Forbidden for foreign categories
// to avoid leaking other restaurants' menu structure.
func (s *Service) ownCategory(ctx context.Context, ownerID, categoryID int64) (*models.MenuCategory, error) {
	rest, err := s.repo.FindLiveRestaurantByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	cat, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.RestaurantID != rest.ID {
		return nil, models.ErrNotFound
	}
	return cat, nil
}

func (s *Service) RenameCategory(ctx context.Context, ownerID, categoryID int64, name string) error {
	if _, err := s.ownCategory(ctx, ownerID, categoryID); err != nil {
		return fmt.Errorf("service.RenameCategory: %w", err)
	}
	if err := s.repo.RenameCategory(ctx, categoryID, name); err != nil {
		return fmt.Errorf("service.RenameCategory: %w", err)
	}
	return nil
}

func (s *Service) DeleteCategory(ctx context.Context, ownerID, categoryID int64) error {
	cat, err := s.ownCategory(ctx, ownerID, categoryID)
	if err != nil {
		return fmt.Errorf("service.DeleteCategory: %w", err)
	}
	// Items go first so the category delete cannot strand them.
	items, err := s.repo.ListMenuItems(ctx, cat.ID)
	if err != nil {
		return fmt.Errorf("service.DeleteCategory: %w", err)
	}
	for _, item := range items {
		if err := s.repo.DeleteMenuItem(ctx, item.ID); err != nil {
			return fmt.Errorf("service.DeleteCategory: %w", err)
		}
	}
	if err := s.repo.DeleteCategory(ctx, categoryID); err != nil {
		return fmt.Errorf("service.DeleteCategory: %w", err)
	}
	return nil
}

func (s *Service) CreateMenuItem(ctx context.Context, ownerID, categoryID int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	if _, err := s.ownCategory(ctx, ownerID, categoryID); err != nil {
		return nil, fmt.Errorf("service.CreateMenuItem: %w", err)
	}
	item := &models.MenuItem{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	item, err := s.repo.CreateMenuItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("service.CreateMenuItem: %w", err)
	}
	return item, nil
}

func (s *Service) ListMenuItems(ctx context.Context, categoryID int64) ([]models.MenuItem, error) {
	return s.repo.ListMenuItems(ctx, categoryID)
}

func (s *Service) UpdateMenuItem(ctx context.Context, ownerID, itemID int64, req models.MenuItemRequest) (*models.MenuItem, error) {
	item, err := s.repo.FindMenuItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateMenuItem: %w", err)
	}
	if _, err := s.ownCategory(ctx, ownerID, item.CategoryID); err != nil {
		return nil, fmt.Errorf("service.UpdateMenuItem: %w", err)
	}
	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	if err := s.repo.UpdateMenuItem(ctx, item); err != nil {
		return nil, fmt.Errorf("service.UpdateMenuItem: %w", err)
	}
	return item, nil
}

// DeleteMenuItem removes a menu item and purges it from every open cart.
// Clients with the item in a cart simply see the line disappear on the next
// refresh.
func (s *Service) DeleteMenuItem(ctx context.Context, ownerID, itemID int64) error {
	item, err := s.repo.FindMenuItemByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("service.DeleteMenuItem: %w", err)
	}
	if _, err := s.ownCategory(ctx, ownerID, item.CategoryID); err != nil {
		return fmt.Errorf("service.DeleteMenuItem: %w", err)
	}
	if err := s.repo.DeleteMenuItem(ctx, itemID); err != nil {
		return fmt.Errorf("service.DeleteMenuItem: %w", err)
	}
	return nil
}
