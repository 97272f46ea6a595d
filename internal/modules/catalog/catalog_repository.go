package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-eats-backend/internal/database"
	"chat-eats-backend/internal/models"
)

// RepositoryInterface defines the contract for the catalog repository.
type RepositoryInterface interface {
	CreateRestaurant(ctx context.Context, name, description string, ownerID int64) (*models.Restaurant, error)
	FindRestaurantByID(ctx context.Context, restaurantID int64) (*models.Restaurant, error)
	FindLiveRestaurantByOwner(ctx context.Context, ownerID int64) (*models.Restaurant, error)
	ListLiveRestaurants(ctx context.Context) ([]*models.Restaurant, error)
	SoftDeleteRestaurant(ctx context.Context, restaurantID int64) error

	AddRestaurantLocation(ctx context.Context, loc *models.RestaurantLocation) (*models.RestaurantLocation, error)
	ListRestaurantLocations(ctx context.Context, restaurantID int64) ([]models.RestaurantLocation, error)
	AddRestaurantTag(ctx context.Context, restaurantID int64, tag string) error
	DeleteRestaurantTag(ctx context.Context, restaurantID int64, tag string) error

	CreateCategory(ctx context.Context, restaurantID int64, name string) (*models.MenuCategory, error)
	FindCategoryByID(ctx context.Context, categoryID int64) (*models.MenuCategory, error)
	ListCategories(ctx context.Context, restaurantID int64) ([]models.MenuCategory, error)
	RenameCategory(ctx context.Context, categoryID int64, name string) error
	DeleteCategory(ctx context.Context, categoryID int64) error

	CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	FindMenuItemByID(ctx context.Context, itemID int64) (*models.MenuItem, error)
	ListMenuItems(ctx context.Context, categoryID int64) ([]models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, itemID int64) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// scanRestaurant folds the storage-level (owner_id, deleted) pair into the
// Ownership variant and loads tags.
func (r *Repository) scanRestaurant(ctx context.Context, row pgx.Row) (*models.Restaurant, error) {
	var rest models.Restaurant
	var ownerID sql.NullInt64
	var deleted bool
	if err := row.Scan(&rest.ID, &rest.Name, &rest.Description, &ownerID, &deleted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan restaurant: %w", err)
	}
	if deleted {
		rest.Ownership = models.DeletedOwnership()
	} else {
		rest.Ownership = models.OwnedBy(ownerID.Int64)
	}

	tagRows, err := r.db.Query(ctx, `SELECT tag FROM restaurant_tags WHERE restaurant_id = $1 ORDER BY id`, rest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var tag string
		if err := tagRows.Scan(&tag); err != nil {
			return nil, err
		}
		rest.Tags = append(rest.Tags, tag)
	}
	return &rest, tagRows.Err()
}

func (r *Repository) CreateRestaurant(ctx context.Context, name, description string, ownerID int64) (*models.Restaurant, error) {
	query := `
		INSERT INTO restaurants (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, query, name, description, ownerID).Scan(&id); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.ErrRestaurantNameTaken
		}
		if database.IsForeignKeyViolation(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.CreateRestaurant: %w", err)
	}
	return &models.Restaurant{
		ID:          id,
		Name:        name,
		Description: description,
		Ownership:   models.OwnedBy(ownerID),
	}, nil
}

func (r *Repository) FindRestaurantByID(ctx context.Context, restaurantID int64) (*models.Restaurant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, description, owner_id, deleted FROM restaurants WHERE id = $1`, restaurantID)
	rest, err := r.scanRestaurant(ctx, row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repository.FindRestaurantByID: %w", err)
	}
	return rest, nil
}

func (r *Repository) FindLiveRestaurantByOwner(ctx context.Context, ownerID int64) (*models.Restaurant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, description, owner_id, deleted FROM restaurants WHERE owner_id = $1 AND NOT deleted`, ownerID)
	rest, err := r.scanRestaurant(ctx, row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repository.FindLiveRestaurantByOwner: %w", err)
	}
	return rest, nil
}

func (r *Repository) ListLiveRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, owner_id, deleted FROM restaurants WHERE NOT deleted ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("repository.ListLiveRestaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []*models.Restaurant
	for rows.Next() {
		rest, err := r.scanRestaurant(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListLiveRestaurants: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, rows.Err()
}

// SoftDeleteRestaurant clears the owner slot and hides the restaurant from
// listings permanently. Historical orders keep referencing its locations.
func (r *Repository) SoftDeleteRestaurant(ctx context.Context, restaurantID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE restaurants SET deleted = TRUE, owner_id = NULL WHERE id = $1 AND NOT deleted`, restaurantID)
	if err != nil {
		return fmt.Errorf("repository.SoftDeleteRestaurant: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) AddRestaurantLocation(ctx context.Context, loc *models.RestaurantLocation) (*models.RestaurantLocation, error) {
	query := `
		INSERT INTO restaurant_locations (restaurant_id, description, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRow(ctx, query, loc.RestaurantID, loc.Description, loc.Latitude, loc.Longitude).Scan(&loc.ID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.AddRestaurantLocation: %w", err)
	}
	return loc, nil
}

func (r *Repository) ListRestaurantLocations(ctx context.Context, restaurantID int64) ([]models.RestaurantLocation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, restaurant_id, description, latitude, longitude FROM restaurant_locations WHERE restaurant_id = $1 ORDER BY id`,
		restaurantID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListRestaurantLocations: %w", err)
	}
	defer rows.Close()

	var locations []models.RestaurantLocation
	for rows.Next() {
		var loc models.RestaurantLocation
		if err := rows.Scan(&loc.ID, &loc.RestaurantID, &loc.Description, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, fmt.Errorf("repository.ListRestaurantLocations: scan: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *Repository) AddRestaurantTag(ctx context.Context, restaurantID int64, tag string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO restaurant_tags (restaurant_id, tag) VALUES ($1, $2)`, restaurantID, tag)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return models.ErrNotFound
		}
		return fmt.Errorf("repository.AddRestaurantTag: %w", err)
	}
	return nil
}

func (r *Repository) DeleteRestaurantTag(ctx context.Context, restaurantID int64, tag string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM restaurant_tags WHERE restaurant_id = $1 AND tag = $2`, restaurantID, tag)
	if err != nil {
		return fmt.Errorf("repository.DeleteRestaurantTag: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateCategory(ctx context.Context, restaurantID int64, name string) (*models.MenuCategory, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO menu_categories (restaurant_id, name) VALUES ($1, $2) RETURNING id`,
		restaurantID, name).Scan(&id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.CreateCategory: %w", err)
	}
	return &models.MenuCategory{ID: id, RestaurantID: restaurantID, Name: name}, nil
}

func (r *Repository) FindCategoryByID(ctx context.Context, categoryID int64) (*models.MenuCategory, error) {
	var cat models.MenuCategory
	err := r.db.QueryRow(ctx,
		`SELECT id, restaurant_id, name FROM menu_categories WHERE id = $1`, categoryID).
		Scan(&cat.ID, &cat.RestaurantID, &cat.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindCategoryByID: %w", err)
	}
	return &cat, nil
}

func (r *Repository) ListCategories(ctx context.Context, restaurantID int64) ([]models.MenuCategory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, restaurant_id, name FROM menu_categories WHERE restaurant_id = $1 ORDER BY id`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListCategories: %w", err)
	}
	defer rows.Close()

	var categories []models.MenuCategory
	for rows.Next() {
		var cat models.MenuCategory
		if err := rows.Scan(&cat.ID, &cat.RestaurantID, &cat.Name); err != nil {
			return nil, fmt.Errorf("repository.ListCategories: scan: %w", err)
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (r *Repository) RenameCategory(ctx context.Context, categoryID int64, name string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE menu_categories SET name = $1 WHERE id = $2`, name, categoryID)
	if err != nil {
		return fmt.Errorf("repository.RenameCategory: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, categoryID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM menu_categories WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("repository.DeleteCategory: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	query := `
		INSERT INTO menu_items (category_id, name, description, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRow(ctx, query, item.CategoryID, item.Name, item.Description, item.Price).Scan(&item.ID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.CreateMenuItem: %w", err)
	}
	return item, nil
}

func (r *Repository) FindMenuItemByID(ctx context.Context, itemID int64) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.QueryRow(ctx,
		`SELECT id, category_id, name, description, price FROM menu_items WHERE id = $1`, itemID).
		Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description, &item.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindMenuItemByID: %w", err)
	}
	return &item, nil
}

func (r *Repository) ListMenuItems(ctx context.Context, categoryID int64) ([]models.MenuItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, category_id, name, description, price FROM menu_items WHERE category_id = $1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListMenuItems: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description, &item.Price); err != nil {
			return nil, fmt.Errorf("repository.ListMenuItems: scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE menu_items SET name = $1, description = $2, price = $3 WHERE id = $4`,
		item.Name, item.Description, item.Price, item.ID)
	if err != nil {
		return fmt.Errorf("repository.UpdateMenuItem: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteMenuItem removes the item together with any open-cart lines that
// still reference it. Published order lines stay untouched; they belong to
// the immutable order history.
func (r *Repository) DeleteMenuItem(ctx context.Context, itemID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.DeleteMenuItem: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM order_items
		USING order_headers
		WHERE order_items.order_header_id = order_headers.id
		  AND order_items.menu_item_id = $1
		  AND NOT order_headers.published`, itemID)
	if err != nil {
		return fmt.Errorf("repository.DeleteMenuItem: cart lines: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM menu_item_tag_assignments WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("repository.DeleteMenuItem: tag assignments: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("repository.DeleteMenuItem: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.DeleteMenuItem: commit: %w", err)
	}
	return nil
}
