package identity

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

// RepositoryInterface defines the contract for the identity repository.
type RepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID int64) (*models.User, error)
	FindByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	UpdateRole(ctx context.Context, userID int64, role models.Role) error

	InsertLocation(ctx context.Context, loc *models.SavedLocation) (*models.SavedLocation, error)
	ListLocations(ctx context.Context, userID int64) ([]models.SavedLocation, error)
	FindLocation(ctx context.Context, userID, locationID int64) (*models.SavedLocation, error)
	RenameLocation(ctx context.Context, userID, locationID int64, name string) error
	DeleteLocation(ctx context.Context, userID, locationID int64) error

	ProfileCounts(ctx context.Context, userID int64) (placed int, delivered int, restaurantName string, err error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, phone_number, full_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query, user.ID, user.Username, user.PhoneNumber, user.FullName, user.Role).
		Scan(&user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("repository.Create: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT id, username, phone_number, full_name, role, created_at FROM users WHERE id = $1`
	var u models.User
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&u.ID, &u.Username, &u.PhoneNumber, &u.FullName, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return &u, nil
}

func (r *Repository) FindByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	query := `SELECT id, username, phone_number, full_name, role, created_at FROM users WHERE role = $1`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("repository.FindByRole: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PhoneNumber, &u.FullName, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.FindByRole: scan: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *Repository) UpdateRole(ctx context.Context, userID int64, role models.Role) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, userID)
	if err != nil {
		return fmt.Errorf("repository.UpdateRole: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) InsertLocation(ctx context.Context, loc *models.SavedLocation) (*models.SavedLocation, error) {
	query := `
		INSERT INTO client_saved_locations (user_id, name, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.db.QueryRow(ctx, query, loc.UserID, loc.Name, loc.Latitude, loc.Longitude).Scan(&loc.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.ErrLocationNameTaken
		}
		if database.IsForeignKeyViolation(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.InsertLocation: %w", err)
	}
	return loc, nil
}

func (r *Repository) ListLocations(ctx context.Context, userID int64) ([]models.SavedLocation, error) {
	query := `SELECT id, user_id, name, latitude, longitude FROM client_saved_locations WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListLocations: %w", err)
	}
	defer rows.Close()

	var locations []models.SavedLocation
	for rows.Next() {
		var loc models.SavedLocation
		if err := rows.Scan(&loc.ID, &loc.UserID, &loc.Name, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, fmt.Errorf("repository.ListLocations: scan: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *Repository) FindLocation(ctx context.Context, userID, locationID int64) (*models.SavedLocation, error) {
	query := `SELECT id, user_id, name, latitude, longitude FROM client_saved_locations WHERE id = $1 AND user_id = $2`
	var loc models.SavedLocation
	err := r.db.QueryRow(ctx, query, locationID, userID).
		Scan(&loc.ID, &loc.UserID, &loc.Name, &loc.Latitude, &loc.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindLocation: %w", err)
	}
	return &loc, nil
}

func (r *Repository) RenameLocation(ctx context.Context, userID, locationID int64, name string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE client_saved_locations SET name = $1 WHERE id = $2 AND user_id = $3`,
		name, locationID, userID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return models.ErrLocationNameTaken
		}
		return fmt.Errorf("repository.RenameLocation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteLocation(ctx context.Context, userID, locationID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM client_saved_locations WHERE id = $1 AND user_id = $2`, locationID, userID)
	if err != nil {
		return fmt.Errorf("repository.DeleteLocation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) ProfileCounts(ctx context.Context, userID int64) (int, int, string, error) {
	var placed, delivered int
	var restaurantName sql.NullString
	query := `
		SELECT
			(SELECT COUNT(*) FROM order_headers WHERE client_id = $1 AND published),
			(SELECT COUNT(*) FROM order_headers WHERE delivery_guy_id = $1 AND current_status = 'DELIVERED'),
			(SELECT name FROM restaurants WHERE owner_id = $1 AND NOT deleted)`
	err := r.db.QueryRow(ctx, query, userID).Scan(&placed, &delivered, &restaurantName)
	if err != nil {
		return 0, 0, "", fmt.Errorf("repository.ProfileCounts: %w", err)
	}
	return placed, delivered, restaurantName.String, nil
}
