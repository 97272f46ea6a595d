package promotion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-eats-backend/internal/database"
	"chat-eats-backend/internal/models"
)

// RepositoryInterface defines the contract for the promotion repository.
type RepositoryInterface interface {
	Create(ctx context.Context, userID int64, role models.Role, at time.Time) (*models.PromotionApplication, error)
	FindOpenByUser(ctx context.Context, userID int64) (*models.PromotionApplication, error)
	ListOpen(ctx context.Context, role models.Role) ([]*models.PromotionApplication, error)
	Close(ctx context.Context, applicationID int64, at time.Time) error
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// Create opens an application. A partial unique index on open applications
// backs up the service-level check, so a race still cannot open two.
func (r *Repository) Create(ctx context.Context, userID int64, role models.Role, at time.Time) (*models.PromotionApplication, error) {
	query := `
		INSERT INTO promotion_applications (user_id, role_to_promote, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	appl := &models.PromotionApplication{UserID: userID, RoleToPromote: role, CreatedAt: at}
	if err := r.db.QueryRow(ctx, query, userID, role, at).Scan(&appl.ID); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.ErrApplicationOpen
		}
		if database.IsForeignKeyViolation(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return appl, nil
}

func (r *Repository) FindOpenByUser(ctx context.Context, userID int64) (*models.PromotionApplication, error) {
	query := `
		SELECT id, user_id, role_to_promote, created_at, closed, closed_at
		FROM promotion_applications
		WHERE user_id = $1 AND NOT closed`
	var appl models.PromotionApplication
	err := r.db.QueryRow(ctx, query, userID).
		Scan(&appl.ID, &appl.UserID, &appl.RoleToPromote, &appl.CreatedAt, &appl.Closed, &appl.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindOpenByUser: %w", err)
	}
	return &appl, nil
}

func (r *Repository) ListOpen(ctx context.Context, role models.Role) ([]*models.PromotionApplication, error) {
	query := `
		SELECT id, user_id, role_to_promote, created_at, closed, closed_at
		FROM promotion_applications
		WHERE role_to_promote = $1 AND NOT closed
		ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("repository.ListOpen: %w", err)
	}
	defer rows.Close()

	var applications []*models.PromotionApplication
	for rows.Next() {
		var appl models.PromotionApplication
		if err := rows.Scan(&appl.ID, &appl.UserID, &appl.RoleToPromote, &appl.CreatedAt, &appl.Closed, &appl.ClosedAt); err != nil {
			return nil, fmt.Errorf("repository.ListOpen: scan: %w", err)
		}
		applications = append(applications, &appl)
	}
	return applications, rows.Err()
}

func (r *Repository) Close(ctx context.Context, applicationID int64, at time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE promotion_applications SET closed = TRUE, closed_at = $1 WHERE id = $2 AND NOT closed`,
		at, applicationID)
	if err != nil {
		return fmt.Errorf("repository.Close: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
