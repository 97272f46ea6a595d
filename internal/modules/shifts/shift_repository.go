package shifts

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

// RepositoryInterface defines the contract for the shift log repository.
// The log is append-only; entries are never updated or deleted.
type RepositoryInterface interface {
	LastEntry(ctx context.Context, courierID int64) (*models.ShiftEntry, error)
	Insert(ctx context.Context, courierID int64, active bool, ts time.Time) (*models.ShiftEntry, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// LastEntry returns the most recent shift entry for the courier, which is by
// definition their current status.
func (r *Repository) LastEntry(ctx context.Context, courierID int64) (*models.ShiftEntry, error) {
	query := `
		SELECT id, delivery_guy_id, active, ts
		FROM delivery_guy_statuses
		WHERE delivery_guy_id = $1
		ORDER BY id DESC
		LIMIT 1`
	var entry models.ShiftEntry
	err := r.db.QueryRow(ctx, query, courierID).
		Scan(&entry.ID, &entry.CourierID, &entry.Active, &entry.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.LastEntry: %w", err)
	}
	return &entry, nil
}

func (r *Repository) Insert(ctx context.Context, courierID int64, active bool, ts time.Time) (*models.ShiftEntry, error) {
	query := `
		INSERT INTO delivery_guy_statuses (delivery_guy_id, active, ts)
		VALUES ($1, $2, $3)
		RETURNING id`
	entry := &models.ShiftEntry{CourierID: courierID, Active: active, Timestamp: ts}
	if err := r.db.QueryRow(ctx, query, courierID, active, ts).Scan(&entry.ID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Insert: %w", err)
	}
	return entry, nil
}
