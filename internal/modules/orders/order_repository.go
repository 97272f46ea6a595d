package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-eats-backend/internal/database"
	"chat-eats-backend/internal/models"
)

// RepositoryInterface defines the contract for the order repository.
type RepositoryInterface interface {
	CreateHeader(ctx context.Context, clientID, restaurantLocationID, clientLocationID int64) (*models.OrderHeader, error)
	FindHeaderByID(ctx context.Context, headerID int64) (*models.OrderHeader, error)

	UpsertItem(ctx context.Context, headerID, menuItemID int64) (int, error)
	DecrementItem(ctx context.Context, headerID, menuItemID int64) (int, error)
	FindItem(ctx context.Context, headerID, menuItemID int64) (*models.OrderItem, error)
	ListItems(ctx context.Context, headerID int64) ([]models.OrderItem, error)
	SetComment(ctx context.Context, headerID int64, comment string) error

	MarkPublished(ctx context.Context, headerID int64, at time.Time) error
	AppendStatus(ctx context.Context, headerID int64, status models.OrderStatus, courierID *int64, at time.Time) error
	ListStatusUpdates(ctx context.Context, headerID int64) ([]models.OrderStatusUpdate, error)

	ListPublishedByClient(ctx context.Context, clientID int64) ([]*models.OrderHeader, error)
	ListAwaitingCourier(ctx context.Context) ([]*models.OrderHeader, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// CreateHeader inserts an empty cart. Creation is eager: the header exists
// before the first item is added.
func (r *Repository) CreateHeader(ctx context.Context, clientID, restaurantLocationID, clientLocationID int64) (*models.OrderHeader, error) {
	query := `
		INSERT INTO order_headers (client_id, restaurant_location_id, client_location_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	header := &models.OrderHeader{
		ClientID:             clientID,
		RestaurantLocationID: restaurantLocationID,
		ClientLocationID:     clientLocationID,
	}
	err := r.db.QueryRow(ctx, query, clientID, restaurantLocationID, clientLocationID).
		Scan(&header.ID, &header.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.CreateHeader: %w", err)
	}
	return header, nil
}

const headerColumns = `id, client_id, restaurant_location_id, client_location_id,
	delivery_guy_id, comment, paid, published, current_status, created_at`

func scanHeader(row pgx.Row) (*models.OrderHeader, error) {
	var h models.OrderHeader
	var courierID sql.NullInt64
	var currentStatus sql.NullString
	err := row.Scan(
		&h.ID,
		&h.ClientID,
		&h.RestaurantLocationID,
		&h.ClientLocationID,
		&courierID,
		&h.Comment,
		&h.Paid,
		&h.Published,
		&currentStatus,
		&h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order header: %w", err)
	}
	if courierID.Valid {
		h.CourierID = &courierID.Int64
	}
	if currentStatus.Valid {
		h.CurrentStatus = models.OrderStatus(currentStatus.String)
	}
	return &h, nil
}

// FindHeaderByID re-fetches the full cart state by primary key, items
// included. Callers rely on this being fresh: cached headers are never
// trusted for mutation decisions.
func (r *Repository) FindHeaderByID(ctx context.Context, headerID int64) (*models.OrderHeader, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+headerColumns+` FROM order_headers WHERE id = $1`, headerID)
	header, err := scanHeader(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repository.FindHeaderByID: %w", err)
	}

	items, err := r.ListItems(ctx, headerID)
	if err != nil {
		return nil, fmt.Errorf("repository.FindHeaderByID: %w", err)
	}
	header.Items = items
	return header, nil
}

// UpsertItem adds one unit of the menu item to the cart in a single
// statement, so two rapid taps can never both observe "absent" and create
// duplicate rows. The line snapshots the menu item's name and price.
// Returns the resulting quantity.
func (r *Repository) UpsertItem(ctx context.Context, headerID, menuItemID int64) (int, error) {
	query := `
		INSERT INTO order_items (order_header_id, menu_item_id, name, price, quantity)
		SELECT $1, mi.id, mi.name, mi.price, 1
		FROM menu_items mi
		WHERE mi.id = $2
		ON CONFLICT (order_header_id, menu_item_id)
		DO UPDATE SET quantity = order_items.quantity + 1
		RETURNING quantity`
	var quantity int
	err := r.db.QueryRow(ctx, query, headerID, menuItemID).Scan(&quantity)
	if err != nil {
		// No source row means the menu item vanished mid-cart.
		if errors.Is(err, pgx.ErrNoRows) || database.IsForeignKeyViolation(err) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("repository.UpsertItem: %w", err)
	}
	return quantity, nil
}

// DecrementItem removes one unit, deleting the row outright when only one
// unit is left. The delete runs first: the quantity CHECK forbids even a
// transient zero, so a decrement below 1 must never reach the table.
// Returns the post-operation quantity, 0 when deleted.
func (r *Repository) DecrementItem(ctx context.Context, headerID, menuItemID int64) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("repository.DecrementItem: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, `
		DELETE FROM order_items
		WHERE order_header_id = $1 AND menu_item_id = $2 AND quantity <= 1`,
		headerID, menuItemID)
	if err != nil {
		return 0, fmt.Errorf("repository.DecrementItem: delete: %w", err)
	}

	var quantity int
	if cmdTag.RowsAffected() == 0 {
		err = tx.QueryRow(ctx, `
			UPDATE order_items SET quantity = quantity - 1
			WHERE order_header_id = $1 AND menu_item_id = $2 AND quantity > 1
			RETURNING quantity`, headerID, menuItemID).Scan(&quantity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, models.ErrNotFound
			}
			return 0, fmt.Errorf("repository.DecrementItem: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("repository.DecrementItem: commit: %w", err)
	}
	return quantity, nil
}

func (r *Repository) FindItem(ctx context.Context, headerID, menuItemID int64) (*models.OrderItem, error) {
	query := `
		SELECT id, order_header_id, menu_item_id, name, price, quantity
		FROM order_items
		WHERE order_header_id = $1 AND menu_item_id = $2`
	var item models.OrderItem
	err := r.db.QueryRow(ctx, query, headerID, menuItemID).
		Scan(&item.ID, &item.OrderHeaderID, &item.MenuItemID, &item.Name, &item.Price, &item.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindItem: %w", err)
	}
	return &item, nil
}

func (r *Repository) ListItems(ctx context.Context, headerID int64) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_header_id, menu_item_id, name, price, quantity
		FROM order_items
		WHERE order_header_id = $1
		ORDER BY id`
	rows, err := r.db.Query(ctx, query, headerID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListItems: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderHeaderID, &item.MenuItemID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("repository.ListItems: scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) SetComment(ctx context.Context, headerID int64, comment string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE order_headers SET comment = $1 WHERE id = $2`, comment, headerID)
	if err != nil {
		return fmt.Errorf("repository.SetComment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MarkPublished flips the published flag and appends the first CREATED
// status row in one transaction. The guard inside the UPDATE makes a double
// publish impossible even across processes: the second caller matches no row
// and gets a conflict.
func (r *Repository) MarkPublished(ctx context.Context, headerID int64, at time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.MarkPublished: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx, `
		UPDATE order_headers
		SET published = TRUE, current_status = $2
		WHERE id = $1
		  AND NOT published
		  AND NOT EXISTS (SELECT 1 FROM order_status_updates WHERE order_header_id = $1)`,
		headerID, models.StatusCreated)
	if err != nil {
		return fmt.Errorf("repository.MarkPublished: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM order_headers WHERE id = $1)`, headerID).Scan(&exists); err != nil {
			return fmt.Errorf("repository.MarkPublished: %w", err)
		}
		if !exists {
			return models.ErrNotFound
		}
		return models.ErrCartPublished
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_updates (order_header_id, status, status_ts)
		VALUES ($1, $2, $3)`, headerID, models.StatusCreated, at)
	if err != nil {
		return fmt.Errorf("repository.MarkPublished: status row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.MarkPublished: commit: %w", err)
	}
	return nil
}

// AppendStatus writes the next status row and refreshes the cached
// current_status in the same transaction. Status rows are never updated.
func (r *Repository) AppendStatus(ctx context.Context, headerID int64, status models.OrderStatus, courierID *int64, at time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.AppendStatus: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_updates (order_header_id, status, status_ts)
		VALUES ($1, $2, $3)`, headerID, status, at)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return models.ErrNotFound
		}
		return fmt.Errorf("repository.AppendStatus: %w", err)
	}

	if courierID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE order_headers SET current_status = $1, delivery_guy_id = $2 WHERE id = $3`,
			status, *courierID, headerID)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE order_headers SET current_status = $1 WHERE id = $2`, status, headerID)
	}
	if err != nil {
		return fmt.Errorf("repository.AppendStatus: header: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.AppendStatus: commit: %w", err)
	}
	return nil
}

func (r *Repository) ListStatusUpdates(ctx context.Context, headerID int64) ([]models.OrderStatusUpdate, error) {
	query := `
		SELECT id, order_header_id, status, status_ts
		FROM order_status_updates
		WHERE order_header_id = $1
		ORDER BY status_ts, id`
	rows, err := r.db.Query(ctx, query, headerID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListStatusUpdates: %w", err)
	}
	defer rows.Close()

	var updates []models.OrderStatusUpdate
	for rows.Next() {
		var u models.OrderStatusUpdate
		if err := rows.Scan(&u.ID, &u.OrderHeaderID, &u.Status, &u.Timestamp); err != nil {
			return nil, fmt.Errorf("repository.ListStatusUpdates: scan: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func (r *Repository) listHeaders(ctx context.Context, query string, args ...any) ([]*models.OrderHeader, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var headers []*models.OrderHeader
	for rows.Next() {
		header, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		headers = append(headers, header)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, header := range headers {
		items, err := r.ListItems(ctx, header.ID)
		if err != nil {
			return nil, err
		}
		header.Items = items
	}
	return headers, nil
}

// ListPublishedByClient returns the client's order history. Unpublished
// (abandoned) carts never show up anywhere.
func (r *Repository) ListPublishedByClient(ctx context.Context, clientID int64) ([]*models.OrderHeader, error) {
	headers, err := r.listHeaders(ctx,
		`SELECT `+headerColumns+` FROM order_headers WHERE client_id = $1 AND published ORDER BY created_at DESC`,
		clientID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListPublishedByClient: %w", err)
	}
	return headers, nil
}

// ListAwaitingCourier returns published orders no courier has taken yet.
func (r *Repository) ListAwaitingCourier(ctx context.Context) ([]*models.OrderHeader, error) {
	headers, err := r.listHeaders(ctx,
		`SELECT `+headerColumns+` FROM order_headers WHERE published AND current_status = $1 ORDER BY created_at`,
		models.StatusCreated)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAwaitingCourier: %w", err)
	}
	return headers, nil
}
