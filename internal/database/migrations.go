package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Every statement is idempotent so Migrate can run on each startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		phone_number TEXT UNIQUE NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'client'
			CHECK (role IN ('client', 'restaurant_owner', 'delivery_guy', 'admin')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS client_saved_locations (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		UNIQUE (user_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS restaurants (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id BIGINT REFERENCES users(id),
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		CHECK (deleted OR owner_id IS NOT NULL)
	)`,

	// Name and owner uniqueness only apply to live restaurants; deleted ones
	// free both.
	`CREATE UNIQUE INDEX IF NOT EXISTS restaurants_live_name
		ON restaurants (name) WHERE NOT deleted`,
	`CREATE UNIQUE INDEX IF NOT EXISTS restaurants_live_owner
		ON restaurants (owner_id) WHERE NOT deleted`,

	`CREATE TABLE IF NOT EXISTS restaurant_tags (
		id BIGSERIAL PRIMARY KEY,
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
		tag TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS restaurant_locations (
		id BIGSERIAL PRIMARY KEY,
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
		description TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS menu_categories (
		id BIGSERIAL PRIMARY KEY,
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
		name TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS menu_items (
		id BIGSERIAL PRIMARY KEY,
		category_id BIGINT NOT NULL REFERENCES menu_categories(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL CHECK (price >= 0)
	)`,

	`CREATE TABLE IF NOT EXISTS menu_item_tags (
		id BIGSERIAL PRIMARY KEY,
		restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
		name TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS menu_item_tag_assignments (
		id BIGSERIAL PRIMARY KEY,
		item_id BIGINT NOT NULL REFERENCES menu_items(id),
		tag_id BIGINT NOT NULL REFERENCES menu_item_tags(id),
		UNIQUE (item_id, tag_id)
	)`,

	`CREATE TABLE IF NOT EXISTS order_headers (
		id BIGSERIAL PRIMARY KEY,
		client_id BIGINT NOT NULL REFERENCES users(id),
		restaurant_location_id BIGINT NOT NULL REFERENCES restaurant_locations(id),
		client_location_id BIGINT NOT NULL REFERENCES client_saved_locations(id),
		delivery_guy_id BIGINT REFERENCES users(id),
		comment TEXT NOT NULL DEFAULT '',
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		current_status TEXT
			CHECK (current_status IN ('CREATED', 'CHOSEN BY DELIVERY GUY', 'PREPARED',
				'PICKED BY DELIVERY GUY', 'DELIVERED')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// menu_item_id is deliberately not a foreign key: published order lines
	// must survive the menu item being deleted, so each line snapshots the
	// name and price it was added with.
	`CREATE TABLE IF NOT EXISTS order_items (
		id BIGSERIAL PRIMARY KEY,
		order_header_id BIGINT NOT NULL REFERENCES order_headers(id),
		menu_item_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		price NUMERIC(10,2) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		UNIQUE (order_header_id, menu_item_id)
	)`,

	`CREATE TABLE IF NOT EXISTS order_status_updates (
		id BIGSERIAL PRIMARY KEY,
		order_header_id BIGINT NOT NULL REFERENCES order_headers(id),
		status TEXT NOT NULL
			CHECK (status IN ('CREATED', 'CHOSEN BY DELIVERY GUY', 'PREPARED',
				'PICKED BY DELIVERY GUY', 'DELIVERED')),
		status_ts TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS promotion_applications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		role_to_promote TEXT NOT NULL
			CHECK (role_to_promote IN ('restaurant_owner', 'delivery_guy')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		closed BOOLEAN NOT NULL DEFAULT FALSE,
		closed_at TIMESTAMPTZ
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS promotion_applications_open
		ON promotion_applications (user_id) WHERE NOT closed`,

	`CREATE TABLE IF NOT EXISTS delivery_guy_statuses (
		id BIGSERIAL PRIMARY KEY,
		delivery_guy_id BIGINT NOT NULL REFERENCES users(id),
		active BOOLEAN NOT NULL,
		ts TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("database.Migrate: statement %d: %w", i, err)
		}
	}
	return nil
}
