package models

import "time"

// Role is the single role a user holds at any moment. Transitions happen
// only through the promotion workflow or an admin action.
type Role string

const (
	RoleClient          Role = "client"
	RoleRestaurantOwner Role = "restaurant_owner"
	RoleDeliveryGuy     Role = "delivery_guy"
	RoleAdmin           Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleRestaurantOwner, RoleDeliveryGuy, RoleAdmin:
		return true
	}
	return false
}

// Promotable reports whether a client may request r through the promotion
// workflow. Admin is never promotable.
func (r Role) Promotable() bool {
	return r == RoleRestaurantOwner || r == RoleDeliveryGuy
}

// User identity comes from the chat platform, so IDs are assigned externally.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phone_number"`
	FullName    string    `json:"full_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// SavedLocation is a named delivery point a client keeps for reuse.
type SavedLocation struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ShiftEntry is one record of the append-only courier shift log. The current
// on/off-duty state is always the latest entry.
type ShiftEntry struct {
	ID        int64     `json:"id"`
	CourierID int64     `json:"courier_id"`
	Active    bool      `json:"active"`
	Timestamp time.Time `json:"timestamp"`
}

// PromotionApplication is a client's request to become a courier or a
// restaurant owner. At most one open application per user.
type PromotionApplication struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	RoleToPromote Role       `json:"role_to_promote"`
	CreatedAt     time.Time  `json:"created_at"`
	Closed        bool       `json:"closed"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
}

// ProfileSummary is the data behind the gateway's profile card.
type ProfileSummary struct {
	User           User   `json:"user"`
	OrdersPlaced   int    `json:"orders_placed"`
	Deliveries     int    `json:"deliveries"`
	RestaurantName string `json:"restaurant_name,omitempty"`
}

// RegisterRequest carries contact data captured by the chat gateway.
type RegisterRequest struct {
	ID          int64  `json:"id" validate:"required"`
	Username    string `json:"username" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	FullName    string `json:"full_name"`
}

// SavedLocationRequest creates or replaces a client's saved location.
type SavedLocationRequest struct {
	Name      string  `json:"name" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// RenameLocationRequest renames an existing saved location.
type RenameLocationRequest struct {
	Name string `json:"name" validate:"required"`
}

// ApplyPromotionRequest opens a promotion application.
type ApplyPromotionRequest struct {
	RoleToPromote Role `json:"role_to_promote" validate:"required,oneof=restaurant_owner delivery_guy"`
}

// CheckInRequest toggles a courier's shift state.
type CheckInRequest struct {
	Active *bool `json:"active" validate:"required"`
}
