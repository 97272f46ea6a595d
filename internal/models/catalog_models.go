package models

import "encoding/json"

// Ownership is the owner slot of a restaurant: either active with an owner or
// permanently deleted. A deleted restaurant can never hold an owner again, so
// the two states are mutually exclusive by construction.
type Ownership struct {
	ownerID int64
	deleted bool
}

// OwnedBy returns an active ownership held by ownerID.
func OwnedBy(ownerID int64) Ownership {
	return Ownership{ownerID: ownerID}
}

// DeletedOwnership returns the terminal deleted state.
func DeletedOwnership() Ownership {
	return Ownership{deleted: true}
}

func (o Ownership) Deleted() bool {
	return o.deleted
}

// Owner returns the owning user and true when the restaurant is live.
func (o Ownership) Owner() (int64, bool) {
	if o.deleted {
		return 0, false
	}
	return o.ownerID, true
}

func (o Ownership) MarshalJSON() ([]byte, error) {
	if o.deleted {
		return json.Marshal(map[string]any{"deleted": true})
	}
	return json.Marshal(map[string]any{"owner_id": o.ownerID})
}

type Restaurant struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Ownership   Ownership `json:"ownership"`
	Tags        []string  `json:"tags,omitempty"`
}

// RestaurantLocation is a physical outlet orders are picked up from.
type RestaurantLocation struct {
	ID           int64   `json:"id"`
	RestaurantID int64   `json:"restaurant_id"`
	Description  string  `json:"description"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type MenuCategory struct {
	ID           int64  `json:"id"`
	RestaurantID int64  `json:"restaurant_id"`
	Name         string `json:"name"`
}

type MenuItem struct {
	ID          int64    `json:"id"`
	CategoryID  int64    `json:"category_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Tags        []string `json:"tags,omitempty"`
}

type CreateRestaurantRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type RestaurantLocationRequest struct {
	Description string  `json:"description" validate:"required"`
	Latitude    float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type TagRequest struct {
	Tag string `json:"tag" validate:"required"`
}

type MenuItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
}
