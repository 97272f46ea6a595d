package models

import "time"

// OrderStatus values form a strict sequence; an order may only move one step
// forward at a time and never back. The values match what the chat gateway
// has always displayed, spaces included.
type OrderStatus string

const (
	StatusCreated         OrderStatus = "CREATED"
	StatusChosenByCourier OrderStatus = "CHOSEN BY DELIVERY GUY"
	StatusPrepared        OrderStatus = "PREPARED"
	StatusPickedByCourier OrderStatus = "PICKED BY DELIVERY GUY"
	StatusDelivered       OrderStatus = "DELIVERED"
)

var statusRank = map[OrderStatus]int{
	StatusCreated:         1,
	StatusChosenByCourier: 2,
	StatusPrepared:        3,
	StatusPickedByCourier: 4,
	StatusDelivered:       5,
}

// Rank returns the position of s in the lifecycle, or 0 for unknown values.
// A draft cart has no status and therefore rank 0.
func (s OrderStatus) Rank() int {
	return statusRank[s]
}

func (s OrderStatus) Valid() bool {
	return statusRank[s] != 0
}

// OrderHeader is the cart/order aggregate root. It is created eagerly, before
// any item is added, and becomes immutable for the client once published.
// CurrentStatus caches the latest status row and is empty while unpublished.
type OrderHeader struct {
	ID                   int64       `json:"id"`
	ClientID             int64       `json:"client_id"`
	RestaurantLocationID int64       `json:"restaurant_location_id"`
	ClientLocationID     int64       `json:"client_location_id"`
	CourierID            *int64      `json:"courier_id,omitempty"`
	Comment              string      `json:"comment,omitempty"`
	Paid                 bool        `json:"paid"`
	Published            bool        `json:"published"`
	CurrentStatus        OrderStatus `json:"current_status,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	Items                []OrderItem `json:"items,omitempty"`
}

// Total sums quantity times price over the loaded items.
func (h *OrderHeader) Total() float64 {
	var total float64
	for _, item := range h.Items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}

// OrderItem is one cart line. There is at most one line per
// (header, menu item) pair; repeated adds bump the quantity instead.
// Name and Price are read from the menu item at load time for rendering.
type OrderItem struct {
	ID            int64   `json:"id"`
	OrderHeaderID int64   `json:"order_header_id"`
	MenuItemID    int64   `json:"menu_item_id"`
	Quantity      int     `json:"quantity"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
}

// OrderStatusUpdate is one immutable row of the append-only status history.
type OrderStatusUpdate struct {
	ID            int64       `json:"id"`
	OrderHeaderID int64       `json:"order_header_id"`
	Status        OrderStatus `json:"status"`
	Timestamp     time.Time   `json:"timestamp"`
}

type CreateCartRequest struct {
	RestaurantLocationID int64 `json:"restaurant_location_id" validate:"required"`
	ClientLocationID     int64 `json:"client_location_id" validate:"required"`
}

type CartItemRequest struct {
	MenuItemID int64 `json:"menu_item_id" validate:"required"`
}

type CartCommentRequest struct {
	Comment string `json:"comment" validate:"required"`
}

type AdvanceStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

// CartSummary is what the gateway renders after every cart mutation.
type CartSummary struct {
	Header *OrderHeader `json:"header"`
	Total  float64      `json:"total"`
}

// ErrorResponse is the uniform error body of the HTTP surface.
type ErrorResponse struct {
	Message string `json:"message"`
}
