package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"chat-eats-backend/internal/models"
)

// CartEngine is the slice of the order engine the session layer needs.
type CartEngine interface {
	CreateCart(ctx context.Context, clientID, restaurantLocationID, clientLocationID int64) (*models.OrderHeader, error)
	Refresh(ctx context.Context, headerID int64) (*models.OrderHeader, error)
}

// Manager drives a conversation's ordering flow across turns. It owns the
// ensure-cart-once discipline: a cart is created eagerly when the restaurant
// is chosen and reused for the rest of the session, so repeated taps on the
// same restaurant never create duplicate headers.
type Manager struct {
	store  Store
	engine CartEngine
}

func NewManager(store Store, engine CartEngine) *Manager {
	return &Manager{store: store, engine: engine}
}

// StartOrder begins a fresh ordering session, replacing any previous draft
// for the conversation. An empty conversation id gets a generated one.
func (m *Manager) StartOrder(ctx context.Context, conversationID string, clientID int64) (*Draft, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	draft := &Draft{
		ConversationID: conversationID,
		ClientID:       clientID,
		Messages:       make(map[string]int),
	}
	if err := m.store.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("session.StartOrder: %w", err)
	}
	return draft, nil
}

func (m *Manager) draft(ctx context.Context, conversationID string) (*Draft, error) {
	draft, err := m.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// ChooseLocation records the delivery location. It must happen before a
// restaurant is chosen; the cart is created with both references at once.
func (m *Manager) ChooseLocation(ctx context.Context, conversationID string, clientLocationID int64) (*Draft, error) {
	draft, err := m.draft(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("session.ChooseLocation: %w", err)
	}
	draft.ClientLocationID = clientLocationID
	if err := m.store.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("session.ChooseLocation: %w", err)
	}
	return draft, nil
}

// ChooseRestaurant eagerly creates the cart on first choice and reuses the
// existing header when the same restaurant is chosen again. Switching to a
// different restaurant starts a new cart; the old empty header stays behind,
// which is an accepted leak.
func (m *Manager) ChooseRestaurant(ctx context.Context, conversationID string, restaurantID, restaurantLocationID int64) (*Draft, error) {
	draft, err := m.draft(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("session.ChooseRestaurant: %w", err)
	}
	if draft.ClientLocationID == 0 {
		return nil, fmt.Errorf("session.ChooseRestaurant: no delivery location chosen: %w", models.ErrPrecondition)
	}

	if draft.HeaderID != 0 && draft.RestaurantID == restaurantID {
		return draft, nil
	}

	header, err := m.engine.CreateCart(ctx, draft.ClientID, restaurantLocationID, draft.ClientLocationID)
	if err != nil {
		return nil, fmt.Errorf("session.ChooseRestaurant: %w", err)
	}
	draft.RestaurantID = restaurantID
	draft.RestaurantLocationID = restaurantLocationID
	draft.HeaderID = header.ID
	if err := m.store.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("session.ChooseRestaurant: %w", err)
	}
	return draft, nil
}

// CartHeader re-fetches the session's cart by primary key. The draft never
// caches header contents, only the identifier.
func (m *Manager) CartHeader(ctx context.Context, conversationID string) (*models.OrderHeader, error) {
	draft, err := m.draft(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("session.CartHeader: %w", err)
	}
	if draft.HeaderID == 0 {
		return nil, fmt.Errorf("session.CartHeader: no cart in session: %w", models.ErrNotFound)
	}
	header, err := m.engine.Refresh(ctx, draft.HeaderID)
	if err != nil {
		return nil, fmt.Errorf("session.CartHeader: %w", err)
	}
	return header, nil
}

// TrackMessage remembers a transient chat message handle (menu card, cart
// summary) so the gateway can edit or delete it on a later turn.
func (m *Manager) TrackMessage(ctx context.Context, conversationID, purpose string, messageID int) (*Draft, error) {
	draft, err := m.draft(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("session.TrackMessage: %w", err)
	}
	if draft.Messages == nil {
		draft.Messages = make(map[string]int)
	}
	draft.Messages[purpose] = messageID
	if err := m.store.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("session.TrackMessage: %w", err)
	}
	return draft, nil
}

// Get returns the current draft for rendering.
func (m *Manager) Get(ctx context.Context, conversationID string) (*Draft, error) {
	return m.draft(ctx, conversationID)
}

// Clear drops the draft, typically right after publish.
func (m *Manager) Clear(ctx context.Context, conversationID string) error {
	if err := m.store.Delete(ctx, conversationID); err != nil {
		return fmt.Errorf("session.Clear: %w", err)
	}
	return nil
}
