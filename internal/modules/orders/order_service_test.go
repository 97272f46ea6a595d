package orders

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-eats-backend/internal/messaging"
	"chat-eats-backend/internal/models"
)

// fakeRepo keeps carts in memory with the same semantics the SQL layer
// enforces: one line per (header, menu item), publish flips the flag and
// writes the first status row atomically, a second publish changes nothing.
type fakeRepo struct {
	nextID  int64
	headers map[int64]*models.OrderHeader
	items   map[int64][]models.OrderItem
	updates map[int64][]models.OrderStatusUpdate
	menu    map[int64]models.MenuItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		headers: make(map[int64]*models.OrderHeader),
		items:   make(map[int64][]models.OrderItem),
		updates: make(map[int64][]models.OrderStatusUpdate),
		menu:    make(map[int64]models.MenuItem),
	}
}

func (f *fakeRepo) CreateHeader(ctx context.Context, clientID, restaurantLocationID, clientLocationID int64) (*models.OrderHeader, error) {
	f.nextID++
	h := &models.OrderHeader{
		ID:                   f.nextID,
		ClientID:             clientID,
		RestaurantLocationID: restaurantLocationID,
		ClientLocationID:     clientLocationID,
		CreatedAt:            time.Now(),
	}
	f.headers[h.ID] = h
	return f.copyHeader(h.ID), nil
}

func (f *fakeRepo) copyHeader(headerID int64) *models.OrderHeader {
	h := *f.headers[headerID]
	h.Items = append([]models.OrderItem(nil), f.items[headerID]...)
	return &h
}

func (f *fakeRepo) FindHeaderByID(ctx context.Context, headerID int64) (*models.OrderHeader, error) {
	if _, ok := f.headers[headerID]; !ok {
		return nil, models.ErrNotFound
	}
	return f.copyHeader(headerID), nil
}

func (f *fakeRepo) UpsertItem(ctx context.Context, headerID, menuItemID int64) (int, error) {
	mi, ok := f.menu[menuItemID]
	if !ok {
		return 0, models.ErrNotFound
	}
	lines := f.items[headerID]
	for i := range lines {
		if lines[i].MenuItemID == menuItemID {
			lines[i].Quantity++
			return lines[i].Quantity, nil
		}
	}
	f.items[headerID] = append(lines, models.OrderItem{
		OrderHeaderID: headerID,
		MenuItemID:    menuItemID,
		Quantity:      1,
		Name:          mi.Name,
		Price:         mi.Price,
	})
	return 1, nil
}

// DecrementItem mirrors the storage layer, where a quantity CHECK forbids
// storing anything below 1: the last unit is removed by deleting the row, a
// decrement only ever runs against a quantity above 1.
func (f *fakeRepo) DecrementItem(ctx context.Context, headerID, menuItemID int64) (int, error) {
	lines := f.items[headerID]
	for i := range lines {
		if lines[i].MenuItemID == menuItemID {
			if lines[i].Quantity <= 1 {
				f.items[headerID] = append(lines[:i], lines[i+1:]...)
				return 0, nil
			}
			lines[i].Quantity--
			return lines[i].Quantity, nil
		}
	}
	return 0, models.ErrNotFound
}

func (f *fakeRepo) FindItem(ctx context.Context, headerID, menuItemID int64) (*models.OrderItem, error) {
	for _, line := range f.items[headerID] {
		if line.MenuItemID == menuItemID {
			cp := line
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) ListItems(ctx context.Context, headerID int64) ([]models.OrderItem, error) {
	return append([]models.OrderItem(nil), f.items[headerID]...), nil
}

func (f *fakeRepo) SetComment(ctx context.Context, headerID int64, comment string) error {
	h, ok := f.headers[headerID]
	if !ok {
		return models.ErrNotFound
	}
	h.Comment = comment
	return nil
}

func (f *fakeRepo) MarkPublished(ctx context.Context, headerID int64, at time.Time) error {
	h, ok := f.headers[headerID]
	if !ok {
		return models.ErrNotFound
	}
	if h.Published || len(f.updates[headerID]) > 0 {
		return models.ErrCartPublished
	}
	h.Published = true
	h.CurrentStatus = models.StatusCreated
	f.updates[headerID] = append(f.updates[headerID], models.OrderStatusUpdate{
		OrderHeaderID: headerID,
		Status:        models.StatusCreated,
		Timestamp:     at,
	})
	return nil
}

func (f *fakeRepo) AppendStatus(ctx context.Context, headerID int64, status models.OrderStatus, courierID *int64, at time.Time) error {
	h, ok := f.headers[headerID]
	if !ok {
		return models.ErrNotFound
	}
	h.CurrentStatus = status
	if courierID != nil {
		h.CourierID = courierID
	}
	f.updates[headerID] = append(f.updates[headerID], models.OrderStatusUpdate{
		OrderHeaderID: headerID,
		Status:        status,
		Timestamp:     at,
	})
	return nil
}

func (f *fakeRepo) ListStatusUpdates(ctx context.Context, headerID int64) ([]models.OrderStatusUpdate, error) {
	return append([]models.OrderStatusUpdate(nil), f.updates[headerID]...), nil
}

func (f *fakeRepo) ListPublishedByClient(ctx context.Context, clientID int64) ([]*models.OrderHeader, error) {
	var out []*models.OrderHeader
	for id, h := range f.headers {
		if h.ClientID == clientID && h.Published {
			out = append(out, f.copyHeader(id))
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAwaitingCourier(ctx context.Context) ([]*models.OrderHeader, error) {
	var out []*models.OrderHeader
	for id, h := range f.headers {
		if h.Published && h.CurrentStatus == models.StatusCreated {
			out = append(out, f.copyHeader(id))
		}
	}
	return out, nil
}

func newTestService(fr *fakeRepo) *Service {
	svc := NewService(fr, messaging.NopNotifier{}, slog.New(slog.DiscardHandler))
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func seedMenu(fr *fakeRepo) {
	fr.menu[10] = models.MenuItem{ID: 10, Name: "Plov", Price: 50}
	fr.menu[11] = models.MenuItem{ID: 11, Name: "Lagman", Price: 30}
}

func TestAddAndRemoveItemCounts(t *testing.T) {
	fr := newFakeRepo()
	seedMenu(fr)
	svc := newTestService(fr)
	ctx := context.Background()

	header, err := svc.CreateCart(ctx, 1, 100, 200)
	require.NoError(t, err)

	// Two adds of the same item bump one line instead of creating two.
	q, err := svc.AddItem(ctx, header.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, q)
	q, err = svc.AddItem(ctx, header.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, q)
	q, err = svc.AddItem(ctx, header.ID, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, q)

	items, total, err := svc.ListItems(ctx, header.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 130.0, total)

	// Removing drops one unit, then deletes the line at zero.
	q, err = svc.RemoveItem(ctx, header.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, q)
	q, err = svc.RemoveItem(ctx, header.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, q)

	_, err = svc.HasItem(ctx, header.ID, 10)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRemoveLastUnitDeletesLine(t *testing.T) {
	fr := newFakeRepo()
	seedMenu(fr)
	svc := newTestService(fr)
	ctx := context.Background()

	header, err := svc.CreateCart(ctx, 1, 100, 200)
	require.NoError(t, err)
	q, err := svc.AddItem(ctx, header.ID, 10)
	require.NoError(t, err)
	require.Equal(t, 1, q)

	// Removing a single-unit line deletes the row; no quantity-zero state
	// is ever stored.
	q, err = svc.RemoveItem(ctx, header.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, q)
	assert.Empty(t, fr.items[header.ID])

	_, err = svc.HasItem(ctx, header.ID, 10)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// The round trip leaves the cart addable again.
	q, err = svc.AddItem(ctx, header.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, q)
}

func TestRemoveAbsentItem(t *testing.T) {
	fr := newFakeRepo()
	seedMenu(fr)
	svc := newTestService(fr)
	ctx := context.Background()

	header, err := svc.CreateCart(ctx, 1, 100, 200)
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, header.ID, 10)
	assert.ErrorIs(t, err, models.ErrItemNotInCart)
}

func TestAddVanishedMenuItem(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	ctx := context.Background()

	header, err := svc.CreateCart(ctx, 1, 100, 200)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, header.ID, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPublishIsIdempotentGuarded(t *testing.T) {
	fr := newFakeRepo()
	seedMenu(fr)
	svc := newTestService(fr)
	ctx := context.Background()

	header, err := svc.CreateCart(ctx, 1, 100, 200)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, header.ID, 10)
	require.NoError(t, err)

	published, err := svc.Publish(ctx, header.ID)
	require.NoError(t, err)
	assert.True(t, published.Published)
	assert.Equal(t, models.StatusCreated, published.CurrentStatus)

	// The retry hits the guard: no second CREATED row, a conflict instead.
	_, err = svc.Publish(ctx, header.ID)
	assert.ErrorIs(t, err, models.ErrCartPublished)

	updates, err := svc.StatusHistory(ctx, header.ID)
	require.NoError(t, err)
	assert.Len(t, updates, 1)
}

func TestPublishedCartRejectsMutation(t *testing.T) {
	fr := newFakeRepo()
	seedMenu(fr)
	svc := newTestService(fr)
	ctx := context.Background()

	header, err := svc.CreateCart(ctx, 1, 100, 200)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, header.ID, 10)
	require.NoError(t, err)
	_, err = svc.Publish(ctx, header.ID)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, header.ID, 11)
	assert.ErrorIs(t, err, models.ErrCartPublished)
	_, err = svc.RemoveItem(ctx, header.ID, 10)
	assert.ErrorIs(t, err, models.ErrCartPublished)
	err = svc.SetComment(ctx, header.ID, "extra napkins")
	assert.ErrorIs(t, err, models.ErrCartPublished)
}

func TestAdvanceStatusOrdering(t *testing.T) {
	fr := newFakeRepo()
	seedMenu(fr)
	svc := newTestService(fr)
	ctx := context.Background()
	courier := int64(7)

	header, err := svc.CreateCart(ctx, 1, 100, 200)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, header.ID, 10)
	require.NoError(t, err)

	// Unpublished carts have no lifecycle yet.
	err = svc.AdvanceStatus(ctx, header.ID, models.StatusChosenByCourier, &courier)
	assert.ErrorIs(t, err, models.ErrPrecondition)

	_, err = svc.Publish(ctx, header.ID)
	require.NoError(t, err)

	// Skipping a step is rejected.
	err = svc.AdvanceStatus(ctx, header.ID, models.StatusPrepared, nil)
	assert.ErrorIs(t, err, models.ErrStatusOutOfOrder)

	// Taking the order requires a courier and records the assignment.
	err = svc.AdvanceStatus(ctx, header.ID, models.StatusChosenByCourier, nil)
	assert.ErrorIs(t, err, models.ErrPrecondition)
	err = svc.AdvanceStatus(ctx, header.ID, models.StatusChosenByCourier, &courier)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, header.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.CourierID)
	assert.Equal(t, courier, *refreshed.CourierID)

	// Repeating the current status is also out of order.
	err = svc.AdvanceStatus(ctx, header.ID, models.StatusChosenByCourier, &courier)
	assert.ErrorIs(t, err, models.ErrStatusOutOfOrder)

	for _, next := range []models.OrderStatus{models.StatusPrepared, models.StatusPickedByCourier, models.StatusDelivered} {
		err = svc.AdvanceStatus(ctx, header.ID, next, nil)
		require.NoError(t, err)
	}

	updates, err := svc.StatusHistory(ctx, header.ID)
	require.NoError(t, err)
	require.Len(t, updates, 5)
	assert.Equal(t, models.StatusDelivered, updates[4].Status)
}

func TestListAwaitingCourier(t *testing.T) {
	fr := newFakeRepo()
	seedMenu(fr)
	svc := newTestService(fr)
	ctx := context.Background()
	courier := int64(7)

	taken, err := svc.CreateCart(ctx, 1, 100, 200)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, taken.ID, 10)
	require.NoError(t, err)
	_, err = svc.Publish(ctx, taken.ID)
	require.NoError(t, err)
	require.NoError(t, svc.AdvanceStatus(ctx, taken.ID, models.StatusChosenByCourier, &courier))

	open, err := svc.CreateCart(ctx, 2, 100, 201)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, open.ID, 11)
	require.NoError(t, err)
	_, err = svc.Publish(ctx, open.ID)
	require.NoError(t, err)

	// A draft cart never shows up, neither does a taken order.
	if _, err := svc.CreateCart(ctx, 3, 100, 202); err != nil {
		t.Fatalf("CreateCart: %v", err)
	}

	available, err := svc.ListAwaitingCourier(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)
}
