package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-eats-backend/internal/models"
)

// cartLine is an order line referencing a menu item, tracked so the fake can
// mirror what the SQL delete does to carts.
type cartLine struct {
	headerID   int64
	menuItemID int64
	published  bool
}

// fakeRepo mirrors the storage semantics: soft delete frees the name and the
// ownership slot, live-name uniqueness is enforced on insert, and deleting a
// menu item purges open-cart lines while published lines survive.
type fakeRepo struct {
	nextID      int64
	restaurants map[int64]*models.Restaurant
	locations   map[int64][]models.RestaurantLocation
	categories  map[int64]*models.MenuCategory
	items       map[int64]*models.MenuItem
	cartLines   []cartLine
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		restaurants: make(map[int64]*models.Restaurant),
		locations:   make(map[int64][]models.RestaurantLocation),
		categories:  make(map[int64]*models.MenuCategory),
		items:       make(map[int64]*models.MenuItem),
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) CreateRestaurant(ctx context.Context, name, description string, ownerID int64) (*models.Restaurant, error) {
	for _, r := range f.restaurants {
		if !r.Ownership.Deleted() && r.Name == name {
			return nil, models.ErrRestaurantNameTaken
		}
	}
	rest := &models.Restaurant{ID: f.id(), Name: name, Description: description, Ownership: models.OwnedBy(ownerID)}
	f.restaurants[rest.ID] = rest
	cp := *rest
	return &cp, nil
}

func (f *fakeRepo) FindRestaurantByID(ctx context.Context, restaurantID int64) (*models.Restaurant, error) {
	r, ok := f.restaurants[restaurantID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) FindLiveRestaurantByOwner(ctx context.Context, ownerID int64) (*models.Restaurant, error) {
	for _, r := range f.restaurants {
		if owner, live := r.Ownership.Owner(); live && owner == ownerID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) ListLiveRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	var out []*models.Restaurant
	for _, r := range f.restaurants {
		if !r.Ownership.Deleted() {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) SoftDeleteRestaurant(ctx context.Context, restaurantID int64) error {
	r, ok := f.restaurants[restaurantID]
	if !ok || r.Ownership.Deleted() {
		return models.ErrNotFound
	}
	r.Ownership = models.DeletedOwnership()
	return nil
}

func (f *fakeRepo) AddRestaurantLocation(ctx context.Context, loc *models.RestaurantLocation) (*models.RestaurantLocation, error) {
	loc.ID = f.id()
	f.locations[loc.RestaurantID] = append(f.locations[loc.RestaurantID], *loc)
	return loc, nil
}

func (f *fakeRepo) ListRestaurantLocations(ctx context.Context, restaurantID int64) ([]models.RestaurantLocation, error) {
	return append([]models.RestaurantLocation(nil), f.locations[restaurantID]...), nil
}

func (f *fakeRepo) AddRestaurantTag(ctx context.Context, restaurantID int64, tag string) error {
	r, ok := f.restaurants[restaurantID]
	if !ok {
		return models.ErrNotFound
	}
	for _, existing := range r.Tags {
		if existing == tag {
			return models.ErrConflict
		}
	}
	r.Tags = append(r.Tags, tag)
	return nil
}

func (f *fakeRepo) DeleteRestaurantTag(ctx context.Context, restaurantID int64, tag string) error {
	r, ok := f.restaurants[restaurantID]
	if !ok {
		return models.ErrNotFound
	}
	for i, existing := range r.Tags {
		if existing == tag {
			r.Tags = append(r.Tags[:i], r.Tags[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeRepo) CreateCategory(ctx context.Context, restaurantID int64, name string) (*models.MenuCategory, error) {
	cat := &models.MenuCategory{ID: f.id(), RestaurantID: restaurantID, Name: name}
	f.categories[cat.ID] = cat
	cp := *cat
	return &cp, nil
}

func (f *fakeRepo) FindCategoryByID(ctx context.Context, categoryID int64) (*models.MenuCategory, error) {
	cat, ok := f.categories[categoryID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *cat
	return &cp, nil
}

func (f *fakeRepo) ListCategories(ctx context.Context, restaurantID int64) ([]models.MenuCategory, error) {
	var out []models.MenuCategory
	for _, cat := range f.categories {
		if cat.RestaurantID == restaurantID {
			out = append(out, *cat)
		}
	}
	return out, nil
}

func (f *fakeRepo) RenameCategory(ctx context.Context, categoryID int64, name string) error {
	cat, ok := f.categories[categoryID]
	if !ok {
		return models.ErrNotFound
	}
	cat.Name = name
	return nil
}

func (f *fakeRepo) DeleteCategory(ctx context.Context, categoryID int64) error {
	if _, ok := f.categories[categoryID]; !ok {
		return models.ErrNotFound
	}
	delete(f.categories, categoryID)
	return nil
}

func (f *fakeRepo) CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	item.ID = f.id()
	cp := *item
	f.items[item.ID] = &cp
	return item, nil
}

func (f *fakeRepo) FindMenuItemByID(ctx context.Context, itemID int64) (*models.MenuItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (f *fakeRepo) ListMenuItems(ctx context.Context, categoryID int64) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, item := range f.items {
		if item.CategoryID == categoryID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeRepo) DeleteMenuItem(ctx context.Context, itemID int64) error {
	if _, ok := f.items[itemID]; !ok {
		return models.ErrNotFound
	}
	kept := f.cartLines[:0]
	for _, line := range f.cartLines {
		if line.menuItemID == itemID && !line.published {
			continue
		}
		kept = append(kept, line)
	}
	f.cartLines = kept
	delete(f.items, itemID)
	return nil
}

type fakeUsers struct {
	users map[int64]*models.User
}

func (f *fakeUsers) Get(ctx context.Context, userID int64) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func newTestService() (*Service, *fakeRepo) {
	fr := newFakeRepo()
	fu := &fakeUsers{users: map[int64]*models.User{
		2: {ID: 2, Username: "owner", Role: models.RoleRestaurantOwner},
		3: {ID: 3, Username: "other", Role: models.RoleRestaurantOwner},
		1: {ID: 1, Username: "client", Role: models.RoleClient},
	}}
	return NewService(fr, fu), fr
}

func TestCreateRestaurantRules(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Clients cannot register restaurants.
	_, err := svc.CreateRestaurant(ctx, 1, models.CreateRestaurantRequest{Name: "Oshxona"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	rest, err := svc.CreateRestaurant(ctx, 2, models.CreateRestaurantRequest{Name: "Oshxona"})
	require.NoError(t, err)
	owner, live := rest.Ownership.Owner()
	assert.True(t, live)
	assert.Equal(t, int64(2), owner)

	// One live restaurant per owner.
	_, err = svc.CreateRestaurant(ctx, 2, models.CreateRestaurantRequest{Name: "Second"})
	assert.ErrorIs(t, err, models.ErrOwnerHasRestaurant)

	// Live names are unique across owners.
	_, err = svc.CreateRestaurant(ctx, 3, models.CreateRestaurantRequest{Name: "Oshxona"})
	assert.ErrorIs(t, err, models.ErrRestaurantNameTaken)
}

func TestSoftDeleteFreesNameAndOwner(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rest, err := svc.CreateRestaurant(ctx, 2, models.CreateRestaurantRequest{Name: "Oshxona"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteRestaurant(ctx, 2))

	// Gone from listing, but still readable by id as deleted.
	live, err := svc.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.Empty(t, live)

	deleted, err := svc.GetRestaurant(ctx, rest.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Ownership.Deleted())

	// The owner and the name are both free again.
	again, err := svc.CreateRestaurant(ctx, 2, models.CreateRestaurantRequest{Name: "Oshxona"})
	require.NoError(t, err)
	assert.NotEqual(t, rest.ID, again.ID)

	// Deleting twice finds no live restaurant.
	require.NoError(t, svc.DeleteRestaurant(ctx, 2))
	err = svc.DeleteRestaurant(ctx, 2)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCategoryOwnershipIsOpaque(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRestaurant(ctx, 2, models.CreateRestaurantRequest{Name: "Oshxona"})
	require.NoError(t, err)
	_, err = svc.CreateRestaurant(ctx, 3, models.CreateRestaurantRequest{Name: "Kafe"})
	require.NoError(t, err)

	cat, err := svc.CreateCategory(ctx, 2, "Mains")
	require.NoError(t, err)

	// A foreign owner sees not-found, not forbidden.
	err = svc.RenameCategory(ctx, 3, cat.ID, "Hijacked")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.RenameCategory(ctx, 2, cat.ID, "Hot meals"))
	categories, err := svc.ListCategories(ctx, cat.RestaurantID)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Hot meals", categories[0].Name)
}

func TestDeleteCategoryRemovesItems(t *testing.T) {
	svc, fr := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRestaurant(ctx, 2, models.CreateRestaurantRequest{Name: "Oshxona"})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, 2, "Mains")
	require.NoError(t, err)
	item, err := svc.CreateMenuItem(ctx, 2, cat.ID, models.MenuItemRequest{Name: "Plov", Price: 50})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, 2, cat.ID))
	assert.Empty(t, fr.items)
	_, err = svc.ListMenuItems(ctx, cat.ID)
	require.NoError(t, err)
	_, ok := fr.items[item.ID]
	assert.False(t, ok)
}

func TestMenuItemLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRestaurant(ctx, 2, models.CreateRestaurantRequest{Name: "Oshxona"})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, 2, "Mains")
	require.NoError(t, err)

	item, err := svc.CreateMenuItem(ctx, 2, cat.ID, models.MenuItemRequest{Name: "Plov", Price: 50})
	require.NoError(t, err)

	updated, err := svc.UpdateMenuItem(ctx, 2, item.ID, models.MenuItemRequest{Name: "Plov", Price: 55})
	require.NoError(t, err)
	assert.Equal(t, 55.0, updated.Price)

	// Foreign owners cannot touch the item.
	_, err = svc.CreateRestaurant(ctx, 3, models.CreateRestaurantRequest{Name: "Kafe"})
	require.NoError(t, err)
	_, err = svc.UpdateMenuItem(ctx, 3, item.ID, models.MenuItemRequest{Name: "Stolen", Price: 1})
	assert.ErrorIs(t, err, models.ErrNotFound)
	err = svc.DeleteMenuItem(ctx, 3, item.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.DeleteMenuItem(ctx, 2, item.ID))
	items, err := svc.ListMenuItems(ctx, cat.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteMenuItemPurgesOpenCartsOnly(t *testing.T) {
	svc, fr := newTestService()
	ctx := context.Background()

	_, err := svc.CreateRestaurant(ctx, 2, models.CreateRestaurantRequest{Name: "Oshxona"})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, 2, "Mains")
	require.NoError(t, err)
	plov, err := svc.CreateMenuItem(ctx, 2, cat.ID, models.MenuItemRequest{Name: "Plov", Price: 50})
	require.NoError(t, err)
	lagman, err := svc.CreateMenuItem(ctx, 2, cat.ID, models.MenuItemRequest{Name: "Lagman", Price: 30})
	require.NoError(t, err)

	// One open cart and one published order both hold the item; a second
	// open cart holds only the other item.
	fr.cartLines = []cartLine{
		{headerID: 1, menuItemID: plov.ID},
		{headerID: 2, menuItemID: plov.ID, published: true},
		{headerID: 3, menuItemID: lagman.ID},
	}

	require.NoError(t, svc.DeleteMenuItem(ctx, 2, plov.ID))

	// The open line is purged, the published receipt and unrelated lines
	// survive.
	require.Len(t, fr.cartLines, 2)
	assert.Equal(t, cartLine{headerID: 2, menuItemID: plov.ID, published: true}, fr.cartLines[0])
	assert.Equal(t, cartLine{headerID: 3, menuItemID: lagman.ID}, fr.cartLines[1])
}

func TestTags(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	rest, err := svc.CreateRestaurant(ctx, 2, models.CreateRestaurantRequest{Name: "Oshxona"})
	require.NoError(t, err)

	require.NoError(t, svc.AddTag(ctx, 2, "halal"))
	err = svc.AddTag(ctx, 2, "halal")
	assert.ErrorIs(t, err, models.ErrConflict)

	require.NoError(t, svc.RemoveTag(ctx, 2, "halal"))
	err = svc.RemoveTag(ctx, 2, "halal")
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := svc.GetRestaurant(ctx, rest.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}
