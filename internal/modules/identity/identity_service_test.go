package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-eats-backend/internal/models"
)

type fakeRepo struct {
	nextLocID int64
	users     map[int64]*models.User
	locations map[int64]*models.SavedLocation
	placed    map[int64]int
	delivered map[int64]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:     make(map[int64]*models.User),
		locations: make(map[int64]*models.SavedLocation),
		placed:    make(map[int64]int),
		delivered: make(map[int64]int),
	}
}

func (f *fakeRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; ok {
		return models.ErrConflict
	}
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) FindByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateRole(ctx context.Context, userID int64, role models.Role) error {
	u, ok := f.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeRepo) InsertLocation(ctx context.Context, loc *models.SavedLocation) (*models.SavedLocation, error) {
	for _, existing := range f.locations {
		if existing.UserID == loc.UserID && existing.Name == loc.Name {
			return nil, models.ErrLocationNameTaken
		}
	}
	f.nextLocID++
	loc.ID = f.nextLocID
	cp := *loc
	f.locations[loc.ID] = &cp
	return loc, nil
}

func (f *fakeRepo) ListLocations(ctx context.Context, userID int64) ([]models.SavedLocation, error) {
	var out []models.SavedLocation
	for _, loc := range f.locations {
		if loc.UserID == userID {
			out = append(out, *loc)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindLocation(ctx context.Context, userID, locationID int64) (*models.SavedLocation, error) {
	loc, ok := f.locations[locationID]
	if !ok || loc.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *loc
	return &cp, nil
}

func (f *fakeRepo) RenameLocation(ctx context.Context, userID, locationID int64, name string) error {
	loc, ok := f.locations[locationID]
	if !ok || loc.UserID != userID {
		return models.ErrNotFound
	}
	for _, existing := range f.locations {
		if existing.UserID == userID && existing.ID != locationID && existing.Name == name {
			return models.ErrLocationNameTaken
		}
	}
	loc.Name = name
	return nil
}

func (f *fakeRepo) DeleteLocation(ctx context.Context, userID, locationID int64) error {
	loc, ok := f.locations[locationID]
	if !ok || loc.UserID != userID {
		return models.ErrNotFound
	}
	delete(f.locations, locationID)
	return nil
}

func (f *fakeRepo) ProfileCounts(ctx context.Context, userID int64) (int, int, string, error) {
	return f.placed[userID], f.delivered[userID], "", nil
}

func register(t *testing.T, svc *Service, id int64, username string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), models.RegisterRequest{
		ID:          id,
		Username:    username,
		PhoneNumber: "+998900000000",
		FullName:    "Test User",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	svc := NewService(newFakeRepo())

	user := register(t, svc, 1, "ali")
	assert.Equal(t, models.RoleClient, user.Role)

	// The platform id is the primary key; a repeat registration conflicts.
	_, err := svc.Register(context.Background(), models.RegisterRequest{
		ID: 1, Username: "ali-again", PhoneNumber: "+998900000001",
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestSetRole(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()
	register(t, svc, 1, "ali")

	require.NoError(t, svc.SetRole(ctx, 1, models.RoleDeliveryGuy))
	user, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDeliveryGuy, user.Role)

	// Re-assigning the held role is a conflict, unknown roles are rejected.
	err = svc.SetRole(ctx, 1, models.RoleDeliveryGuy)
	assert.ErrorIs(t, err, models.ErrRoleUnchanged)
	err = svc.SetRole(ctx, 1, models.Role("superuser"))
	assert.ErrorIs(t, err, models.ErrPrecondition)
}

func TestSavedLocationNames(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()
	register(t, svc, 1, "ali")
	register(t, svc, 2, "vali")

	home, err := svc.AddLocation(ctx, 1, models.SavedLocationRequest{Name: "home", Latitude: 41.3, Longitude: 69.2})
	require.NoError(t, err)

	// Names are unique per user, not globally.
	_, err = svc.AddLocation(ctx, 1, models.SavedLocationRequest{Name: "home", Latitude: 41.4, Longitude: 69.3})
	assert.ErrorIs(t, err, models.ErrLocationNameTaken)
	_, err = svc.AddLocation(ctx, 2, models.SavedLocationRequest{Name: "home", Latitude: 41.4, Longitude: 69.3})
	require.NoError(t, err)

	work, err := svc.AddLocation(ctx, 1, models.SavedLocationRequest{Name: "work", Latitude: 41.5, Longitude: 69.4})
	require.NoError(t, err)

	err = svc.RenameLocation(ctx, 1, work.ID, "home")
	assert.ErrorIs(t, err, models.ErrLocationNameTaken)
	require.NoError(t, svc.RenameLocation(ctx, 1, work.ID, "office"))

	// A user cannot touch someone else's location.
	err = svc.DeleteLocation(ctx, 2, home.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.DeleteLocation(ctx, 1, home.ID))
	locations, err := svc.ListLocations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "office", locations[0].Name)
}

func TestProfile(t *testing.T) {
	fr := newFakeRepo()
	svc := NewService(fr)
	ctx := context.Background()
	register(t, svc, 1, "ali")
	fr.placed[1] = 4

	profile, err := svc.Profile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ali", profile.User.Username)
	assert.Equal(t, 4, profile.OrdersPlaced)
	assert.Zero(t, profile.Deliveries)
}
