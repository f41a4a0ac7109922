package firm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/repository/memory"
	"github.com/jwalitptl/chronosync/internal/service/firm"
	"github.com/jwalitptl/chronosync/pkg/security"
)

func newService(store *memory.Store) *firm.Service {
	return firm.NewService(store.Firms, store.Users, store, security.NewBcryptHasher(4))
}

func TestBootstrapCreatesAdministratorOnce(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()
	admin := firm.Administrator{FirmName: "Acme", Username: "Admin", Password: "change-me-now"}

	created, err := svc.Bootstrap(ctx, admin)
	require.NoError(t, err)
	assert.True(t, created)

	users, total, err := store.Users.Search(ctx, mustQuery(t))
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, model.RoleAdministrator, users[0].Role)
	assert.True(t, users[0].Enabled)

	f, err := store.Firms.Get(ctx, users[0].FirmID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", f.Name)

	created, err = svc.Bootstrap(ctx, admin)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, store.Users.Calls("Create"))
}

func TestBootstrapNeedsPassword(t *testing.T) {
	store := memory.NewStore()

	created, err := newService(store).Bootstrap(context.Background(), firm.Administrator{FirmName: "Acme", Username: "admin"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 0, store.Firms.Calls("Create"))
}

type failingUsers struct {
	memory.UserRepository
}

func (failingUsers) Create(context.Context, *model.User) error {
	return errors.New("insert failed")
}

func TestBootstrapRollsBackFirm(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	svc := firm.NewService(store.Firms, failingUsers{store.Users}, store, security.NewBcryptHasher(4))

	created, err := svc.Bootstrap(ctx, firm.Administrator{FirmName: "Acme", Username: "admin", Password: "change-me-now"})
	require.Error(t, err)
	assert.False(t, created)

	assert.Equal(t, 1, store.Firms.Calls("Create"))
	n, err := store.Firms.Count(ctx, filter.All())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBootstrapRejectsShortPassword(t *testing.T) {
	store := memory.NewStore()

	created, err := newService(store).Bootstrap(context.Background(), firm.Administrator{FirmName: "Acme", Username: "admin", Password: "short"})
	assert.Error(t, err)
	assert.False(t, created)
	assert.Equal(t, 0, store.Firms.Calls("Create"))
}

func TestCreateAndSearch(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()
	root := principal.Principal{UserID: 1, FirmID: 1, Role: model.RoleAdministrator}

	for _, name := range []string{"Acme", "Globex", "Acme North"} {
		_, err := svc.Create(ctx, root, &model.FirmRequest{Name: name})
		require.NoError(t, err)
	}

	page, err := svc.Search(ctx, root, &model.FirmSearchRequest{Name: filter.Some("acme")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
}

func mustQuery(t *testing.T) filter.Query {
	t.Helper()
	q, err := filter.Paginate(filter.All(), filter.PageRequest{}, filter.Sorting{})
	require.NoError(t, err)
	return q
}
