package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/repository"
	"github.com/jwalitptl/chronosync/internal/repository/memory"
	"github.com/jwalitptl/chronosync/internal/service/user"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
	"github.com/jwalitptl/chronosync/pkg/security"
)

type invalidations []int64

func (i *invalidations) Invalidate(userID int64) {
	*i = append(*i, userID)
}

type testEnv struct {
	store   *memory.Store
	svc     *user.Service
	hasher  security.PasswordHasher
	dropped *invalidations
	admin   principal.Principal
	manager principal.Principal
}

func newEnv(t *testing.T, maxAttempts int) *testEnv {
	t.Helper()
	store := memory.NewStore()
	hasher := security.NewBcryptHasher(4)
	dropped := &invalidations{}

	env := &testEnv{
		store:   store,
		svc:     user.NewService(store.Users, store.Tokens, hasher, dropped, maxAttempts),
		hasher:  hasher,
		dropped: dropped,
	}
	env.admin = principal.Of(env.seed(t, "root", model.RoleAdministrator, 1))
	env.manager = principal.Of(env.seed(t, "mboss", model.RoleManager, 1))
	return env
}

func (e *testEnv) seed(t *testing.T, username string, role model.Role, firm int64) *model.User {
	t.Helper()
	u := &model.User{Username: username, Role: role, FirmID: firm, Enabled: true}
	require.NoError(t, e.store.Users.Create(context.Background(), u))
	return u
}

func ptr[T any](v T) *T {
	return &v
}

func createRequest(first, last string, role model.Role) *model.UserRequest {
	return &model.UserRequest{
		FirstName:        first,
		LastName:         last,
		Address:          "Main St 1",
		Phone:            "555-0100",
		Email:            "someone@example.com",
		Password:         "correct horse",
		UniqueIdentifier: "ID-1",
		Role:             ptr(role),
		Enabled:          ptr(true),
	}
}

func TestAdministratorCreatesManager(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()

	resp, err := env.svc.Create(ctx, env.admin, createRequest("John", "Doe", model.RoleManager))
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, "jdoe", resp.Username)
	assert.Equal(t, model.RoleManager, resp.Role)
	assert.Equal(t, env.admin.FirmID, resp.FirmID)
	assert.True(t, resp.Enabled)
	assert.False(t, resp.Locked)

	stored, err := env.store.Users.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.NoError(t, env.hasher.Compare(stored.PasswordHash, "correct horse"))
	require.NotNil(t, stored.CreatedBy)
	assert.Equal(t, env.admin.UserID, *stored.CreatedBy)
}

func TestCreateRejectsMissingRoleOrFlag(t *testing.T) {
	env := newEnv(t, 0)

	noRole := createRequest("John", "Doe", model.RoleEmployee)
	noRole.Role = nil
	noFlag := createRequest("John", "Doe", model.RoleEmployee)
	noFlag.Enabled = nil

	for _, req := range []*model.UserRequest{noRole, noFlag} {
		_, err := env.svc.Create(context.Background(), env.admin, req)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	}
	// Only the two seeded users.
	assert.Equal(t, 2, env.store.Users.Calls("Create"))
}

func TestCreateRejectsShortPassword(t *testing.T) {
	env := newEnv(t, 0)

	req := createRequest("John", "Doe", model.RoleEmployee)
	req.Password = "short"

	_, err := env.svc.Create(context.Background(), env.manager, req)
	assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
}

func TestBaseUsername(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"John", "Doe", "jdoe"},
		{"  ana", "de la Cruz ", "adelacruz"},
		{"Émile", "Zola", "ézola"},
		{"", "Smith", "smith"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, user.BaseUsername(tt.first, tt.last), "%q %q", tt.first, tt.last)
	}
}

func TestUsernamesAreMadeUnique(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()

	var names []string
	for _, first := range []string{"John", "Jane", "Jim"} {
		resp, err := env.svc.Create(ctx, env.manager, createRequest(first, "Doe", model.RoleEmployee))
		require.NoError(t, err)
		names = append(names, resp.Username)
	}

	assert.Equal(t, []string{"jdoe", "jdoe2", "jdoe3"}, names)
}

func TestUsernameRetriesAfterCollision(t *testing.T) {
	env := newEnv(t, 0)
	env.seed(t, "jdoe", model.RoleEmployee, 1)
	env.seed(t, "jdoe3", model.RoleEmployee, 1)

	resp, err := env.svc.Create(context.Background(), env.manager, createRequest("John", "Doe", model.RoleEmployee))
	require.NoError(t, err)
	assert.Equal(t, "jdoe4", resp.Username)
}

func TestUsernameAttemptsRunOut(t *testing.T) {
	env := newEnv(t, 1)
	env.seed(t, "jdoe", model.RoleEmployee, 1)
	env.seed(t, "jdoe3", model.RoleEmployee, 1)

	_, err := env.svc.Create(context.Background(), env.manager, createRequest("John", "Doe", model.RoleEmployee))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestSearchStaysInFirmForManagers(t *testing.T) {
	env := newEnv(t, 0)
	env.seed(t, "inside", model.RoleEmployee, 1)
	env.seed(t, "outside", model.RoleEmployee, 2)
	ctx := context.Background()

	page, err := env.svc.Search(ctx, env.manager, &model.UserSearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements)
	for _, u := range page.Content {
		assert.Equal(t, int64(1), u.FirmID)
	}

	page, err = env.svc.Search(ctx, env.admin, &model.UserSearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.TotalElements)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("manager changes profile and keeps session", func(t *testing.T) {
		env := newEnv(t, 0)
		target := env.seed(t, "emp", model.RoleEmployee, 1)
		require.NoError(t, env.store.Tokens.Store(ctx, target.ID, "tok", time.Hour))

		resp, err := env.svc.Update(ctx, env.manager, &model.UserRequest{ID: target.ID, Phone: "555-0199", Locked: ptr(true)})
		require.NoError(t, err)
		assert.Equal(t, "555-0199", resp.Phone)
		assert.True(t, resp.Locked)
		assert.Equal(t, "emp", resp.Username)

		active, err := env.store.Tokens.Active(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, "tok", active)
		assert.Equal(t, []int64{target.ID}, []int64(*env.dropped))
	})

	t.Run("administrator role change ends session", func(t *testing.T) {
		env := newEnv(t, 0)
		target := env.seed(t, "emp", model.RoleEmployee, 1)
		require.NoError(t, env.store.Tokens.Store(ctx, target.ID, "tok", time.Hour))

		resp, err := env.svc.Update(ctx, env.admin, &model.UserRequest{ID: target.ID, Role: ptr(model.RoleManager)})
		require.NoError(t, err)
		assert.Equal(t, model.RoleManager, resp.Role)

		_, err = env.store.Tokens.Active(ctx, target.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("manager cannot update administrator or other managers", func(t *testing.T) {
		env := newEnv(t, 0)
		peer := env.seed(t, "mpeer", model.RoleManager, 1)

		for _, id := range []int64{env.admin.UserID, peer.ID} {
			_, err := env.svc.Update(ctx, env.manager, &model.UserRequest{ID: id, Enabled: ptr(false)})
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
			assert.Equal(t, policy.ReasonManagerUpdate, err.Error())

			stored, err := env.store.Users.Get(ctx, id)
			require.NoError(t, err)
			assert.True(t, stored.Enabled)
		}
		assert.Equal(t, 0, env.store.Users.Calls("Update"))

		resp, err := env.svc.Update(ctx, env.manager, &model.UserRequest{ID: env.manager.UserID, Phone: "555-0111"})
		require.NoError(t, err)
		assert.Equal(t, "555-0111", resp.Phone)
	})

	t.Run("other firm is not found", func(t *testing.T) {
		env := newEnv(t, 0)
		target := env.seed(t, "far", model.RoleEmployee, 2)

		_, err := env.svc.Update(ctx, env.manager, &model.UserRequest{ID: target.ID, Phone: "1"})
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestDelete(t *testing.T) {
	env := newEnv(t, 0)
	ctx := context.Background()
	target := env.seed(t, "emp", model.RoleEmployee, 1)
	require.NoError(t, env.store.Tokens.Store(ctx, target.ID, "tok", time.Hour))

	require.NoError(t, env.svc.Delete(ctx, env.manager, target.ID))

	_, err := env.store.Users.Get(ctx, target.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = env.store.Tokens.Active(ctx, target.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, []int64(*env.dropped), target.ID)

	err = env.svc.Delete(ctx, env.manager, target.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
