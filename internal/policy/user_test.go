package policy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

func userCreateRequest(f *fixture, role model.Role) *model.UserRequest {
	req := f.validRequest(policy.Key{Entity: policy.EntityUser, Operation: policy.OpCreate}).(*model.UserRequest)
	req.Role = &role
	return req
}

func TestUserCreate(t *testing.T) {
	f := newFixture(t)

	t.Run("administrator may create any role", func(t *testing.T) {
		for _, role := range model.Roles() {
			assert.NoError(t, f.validate(t, policy.EntityUser, policy.OpCreate, f.admin, userCreateRequest(f, role)))
		}
	})

	t.Run("manager may create employees", func(t *testing.T) {
		assert.NoError(t, f.validate(t, policy.EntityUser, policy.OpCreate, f.manager, userCreateRequest(f, model.RoleEmployee)))
	})

	t.Run("manager may not create administrators or managers", func(t *testing.T) {
		for _, role := range []model.Role{model.RoleAdministrator, model.RoleManager} {
			err := f.validate(t, policy.EntityUser, policy.OpCreate, f.manager, userCreateRequest(f, role))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
			assert.Equal(t, policy.ReasonManagerCreate, err.Error())
		}
	})

	t.Run("every field is required", func(t *testing.T) {
		blanks := []func(r *model.UserRequest){
			func(r *model.UserRequest) { r.FirstName = "" },
			func(r *model.UserRequest) { r.LastName = " " },
			func(r *model.UserRequest) { r.Email = "" },
			func(r *model.UserRequest) { r.Phone = "" },
			func(r *model.UserRequest) { r.Address = "" },
			func(r *model.UserRequest) { r.UniqueIdentifier = "" },
			func(r *model.UserRequest) { r.Password = "" },
			func(r *model.UserRequest) { r.Role = nil },
			func(r *model.UserRequest) { r.Enabled = nil },
		}
		for i, blank := range blanks {
			req := userCreateRequest(f, model.RoleEmployee)
			blank(req)

			err := f.validate(t, policy.EntityUser, policy.OpCreate, f.admin, req)
			require.Error(t, err, "case %d", i)
			assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest), "case %d", i)
			assert.Equal(t, policy.ReasonEmptyEntity, err.Error(), "case %d", i)
		}
	})

	t.Run("nil request", func(t *testing.T) {
		var req *model.UserRequest
		err := f.validate(t, policy.EntityUser, policy.OpCreate, f.admin, req)
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	})
}

func TestUserReadScopesManagers(t *testing.T) {
	f := newFixture(t)

	t.Run("empty request gets firm and visible roles", func(t *testing.T) {
		req := &model.UserSearchRequest{}
		require.NoError(t, f.validate(t, policy.EntityUser, policy.OpRead, f.manager, req))

		firm, ok := req.FirmID.Get()
		assert.True(t, ok)
		assert.Equal(t, f.manager.FirmID, firm)
		assert.ElementsMatch(t, []model.Role{model.RoleEmployee, model.RoleManager}, req.Roles)
	})

	t.Run("requested firm is replaced", func(t *testing.T) {
		req := &model.UserSearchRequest{FirmID: filter.Some(firmB)}
		require.NoError(t, f.validate(t, policy.EntityUser, policy.OpRead, f.manager, req))
		assert.Equal(t, f.manager.FirmID, req.FirmID.OrElse(0))
	})

	t.Run("requested roles are intersected", func(t *testing.T) {
		req := &model.UserSearchRequest{Roles: []model.Role{model.RoleAdministrator, model.RoleEmployee}}
		require.NoError(t, f.validate(t, policy.EntityUser, policy.OpRead, f.manager, req))
		assert.Equal(t, []model.Role{model.RoleEmployee}, req.Roles)
	})

	t.Run("administrators only is denied", func(t *testing.T) {
		req := &model.UserSearchRequest{Roles: []model.Role{model.RoleAdministrator}}
		err := f.validate(t, policy.EntityUser, policy.OpRead, f.manager, req)
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})

	t.Run("administrator request is untouched", func(t *testing.T) {
		req := &model.UserSearchRequest{}
		require.NoError(t, f.validate(t, policy.EntityUser, policy.OpRead, f.admin, req))
		assert.False(t, req.FirmID.IsSet())
		assert.Empty(t, req.Roles)
	})
}

func TestUserUpdate(t *testing.T) {
	f := newFixture(t)
	otherManager := &model.User{Username: "mtwo", Role: model.RoleManager, FirmID: firmA, Enabled: true}
	require.NoError(t, f.store.Users.Create(context.Background(), otherManager))

	tests := []struct {
		name   string
		actor  principal.Principal
		req    *model.UserRequest
		code   apperrors.ErrorCode
		reason string
	}{
		{name: "manager edits employee", actor: f.manager, req: &model.UserRequest{ID: f.employee.UserID, Phone: "1"}},
		{name: "manager edits self", actor: f.manager, req: &model.UserRequest{ID: f.manager.UserID, Phone: "1"}},
		{
			name:   "manager disables administrator",
			actor:  f.manager,
			req:    &model.UserRequest{ID: f.admin.UserID, Enabled: ptr(false)},
			code:   apperrors.ErrForbidden,
			reason: policy.ReasonManagerUpdate,
		},
		{
			name:   "manager locks another manager",
			actor:  f.manager,
			req:    &model.UserRequest{ID: otherManager.ID, Locked: ptr(true)},
			code:   apperrors.ErrForbidden,
			reason: policy.ReasonManagerUpdate,
		},
		{
			name:   "manager changes password",
			actor:  f.manager,
			req:    &model.UserRequest{ID: f.employee.UserID, Password: "new-password"},
			code:   apperrors.ErrForbidden,
			reason: policy.ReasonInsufficient,
		},
		{
			name:   "manager changes role",
			actor:  f.manager,
			req:    &model.UserRequest{ID: f.employee.UserID, Role: ptr(model.RoleManager)},
			code:   apperrors.ErrForbidden,
			reason: policy.ReasonInsufficient,
		},
		{name: "employee of another firm", actor: f.manager, req: &model.UserRequest{ID: f.outsider.UserID, Phone: "1"}, code: apperrors.ErrNotFound},
		{name: "missing user", actor: f.manager, req: &model.UserRequest{ID: 999, Phone: "1"}, code: apperrors.ErrNotFound},
		{name: "missing user for administrator", actor: f.admin, req: &model.UserRequest{ID: 999}, code: apperrors.ErrNotFound},
		{
			name:  "administrator changes everything",
			actor: f.admin,
			req:   &model.UserRequest{ID: f.manager.UserID, Role: ptr(model.RoleEmployee), Password: "new-password", Enabled: ptr(false)},
		},
		{name: "nil request", actor: f.admin, code: apperrors.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.validate(t, policy.EntityUser, policy.OpUpdate, tt.actor, tt.req)
			if tt.code == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.code))
			if tt.reason != "" {
				assert.Equal(t, tt.reason, err.Error())
			}
		})
	}
}

func TestUserDelete(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		target int64
		code   apperrors.ErrorCode
		reason string
	}{
		{name: "employee of own firm", target: f.employee.UserID},
		{name: "manager of own firm", target: f.manager.UserID, code: apperrors.ErrForbidden, reason: policy.ReasonManagerDelete},
		{name: "employee of another firm", target: f.outsider.UserID, code: apperrors.ErrNotFound},
		{name: "missing user", target: 999, code: apperrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.validate(t, policy.EntityUser, policy.OpDelete, f.manager, tt.target)
			if tt.code == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.code))
			if tt.reason != "" {
				assert.Equal(t, tt.reason, err.Error())
			}
		})
	}

	assert.NoError(t, f.validate(t, policy.EntityUser, policy.OpDelete, f.admin, f.manager.UserID))
}
