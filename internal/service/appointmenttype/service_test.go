package appointmenttype_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/repository/memory"
	"github.com/jwalitptl/chronosync/internal/service/appointmenttype"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

var (
	manager  = principal.Principal{UserID: 11, FirmID: 1, Role: model.RoleManager, Username: "mgr"}
	outsider = principal.Principal{UserID: 20, FirmID: 2, Role: model.RoleManager, Username: "far"}
)

func ptr[T any](v T) *T {
	return &v
}

func TestCreateAndUpdate(t *testing.T) {
	store := memory.NewStore()
	svc := appointmenttype.NewService(store.AppointmentTypes)
	ctx := context.Background()

	at, err := svc.Create(ctx, manager, &model.AppointmentTypeRequest{
		Name:            " Consult ",
		DurationMinutes: ptr(30),
		Price:           ptr(50.0),
		Currency:        model.CurrencyEUR,
		ColorCode:       "#00ff00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Consult", at.Name)
	assert.Equal(t, 30, at.DurationMinutes)
	assert.Equal(t, int64(1), at.FirmID)

	updated, err := svc.Update(ctx, manager, &model.AppointmentTypeRequest{ID: at.ID, Price: ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, "Consult", updated.Name)
	assert.Equal(t, 30, updated.DurationMinutes)
	assert.Zero(t, updated.Price)
	assert.Equal(t, model.CurrencyEUR, updated.Currency)

	_, err = svc.Update(ctx, outsider, &model.AppointmentTypeRequest{ID: at.ID, Name: "Taken over"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestSearchByIDIsFirmScoped(t *testing.T) {
	store := memory.NewStore()
	svc := appointmenttype.NewService(store.AppointmentTypes)
	ctx := context.Background()

	at, err := svc.Create(ctx, manager, &model.AppointmentTypeRequest{Name: "Consult", DurationMinutes: ptr(30), Currency: model.CurrencyUSD})
	require.NoError(t, err)

	page, err := svc.Search(ctx, manager, &model.AppointmentTypeSearchRequest{ID: filter.Some(at.ID)})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, at.ID, page.Content[0].ID)

	page, err = svc.Search(ctx, outsider, &model.AppointmentTypeSearchRequest{ID: filter.Some(at.ID)})
	require.NoError(t, err)
	assert.Empty(t, page.Content)
}

func TestDelete(t *testing.T) {
	store := memory.NewStore()
	svc := appointmenttype.NewService(store.AppointmentTypes)
	ctx := context.Background()

	at, err := svc.Create(ctx, manager, &model.AppointmentTypeRequest{Name: "Consult", DurationMinutes: ptr(30), Currency: model.CurrencyGBP})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, manager, at.ID))
	err = svc.Delete(ctx, manager, at.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
