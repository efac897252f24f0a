package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/freightdesk/internal/client/api"
	"github.com/dmitrijs2005/freightdesk/internal/client/models"
)

var opsAdmin = models.User{ID: "2", Email: "ops@example.com", Name: "Ops", Role: models.RoleAdmin}

func makeUsers(n int) []models.User {
	out := make([]models.User, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.User{ID: models.UserID(fmt.Sprint(i)), Email: fmt.Sprintf("user%d@example.com", i), Role: "customer"})
	}
	return out
}

func TestUserService_List(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, false)
	fx.login(t, opsAdmin, false)
	fx.client.Users = makeUsers(23)
	svc := NewUserService(fx.client, fx.auth, nil)

	p, err := svc.List(ctx, models.UserFilter{}, 3)
	require.NoError(t, err)
	assert.Equal(t, 23, p.Total)
	assert.Equal(t, 3, p.Pages)
	require.Len(t, p.Users, 3)
	assert.Equal(t, models.UserID("21"), p.Users[0].ID)

	p, err = svc.List(ctx, models.UserFilter{Query: "user17@"}, 1)
	require.NoError(t, err)
	require.Len(t, p.Users, 1)
	assert.Equal(t, models.UserID("17"), p.Users[0].ID)

	p, err = svc.List(ctx, models.UserFilter{Role: models.RoleAdmin}, 1)
	require.NoError(t, err)
	assert.Zero(t, p.Total)
	assert.Empty(t, p.Users)
}

func TestUserService_AdminOnly(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, false)
	svc := NewUserService(fx.client, fx.auth, nil)

	_, err := svc.List(ctx, models.UserFilter{}, 1)
	require.ErrorIs(t, err, ErrNotAuthenticated)

	fx.login(t, alice, false)
	_, err = svc.List(ctx, models.UserFilter{}, 1)
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, "1"), ErrForbidden)
	assert.Zero(t, fx.client.UsersCalls, "refused without a request")
	assert.Empty(t, fx.client.LastDeleted)
}

func TestUserService_ServerForbiddenKeepsSession(t *testing.T) {
	fx := newFixture(t, false)
	fx.login(t, opsAdmin, false)
	fx.client.UsersErr = &api.StatusError{Code: 403, Message: "This action is unauthorized."}
	svc := NewUserService(fx.client, fx.auth, nil)

	_, err := svc.List(context.Background(), models.UserFilter{}, 1)
	require.ErrorIs(t, err, ErrForbidden)
	assert.True(t, fx.auth.IsAuthenticated())
	assert.Empty(t, fx.forcedReasons())
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, false)
	fx.login(t, opsAdmin, false)
	svc := NewUserService(fx.client, fx.auth, nil)

	require.ErrorIs(t, svc.Delete(ctx, ""), ErrMissingField)
	require.ErrorIs(t, svc.Delete(ctx, opsAdmin.ID), ErrDeleteSelf)
	assert.Empty(t, fx.client.LastDeleted)

	require.NoError(t, svc.Delete(ctx, "7"))
	assert.Equal(t, models.UserID("7"), fx.client.LastDeleted)

	fx.client.DeleteErr = &api.StatusError{Code: 401}
	require.ErrorIs(t, svc.Delete(ctx, "8"), api.ErrUnauthorized)
	assert.False(t, fx.auth.IsAuthenticated())
	assert.Equal(t, []LogoutReason{ReasonUnauthorized}, fx.forcedReasons())
}
