package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/freightdesk/internal/client/api"
	"github.com/dmitrijs2005/freightdesk/internal/client/models"
)

func TestSendResetCode(t *testing.T) {
	fx := newFixture(t, false)
	svc := NewAccountService(fx.client, fx.auth, nil)

	require.ErrorIs(t, svc.SendResetCode(context.Background(), "not-an-email"), ErrInvalidEmail)
	require.NoError(t, svc.SendResetCode(context.Background(), " alice@example.com "))

	fx.client.ResetErr = &api.StatusError{Code: 404, Message: "We can't find a user with that email address."}
	err := svc.SendResetCode(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestResetPassword_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		code     string
		password string
		confirm  string
		wantErr  error
	}{
		{name: "bad email", email: "x", code: "123456", password: "longenough", confirm: "longenough", wantErr: ErrInvalidEmail},
		{name: "missing code", email: "a@b.io", code: " ", password: "longenough", confirm: "longenough", wantErr: ErrMissingField},
		{name: "short password", email: "a@b.io", code: "123456", password: "short", confirm: "short", wantErr: ErrPasswordTooShort},
		{name: "mismatch", email: "a@b.io", code: "123456", password: "longenough", confirm: "longenougH", wantErr: ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, false)
			svc := NewAccountService(fx.client, fx.auth, nil)

			err := svc.ResetPassword(context.Background(), tt.email, tt.code, tt.password, tt.confirm)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, fx.client.LastVerify)
		})
	}
}

func TestResetPassword_OK(t *testing.T) {
	fx := newFixture(t, false)
	svc := NewAccountService(fx.client, fx.auth, nil)

	err := svc.ResetPassword(context.Background(), " a@b.io", " 123456 ", "longenough", "longenough")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.io", "123456", "longenough"}, fx.client.LastVerify)
}

func TestCheckEmail_ExcludesCurrentUser(t *testing.T) {
	fx := newFixture(t, false)
	fx.login(t, alice, false)
	svc := NewAccountService(fx.client, fx.auth, nil)

	var gotExclude models.UserID
	fx.client.CheckFn = func(ctx context.Context, kind, value string, exclude models.UserID) (bool, error) {
		gotExclude = exclude
		return value == "taken@example.com", nil
	}

	exists, err := svc.CheckEmail(context.Background(), "taken@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, alice.ID, gotExclude)

	exists, err = svc.CheckEmail(context.Background(), "free@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.CheckEmail(context.Background(), "nope")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.CheckPhoneNumber(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidPhone)
}

func TestCheckEmail_NewerCheckSupersedesOlder(t *testing.T) {
	fx := newFixture(t, false)
	fx.login(t, alice, false)
	svc := NewAccountService(fx.client, fx.auth, nil)

	started := make(chan struct{})
	fx.client.CheckFn = func(ctx context.Context, kind, value string, exclude models.UserID) (bool, error) {
		if value == "slow@example.com" {
			close(started)
			<-ctx.Done()
			return false, ctx.Err()
		}
		return true, nil
	}

	type result struct {
		exists bool
		err    error
	}
	slow := make(chan result, 1)
	go func() {
		exists, err := svc.CheckEmail(context.Background(), "slow@example.com")
		slow <- result{exists, err}
	}()
	<-started

	exists, err := svc.CheckEmail(context.Background(), "fast@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	r := <-slow
	require.ErrorIs(t, r.err, ErrSuperseded)
	assert.False(t, r.exists)
}

func TestCheckPhoneNumber_IndependentOfEmailChecks(t *testing.T) {
	fx := newFixture(t, false)
	fx.login(t, alice, false)
	svc := NewAccountService(fx.client, fx.auth, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	fx.client.CheckFn = func(ctx context.Context, kind, value string, exclude models.UserID) (bool, error) {
		if kind == "email" {
			close(started)
			<-release
		}
		return kind == "phone", nil
	}

	email := make(chan error, 1)
	go func() {
		_, err := svc.CheckEmail(context.Background(), "a@b.io")
		email <- err
	}()
	<-started

	exists, err := svc.CheckPhoneNumber(context.Background(), "+61 400 000 000")
	require.NoError(t, err)
	assert.True(t, exists)

	close(release)
	require.NoError(t, <-email)
}

func TestSupport(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, false)
	svc := NewAccountService(fx.client, fx.auth, nil)

	require.ErrorIs(t, svc.Support(ctx, "billing", "help"), ErrNotAuthenticated)

	fx.login(t, alice, false)
	require.ErrorIs(t, svc.Support(ctx, "", "help"), ErrMissingField)
	require.ErrorIs(t, svc.Support(ctx, "billing", " "), ErrMissingField)

	require.NoError(t, svc.Support(ctx, " billing ", "Invoice is wrong"))
	assert.Equal(t, []string{"billing", "Invoice is wrong"}, fx.client.LastSupport)

	fx.client.SupportErr = &api.StatusError{Code: 401}
	require.ErrorIs(t, svc.Support(ctx, "billing", "again"), api.ErrUnauthorized)
	assert.False(t, fx.auth.IsAuthenticated())
}

func danaProfile() models.Profile {
	return models.Profile{FirstName: " Dana ", LastName: "Reyes", Email: "dana@example.com", Phone: "+61 400 000 009", City: "Perth"}
}

func TestUpdateProfile_OK(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, false)
	fx.login(t, alice, false)
	svc := NewAccountService(fx.client, fx.auth, nil)

	var checked []string
	fx.client.CheckFn = func(ctx context.Context, kind, value string, exclude models.UserID) (bool, error) {
		checked = append(checked, kind+":"+value)
		assert.Equal(t, alice.ID, exclude)
		return false, nil
	}
	updated := models.User{ID: alice.ID, Email: "dana@example.com", Name: "Dana Reyes", Role: alice.Role}
	fx.client.UpdateResp = &updated

	u, err := svc.UpdateProfile(ctx, danaProfile())
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", u.Name)
	assert.Equal(t, []string{"email:dana@example.com", "phone:+61 400 000 009"}, checked)

	require.NotNil(t, fx.client.LastProfile)
	assert.Equal(t, alice.ID, fx.client.LastProfile.ID)
	assert.Equal(t, "Dana", fx.client.LastProfile.FirstName)

	assert.Equal(t, "dana@example.com", fx.auth.CurrentUser().Email)
	cached := fx.store.User(ctx)
	require.NotNil(t, cached)
	assert.Equal(t, "Dana Reyes", cached.Name)
}

func TestUpdateProfile_MergesWhenResponseHasNoUser(t *testing.T) {
	fx := newFixture(t, false)
	fx.login(t, alice, false)
	svc := NewAccountService(fx.client, fx.auth, nil)
	fx.client.CheckFn = func(ctx context.Context, kind, value string, exclude models.UserID) (bool, error) {
		return false, nil
	}

	u, err := svc.UpdateProfile(context.Background(), danaProfile())
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)
	assert.Equal(t, "Dana Reyes", u.Name)
	assert.Equal(t, "Perth", u.Field("city"))
	assert.Equal(t, "+61 400 000 009", u.Profile().Phone)
}

func TestUpdateProfile_TakenBeforeSending(t *testing.T) {
	tests := []struct {
		name    string
		taken   string
		wantErr error
		field   string
	}{
		{name: "email", taken: "email", wantErr: ErrEmailInUse, field: "email"},
		{name: "phone", taken: "phone", wantErr: ErrPhoneInUse, field: "phone_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, false)
			fx.login(t, alice, false)
			svc := NewAccountService(fx.client, fx.auth, nil)
			fx.client.CheckFn = func(ctx context.Context, kind, value string, exclude models.UserID) (bool, error) {
				return kind == tt.taken, nil
			}

			_, err := svc.UpdateProfile(context.Background(), danaProfile())
			require.ErrorIs(t, err, tt.wantErr)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
			assert.Nil(t, fx.client.LastProfile, "nothing is sent")
		})
	}
}

func TestUpdateProfile_MapsServerConflicts(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr error
	}{
		{name: "email", message: "This email already in use.", wantErr: ErrEmailInUse},
		{name: "phone", message: "The phone number has already been taken.", wantErr: ErrPhoneInUse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, false)
			fx.login(t, alice, false)
			svc := NewAccountService(fx.client, fx.auth, nil)
			fx.client.CheckFn = func(ctx context.Context, kind, value string, exclude models.UserID) (bool, error) {
				return false, nil
			}
			fx.client.UpdateErr = &api.StatusError{Code: 422, Message: tt.message}

			_, err := svc.UpdateProfile(context.Background(), danaProfile())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, alice.Email, fx.auth.CurrentUser().Email)
		})
	}

	fx := newFixture(t, false)
	fx.login(t, alice, false)
	svc := NewAccountService(fx.client, fx.auth, nil)
	fx.client.CheckFn = func(ctx context.Context, kind, value string, exclude models.UserID) (bool, error) {
		return false, nil
	}
	fx.client.UpdateErr = &api.StatusError{Code: 500, Message: "boom"}
	_, err := svc.UpdateProfile(context.Background(), danaProfile())
	var fe *FieldError
	require.False(t, errors.As(err, &fe))
	assert.Equal(t, "boom", api.Message(err, ""))
}

func TestUpdateProfile_Validation(t *testing.T) {
	fx := newFixture(t, false)
	svc := NewAccountService(fx.client, fx.auth, nil)
	ctx := context.Background()

	p := danaProfile()
	p.FirstName = " "
	_, err := svc.UpdateProfile(ctx, p)
	require.ErrorIs(t, err, ErrMissingField)

	p = danaProfile()
	p.Email = "nope"
	_, err = svc.UpdateProfile(ctx, p)
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.UpdateProfile(ctx, danaProfile())
	require.ErrorIs(t, err, ErrNotAuthenticated)
}
