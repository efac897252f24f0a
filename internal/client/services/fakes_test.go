package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/freightdesk/internal/client/api"
	"github.com/dmitrijs2005/freightdesk/internal/client/models"
	"github.com/dmitrijs2005/freightdesk/internal/client/storage"
	"github.com/dmitrijs2005/freightdesk/internal/client/tokenstore"
)

// fakeClient implements api.Client for unit tests of the services.
type fakeClient struct {
	mu sync.Mutex

	LoginResp *api.LoginResponse
	LoginErr  error

	LogoutErr    error
	LogoutTokens []string

	GetUserResp  *models.User
	GetUserErr   error
	GetUserCalls int
	LastUserID   models.UserID

	Shipments    []models.Shipment
	ShipmentsErr error
	Shipment     *models.Shipment
	ShipmentErr  error

	Quotes      []models.CarrierQuote
	QuoteErr    error
	LastQuote   *models.QuotePayload
	RequestErr  error
	LastRequest *models.QuotePayload

	ResetErr   error
	VerifyErr  error
	LastVerify []string

	// CheckFn serves both uniqueness checks; kind is "email" or "phone".
	CheckFn func(ctx context.Context, kind, value string, exclude models.UserID) (bool, error)

	SupportErr  error
	LastSupport []string

	UpdateResp  *models.User
	UpdateErr   error
	LastProfile *models.Profile

	Users       []models.User
	UsersErr    error
	UsersCalls  int
	DeleteErr   error
	LastDeleted models.UserID
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	return f.LoginResp, f.LoginErr
}

func (f *fakeClient) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutTokens = append(f.LogoutTokens, token)
	return f.LogoutErr
}

func (f *fakeClient) logoutTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.LogoutTokens...)
}

func (f *fakeClient) GetUser(ctx context.Context, token string, id models.UserID) (*models.User, error) {
	f.GetUserCalls++
	f.LastUserID = id
	return f.GetUserResp, f.GetUserErr
}

func (f *fakeClient) GetShipments(ctx context.Context, token string, userID models.UserID) ([]models.Shipment, error) {
	return f.Shipments, f.ShipmentsErr
}

func (f *fakeClient) GetShipment(ctx context.Context, token string, id string) (*models.Shipment, error) {
	return f.Shipment, f.ShipmentErr
}

func (f *fakeClient) GetQuote(ctx context.Context, token string, payload models.QuotePayload) ([]models.CarrierQuote, error) {
	f.LastQuote = &payload
	return f.Quotes, f.QuoteErr
}

func (f *fakeClient) RequestQuote(ctx context.Context, token string, payload models.QuotePayload) error {
	f.LastRequest = &payload
	return f.RequestErr
}

func (f *fakeClient) SendResetCode(ctx context.Context, email string) error {
	return f.ResetErr
}

func (f *fakeClient) VerifyResetCode(ctx context.Context, email, code, newPassword string) error {
	f.LastVerify = []string{email, code, newPassword}
	return f.VerifyErr
}

func (f *fakeClient) CheckEmail(ctx context.Context, token, email string, exclude models.UserID) (bool, error) {
	return f.CheckFn(ctx, "email", email, exclude)
}

func (f *fakeClient) CheckPhoneNumber(ctx context.Context, token, phone string, exclude models.UserID) (bool, error) {
	return f.CheckFn(ctx, "phone", phone, exclude)
}

func (f *fakeClient) Support(ctx context.Context, token, category, message string) error {
	f.LastSupport = []string{category, message}
	return f.SupportErr
}

func (f *fakeClient) UpdateUser(ctx context.Context, token string, profile models.Profile) (*models.User, error) {
	f.LastProfile = &profile
	return f.UpdateResp, f.UpdateErr
}

func (f *fakeClient) GetUsers(ctx context.Context, token string) ([]models.User, error) {
	f.UsersCalls++
	return f.Users, f.UsersErr
}

func (f *fakeClient) DeleteUser(ctx context.Context, token string, id models.UserID) error {
	f.LastDeleted = id
	return f.DeleteErr
}

const (
	testShort   = time.Minute
	testLong    = 14 * 24 * time.Hour
	testWarning = 30 * time.Second
)

type fixture struct {
	db     *sql.DB
	client *fakeClient
	store  *tokenstore.Store
	clock  *clock.Mock
	auth   *AuthSession

	mu     sync.Mutex
	forced []LogoutReason
}

func (fx *fixture) forcedReasons() []LogoutReason {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return append([]LogoutReason(nil), fx.forced...)
}

func newFixture(t *testing.T, timeoutEnabled bool) *fixture {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fx := &fixture{db: db, client: &fakeClient{}, clock: clock.NewMock()}
	fx.clock.Set(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	fx.store = tokenstore.New(db, testShort, testLong, tokenstore.WithClock(fx.clock))

	fx.auth, err = NewAuthSession(fx.client, fx.store, SessionConfig{
		Enabled:          timeoutEnabled,
		Warning:          testWarning,
		ActivityThrottle: time.Second,
		Clock:            fx.clock,
		OnForcedLogout: func(r LogoutReason) {
			fx.mu.Lock()
			fx.forced = append(fx.forced, r)
			fx.mu.Unlock()
		},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(fx.auth.Close)
	return fx
}

func (fx *fixture) login(t *testing.T, user models.User, rememberMe bool) {
	t.Helper()
	fx.client.LoginResp = &api.LoginResponse{Token: "tok", User: &user}
	_, err := fx.auth.Login(context.Background(), user.Email, "pw", rememberMe)
	require.NoError(t, err)
}
