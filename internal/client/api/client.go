package api

import (
	"context"

	"github.com/dmitrijs2005/freightdesk/internal/client/models"
)

// LoginResponse is the body of a successful POST /login. Both fields are
// optional on the wire.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Client interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, token string, id models.UserID) (*models.User, error)
	UpdateUser(ctx context.Context, token string, profile models.Profile) (*models.User, error)
	GetUsers(ctx context.Context, token string) ([]models.User, error)
	DeleteUser(ctx context.Context, token string, id models.UserID) error

	GetShipments(ctx context.Context, token string, userID models.UserID) ([]models.Shipment, error)
	GetShipment(ctx context.Context, token string, id string) (*models.Shipment, error)
	GetQuote(ctx context.Context, token string, payload models.QuotePayload) ([]models.CarrierQuote, error)
	RequestQuote(ctx context.Context, token string, payload models.QuotePayload) error

	SendResetCode(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code, newPassword string) error
	CheckEmail(ctx context.Context, token, email string, exclude models.UserID) (bool, error)
	CheckPhoneNumber(ctx context.Context, token, phone string, exclude models.UserID) (bool, error)
	Support(ctx context.Context, token, category, message string) error
}
