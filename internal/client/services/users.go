package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/freightdesk/internal/client/api"
	"github.com/dmitrijs2005/freightdesk/internal/client/models"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
)

const UsersPerPage = 10

type UserPage struct {
	Users []models.User
	Page  int
	Pages int
	Total int
}

// UserService is the admin user management. Every call is refused with
// ErrForbidden unless the current user is an admin.
type UserService struct {
	client api.Client
	auth   *AuthSession
	logger logging.Logger
}

func NewUserService(client api.Client, auth *AuthSession, logger logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &UserService{client: client, auth: auth, logger: logger}
}

func (s *UserService) adminToken(ctx context.Context) (string, *models.User, error) {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return "", nil, err
	}
	me := s.auth.CurrentUser()
	if me == nil {
		return "", nil, ErrNotAuthenticated
	}
	if !me.IsAdmin() {
		return "", nil, ErrForbidden
	}
	return token, me, nil
}

// List fetches every user and returns the requested page of those matching
// f. Paging happens here, the API returns the whole list.
func (s *UserService) List(ctx context.Context, f models.UserFilter, page int) (*UserPage, error) {
	token, _, err := s.adminToken(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.client.GetUsers(ctx, token)
	if err != nil {
		s.auth.HandleError(ctx, err)
		return nil, fmt.Errorf("fetch users: %w", err)
	}

	matched := models.FilterUsers(all, f)
	users, pages := models.Page(matched, page, UsersPerPage)
	return &UserPage{Users: users, Page: page, Pages: pages, Total: len(matched)}, nil
}

// Delete removes the user id. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, id models.UserID) error {
	if id == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}
	token, me, err := s.adminToken(ctx)
	if err != nil {
		return err
	}
	if id == me.ID {
		return ErrDeleteSelf
	}

	if err := s.client.DeleteUser(ctx, token, id); err != nil {
		s.auth.HandleError(ctx, err)
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	s.logger.Info(ctx, "user deleted", "user_id", id, "by", me.ID)
	return nil
}
