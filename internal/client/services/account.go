package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dmitrijs2005/freightdesk/internal/client/api"
	"github.com/dmitrijs2005/freightdesk/internal/client/models"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
)

// MinPasswordLength applies to passwords set through a reset.
const MinPasswordLength = 8

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidPhone     = errors.New("phone number is required")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrMissingField     = errors.New("required field is empty")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// latest tracks the newest request of one kind. Starting a request cancels
// the one before it, and only the newest may deliver a result.
type latest struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func (l *latest) begin(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	cctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	return cctx, l.seq, cancel
}

func (l *latest) current(seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq == seq
}

// AccountService covers password reset, uniqueness checks and support.
type AccountService struct {
	client api.Client
	auth   *AuthSession
	logger logging.Logger

	emailCheck latest
	phoneCheck latest
}

func NewAccountService(client api.Client, auth *AuthSession, logger logging.Logger) *AccountService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &AccountService{client: client, auth: auth, logger: logger}
}

func (s *AccountService) SendResetCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if err := s.client.SendResetCode(ctx, email); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	return nil
}

// ResetPassword sets a new password with the emailed code.
func (s *AccountService) ResetPassword(ctx context.Context, email, code, password, confirm string) error {
	switch {
	case !emailPattern.MatchString(strings.TrimSpace(email)):
		return ErrInvalidEmail
	case strings.TrimSpace(code) == "":
		return fmt.Errorf("%w: code", ErrMissingField)
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case password != confirm:
		return ErrPasswordMismatch
	}

	if err := s.client.VerifyResetCode(ctx, strings.TrimSpace(email), strings.TrimSpace(code), password); err != nil {
		return fmt.Errorf("verify reset code: %w", err)
	}
	s.logger.Info(ctx, "password reset", "email", email)
	return nil
}

// CheckEmail reports whether another user already has email. A check that
// is overtaken by a newer one fails with ErrSuperseded.
func (s *AccountService) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return false, ErrInvalidEmail
	}
	return s.runCheck(ctx, &s.emailCheck, func(ctx context.Context, token string) (bool, error) {
		return s.client.CheckEmail(ctx, token, email, s.currentUserID())
	})
}

// CheckPhoneNumber is CheckEmail for phone numbers.
func (s *AccountService) CheckPhoneNumber(ctx context.Context, phone string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false, ErrInvalidPhone
	}
	return s.runCheck(ctx, &s.phoneCheck, func(ctx context.Context, token string) (bool, error) {
		return s.client.CheckPhoneNumber(ctx, token, phone, s.currentUserID())
	})
}

func (s *AccountService) currentUserID() models.UserID {
	if u := s.auth.CurrentUser(); u != nil {
		return u.ID
	}
	return ""
}

func (s *AccountService) runCheck(ctx context.Context, l *latest, call func(ctx context.Context, token string) (bool, error)) (bool, error) {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return false, err
	}

	cctx, seq, cancel := l.begin(ctx)
	defer cancel()

	exists, err := call(cctx, token)
	if !l.current(seq) {
		return false, ErrSuperseded
	}
	if err != nil {
		s.auth.HandleError(ctx, err)
		return false, err
	}
	return exists, nil
}

// UpdateProfile saves p for the current user. The email and phone number
// go through the uniqueness checks first, and a taken one fails with a
// *FieldError before anything is sent.
func (s *AccountService) UpdateProfile(ctx context.Context, p models.Profile) (*models.User, error) {
	p = trimProfile(p)
	switch {
	case p.FirstName == "":
		return nil, fmt.Errorf("%w: first name", ErrMissingField)
	case !emailPattern.MatchString(p.Email):
		return nil, ErrInvalidEmail
	}

	me := s.auth.CurrentUser()
	if me == nil {
		return nil, ErrNotAuthenticated
	}
	p.ID = me.ID

	taken, err := s.CheckEmail(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, emailInUse
	}
	if p.Phone != "" {
		taken, err := s.CheckPhoneNumber(ctx, p.Phone)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, phoneInUse
		}
	}

	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.client.UpdateUser(ctx, token, p)
	if err != nil {
		s.auth.HandleError(ctx, err)
		if fe := profileFieldError(err); fe != nil {
			return nil, fe
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if u == nil {
		u = mergeProfile(*me, p)
	}
	s.auth.SetCurrentUser(ctx, *u)
	s.logger.Info(ctx, "profile updated", "user_id", p.ID)
	return u, nil
}

// profileFieldError recognises the uniqueness conflicts the API reports as
// plain messages.
func profileFieldError(err error) *FieldError {
	msg := strings.ToLower(api.Message(err, ""))
	switch {
	case strings.Contains(msg, "email already in use"):
		return emailInUse
	case strings.Contains(msg, "phone") && strings.Contains(msg, "already"):
		return phoneInUse
	}
	return nil
}

func trimProfile(p models.Profile) models.Profile {
	for _, f := range []*string{&p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Company,
		&p.Position, &p.Street, &p.City, &p.State, &p.ZipCode, &p.Country} {
		*f = strings.TrimSpace(*f)
	}
	return p
}

// mergeProfile applies p to u for an API that answers without the user.
func mergeProfile(u models.User, p models.Profile) *models.User {
	b, err := json.Marshal(p)
	if err != nil {
		return &u
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return &u
	}

	extra := make(map[string]json.RawMessage, len(u.Extra)+len(fields))
	for k, v := range u.Extra {
		extra[k] = v
	}
	for k, v := range fields {
		if k != "id" && k != "email" {
			extra[k] = v
		}
	}
	u.Extra = extra
	u.Email = p.Email
	u.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	return &u
}

func (s *AccountService) Support(ctx context.Context, category, message string) error {
	category, message = strings.TrimSpace(category), strings.TrimSpace(message)
	if category == "" {
		return fmt.Errorf("%w: category", ErrMissingField)
	}
	if message == "" {
		return fmt.Errorf("%w: message", ErrMissingField)
	}

	token, err := s.auth.Token(ctx)
	if err != nil {
		return err
	}
	if err := s.client.Support(ctx, token, category, message); err != nil {
		s.auth.HandleError(ctx, err)
		return fmt.Errorf("submit support request: %w", err)
	}
	return nil
}
