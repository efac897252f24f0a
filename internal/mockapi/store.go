package mockapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/freightdesk/internal/common"
)

var (
	errEmailInUse = errors.New("email already in use")
	errPhoneInUse = errors.New("phone number already in use")
)

// Store is the in-memory state of the mock API. It is safe for concurrent
// use.
type Store struct {
	mu sync.RWMutex

	bcryptCost int
	users      map[int64]*User
	byEmail    map[string]int64
	nextUserID int64

	shipments      map[int64]*Shipment
	nextShipmentID int64

	// revoked maps token ids to their expiry, after which they are dropped.
	revoked    map[string]time.Time
	resetCodes map[string]string
	support    []SupportRequest
}

func NewStore(bcryptCost int) *Store {
	return &Store{
		bcryptCost:     bcryptCost,
		users:          make(map[int64]*User),
		byEmail:        make(map[string]int64),
		nextUserID:     1,
		shipments:      make(map[int64]*Shipment),
		nextShipmentID: 1001,
		revoked:        make(map[string]time.Time),
		resetCodes:     make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AddUser stores a user with a bcrypt hash of password.
func (s *Store) AddUser(email, name, role, phone, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(email)
	if _, ok := s.byEmail[key]; ok {
		return nil, fmt.Errorf("user %s: %w", email, common.ErrorValidation)
	}

	u := &User{
		ID:           s.nextUserID,
		Email:        email,
		Name:         name,
		Role:         role,
		Phone:        phone,
		Status:       StatusActive,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		PasswordHash: hash,
	}
	if first, last, ok := strings.Cut(name, " "); ok {
		u.FirstName, u.LastName = first, last
	} else {
		u.FirstName = name
	}
	s.nextUserID++
	s.users[u.ID] = u
	s.byEmail[key] = u.ID

	c := *u
	return &c, nil
}

// Authenticate fails with common.ErrorUnauthorized for an unknown email or a
// wrong password.
func (s *Store) Authenticate(email, password string) (*User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[normalizeEmail(email)]
	var u User
	if ok {
		u = *s.users[id]
	}
	s.mu.RUnlock()

	if !ok {
		return nil, common.ErrorUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}
	return &u, nil
}

func (s *Store) User(id int64) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	c := *u
	return &c, true
}

// Users lists every user ordered by id.
func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateUser applies p to the user p.ID. A taken email or phone number
// fails with errEmailInUse or errPhoneInUse and changes nothing.
func (s *Store) UpdateUser(p ProfileUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := int64(p.ID)
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if s.emailTakenLocked(p.Email, id) {
		return nil, errEmailInUse
	}
	if s.phoneTakenLocked(p.Phone, id) {
		return nil, errPhoneInUse
	}

	delete(s.byEmail, normalizeEmail(u.Email))
	s.byEmail[normalizeEmail(p.Email)] = id

	u.Email = strings.TrimSpace(p.Email)
	u.Phone = strings.TrimSpace(p.Phone)
	u.Profile = p.Profile
	u.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)

	c := *u
	return &c, nil
}

// DeleteUser removes the user and the shipments they own.
func (s *Store) DeleteUser(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(s.byEmail, normalizeEmail(u.Email))
	delete(s.users, id)
	for sid, sh := range s.shipments {
		if sh.UserID == id {
			delete(s.shipments, sid)
		}
	}
	return nil
}

// EmailTaken reports whether a user other than exclude has email.
func (s *Store) EmailTaken(email string, exclude int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailTakenLocked(email, exclude)
}

func (s *Store) emailTakenLocked(email string, exclude int64) bool {
	id, ok := s.byEmail[normalizeEmail(email)]
	return ok && id != exclude
}

// PhoneTaken compares digits only, so formatting differences do not matter.
func (s *Store) PhoneTaken(phone string, exclude int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phoneTakenLocked(phone, exclude)
}

func (s *Store) phoneTakenLocked(phone string, exclude int64) bool {
	want := digits(phone)
	if want == "" {
		return false
	}
	for id, u := range s.users {
		if id != exclude && digits(u.Phone) == want {
			return true
		}
	}
	return false
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AddShipment assigns the next shipment id and stores sh.
func (s *Store) AddShipment(sh Shipment) Shipment {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh.ID = s.nextShipmentID
	s.nextShipmentID++
	for i := range sh.Details {
		sh.Details[i].ID = int64(i + 1)
	}
	s.shipments[sh.ID] = &sh
	return sh
}

// Shipments lists the shipments of userID, newest first.
func (s *Store) Shipments(userID int64) []Shipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Shipment, 0)
	for _, sh := range s.shipments {
		if sh.UserID == userID {
			out = append(out, *sh)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Store) Shipment(id int64) (*Shipment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shipments[id]
	if !ok {
		return nil, false
	}
	c := *sh
	return &c, true
}

// Revoke invalidates the token id until exp.
func (s *Store) Revoke(tokenID string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, e := range s.revoked {
		if e.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = exp
}

func (s *Store) IsRevoked(tokenID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[tokenID]
	return ok
}

// IssueResetCode creates a reset code for a known email. Unknown emails
// fail with common.ErrorNotFound.
func (s *Store) IssueResetCode(email string) (string, error) {
	code, err := common.MakeRandHexString(3)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeEmail(email)
	if _, ok := s.byEmail[key]; !ok {
		return "", common.ErrorNotFound
	}
	s.resetCodes[key] = code
	return code, nil
}

// ResetPassword consumes the reset code of email and sets password.
func (s *Store) ResetPassword(email, code, password string) error {
	key := normalizeEmail(email)

	s.mu.RLock()
	want, ok := s.resetCodes[key]
	s.mu.RUnlock()
	if !ok || want != strings.ToLower(strings.TrimSpace(code)) {
		return common.ErrorValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resetCodes[key] != want {
		return common.ErrorValidation
	}
	delete(s.resetCodes, key)
	s.users[s.byEmail[key]].PasswordHash = hash
	return nil
}

func (s *Store) AddSupportRequest(r SupportRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.support = append(s.support, r)
}

func (s *Store) SupportRequests() []SupportRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SupportRequest(nil), s.support...)
}
