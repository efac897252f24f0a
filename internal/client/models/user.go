package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RoleAdmin is the user_role value that lands in the admin area after login.
const RoleAdmin = "admin"

// UserID is the backend identifier of a user. The API sends it as a JSON
// number, but string ids are accepted too and kept verbatim.
type UserID string

func (id UserID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *UserID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

// User is the cached identity of the logged-in account.
//
// Fields the client has no typed slot for are kept in Extra and written back
// on marshal, so a cached record round-trips whatever the backend sent.
type User struct {
	ID    UserID `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"user_role"`

	Extra map[string]json.RawMessage `json:"-"`
}

var userKnownFields = []string{"id", "email", "name", "user_role"}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName falls back to the email when the backend sent no name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func (u User) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(u.Extra)+len(userKnownFields))
	for k, v := range u.Extra {
		m[k] = v
	}
	m["id"] = u.ID
	m["email"] = u.Email
	m["name"] = u.Name
	m["user_role"] = u.Role
	return json.Marshal(m)
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range userKnownFields {
		delete(raw, k)
	}
	if len(raw) == 0 {
		raw = nil
	}

	*u = User(p)
	u.Extra = raw
	return nil
}

// Field returns the string value of an extra field, or "" when it is
// absent or not a string.
func (u User) Field(key string) string {
	raw, ok := u.Extra[key]
	if !ok {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}

// Profile is the editable account data, in the shape of POST /UpdateUser.
type Profile struct {
	ID        UserID `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone_number"`
	Company   string `json:"company"`
	Position  string `json:"position"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// Profile extracts the editable data of u.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		FirstName: u.Field("first_name"),
		LastName:  u.Field("last_name"),
		Email:     u.Email,
		Phone:     u.Field("phone_number"),
		Company:   u.Field("company"),
		Position:  u.Field("position"),
		Street:    u.Field("street"),
		City:      u.Field("city"),
		State:     u.Field("state"),
		ZipCode:   u.Field("zip_code"),
		Country:   u.Field("country"),
	}
}

// UserFilter selects users for the admin listing. Empty fields match all.
type UserFilter struct {
	// Query matches names, email and company, case-insensitively.
	Query  string
	Role   string
	Status string
}

func (f UserFilter) Matches(u User) bool {
	if f.Role != "" && !strings.EqualFold(u.Role, f.Role) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(u.Field("user_status"), f.Status) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, v := range []string{u.Name, u.Field("first_name"), u.Field("last_name"), u.Email, u.Field("company")} {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

func FilterUsers(list []User, f UserFilter) []User {
	out := make([]User, 0, len(list))
	for _, u := range list {
		if f.Matches(u) {
			out = append(out, u)
		}
	}
	return out
}
