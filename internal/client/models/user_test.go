package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUser_UnmarshalKeepsExtraFields(t *testing.T) {
	in := `{"id":7,"email":"a@b.c","name":"Ann","user_role":"admin","company":"Acme","status":"active"}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(in), &u))

	require.Equal(t, UserID("7"), u.ID)
	require.Equal(t, "a@b.c", u.Email)
	require.True(t, u.IsAdmin())
	require.Len(t, u.Extra, 2)
	require.JSONEq(t, `"Acme"`, string(u.Extra["company"]))
}

func TestUser_MarshalWritesExtraBack(t *testing.T) {
	u := User{
		ID:    "12",
		Email: "x@y.z",
		Role:  "user",
		Extra: map[string]json.RawMessage{"company": json.RawMessage(`"Acme"`)},
	}
	b, err := json.Marshal(u)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":12,"email":"x@y.z","name":"","user_role":"user","company":"Acme"}`, string(b))
}

func TestUser_NoExtraIsNil(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u-1","email":"e"}`), &u))
	require.Equal(t, UserID("u-1"), u.ID)
	require.Nil(t, u.Extra)
	require.False(t, u.IsAdmin())
}

func TestUserID_JSON(t *testing.T) {
	cases := []struct {
		in   string
		want UserID
		out  string
	}{
		{in: `42`, want: "42", out: `42`},
		{in: `"42"`, want: "42", out: `42`},
		{in: `"abc"`, want: "abc", out: `"abc"`},
		{in: `null`, want: "", out: `null`},
	}
	for _, c := range cases {
		var id UserID
		require.NoError(t, json.Unmarshal([]byte(c.in), &id), c.in)
		require.Equal(t, c.want, id)

		b, err := json.Marshal(id)
		require.NoError(t, err)
		require.Equal(t, c.out, string(b))
	}

	var id UserID
	require.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestUser_DisplayName(t *testing.T) {
	require.Equal(t, "Ann", User{Name: "Ann", Email: "a@b"}.DisplayName())
	require.Equal(t, "a@b", User{Email: "a@b"}.DisplayName())
}

func mustUser(t *testing.T, raw string) User {
	t.Helper()
	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	return u
}

func TestUser_Profile(t *testing.T) {
	u := mustUser(t, `{"id":3,"email":"dana@x.io","name":"Dana Reyes","first_name":"Dana","last_name":"Reyes",
		"phone_number":"+61 400 000 003","company":"Harbour","zip_code":"6000","created_at":7}`)

	p := u.Profile()
	require.Equal(t, Profile{
		ID:        "3",
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     "dana@x.io",
		Phone:     "+61 400 000 003",
		Company:   "Harbour",
		ZipCode:   "6000",
	}, p)
	require.Empty(t, u.Field("created_at"), "non-string fields read as empty")
	require.Empty(t, u.Field("missing"))
}

func TestFilterUsers(t *testing.T) {
	users := []User{
		mustUser(t, `{"id":1,"email":"demo@x.io","name":"Demo Customer","user_role":"customer","user_status":"active","company":"Harbour"}`),
		mustUser(t, `{"id":2,"email":"ops@x.io","name":"Dispatch Admin","user_role":"admin","user_status":"active"}`),
		mustUser(t, `{"id":3,"email":"old@x.io","name":"Old Account","user_role":"customer","user_status":"inactive"}`),
	}

	ids := func(list []User) []UserID {
		var out []UserID
		for _, u := range list {
			out = append(out, u.ID)
		}
		return out
	}

	require.Equal(t, []UserID{"1", "2", "3"}, ids(FilterUsers(users, UserFilter{})))
	require.Equal(t, []UserID{"1"}, ids(FilterUsers(users, UserFilter{Query: "harb"})))
	require.Equal(t, []UserID{"2"}, ids(FilterUsers(users, UserFilter{Query: "OPS@"})))
	require.Equal(t, []UserID{"1", "3"}, ids(FilterUsers(users, UserFilter{Role: "customer"})))
	require.Equal(t, []UserID{"3"}, ids(FilterUsers(users, UserFilter{Role: "customer", Status: "inactive"})))
	require.Empty(t, FilterUsers(users, UserFilter{Query: "nobody"}))
}
