package mockapi

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const StatusActive = "active"

type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"user_role"`
	Phone     string `json:"phone_number,omitempty"`
	Status    string `json:"user_status"`
	CreatedAt string `json:"created_at"`

	Profile

	PasswordHash []byte `json:"-"`
}

// Profile is what a user may change through POST /UpdateUser besides the
// email and phone number.
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Position  string `json:"position,omitempty"`
	Street    string `json:"street,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zip_code,omitempty"`
	Country   string `json:"country,omitempty"`
}

// ProfileUpdate is the body of POST /UpdateUser.
type ProfileUpdate struct {
	ID    userRef `json:"id"`
	Email string  `json:"email"`
	Phone string  `json:"phone_number"`
	Profile
}

type Item struct {
	ID     int64   `json:"details_id"`
	Weight float64 `json:"weight"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Shipment struct {
	ID            int64   `json:"shipment_id"`
	UserID        int64   `json:"user_id"`
	CarrierID     int64   `json:"carrier_id"`
	CarrierName   string  `json:"carrier_name"`
	TransportName string  `json:"transport_name"`
	Status        string  `json:"status"`
	Price         float64 `json:"price"`
	CreatedAt     string  `json:"created_at"`
	Details       []Item  `json:"details"`
}

type QuoteItem struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Quantity    string `json:"quantity"`
	Weight      string `json:"weight"`
	Length      string `json:"length"`
	Width       string `json:"width"`
	Height      string `json:"height"`
}

type QuoteRequest struct {
	PickupAddress   string      `json:"pick_up_address"`
	DeliveryAddress string      `json:"delivery_address"`
	ShippingOption  string      `json:"shipping_option"`
	Shipments       []QuoteItem `json:"shipments"`
	TransportName   string      `json:"transport_name,omitempty"`
	Price           string      `json:"price,omitempty"`
}

type CarrierQuote struct {
	TransportName string  `json:"transport_name"`
	Price         float64 `json:"price"`
}

type SupportRequest struct {
	UserID   int64  `json:"-"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// userRef is a user id the client may send as a number, a string or null.
type userRef int64

func (r *userRef) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*r = userRef(n)
	return nil
}

var _ json.Unmarshaler = (*userRef)(nil)
