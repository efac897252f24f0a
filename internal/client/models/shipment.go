package models

import (
	"strconv"
	"strings"
)

// ShipmentItem is one package line of a booked shipment.
type ShipmentItem struct {
	ID     int64   `json:"details_id"`
	Weight float64 `json:"weight"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Shipment is a booked shipment as listed by the API.
type Shipment struct {
	ID            int64          `json:"shipment_id"`
	CarrierID     int64          `json:"carrier_id"`
	Price         float64        `json:"price"`
	Status        string         `json:"status,omitempty"`
	CarrierName   string         `json:"carrier_name,omitempty"`
	TransportName string         `json:"transport_name,omitempty"`
	CreatedAt     string         `json:"created_at"`
	Details       []ShipmentItem `json:"details"`
}

func (s Shipment) TotalWeight() float64 {
	var total float64
	for _, d := range s.Details {
		total += d.Weight
	}
	return total
}

func (s Shipment) TotalVolume() float64 {
	var total float64
	for _, d := range s.Details {
		total += d.Length * d.Width * d.Height
	}
	return total
}

// Matches reports whether query is a case-insensitive substring of the
// shipment id, the carrier id or the weight of any item. An empty query
// matches everything.
func (s Shipment) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strconv.FormatInt(s.ID, 10), q) ||
		strings.Contains(strconv.FormatInt(s.CarrierID, 10), q) {
		return true
	}
	for _, d := range s.Details {
		if strings.Contains(FormatNumber(d.Weight), q) {
			return true
		}
	}
	return false
}

// FormatNumber renders f in its shortest form, without a trailing ".0".
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FilterShipments keeps the shipments matching query, preserving order.
func FilterShipments(list []Shipment, query string) []Shipment {
	out := make([]Shipment, 0, len(list))
	for _, s := range list {
		if s.Matches(query) {
			out = append(out, s)
		}
	}
	return out
}

// Page returns the 1-based page of list and the total page count.
// Out-of-range pages are empty.
func Page[T any](list []T, page, perPage int) ([]T, int) {
	if perPage <= 0 {
		return nil, 0
	}
	pages := (len(list) + perPage - 1) / perPage
	if page < 1 || page > pages {
		return []T{}, pages
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(list))
	return list[start:end], pages
}
