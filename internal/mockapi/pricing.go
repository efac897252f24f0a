package mockapi

import (
	"math"
	"strconv"
	"strings"
)

// NotDeliverableMessage is returned by GetQuote when either address is one
// no carrier serves.
const NotDeliverableMessage = "Sorry We Don't deliver to this address"

const (
	ShippingStandard = "standard"
	ShippingExpress  = "express"
)

// tgeMaxWeight is the heaviest total, in kg, TGE will carry.
const tgeMaxWeight = 1000

type carrierRate struct {
	id       int64
	name     string
	base     float64
	perKg    float64
	perCubic float64
}

var carrierRates = []carrierRate{
	{id: 1, name: "TNT", base: 25, perKg: 1.8, perCubic: 40},
	{id: 2, name: "TGE", base: 20, perKg: 2.1, perCubic: 35},
}

func carrierByName(name string) (carrierRate, bool) {
	for _, c := range carrierRates {
		if strings.EqualFold(c.name, name) {
			return c, true
		}
	}
	return carrierRate{}, false
}

// deliverable reports whether address is served. Anything mentioning
// "remote" is not.
func deliverable(address string) bool {
	return !strings.Contains(strings.ToLower(address), "remote")
}

// parsedItem is a QuoteItem with its numbers converted. Dimensions are in
// centimetres, weight in kilograms per unit.
type parsedItem struct {
	quantity int
	weight   float64
	length   float64
	width    float64
	height   float64
}

// parseQuote validates r and returns its items, or the field errors keyed as
// "shipments.<index>.<field>".
func parseQuote(r QuoteRequest) ([]parsedItem, map[string][]string) {
	errs := map[string][]string{}
	if strings.TrimSpace(r.PickupAddress) == "" {
		errs["pick_up_address"] = []string{"The pick up address field is required."}
	}
	if strings.TrimSpace(r.DeliveryAddress) == "" {
		errs["delivery_address"] = []string{"The delivery address field is required."}
	}
	switch strings.ToLower(r.ShippingOption) {
	case ShippingStandard, ShippingExpress:
	default:
		errs["shipping_option"] = []string{"The selected shipping option is invalid."}
	}
	if len(r.Shipments) == 0 {
		errs["shipments"] = []string{"At least one item is required."}
	}

	items := make([]parsedItem, 0, len(r.Shipments))
	for i, it := range r.Shipments {
		key := "shipments." + strconv.Itoa(i) + "."
		var p parsedItem

		q, err := strconv.Atoi(strings.TrimSpace(it.Quantity))
		if err != nil || q <= 0 {
			errs[key+"quantity"] = []string{"The quantity must be a positive whole number."}
		}
		p.quantity = q

		for _, f := range []struct {
			name string
			raw  string
			dst  *float64
		}{
			{"weight", it.Weight, &p.weight},
			{"length", it.Length, &p.length},
			{"width", it.Width, &p.width},
			{"height", it.Height, &p.height},
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(f.raw), 64)
			if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
				errs[key+f.name] = []string{"The " + f.name + " must be a positive number."}
				continue
			}
			*f.dst = v
		}
		items = append(items, p)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return items, nil
}

func totals(items []parsedItem) (weight, cubic float64) {
	for _, it := range items {
		q := float64(it.quantity)
		weight += it.weight * q
		cubic += it.length * it.width * it.height / 1e6 * q
	}
	return weight, cubic
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (c carrierRate) price(weight, cubic float64, option string) float64 {
	p := c.base + c.perKg*weight + c.perCubic*cubic
	if strings.EqualFold(option, ShippingExpress) {
		p *= 1.5
	}
	return round2(p)
}

// quote prices items with every carrier that can take them. TGE drops out
// above tgeMaxWeight.
func quote(items []parsedItem, option string) []CarrierQuote {
	weight, cubic := totals(items)
	out := make([]CarrierQuote, 0, len(carrierRates))
	for _, c := range carrierRates {
		if c.name == "TGE" && weight > tgeMaxWeight {
			continue
		}
		out = append(out, CarrierQuote{TransportName: c.name, Price: c.price(weight, cubic, option)})
	}
	return out
}
