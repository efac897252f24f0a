package models

import (
	"errors"
	"strconv"
	"strings"
)

// Carriers the quote calculation is reconciled against, in display order.
var Carriers = []string{"TNT", "TGE"}

// NotDeliverableMessage is what the API answers for addresses no carrier
// serves.
const NotDeliverableMessage = "Sorry We Don't deliver to this address"

var (
	ErrMissingAddress = errors.New("pickup address, delivery address and shipping option are required")
	ErrNoItems        = errors.New("at least one item is required")
)

// ItemError points at the first invalid field of a quote item.
type ItemError struct {
	Index int
	Field string
}

func (e *ItemError) Error() string {
	return "item " + strconv.Itoa(e.Index+1) + ": invalid " + e.Field
}

// QuoteItem holds one item of the quote form as entered.
type QuoteItem struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Quantity    string `json:"quantity"`
	Weight      string `json:"weight"`
	Length      string `json:"length"`
	Width       string `json:"width"`
	Height      string `json:"height"`
}

// QuoteForm is the multi-item shipment quote form.
type QuoteForm struct {
	PickupAddress       string
	DeliveryAddress     string
	ShippingOption      string
	SpecialInstructions string
	Items               []QuoteItem
}

// QuotePayload is the body of GetQuote and, with the carrier fields set,
// of RequestQuote.
type QuotePayload struct {
	PickupAddress   string      `json:"pick_up_address"`
	DeliveryAddress string      `json:"delivery_address"`
	ShippingOption  string      `json:"shipping_option"`
	Shipments       []QuoteItem `json:"shipments"`
	TransportName   string      `json:"transport_name,omitempty"`
	Price           string      `json:"price,omitempty"`
}

// CarrierQuote is the reconciled outcome for one carrier.
type CarrierQuote struct {
	TransportName string  `json:"transport_name"`
	Price         float64 `json:"price"`
	Available     bool    `json:"available"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// Aggregates are the derived totals shown under the quote form.
type Aggregates struct {
	TotalWeight   float64
	TotalQuantity int64
	TotalLength   float64
	TotalWidth    float64
	TotalHeight   float64
}

// parseLeadingFloat reads the numeric prefix of s the way a lenient form
// field does: "12kg" is 12, "abc" is not a number.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
scan:
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			break scan
		}
		end++
	}
	for end > 0 {
		if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return f, true
		}
		end--
	}
	return 0, false
}

func parseLeadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// validQuantity accepts positive whole numbers written without a decimal point.
func validQuantity(q string) bool {
	if strings.Contains(q, ".") {
		return false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64)
	return err == nil && n >= 1
}

// Validate returns nil when the form can be submitted for a quote.
func (f QuoteForm) Validate() error {
	if f.PickupAddress == "" || f.DeliveryAddress == "" || f.ShippingOption == "" {
		return ErrMissingAddress
	}
	if len(f.Items) == 0 {
		return ErrNoItems
	}
	for i, it := range f.Items {
		switch {
		case it.Description == "":
			return &ItemError{Index: i, Field: "description"}
		case it.Category == "":
			return &ItemError{Index: i, Field: "category"}
		case !validQuantity(it.Quantity):
			return &ItemError{Index: i, Field: "quantity"}
		case it.Weight == "":
			return &ItemError{Index: i, Field: "weight"}
		case it.Length == "":
			return &ItemError{Index: i, Field: "length"}
		case it.Width == "":
			return &ItemError{Index: i, Field: "width"}
		case it.Height == "":
			return &ItemError{Index: i, Field: "height"}
		}
	}
	return nil
}

// Aggregates computes the form totals. Terms that do not parse count as 0.
func (f QuoteForm) Aggregates() Aggregates {
	var a Aggregates
	for _, it := range f.Items {
		w, wok := parseLeadingFloat(it.Weight)
		q, qok := parseLeadingInt(it.Quantity)
		if wok && qok {
			a.TotalWeight += w * float64(q)
		}
		if qok {
			a.TotalQuantity += q
		}
		if v, ok := parseLeadingFloat(it.Length); ok {
			a.TotalLength += v
		}
		if v, ok := parseLeadingFloat(it.Width); ok {
			a.TotalWidth += v
		}
		if v, ok := parseLeadingFloat(it.Height); ok {
			a.TotalHeight += v
		}
	}
	return a
}

// Payload builds the GetQuote body.
func (f QuoteForm) Payload() QuotePayload {
	items := make([]QuoteItem, len(f.Items))
	copy(items, f.Items)
	return QuotePayload{
		PickupAddress:   f.PickupAddress,
		DeliveryAddress: f.DeliveryAddress,
		ShippingOption:  f.ShippingOption,
		Shipments:       items,
	}
}

// RequestPayload builds the RequestQuote body for the chosen carrier.
func (f QuoteForm) RequestPayload(carrier string, price float64) QuotePayload {
	p := f.Payload()
	p.TransportName = carrier
	p.Price = FormatNumber(price)
	return p
}

// ReconcileQuotes maps the server quotes onto Carriers: each carrier appears
// once, available with the server price when quoted, unavailable otherwise.
func ReconcileQuotes(server []CarrierQuote) []CarrierQuote {
	out := make([]CarrierQuote, 0, len(Carriers))
	for _, name := range Carriers {
		q := CarrierQuote{TransportName: name}
		for _, s := range server {
			if s.TransportName == name {
				q.Price = s.Price
				q.Available = true
				break
			}
		}
		out = append(out, q)
	}
	return out
}

// UndeliverableQuotes marks every carrier unavailable with msg, stripped of
// double quotes.
func UndeliverableQuotes(msg string) []CarrierQuote {
	msg = strings.ReplaceAll(msg, `"`, "")
	out := make([]CarrierQuote, 0, len(Carriers))
	for _, name := range Carriers {
		out = append(out, CarrierQuote{TransportName: name, ErrorMessage: msg})
	}
	return out
}
