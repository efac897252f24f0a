package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/freightdesk/internal/client/api"
	"github.com/dmitrijs2005/freightdesk/internal/client/models"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
)

// ShipmentsPerPage is the page size of shipment listings.
const ShipmentsPerPage = 10

// ShipmentService lists the current user's shipments and runs quotes.
type ShipmentService struct {
	client api.Client
	auth   *AuthSession
	logger logging.Logger
}

func NewShipmentService(client api.Client, auth *AuthSession, logger logging.Logger) *ShipmentService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ShipmentService{client: client, auth: auth, logger: logger}
}

// ShipmentPage is one page of a filtered listing.
type ShipmentPage struct {
	Shipments []models.Shipment
	Page      int
	Pages     int
	Total     int
}

// List returns page (1-based) of the user's shipments matching query.
func (s *ShipmentService) List(ctx context.Context, query string, page int) (*ShipmentPage, error) {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}
	user := s.auth.CurrentUser()
	if user == nil || user.ID == "" {
		return nil, ErrNotAuthenticated
	}

	all, err := s.client.GetShipments(ctx, token, user.ID)
	if err != nil {
		s.auth.HandleError(ctx, err)
		return nil, fmt.Errorf("get shipments: %w", err)
	}

	filtered := models.FilterShipments(all, query)
	items, pages := models.Page(filtered, page, ShipmentsPerPage)
	return &ShipmentPage{Shipments: items, Page: page, Pages: pages, Total: len(filtered)}, nil
}

func (s *ShipmentService) Get(ctx context.Context, id string) (*models.Shipment, error) {
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	sh, err := s.client.GetShipment(ctx, token, id)
	if err != nil {
		s.auth.HandleError(ctx, err)
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return sh, nil
}

// Quote is the state of one quote form: what was entered and, once
// calculated, the carrier quotes for exactly that input. Any edit drops the
// calculation.
type Quote struct {
	form   models.QuoteForm
	quotes []models.CarrierQuote
}

func (q *Quote) Form() models.QuoteForm {
	f := q.form
	f.Items = append([]models.QuoteItem(nil), q.form.Items...)
	return f
}

func (q *Quote) invalidate() {
	q.quotes = nil
}

// SetAddresses sets the route fields of the form.
func (q *Quote) SetAddresses(pickup, delivery, option, instructions string) {
	q.form.PickupAddress = pickup
	q.form.DeliveryAddress = delivery
	q.form.ShippingOption = option
	q.form.SpecialInstructions = instructions
	q.invalidate()
}

func (q *Quote) AddItem(item models.QuoteItem) {
	q.form.Items = append(q.form.Items, item)
	q.invalidate()
}

func (q *Quote) UpdateItem(i int, item models.QuoteItem) error {
	if i < 0 || i >= len(q.form.Items) {
		return fmt.Errorf("%w: no item %d", ErrInvalidQuote, i+1)
	}
	q.form.Items[i] = item
	q.invalidate()
	return nil
}

func (q *Quote) RemoveItem(i int) error {
	if i < 0 || i >= len(q.form.Items) {
		return fmt.Errorf("%w: no item %d", ErrInvalidQuote, i+1)
	}
	q.form.Items = append(q.form.Items[:i], q.form.Items[i+1:]...)
	q.invalidate()
	return nil
}

func (q *Quote) Aggregates() models.Aggregates {
	return q.form.Aggregates()
}

// Calculated reports whether the current input has quotes.
func (q *Quote) Calculated() bool {
	return q.quotes != nil
}

func (q *Quote) Quotes() []models.CarrierQuote {
	return append([]models.CarrierQuote(nil), q.quotes...)
}

// Calculate validates the form and fetches carrier quotes for it.
func (s *ShipmentService) Calculate(ctx context.Context, q *Quote) ([]models.CarrierQuote, error) {
	if err := q.form.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuote, err)
	}
	token, err := s.auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	q.invalidate()
	quotes, err := s.client.GetQuote(ctx, token, q.form.Payload())
	if err != nil {
		s.auth.HandleError(ctx, err)
		s.logger.Warn(ctx, "quote calculation failed", "error", err)
		return nil, fmt.Errorf("get quote: %w", err)
	}

	q.quotes = quotes
	return q.Quotes(), nil
}

// RequestQuote books the calculated quote of carrier.
func (s *ShipmentService) RequestQuote(ctx context.Context, q *Quote, carrier string) error {
	if !q.Calculated() {
		return fmt.Errorf("%w: calculate the quote first", ErrInvalidQuote)
	}

	var chosen *models.CarrierQuote
	for i := range q.quotes {
		if q.quotes[i].TransportName == carrier {
			chosen = &q.quotes[i]
			break
		}
	}
	if chosen == nil || !chosen.Available {
		return fmt.Errorf("%w: carrier %q is not available", ErrInvalidQuote, carrier)
	}

	token, err := s.auth.Token(ctx)
	if err != nil {
		return err
	}

	if err := s.client.RequestQuote(ctx, token, q.form.RequestPayload(chosen.TransportName, chosen.Price)); err != nil {
		s.auth.HandleError(ctx, err)
		return fmt.Errorf("request quote: %w", err)
	}

	s.logger.Info(ctx, "quote requested", "carrier", carrier, "price", chosen.Price)
	return nil
}
