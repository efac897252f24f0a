package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/freightdesk/internal/client/models"
	"github.com/dmitrijs2005/freightdesk/internal/client/services"
)

func (a *App) askItem(n int) (models.QuoteItem, error) {
	a.printf("Item %d\n", n)

	var item models.QuoteItem
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Description", &item.Description},
		{"Category", &item.Category},
		{"Quantity", &item.Quantity},
		{"Weight (kg)", &item.Weight},
		{"Length (cm)", &item.Length},
		{"Width (cm)", &item.Width},
		{"Height (cm)", &item.Height},
	}
	for _, f := range fields {
		v, err := a.ask(f.prompt)
		if err != nil {
			return models.QuoteItem{}, err
		}
		*f.dst = v
	}
	return item, nil
}

// Quote walks through the quote form, shows the carrier quotes and
// optionally requests one of them.
func (a *App) Quote(ctx context.Context) error {
	if !a.auth.IsAuthenticated() {
		return services.ErrNotAuthenticated
	}

	var answers [4]string
	prompts := []string{
		"Pick-up address",
		"Delivery address",
		"Shipping option (standard, express)",
		"Special instructions (optional)",
	}
	for i, p := range prompts {
		v, err := a.ask(p)
		if err != nil {
			return err
		}
		answers[i] = v
	}

	var q services.Quote
	q.SetAddresses(answers[0], answers[1], answers[2], answers[3])

	for {
		item, err := a.askItem(len(q.Form().Items) + 1)
		if err != nil {
			return err
		}
		q.AddItem(item)

		more, err := a.ask("Add another item? (y/N)")
		if err != nil {
			return err
		}
		if !isYes(more) {
			break
		}
	}

	agg := q.Aggregates()
	a.printf("Total weight: %s kg, total quantity: %d, dimensions: %s x %s x %s cm\n",
		models.FormatNumber(agg.TotalWeight), agg.TotalQuantity,
		models.FormatNumber(agg.TotalLength), models.FormatNumber(agg.TotalWidth), models.FormatNumber(agg.TotalHeight))

	quotes, err := a.shipments.Calculate(ctx, &q)
	if err != nil {
		return err
	}

	var available []string
	rows := make([][]string, 0, len(quotes))
	for _, cq := range quotes {
		price, status := "-", "available"
		if cq.Available {
			price = models.FormatNumber(cq.Price)
			available = append(available, cq.TransportName)
		} else {
			status = "unavailable"
			if cq.ErrorMessage != "" {
				status = cq.ErrorMessage
			}
		}
		rows = append(rows, []string{cq.TransportName, price, status})
	}
	a.println(renderTable([]string{"Carrier", "Price", "Status"}, rows))

	if len(available) == 0 {
		a.println("No carrier can take this shipment.")
		return nil
	}

	choice, err := a.ask(fmt.Sprintf("Request a quote from (%s), empty to skip", strings.Join(available, ", ")))
	if err != nil {
		return err
	}
	if choice == "" {
		a.println("Quote not requested.")
		return nil
	}

	carrier := strings.ToUpper(choice)
	if err := a.shipments.RequestQuote(ctx, &q, carrier); err != nil {
		return err
	}
	a.printf("Quote requested from %s.\n", carrier)
	return nil
}
