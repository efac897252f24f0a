package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/freightdesk/internal/client/models"
)

// parseListArgs reads "[query] [page]". A lone number is a page only when
// it is the second argument, so shipment ids can still be searched for.
func parseListArgs(args []string) (string, int, error) {
	query, page := "", 1
	if len(args) > 0 && args[0] != "*" {
		query = args[0]
	}
	if len(args) > 1 {
		p, err := strconv.Atoi(args[1])
		if err != nil || p < 1 {
			return "", 0, fmt.Errorf("invalid page %q", args[1])
		}
		page = p
	}
	if len(args) > 2 {
		return "", 0, fmt.Errorf("too many arguments, expected [query|*] [page]")
	}
	return query, page, nil
}

func (a *App) Shipments(ctx context.Context, args []string) error {
	query, page, err := parseListArgs(args)
	if err != nil {
		return err
	}

	p, err := a.shipments.List(ctx, query, page)
	if err != nil {
		return err
	}
	if p.Total == 0 {
		if query != "" {
			a.printf("No shipments match %q.\n", query)
		} else {
			a.println("No shipments yet.")
		}
		return nil
	}
	if len(p.Shipments) == 0 {
		a.printf("Page %d is out of range (1-%d).\n", page, p.Pages)
		return nil
	}

	rows := make([][]string, 0, len(p.Shipments))
	for _, s := range p.Shipments {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			strconv.FormatInt(s.CarrierID, 10),
			s.CreatedAt,
			models.FormatNumber(s.TotalWeight()),
			models.FormatNumber(s.Price),
		})
	}
	a.println(renderTable([]string{"Shipment", "Carrier", "Created", "Weight", "Price"}, rows))
	a.printf("Page %d of %d, %d shipments\n", p.Page, p.Pages, p.Total)
	return nil
}

func (a *App) Shipment(ctx context.Context, args []string) error {
	s, err := a.shipments.Get(ctx, args[0])
	if err != nil {
		return err
	}

	a.printf("Shipment %d\n", s.ID)
	fields := []struct{ name, value string }{
		{"Carrier", strconv.FormatInt(s.CarrierID, 10)},
		{"Carrier name", s.CarrierName},
		{"Transport", s.TransportName},
		{"Status", s.Status},
		{"Created", s.CreatedAt},
		{"Price", models.FormatNumber(s.Price)},
		{"Total weight", models.FormatNumber(s.TotalWeight())},
		{"Total volume", models.FormatNumber(s.TotalVolume())},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) != "" {
			a.printf("  %-13s %s\n", f.name+":", f.value)
		}
	}

	if len(s.Details) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(s.Details))
	for _, d := range s.Details {
		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			models.FormatNumber(d.Weight),
			models.FormatNumber(d.Length),
			models.FormatNumber(d.Width),
			models.FormatNumber(d.Height),
		})
	}
	a.println(renderTable([]string{"Item", "Weight", "Length", "Width", "Height"}, rows))
	return nil
}
