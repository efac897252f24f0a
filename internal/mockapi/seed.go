package mockapi

import (
	"fmt"
	"time"
)

var seedEpoch = time.Date(2025, time.January, 6, 8, 30, 0, 0, time.UTC)

// Seed adds the demo customer, the admin and a dozen shipments of the
// customer. Both accounts use password.
func Seed(s *Store, demoEmail, adminEmail, password string) error {
	customer, err := s.AddUser(demoEmail, "Demo Customer", RoleCustomer, "+61 400 000 001", password)
	if err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}
	if _, err := s.AddUser(adminEmail, "Dispatch Admin", RoleAdmin, "+61 400 000 002", password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	statuses := []string{"delivered", "in_transit", "pending"}
	for i := 0; i < 12; i++ {
		c := carrierRates[i%len(carrierRates)]
		items := []Item{
			{Weight: float64(5 + i*3), Length: 40, Width: 30, Height: float64(20 + i)},
		}
		if i%3 == 0 {
			items = append(items, Item{Weight: 2.5, Length: 25, Width: 20, Height: 10})
		}

		var weight, cubic float64
		for _, it := range items {
			weight += it.Weight
			cubic += it.Length * it.Width * it.Height / 1e6
		}

		s.AddShipment(Shipment{
			UserID:        customer.ID,
			CarrierID:     c.id,
			CarrierName:   c.name,
			TransportName: c.name,
			Status:        statuses[i%len(statuses)],
			Price:         c.price(weight, cubic, ShippingStandard),
			CreatedAt:     seedEpoch.AddDate(0, 0, 7*i).Format(time.RFC3339),
			Details:       items,
		})
	}
	return nil
}
