package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/freightdesk/internal/client/models"
	"github.com/dmitrijs2005/freightdesk/internal/client/services"
)

// profileFields lists the editable fields in prompt order.
func profileFields(p *models.Profile) []struct {
	label string
	value *string
} {
	return []struct {
		label string
		value *string
	}{
		{"First name", &p.FirstName},
		{"Last name", &p.LastName},
		{"Email", &p.Email},
		{"Phone number", &p.Phone},
		{"Company", &p.Company},
		{"Position", &p.Position},
		{"Street", &p.Street},
		{"City", &p.City},
		{"State", &p.State},
		{"Zip code", &p.ZipCode},
		{"Country", &p.Country},
	}
}

// Profile edits the current user's profile. An empty answer keeps the
// current value.
func (a *App) Profile(ctx context.Context) error {
	u := a.auth.CurrentUser()
	if u == nil {
		return services.ErrNotAuthenticated
	}

	p := u.Profile()
	for _, f := range profileFields(&p) {
		prompt := f.label
		if *f.value != "" {
			prompt = fmt.Sprintf("%s [%s]", f.label, *f.value)
		}
		answer, err := a.ask(prompt)
		if err != nil {
			return err
		}
		if answer != "" {
			*f.value = answer
		}
	}

	if _, err := a.account.UpdateProfile(ctx, p); err != nil {
		return err
	}
	a.println(renderNotice("Profile updated successfully!"))
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (a *App) Settings(ctx context.Context) error {
	s := a.notifications.Load(ctx)
	a.printf("New shipment notifications: %s\n", onOff(s.PushNotifications.NewShipment))
	return nil
}

// Notify switches the new-shipment notification: notify <on|off>.
func (a *App) Notify(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: notify <on|off>")
	}
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
	default:
		return fmt.Errorf("usage: notify <on|off>")
	}

	s, err := a.notifications.SetNewShipment(ctx, on)
	if err != nil {
		return err
	}
	a.printf("New shipment notifications: %s\n", onOff(s.PushNotifications.NewShipment))
	return nil
}
