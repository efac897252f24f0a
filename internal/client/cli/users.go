package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/freightdesk/internal/client/models"
)

// userFilter reads the users query. role:<role> and status:<status> filter
// on those fields, anything else is a text search.
func userFilter(query string) models.UserFilter {
	switch {
	case strings.HasPrefix(query, "role:"):
		return models.UserFilter{Role: strings.TrimPrefix(query, "role:")}
	case strings.HasPrefix(query, "status:"):
		return models.UserFilter{Status: strings.TrimPrefix(query, "status:")}
	}
	return models.UserFilter{Query: query}
}

func (a *App) Users(ctx context.Context, args []string) error {
	query, page, err := parseListArgs(args)
	if err != nil {
		return err
	}

	p, err := a.users.List(ctx, userFilter(query), page)
	if err != nil {
		return err
	}
	if p.Total == 0 {
		if query != "" {
			a.printf("No users match %q.\n", query)
		} else {
			a.println("No users.")
		}
		return nil
	}
	if len(p.Users) == 0 {
		a.printf("Page %d is out of range (1-%d).\n", page, p.Pages)
		return nil
	}

	rows := make([][]string, 0, len(p.Users))
	for _, u := range p.Users {
		rows = append(rows, []string{
			string(u.ID),
			u.DisplayName(),
			u.Email,
			u.Role,
			u.Field("user_status"),
			u.Field("company"),
		})
	}
	a.println(renderTable([]string{"ID", "Name", "Email", "Role", "Status", "Company"}, rows))
	a.printf("Page %d of %d, %d users\n", p.Page, p.Pages, p.Total)
	return nil
}

// DeleteUser asks for confirmation before deleting.
func (a *App) DeleteUser(ctx context.Context, args []string) error {
	id := models.UserID(args[0])
	answer, err := a.ask("Delete user " + args[0] + "? This cannot be undone. (y/N)")
	if err != nil {
		return err
	}
	if !isYes(answer) {
		a.println("Cancelled.")
		return nil
	}

	if err := a.users.Delete(ctx, id); err != nil {
		return err
	}
	a.printf("User %s deleted.\n", id)
	return nil
}
