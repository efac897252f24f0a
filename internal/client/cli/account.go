package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/freightdesk/internal/common"
)

// ResetPassword sends a reset code and then sets the new password with it.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := a.ask("Enter your account email")
	if err != nil {
		return err
	}
	if err := a.account.SendResetCode(ctx, email); err != nil {
		return err
	}
	a.println("A reset code has been sent to your email.")

	code, err := a.ask("Enter the reset code")
	if err != nil {
		return err
	}

	password, err := a.askPassword("New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := a.askPassword("Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.account.ResetPassword(ctx, email, code, string(password), string(confirm)); err != nil {
		return err
	}
	a.println("Password changed. You can now log in.")
	return nil
}

func (a *App) argOrAsk(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return a.ask(prompt)
}

func (a *App) CheckEmail(ctx context.Context, args []string) error {
	email, err := a.argOrAsk(args, "Email to check")
	if err != nil {
		return err
	}
	exists, err := a.account.CheckEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		a.printf("%s is already in use.\n", email)
	} else {
		a.printf("%s is available.\n", email)
	}
	return nil
}

func (a *App) CheckPhone(ctx context.Context, args []string) error {
	phone, err := a.argOrAsk(args, "Phone number to check")
	if err != nil {
		return err
	}
	exists, err := a.account.CheckPhoneNumber(ctx, phone)
	if err != nil {
		return err
	}
	if exists {
		a.printf("%s is already in use.\n", phone)
	} else {
		a.printf("%s is available.\n", phone)
	}
	return nil
}

func (a *App) Support(ctx context.Context) error {
	category, err := a.ask("Category (billing, shipment, account, other)")
	if err != nil {
		return err
	}
	message, err := a.askMultiline("Describe your issue")
	if err != nil {
		return err
	}
	if err := a.account.Support(ctx, category, message); err != nil {
		return err
	}
	a.println("Thanks, your request has been sent.")
	return nil
}
