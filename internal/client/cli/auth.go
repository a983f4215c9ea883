package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userkeeper/internal/server/schemas"
)

// getSimpleText and getPassword point to the interactive input helpers and
// are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getConfirmation = GetConfirmation

var errPasswordMismatch = errors.New("passwords do not match")

// optionalText turns an empty answer into nil.
func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Register prompts for the new account fields, validates them locally and
// creates the account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	var req schemas.CreateUserRequest
	var err error

	if req.Username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if req.Password, err = getPassword(a.out, "Enter password"); err != nil {
		return err
	}
	confirm, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	if confirm != req.Password {
		return errPasswordMismatch
	}

	first, err := getSimpleText(a.reader, "First name (optional)", a.out)
	if err != nil {
		return err
	}
	last, err := getSimpleText(a.reader, "Last name (optional)", a.out)
	if err != nil {
		return err
	}
	req.FirstName, req.LastName = optionalText(first), optionalText(last)

	if err := req.Validate(); err != nil {
		return err
	}

	user, err := a.api.Register(ctx, req)
	if err != nil {
		return err
	}

	a.logger.Debug(ctx, "Registered", "user_id", user.ID)
	fmt.Fprintf(a.out, "Registered user %s with id %d\n", user.Username, user.ID)
	return nil
}

// Login accepts either the username or the email.
func (a *App) Login(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}

	if err := (schemas.LoginRequest{Username: login, Password: password}).Validate(); err != nil {
		return err
	}

	if err := a.api.Login(ctx, login, password); err != nil {
		a.logger.Debug(ctx, "Login failed", "error", err)
		return err
	}

	a.userName = login
	if me, err := a.api.Me(ctx); err == nil {
		a.userName = me.Username
	}

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	printUser(a.out, user)
	return nil
}

// ChangePassword asks for the current password and the new one twice.
func (a *App) ChangePassword(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	var req schemas.ChangePasswordRequest
	var err error

	if req.CurrentPassword, err = getPassword(a.out, "Current password"); err != nil {
		return err
	}
	if req.NewPassword, err = getPassword(a.out, "New password"); err != nil {
		return err
	}
	confirm, err := getPassword(a.out, "Repeat new password")
	if err != nil {
		return err
	}
	if confirm != req.NewPassword {
		return errPasswordMismatch
	}

	if err := req.Validate(); err != nil {
		return err
	}

	if err := a.api.ChangePassword(ctx, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Password changed")
	return nil
}
