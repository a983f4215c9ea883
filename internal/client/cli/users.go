package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/client/client"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/schemas"
)

var errNotLoggedIn = client.ErrNotLoggedIn

// clearValue is the answer that clears an optional name during update.
const clearValue = "-"

func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", args[0])
	}
	return id, nil
}

func parseInt(args []string, i int, name string) (int, error) {
	if len(args) <= i {
		return 0, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return clearValue
	}
	return *s
}

func printUser(w io.Writer, u *schemas.UserResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", u.ID)
	fmt.Fprintf(tw, "Username:\t%s\n", u.Username)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "First name:\t%s\n", orDash(u.FirstName))
	fmt.Fprintf(tw, "Last name:\t%s\n", orDash(u.LastName))
	fmt.Fprintf(tw, "Active:\t%t\n", u.IsActive)
	fmt.Fprintf(tw, "Created:\t%s\n", u.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "Updated:\t%s\n", u.UpdatedAt.Format(time.RFC3339))
	tw.Flush()
}

// List prints one page of active users: list [page] [size].
func (a *App) List(ctx context.Context, args []string) error {
	page, err := parseInt(args, 0, "page")
	if err != nil {
		return err
	}
	size, err := parseInt(args, 1, "size")
	if err != nil {
		return err
	}

	res, err := a.api.ListUsers(ctx, page, size)
	if err != nil {
		return err
	}

	if len(res.Users) == 0 {
		fmt.Fprintln(a.out, "No users")
	} else {
		tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tFIRST NAME\tLAST NAME")
		for _, u := range res.Users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, orDash(u.FirstName), orDash(u.LastName))
		}
		tw.Flush()
	}

	fmt.Fprintf(a.out, "Page %d of %d, %d users total\n", res.Page, res.Pages, res.Total)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}

	user, err := a.api.GetUser(ctx, id)
	if err != nil {
		return err
	}
	printUser(a.out, user)
	return nil
}

// Update prompts for each field. An empty answer keeps the current value and
// "-" clears a name.
func (a *App) Update(ctx context.Context, args []string) error {
	id, err := parseID(args, "update <id>")
	if err != nil {
		return err
	}

	current, err := a.api.GetUser(ctx, id)
	if err != nil {
		return err
	}

	var req schemas.UpdateUserRequest
	fields := map[string]any{}

	ask := func(label, value string) (string, error) {
		return getSimpleText(a.reader, fmt.Sprintf("%s [%s] (empty to keep)", label, value), a.out)
	}

	username, err := ask("Username", current.Username)
	if err != nil {
		return err
	}
	if username != "" {
		req.Username = &username
		fields["username"] = username
	}

	email, err := ask("Email", current.Email)
	if err != nil {
		return err
	}
	if email != "" {
		req.Email = &email
		fields["email"] = email
	}

	names := []struct {
		label string
		key   string
		value *string
		dst   *models.Optional[*string]
	}{
		{"First name, '-' to clear", "first_name", current.FirstName, &req.FirstName},
		{"Last name, '-' to clear", "last_name", current.LastName, &req.LastName},
	}
	for _, n := range names {
		answer, err := ask(n.label, orDash(n.value))
		if err != nil {
			return err
		}
		switch answer {
		case "":
		case clearValue:
			*n.dst = models.Some[*string](nil)
			fields[n.key] = nil
		default:
			v := answer
			*n.dst = models.Some(&v)
			fields[n.key] = v
		}
	}

	active, err := ask("Active (y/n)", strconv.FormatBool(current.IsActive))
	if err != nil {
		return err
	}
	switch strings.ToLower(active) {
	case "":
	case "y", "yes", "true":
		v := true
		req.IsActive = &v
		fields["is_active"] = v
	case "n", "no", "false":
		v := false
		req.IsActive = &v
		fields["is_active"] = v
	default:
		return errors.New("answer y or n for Active")
	}

	if len(fields) == 0 {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	if err := req.Validate(); err != nil {
		return err
	}

	user, err := a.api.UpdateUser(ctx, id, fields)
	if err != nil {
		return err
	}
	printUser(a.out, user)
	return nil
}

// Delete deactivates a user after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete <id>")
	if err != nil {
		return err
	}

	ok, err := getConfirmation(a.reader, fmt.Sprintf("Delete user %d?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.api.DeleteUser(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User %d deleted\n", id)
	return nil
}
