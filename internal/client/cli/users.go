package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/client/nav"
	"github.com/dmitrijs2005/skudadmin/internal/common"
)

const rolePrompt = "Enter role (admin|security)"

// ListUsers opens the users page and prints the loaded list.
func (a *App) ListUsers(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if a.router.Current().Path != nav.PathUsers {
		a.router.Push(ctx, nav.Location{Path: nav.PathUsers})
	}
	if err := a.users.Load(ctx); err != nil {
		return a.report(err)
	}

	users := a.users.Users()
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Login, string(u.Role)})
	}
	a.printTable("No users.", []string{"Login", "Role"}, rows)
	return nil
}

// AddUser walks through the create form. A rejected draft is discarded.
func (a *App) AddUser(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	a.users.CancelCreate()
	if err := a.users.StartCreate(); err != nil {
		return a.report(err)
	}

	login, err := getSimpleText(a.reader, "Enter login", a.out)
	if err != nil {
		a.users.CancelCreate()
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		a.users.CancelCreate()
		return err
	}
	defer common.WipeByteArray(password)
	role, err := getSimpleText(a.reader, rolePrompt, a.out)
	if err != nil {
		a.users.CancelCreate()
		return err
	}

	_ = a.users.SetNewLogin(login)
	_ = a.users.SetNewPassword(string(password))
	_ = a.users.SetNewRole(models.ParseRole(strings.ToLower(role)))

	if err := a.users.SubmitCreate(ctx); err != nil {
		a.users.CancelCreate()
		return a.report(err)
	}
	a.printOK(fmt.Sprintf("User %s created.", strings.TrimSpace(login)))
	return nil
}

// EditUser changes the password and role of login. Empty answers keep the
// current values.
func (a *App) EditUser(ctx context.Context, login string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	a.users.CancelEdit()
	if err := a.users.StartEdit(ctx, login); err != nil {
		return a.report(err)
	}
	d := a.users.EditDraft()
	fmt.Fprintf(a.out, "Editing %s (%s). Leave blank to keep.\n", d.Login, d.Role)

	password, err := getPassword(a.out)
	if err != nil {
		a.users.CancelEdit()
		return err
	}
	defer common.WipeByteArray(password)
	role, err := getSimpleText(a.reader, rolePrompt, a.out)
	if err != nil {
		a.users.CancelEdit()
		return err
	}

	if strings.TrimSpace(string(password)) != "" {
		_ = a.users.SetEditPassword(string(password))
	}
	if role != "" {
		_ = a.users.SetEditRole(models.ParseRole(strings.ToLower(role)))
	}

	if err := a.users.SubmitSave(ctx); err != nil {
		a.users.CancelEdit()
		return a.report(err)
	}
	a.printOK(fmt.Sprintf("User %s saved.", d.Login))
	return nil
}

// RemoveUser deletes login and prints the refreshed list.
func (a *App) RemoveUser(ctx context.Context, login string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.users.Remove(ctx, login); err != nil {
		return a.report(err)
	}
	a.printOK(fmt.Sprintf("User %s removed.", login))
	return nil
}
