package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/client/nav"
	"github.com/dmitrijs2005/skudadmin/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and opens a session. On success the console
// returns to the page recorded in return_path and renders it.
//
// The password byte slice is wiped before returning. A rejected login prints
// the classified reason kept by the session store.
func (a *App) Login(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter login", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	returnPath := ""
	if cur := a.router.Current(); cur.Path == nav.PathLogin {
		returnPath = cur.Query.Get(models.QueryReturnPath)
	}

	if err := a.auth.Login(ctx, login, string(password), returnPath); err != nil {
		if ae := a.auth.AuthError(); ae != nil {
			a.printErr("Login failed: " + ae.Message)
			return err
		}
		return a.report(err)
	}

	u := a.auth.User()
	a.printOK(fmt.Sprintf("Logged in as %s (%s)", u.Login, u.Role))
	return a.show(ctx)
}

// Logout forgets the session and moves to the login page.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.auth.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.Login, u.Role)
	return nil
}
