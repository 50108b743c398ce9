package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/skudadmin/internal/client/client"
	"github.com/dmitrijs2005/skudadmin/internal/client/config"
	"github.com/dmitrijs2005/skudadmin/internal/client/nav"
	"github.com/dmitrijs2005/skudadmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skudadmin/internal/client/services"
	"github.com/dmitrijs2005/skudadmin/internal/common"
	"github.com/dmitrijs2005/skudadmin/internal/filex"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
)

// App holds the wired stores and the terminal it talks to.
type App struct {
	config  *config.Config
	db      *sql.DB
	router  *nav.Router
	auth    services.AuthService
	users   services.UserService
	persons services.PersonService
	events  services.EventService
	log     logging.Logger
	loc     *time.Location
	reader  *bufio.Reader
	out     io.Writer
}

// newApp opens the local database, restores the persisted session and
// location and wires the stores to the REST client.
func newApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	path, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("prepare database directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	store := metadata.NewSQLiteStore(db)
	router := nav.NewRouter(store, log)
	if err := router.Restore(ctx); err != nil {
		log.Warn(ctx, "restore location", "error", err)
	}

	api := client.NewHTTPClient(client.Config{BaseURL: c.APIBaseURL, Timeout: c.RequestTimeout}, log)
	auth := services.NewAuthService(api, store, router, log)
	api.SetTokenSource(auth)
	if err := auth.Hydrate(ctx); err != nil {
		log.Warn(ctx, "restore session", "error", err)
	}

	events := services.NewEventService(api, auth, router, log, services.EventsConfig{
		PageSize: c.EventsPageSize,
		Debounce: c.ReloadDebounce,
		Location: loc,
	})
	events.RestoreFromLocation()

	return &App{
		config:  c,
		db:      db,
		router:  router,
		auth:    auth,
		users:   services.NewUserService(api, auth, log),
		persons: services.NewPersonService(api, auth, log, c.UploadConcurrency),
		events:  events,
		log:     log,
		loc:     loc,
		reader:  bufio.NewReader(in),
		out:     out,
	}, nil
}

// Run shows the restored page and blocks in the REPL until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("SKUD admin console (type 'help' for commands)")
	if a.isLoggedIn() {
		_ = a.show(ctx)
	} else {
		a.toLogin(ctx)
		printlnFn("Not logged in. Type 'login' to sign in.")
	}

	runREPL(ctx, a, a.status, a.reader)
}

// Close stops pending reloads and releases the database.
func (a *App) Close() {
	a.events.Close()
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "close database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.auth.User() != nil
}

// toLogin sends a session-less console to the login page, keeping the
// current location as the return path.
func (a *App) toLogin(ctx context.Context) {
	if a.router.Current().Path != nav.PathLogin {
		_ = a.auth.Logout(ctx)
	}
}

func (a *App) status() string {
	s := a.router.Current().String()
	if u := a.auth.User(); u != nil {
		s = u.Login + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) requireLogin() error {
	if a.isLoggedIn() {
		return nil
	}
	a.printErr("Not logged in. Type 'login' first.")
	return services.ErrNotLoggedIn
}

// report prints err in a form suited to its kind and returns it unchanged.
func (a *App) report(err error) error {
	var verr *services.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrAuthExpired):
		a.printErr("Session expired. Type 'login' to sign in again.")
	case errors.Is(err, common.ErrorNotFound):
		a.printErr("Not found.")
	case errors.As(err, &verr):
		a.printErr(fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message))
	default:
		a.printErr("Error: " + err.Error())
	}
	return err
}

// show renders the page the router currently points at.
func (a *App) show(ctx context.Context) error {
	switch a.router.Current().Path {
	case nav.PathUsers:
		return a.ListUsers(ctx)
	case nav.PathPersons:
		return a.ListPersons(ctx)
	case nav.PathEvents:
		a.events.RestoreFromLocation()
		return a.ListEvents(ctx)
	default:
		return a.Where(ctx)
	}
}

// Where prints the current location.
func (a *App) Where(ctx context.Context) error {
	fmt.Fprintln(a.out, a.router.Current().String())
	return nil
}

// Back returns to the previous location and renders it.
func (a *App) Back(ctx context.Context) error {
	if !a.router.Back(ctx) {
		fmt.Fprintln(a.out, "Nowhere to go back to.")
		return nil
	}
	if !a.isLoggedIn() {
		return a.Where(ctx)
	}
	return a.show(ctx)
}
