// Package services holds the console stores: the session, the users and
// persons entity stores and the event log. Each store owns its state behind
// a mutex and never holds it across a request.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/skudadmin/internal/client/client"
	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/client/nav"
	"github.com/dmitrijs2005/skudadmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skudadmin/internal/common"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// AuthErrorKind classifies a failed login.
type AuthErrorKind int

const (
	AuthUnknown AuthErrorKind = iota
	AuthInvalidCredentials
	AuthUnexpectedStatus
	AuthRequestFailed
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthInvalidCredentials:
		return "invalid credentials"
	case AuthUnexpectedStatus:
		return "unexpected status"
	case AuthRequestFailed:
		return "request failed"
	default:
		return "unknown"
	}
}

// AuthError describes why the last login attempt failed.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// AuthService is the session store.
//
// Contract:
//   - Hydrate: restore token and user persisted by a previous run.
//   - Login: authenticate, persist the session and navigate to returnPath.
//   - Logout: forget the session and navigate to the login page.
//   - OnLogout: register fn to run whenever Logout clears the session.
//   - HandleAuthError: log out if err carries HTTP 401.
//   - Token: the token attached to API requests.
type AuthService interface {
	Hydrate(ctx context.Context) error
	Login(ctx context.Context, login, password, returnPath string) error
	Logout(ctx context.Context) error
	OnLogout(fn func())
	HandleAuthError(ctx context.Context, err error) bool
	Token() string
	User() *models.User
	AuthError() *AuthError
}

type authService struct {
	client client.Client
	store  metadata.Store
	router *nav.Router
	log    logging.Logger
	now    func() time.Time

	mu       sync.RWMutex
	token    string
	user     *models.User
	authErr  *AuthError
	onLogout []func()
}

var _ client.TokenSource = (*authService)(nil)

// NewAuthService constructs the session store.
func NewAuthService(c client.Client, store metadata.Store, router *nav.Router, log logging.Logger) AuthService {
	return &authService{
		client: c,
		store:  store,
		router: router,
		log:    log,
		now:    time.Now,
	}
}

// Hydrate seeds the session from local storage. A missing token, an expired
// token or an undecodable user all leave the session without a user.
func (a *authService) Hydrate(ctx context.Context) error {
	tok, err := a.store.Get(ctx, common.AuthCookieName)
	if err != nil {
		return err
	}
	if len(tok) == 0 {
		return nil
	}

	if a.expired(string(tok)) {
		a.log.Info(ctx, "stored session expired")
		return a.clearStored(ctx)
	}

	raw, err := a.store.Get(ctx, common.UserStorageKey)
	if err != nil {
		return err
	}

	var user *models.User
	if len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			a.log.Warn(ctx, "ignoring stored user", "error", err)
		} else {
			user = &u
		}
	}

	a.mu.Lock()
	a.token = string(tok)
	a.user = user
	a.mu.Unlock()
	return nil
}

// expired reads the exp claim without verifying the signature. Tokens that
// are not JWTs never expire client-side.
func (a *authService) expired(tok string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !a.now().Before(claims.ExpiresAt.Time)
}

func (a *authService) Login(ctx context.Context, login, password, returnPath string) error {
	user, tok, err := a.client.Login(ctx, login, password)
	if err != nil {
		ae := classifyLogin(err)
		a.mu.Lock()
		a.authErr = ae
		a.mu.Unlock()
		a.log.Warn(ctx, "login failed", "login", login, "kind", ae.Kind.String())
		return ae
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	err = a.store.InTx(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Set(ctx, common.AuthCookieName, []byte(tok)); err != nil {
			return err
		}
		return r.Set(ctx, common.UserStorageKey, raw)
	})
	if err != nil {
		a.log.Warn(ctx, "persist session", "error", err)
	}

	a.mu.Lock()
	a.token = tok
	a.user = user
	a.authErr = nil
	a.mu.Unlock()

	a.log.Info(ctx, "logged in", "login", user.Login, "role", string(user.Role))

	dest := nav.MustParseLocation(nav.PathHome)
	if returnPath != "" {
		if loc, err := nav.ParseLocation(returnPath); err == nil {
			dest = loc
		}
	}
	a.router.Push(ctx, dest)
	return nil
}

func classifyLogin(err error) *AuthError {
	switch {
	case client.IsUnauthorized(err):
		return &AuthError{Kind: AuthInvalidCredentials, Message: "wrong login or password", Err: err}
	case client.StatusCode(err) != 0:
		return &AuthError{Kind: AuthUnexpectedStatus, Message: err.Error(), Err: err}
	case errors.Is(err, client.ErrUnavailable):
		return &AuthError{Kind: AuthRequestFailed, Message: err.Error(), Err: err}
	default:
		return &AuthError{Kind: AuthUnknown, Message: err.Error(), Err: err}
	}
}

// Logout forgets the session and sends the console to the login page,
// remembering where it was.
func (a *authService) Logout(ctx context.Context) error {
	err := a.clearStored(ctx)

	a.mu.Lock()
	a.token = ""
	a.user = nil
	hooks := a.onLogout
	a.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	cur := a.router.Current()
	q := url.Values{}
	if cur.Path == nav.PathLogin {
		if rp := cur.Query.Get(models.QueryReturnPath); rp != "" {
			q.Set(models.QueryReturnPath, rp)
		}
	} else {
		q.Set(models.QueryReturnPath, cur.String())
	}
	a.router.Push(ctx, nav.Location{Path: nav.PathLogin, Query: q})
	return err
}

func (a *authService) OnLogout(fn func()) {
	a.mu.Lock()
	a.onLogout = append(a.onLogout, fn)
	a.mu.Unlock()
}

func (a *authService) clearStored(ctx context.Context) error {
	err := a.store.InTx(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Delete(ctx, common.AuthCookieName); err != nil {
			return err
		}
		return r.Delete(ctx, common.UserStorageKey)
	})
	if err != nil {
		a.log.Warn(ctx, "clear stored session", "error", err)
	}
	return err
}

func (a *authService) HandleAuthError(ctx context.Context, err error) bool {
	if err == nil || !client.IsUnauthorized(err) {
		return false
	}
	a.log.Warn(ctx, "authorization lost", "error", err)
	_ = a.Logout(ctx)
	return true
}

func (a *authService) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *authService) User() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

func (a *authService) AuthError() *AuthError {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.authErr
}
