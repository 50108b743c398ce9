package nav

import (
	"context"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/skudadmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skudadmin/internal/common"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
)

// Well-known paths.
const (
	PathHome    = "/"
	PathLogin   = "/login"
	PathUsers   = "/users"
	PathPersons = "/persons"
	PathEvents  = "/events"
)

// Router owns the current location. It is safe for concurrent use.
type Router struct {
	mu      sync.Mutex
	current Location
	history []Location

	store metadata.Repository
	log   logging.Logger
}

// NewRouter starts at "/". store may be nil, in which case locations are
// not persisted.
func NewRouter(store metadata.Repository, log logging.Logger) *Router {
	return &Router{
		current: Location{Path: PathHome, Query: url.Values{}},
		store:   store,
		log:     log,
	}
}

// Restore loads the persisted location, if any.
func (r *Router) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	b, err := r.store.Get(ctx, common.LocationStorageKey)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	loc, err := ParseLocation(string(b))
	if err != nil {
		r.log.Warn(ctx, "ignoring stored location", "location", string(b), "error", err)
		return nil
	}

	r.mu.Lock()
	r.current = loc
	r.mu.Unlock()
	return nil
}

// Current returns a copy of the current location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current.Clone()
}

// Push makes loc current and persists it. Persistence failures are logged.
func (r *Router) Push(ctx context.Context, loc Location) {
	loc = loc.Clone()
	if loc.Path == "" {
		loc.Path = PathHome
	}

	r.mu.Lock()
	r.history = append(r.history, r.current)
	r.current = loc
	r.mu.Unlock()

	r.log.Debug(ctx, "navigate", "location", loc.String())
	r.persist(ctx, loc)
}

// Back returns to the previous location. It reports false when there is
// no history.
func (r *Router) Back(ctx context.Context) bool {
	r.mu.Lock()
	if len(r.history) == 0 {
		r.mu.Unlock()
		return false
	}
	loc := r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.current = loc
	r.mu.Unlock()

	r.persist(ctx, loc)
	return true
}

func (r *Router) persist(ctx context.Context, loc Location) {
	if r.store == nil {
		return
	}
	if err := r.store.Set(ctx, common.LocationStorageKey, []byte(loc.String())); err != nil {
		r.log.Warn(ctx, "persist location", "error", err)
	}
}
