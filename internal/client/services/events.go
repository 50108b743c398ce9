package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/skudadmin/internal/client/client"
	"github.com/dmitrijs2005/skudadmin/internal/client/debounce"
	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/client/nav"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
)

// Event log ordering sent with every load.
const (
	EventsOrderBy        = "time"
	EventsOrderDirection = "desc"
)

// EventsConfig tunes the event log.
type EventsConfig struct {
	PageSize int
	Debounce time.Duration
	Location *time.Location
}

// EventService is the event log store and its location synchronizer.
// Filter setters update the state, push the new location and schedule a
// debounced reload.
type EventService interface {
	Filter() models.EventFilter
	Events() []models.Event
	PassageNames() models.PassageNames
	ListErr() error

	SetFrom(ctx context.Context, from *time.Time)
	SetTo(ctx context.Context, to *time.Time)
	SetPassageID(ctx context.Context, id string)
	SetPersonName(ctx context.Context, name string)
	SetPage(ctx context.Context, page int) error

	Load(ctx context.Context) error
	LoadPassageNames(ctx context.Context) error
	RestoreFromLocation()
	Close()
}

type eventService struct {
	client   client.Client
	auth     AuthService
	router   *nav.Router
	log      logging.Logger
	pageSize int
	loc      *time.Location
	reloader *debounce.Debouncer

	mu           sync.Mutex
	filter       models.EventFilter
	events       []models.Event
	passageNames models.PassageNames
	listErr      error
	generation   uint64
}

// NewEventService constructs the event store. Debounced reloads run with
// a background context.
func NewEventService(c client.Client, auth AuthService, router *nav.Router, log logging.Logger, cfg EventsConfig) EventService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	s := &eventService{
		client:       c,
		auth:         auth,
		router:       router,
		log:          log.With("store", "events"),
		pageSize:     cfg.PageSize,
		loc:          cfg.Location,
		filter:       models.DefaultEventFilter(),
		passageNames: models.PassageNames{},
	}
	s.reloader = debounce.New(cfg.Debounce, func() {
		// Errors are recorded in ListErr and logged by Load.
		_ = s.Load(context.Background())
	})
	// A reload scheduled before logout would go out without a token.
	auth.OnLogout(s.reloader.Cancel)
	return s
}

func (s *eventService) Filter() models.EventFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyFilter(s.filter)
}

func copyFilter(f models.EventFilter) models.EventFilter {
	if f.From != nil {
		t := *f.From
		f.From = &t
	}
	if f.To != nil {
		t := *f.To
		f.To = &t
	}
	return f
}

func (s *eventService) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		return nil
	}
	return append([]models.Event{}, s.events...)
}

func (s *eventService) PassageNames() models.PassageNames {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(models.PassageNames, len(s.passageNames))
	for k, v := range s.passageNames {
		out[k] = v
	}
	return out
}

func (s *eventService) ListErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listErr
}

// normalize drops sub-second precision so the value survives a trip
// through the location query.
func (s *eventService) normalize(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(s.loc).Truncate(time.Second)
	return &v
}

func (s *eventService) SetFrom(ctx context.Context, from *time.Time) {
	from = s.normalize(from)

	s.mu.Lock()
	s.filter.From = from
	keys := []string{models.QueryFrom}
	if from != nil && s.filter.To != nil && from.After(*s.filter.To) {
		to := *from
		s.filter.To = &to
		keys = append(keys, models.QueryTo)
	}
	f := s.filter
	s.mu.Unlock()

	s.commit(ctx, f, keys...)
}

func (s *eventService) SetTo(ctx context.Context, to *time.Time) {
	to = s.normalize(to)

	s.mu.Lock()
	s.filter.To = to
	keys := []string{models.QueryTo}
	if to != nil && s.filter.From != nil && to.Before(*s.filter.From) {
		from := *to
		s.filter.From = &from
		keys = append(keys, models.QueryFrom)
	}
	f := s.filter
	s.mu.Unlock()

	s.commit(ctx, f, keys...)
}

func (s *eventService) SetPassageID(ctx context.Context, id string) {
	s.mu.Lock()
	s.filter.PassageID = id
	f := s.filter
	s.mu.Unlock()

	s.commit(ctx, f, models.QueryPassageID)
}

func (s *eventService) SetPersonName(ctx context.Context, name string) {
	s.mu.Lock()
	s.filter.PersonName = name
	f := s.filter
	s.mu.Unlock()

	s.commit(ctx, f, models.QueryPersonName)
}

// SetPage moves to page. Pages below 1 are rejected, as is moving forward
// from a page that loaded no events.
func (s *eventService) SetPage(ctx context.Context, page int) error {
	s.mu.Lock()
	if page < 1 || (page > s.filter.Page && s.events != nil && len(s.events) == 0) {
		s.mu.Unlock()
		return ErrPageRejected
	}
	s.filter.Page = page
	f := s.filter
	s.mu.Unlock()

	s.commit(ctx, f, models.QueryPage)
	return nil
}

// commit merges the changed keys of f into the current location query,
// pushes it and schedules a reload.
func (s *eventService) commit(ctx context.Context, f models.EventFilter, keys ...string) {
	full := url.Values{}
	f.ApplyTo(full, s.loc)

	cur := s.router.Current()
	q := cur.Query
	for _, k := range keys {
		if v, ok := full[k]; ok {
			q[k] = v
		} else {
			q.Del(k)
		}
	}
	s.router.Push(ctx, cur.WithQuery(q))
	s.reloader.Trigger()
}

// Load fetches the current page. A response that arrives after a newer
// load was issued is discarded.
func (s *eventService) Load(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	f := copyFilter(s.filter)
	s.mu.Unlock()

	q := client.EventsQuery{
		From:           f.From,
		To:             f.To,
		PassageID:      f.PassageID,
		PersonName:     f.PersonName,
		OrderBy:        EventsOrderBy,
		OrderDirection: EventsOrderDirection,
		Limit:          s.pageSize,
		Offset:         (f.Page - 1) * s.pageSize,
	}

	es, err := s.client.Events(ctx, q)
	if err != nil {
		err = failure(ctx, s.auth, s.log, "load events", err)
		if !errors.Is(err, ErrAuthExpired) {
			s.mu.Lock()
			if gen == s.generation {
				s.listErr = err
			}
			s.mu.Unlock()
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug(ctx, "discarding stale events", "generation", gen, "latest", s.generation)
		return nil
	}
	if es == nil {
		es = []models.Event{}
	}
	s.events = es
	s.listErr = nil
	s.log.Debug(ctx, "events loaded", "count", len(es), "page", f.Page)
	return nil
}

func (s *eventService) LoadPassageNames(ctx context.Context) error {
	names, err := s.client.PassageNames(ctx)
	if err != nil {
		return failure(ctx, s.auth, s.log, "load passage names", err)
	}

	s.mu.Lock()
	s.passageNames = names
	s.mu.Unlock()
	return nil
}

// RestoreFromLocation replaces the filter with the one encoded in the
// current location.
func (s *eventService) RestoreFromLocation() {
	f := models.FilterFromQuery(s.router.Current().Query, s.loc)

	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *eventService) Close() {
	s.reloader.Stop()
}
