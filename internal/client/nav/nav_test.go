package nav

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/dmitrijs2005/skudadmin/internal/common"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
}

func newMemRepo() *memRepo { return &memRepo{data: map[string][]byte{}} }

func (m *memRepo) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *memRepo) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memRepo) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memRepo) List(context.Context) (map[string][]byte, error) { return m.data, nil }
func (m *memRepo) Clear(context.Context) error                     { m.data = map[string][]byte{}; return nil }

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in      string
		path    string
		query   url.Values
		wantErr bool
	}{
		{in: "", path: "/", query: url.Values{}},
		{in: "/events?page=2&passage_id=g1", path: "/events", query: url.Values{"page": {"2"}, "passage_id": {"g1"}}},
		{in: "persons", path: "/persons", query: url.Values{}},
		{in: "/login?return_path=%2Fevents%3Fpage%3D2", path: "/login", query: url.Values{"return_path": {"/events?page=2"}}},
		{in: "https://evil.example/x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			loc, err := ParseLocation(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path, loc.Path)
			assert.Equal(t, tt.query, loc.Query)
		})
	}
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "/", Location{}.String())
	assert.Equal(t, "/events", Location{Path: "/events", Query: url.Values{}}.String())
	assert.Equal(t, "/events?from=2024-06-01+00%3A00%3A00&page=2",
		Location{Path: "/events", Query: url.Values{"page": {"2"}, "from": {"2024-06-01 00:00:00"}}}.String())
}

func TestLocation_CloneIsDeep(t *testing.T) {
	a := MustParseLocation("/events?page=2")
	b := a.Clone()
	b.Query.Set("page", "3")
	assert.Equal(t, "2", a.Query.Get("page"))
}

func TestRouter_PushPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()

	r := NewRouter(repo, logging.Discard())
	assert.Equal(t, "/", r.Current().String())

	r.Push(ctx, MustParseLocation("/events?page=3"))
	assert.Equal(t, "/events?page=3", string(repo.data[common.LocationStorageKey]))

	restarted := NewRouter(repo, logging.Discard())
	require.NoError(t, restarted.Restore(ctx))
	assert.Equal(t, "/events?page=3", restarted.Current().String())
}

func TestRouter_CurrentIsACopy(t *testing.T) {
	r := NewRouter(nil, logging.Discard())
	r.Push(context.Background(), MustParseLocation("/events?page=2"))

	loc := r.Current()
	loc.Query.Set("page", "9")
	assert.Equal(t, "2", r.Current().Query.Get("page"))
}

func TestRouter_RestoreIgnoresGarbage(t *testing.T) {
	repo := newMemRepo()
	repo.data[common.LocationStorageKey] = []byte("http://[::1")

	r := NewRouter(repo, logging.Discard())
	require.NoError(t, r.Restore(context.Background()))
	assert.Equal(t, "/", r.Current().Path)
}

func TestRouter_RestoreError(t *testing.T) {
	repo := newMemRepo()
	repo.getErr = errors.New("db gone")

	r := NewRouter(repo, logging.Discard())
	require.Error(t, r.Restore(context.Background()))
}

func TestRouter_PushSurvivesPersistFailure(t *testing.T) {
	repo := newMemRepo()
	repo.setErr = errors.New("read only")

	r := NewRouter(repo, logging.Discard())
	r.Push(context.Background(), MustParseLocation("/users"))
	assert.Equal(t, "/users", r.Current().Path)
}

func TestRouter_Back(t *testing.T) {
	ctx := context.Background()
	r := NewRouter(nil, logging.Discard())
	assert.False(t, r.Back(ctx))

	r.Push(ctx, MustParseLocation("/persons"))
	r.Push(ctx, MustParseLocation("/events"))

	assert.True(t, r.Back(ctx))
	assert.Equal(t, "/persons", r.Current().Path)
	assert.True(t, r.Back(ctx))
	assert.Equal(t, "/", r.Current().Path)
}
