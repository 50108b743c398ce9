package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/common"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type recorded struct {
	method string
	path   string
	query  string
	body   []byte
	cookie string
	auth   string
	ctype  string
}

type fakeAPI struct {
	mu   sync.Mutex
	reqs []recorded

	status int
	body   string
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			body:   b,
			auth:   r.Header.Get("Authorization"),
			ctype:  r.Header.Get("Content-Type"),
		}
		if c, err := r.Cookie(common.AuthCookieName); err == nil {
			rec.cookie = c.Value
		}

		f.mu.Lock()
		f.reqs = append(f.reqs, rec)
		status, body := f.status, f.body
		f.mu.Unlock()

		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (f *fakeAPI) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.reqs)
	return f.reqs[len(f.reqs)-1]
}

func newTestClient(t *testing.T, api *fakeAPI) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	c := NewHTTPClient(Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, logging.Discard())
	c.SetTokenSource(staticToken("tok-1"))
	return c
}

func TestHTTPClient_Login(t *testing.T) {
	api := &fakeAPI{body: `{"user":{"login":"root","password":"x","role":"admin"},"token":"jwt"}`}
	c := newTestClient(t, api)

	u, tok, err := c.Login(context.Background(), "root", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jwt", tok)
	assert.Equal(t, models.User{Login: "root", Role: models.RoleAdmin}, *u)

	r := api.last(t)
	assert.Equal(t, http.MethodPost, r.method)
	assert.Equal(t, "/api/login", r.path)
	assert.JSONEq(t, `{"login":"root","password":"pw"}`, string(r.body))
	assert.Equal(t, "application/json", r.ctype)
}

func TestHTTPClient_LoginEmptyToken(t *testing.T) {
	api := &fakeAPI{body: `{"user":{"login":"root"}}`}
	c := newTestClient(t, api)

	_, _, err := c.Login(context.Background(), "root", "pw")
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestHTTPClient_SendsTokenAsCookieAndBearer(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	c := newTestClient(t, api)

	_, err := c.Users(context.Background())
	require.NoError(t, err)

	r := api.last(t)
	assert.Equal(t, "tok-1", r.cookie)
	assert.Equal(t, "Bearer tok-1", r.auth)
}

func TestHTTPClient_NoTokenSource(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c := NewHTTPClient(Config{BaseURL: srv.URL}, logging.Discard())
	_, err := c.Persons(context.Background())
	require.NoError(t, err)

	r := api.last(t)
	assert.Empty(t, r.cookie)
	assert.Empty(t, r.auth)
}

func TestHTTPClient_Routes(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *HTTPClient) error
		method string
		path   string
		body   string
	}{
		{
			name:   "user",
			call:   func(c *HTTPClient) error { _, err := c.User(context.Background(), "ann"); return err },
			method: http.MethodGet, path: "/api/users/ann",
		},
		{
			name: "create user",
			call: func(c *HTTPClient) error {
				return c.CreateUser(context.Background(), models.User{Login: "ann", Password: "p", Role: models.RoleSecurity})
			},
			method: http.MethodPost, path: "/api/users",
			body: `{"login":"ann","password":"p","role":"security"}`,
		},
		{
			name: "update user carries login in body",
			call: func(c *HTTPClient) error {
				return c.UpdateUser(context.Background(), models.User{Login: "ann", Role: models.RoleAdmin})
			},
			method: http.MethodPut, path: "/api/users",
			body: `{"login":"ann","role":"admin"}`,
		},
		{
			name:   "delete user",
			call:   func(c *HTTPClient) error { return c.DeleteUser(context.Background(), "ann") },
			method: http.MethodDelete, path: "/api/users/ann",
		},
		{
			name:   "person",
			call:   func(c *HTTPClient) error { _, err := c.Person(context.Background(), 5); return err },
			method: http.MethodGet, path: "/api/persons/5",
		},
		{
			name: "update person carries id in body",
			call: func(c *HTTPClient) error {
				return c.UpdatePerson(context.Background(), models.Person{ID: 5, Name: "A", Position: "B", Unit: "C"})
			},
			method: http.MethodPut, path: "/api/persons",
			body: `{"id":5,"name":"A","position":"B","unit":"C"}`,
		},
		{
			name:   "delete person",
			call:   func(c *HTTPClient) error { return c.DeletePerson(context.Background(), 5) },
			method: http.MethodDelete, path: "/api/persons/5",
		},
		{
			name:   "person faces",
			call:   func(c *HTTPClient) error { _, err := c.PersonFaces(context.Background(), 5); return err },
			method: http.MethodGet, path: "/api/persons/5/faces",
		},
		{
			name:   "delete face",
			call:   func(c *HTTPClient) error { return c.DeleteFace(context.Background(), 9) },
			method: http.MethodDelete, path: "/api/person_faces/9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{body: `{}`}
			c := newTestClient(t, api)

			require.NoError(t, tt.call(c))

			r := api.last(t)
			assert.Equal(t, tt.method, r.method)
			assert.Equal(t, tt.path, r.path)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, string(r.body))
			}
		})
	}
}

func TestHTTPClient_CreatePersonReturnsID(t *testing.T) {
	api := &fakeAPI{body: `{"id":12,"name":"Ann","position":"Guard","unit":"HQ"}`}
	c := newTestClient(t, api)

	p, err := c.CreatePerson(context.Background(), models.Person{Name: "Ann", Position: "Guard", Unit: "HQ"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.ID)

	api.body = `{"name":"Ann"}`
	_, err = c.CreatePerson(context.Background(), models.Person{Name: "Ann"})
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestHTTPClient_UploadFaceSendsRawBytes(t *testing.T) {
	api := &fakeAPI{body: `{"id":3,"person_id":12,"photo_id":"ph-3"}`}
	c := newTestClient(t, api)

	photo := []byte("\xff\xd8\xff\xe0jpegdata")
	f, err := c.UploadFace(context.Background(), 12, photo)
	require.NoError(t, err)
	assert.Equal(t, models.Face{ID: 3, PersonID: 12, PhotoID: "ph-3"}, *f)

	r := api.last(t)
	assert.Equal(t, "/api/persons/12/faces", r.path)
	assert.Equal(t, photo, r.body)
	assert.Equal(t, "image/jpeg", r.ctype)
}

func TestHTTPClient_Photo(t *testing.T) {
	api := &fakeAPI{body: "binary"}
	c := newTestClient(t, api)

	b, err := c.Photo(context.Background(), "ph-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("binary"), b)
	assert.Equal(t, "/api/photos/ph-1", api.last(t).path)
}

func TestHTTPClient_EventsQuery(t *testing.T) {
	api := &fakeAPI{body: `[{"id":1,"time":"2024-06-01T10:00:00Z","passageID":"g1","type":"passage_open","data":{}}]`}
	c := newTestClient(t, api)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	es, err := c.Events(context.Background(), EventsQuery{
		From: &from, PassageID: "g1", OrderBy: "time", OrderDirection: "desc", Limit: 100, Offset: 200,
	})
	require.NoError(t, err)
	require.Len(t, es, 1)
	assert.Equal(t, "g1", es[0].PassageID)

	r := api.last(t)
	assert.Equal(t, "/api/events", r.path)
	assert.Equal(t,
		"from=2024-06-01T00%3A00%3A00Z&limit=100&offset=200&order_by=time&order_direction=desc&passage_id=g1",
		r.query)
}

func TestHTTPClient_PassageNames(t *testing.T) {
	api := &fakeAPI{body: `{"g1":"Main gate"}`}
	c := newTestClient(t, api)

	names, err := c.PassageNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PassageNames{"g1": "Main gate"}, names)
}

func TestHTTPClient_StatusErrors(t *testing.T) {
	api := &fakeAPI{status: http.StatusUnauthorized, body: "expired\n"}
	c := newTestClient(t, api)

	_, err := c.Users(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, "api returned status 401: expired", err.Error())

	api.status = http.StatusNotFound
	_, err = c.User(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.False(t, IsUnauthorized(err))

	api.status = http.StatusBadRequest
	api.body = ""
	_, err = c.UploadFace(context.Background(), 1, []byte("x"))
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Equal(t, "api returned status 400", err.Error())
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	api := &fakeAPI{body: `not json`}
	c := newTestClient(t, api)

	_, err := c.Persons(context.Background())
	require.ErrorIs(t, err, ErrInvalidResponse)
	assert.Equal(t, 0, StatusCode(err))
}

func TestHTTPClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewHTTPClient(Config{BaseURL: base, Timeout: time.Second}, logging.Discard())
	_, err := c.Users(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, IsUnauthorized(err))
}

func TestEventsQuery_ValuesOmitsEmpty(t *testing.T) {
	v := EventsQuery{Limit: 10}.Values()
	assert.Equal(t, "limit=10&offset=0", v.Encode())
}
