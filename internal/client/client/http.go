package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/common"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
)

// Config holds the HTTPClient settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPClient implements Client over JSON/HTTP. The session token is sent
// both as the auth cookie and as a bearer header.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	log        logging.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for cfg.BaseURL + "/api".
func NewHTTPClient(cfg Config, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/api",
		log:        log,
	}
}

// SetTokenSource wires the session that owns the token.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (c *HTTPClient) Login(ctx context.Context, login, password string) (*models.User, string, error) {
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", nil, loginRequest{Login: login, Password: password}, &resp); err != nil {
		return nil, "", err
	}
	if resp.Token == "" {
		return nil, "", fmt.Errorf("%w: empty token", ErrInvalidResponse)
	}
	u := resp.User.WithoutPassword()
	return &u, resp.Token, nil
}

func (c *HTTPClient) Users(ctx context.Context) ([]models.User, error) {
	var us []models.User
	if err := c.doJSON(ctx, http.MethodGet, "/users", nil, nil, &us); err != nil {
		return nil, err
	}
	return us, nil
}

func (c *HTTPClient) User(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+url.PathEscape(login), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, u models.User) error {
	return c.doJSON(ctx, http.MethodPost, "/users", nil, u, nil)
}

func (c *HTTPClient) UpdateUser(ctx context.Context, u models.User) error {
	return c.doJSON(ctx, http.MethodPut, "/users", nil, u, nil)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, login string) error {
	return c.doJSON(ctx, http.MethodDelete, "/users/"+url.PathEscape(login), nil, nil, nil)
}

func (c *HTTPClient) Persons(ctx context.Context) ([]models.Person, error) {
	var ps []models.Person
	if err := c.doJSON(ctx, http.MethodGet, "/persons", nil, nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (c *HTTPClient) Person(ctx context.Context, id int64) (*models.Person, error) {
	var p models.Person
	if err := c.doJSON(ctx, http.MethodGet, personPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreatePerson(ctx context.Context, p models.Person) (*models.Person, error) {
	var created models.Person
	if err := c.doJSON(ctx, http.MethodPost, "/persons", nil, p, &created); err != nil {
		return nil, err
	}
	if created.ID == 0 {
		return nil, fmt.Errorf("%w: person without id", ErrInvalidResponse)
	}
	return &created, nil
}

func (c *HTTPClient) UpdatePerson(ctx context.Context, p models.Person) error {
	return c.doJSON(ctx, http.MethodPut, "/persons", nil, p, nil)
}

func (c *HTTPClient) DeletePerson(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, personPath(id), nil, nil, nil)
}

func (c *HTTPClient) PersonFaces(ctx context.Context, personID int64) ([]models.Face, error) {
	var fs []models.Face
	if err := c.doJSON(ctx, http.MethodGet, personPath(personID)+"/faces", nil, nil, &fs); err != nil {
		return nil, err
	}
	return fs, nil
}

func (c *HTTPClient) UploadFace(ctx context.Context, personID int64, photo []byte) (*models.Face, error) {
	body, err := c.do(ctx, http.MethodPost, personPath(personID)+"/faces", nil,
		bytes.NewReader(photo), http.DetectContentType(photo))
	if err != nil {
		return nil, err
	}
	var f models.Face
	if err := decode(body, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *HTTPClient) DeleteFace(ctx context.Context, faceID int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/person_faces/"+strconv.FormatInt(faceID, 10), nil, nil, nil)
}

func (c *HTTPClient) Photo(ctx context.Context, photoID string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/photos/"+url.PathEscape(photoID), nil, nil, "")
}

func (c *HTTPClient) Events(ctx context.Context, q EventsQuery) ([]models.Event, error) {
	var es []models.Event
	if err := c.doJSON(ctx, http.MethodGet, "/events", q.Values(), nil, &es); err != nil {
		return nil, err
	}
	return es, nil
}

func (c *HTTPClient) PassageNames(ctx context.Context) (models.PassageNames, error) {
	names := models.PassageNames{}
	if err := c.doJSON(ctx, http.MethodGet, "/passage_names", nil, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func personPath(id int64) string {
	return "/persons/" + strconv.FormatInt(id, 10)
}

// doJSON marshals in (if any) and decodes the response into out (if any).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(resp, out)
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// do executes a single request and returns the response body. Statuses
// >= 400 become *StatusError, transport failures wrap ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.token(); tok != "" {
		req.AddCookie(&http.Cookie{Name: common.AuthCookieName, Value: tok})
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug(ctx, "api request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "api request", "method", method, "path", path,
		"status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}
