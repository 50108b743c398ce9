package services

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/skudadmin/internal/client/client"
	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/client/nav"
	"github.com/dmitrijs2005/skudadmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client and records every call by name.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	loginUser *models.User
	loginTok  string
	loginErr  error

	users       []models.User
	usersErr    error
	user        *models.User
	userErr     error
	createdUser []models.User
	createErr   error
	updatedUser []models.User
	updateErr   error
	deleteErr   error

	persons         []models.Person
	personsErr      error
	person          *models.Person
	personErr       error
	faces           []models.Face
	facesErr        error
	createPersonFn  func(p models.Person) (*models.Person, error)
	updatedPersons  []models.Person
	updatePersonErr error
	deletePersonErr error
	uploadFn        func(personID int64, photo []byte) (*models.Face, error)
	uploaded        [][]byte
	deleteFaceFn    func(id int64) error
	deletedFaces    []int64
	photo           []byte
	photoErr        error

	eventsFn     func(q client.EventsQuery) ([]models.Event, error)
	eventQueries []client.EventsQuery
	passageNames models.PassageNames
	passageErr   error
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeClient) Login(_ context.Context, login, password string) (*models.User, string, error) {
	f.record("Login")
	if f.loginErr != nil {
		return nil, "", f.loginErr
	}
	u := *f.loginUser
	return &u, f.loginTok, nil
}

func (f *fakeClient) Users(context.Context) ([]models.User, error) {
	f.record("Users")
	return f.users, f.usersErr
}

func (f *fakeClient) User(context.Context, string) (*models.User, error) {
	f.record("User")
	return f.user, f.userErr
}

func (f *fakeClient) CreateUser(_ context.Context, u models.User) error {
	f.record("CreateUser")
	f.mu.Lock()
	f.createdUser = append(f.createdUser, u)
	f.mu.Unlock()
	return f.createErr
}

func (f *fakeClient) UpdateUser(_ context.Context, u models.User) error {
	f.record("UpdateUser")
	f.mu.Lock()
	f.updatedUser = append(f.updatedUser, u)
	f.mu.Unlock()
	return f.updateErr
}

func (f *fakeClient) DeleteUser(context.Context, string) error {
	f.record("DeleteUser")
	return f.deleteErr
}

func (f *fakeClient) Persons(context.Context) ([]models.Person, error) {
	f.record("Persons")
	return f.persons, f.personsErr
}

func (f *fakeClient) Person(context.Context, int64) (*models.Person, error) {
	f.record("Person")
	return f.person, f.personErr
}

func (f *fakeClient) CreatePerson(_ context.Context, p models.Person) (*models.Person, error) {
	f.record("CreatePerson")
	return f.createPersonFn(p)
}

func (f *fakeClient) UpdatePerson(_ context.Context, p models.Person) error {
	f.record("UpdatePerson")
	f.mu.Lock()
	f.updatedPersons = append(f.updatedPersons, p)
	f.mu.Unlock()
	return f.updatePersonErr
}

func (f *fakeClient) DeletePerson(context.Context, int64) error {
	f.record("DeletePerson")
	return f.deletePersonErr
}

func (f *fakeClient) PersonFaces(context.Context, int64) ([]models.Face, error) {
	f.record("PersonFaces")
	return f.faces, f.facesErr
}

func (f *fakeClient) UploadFace(_ context.Context, personID int64, photo []byte) (*models.Face, error) {
	f.record("UploadFace")
	f.mu.Lock()
	f.uploaded = append(f.uploaded, photo)
	fn := f.uploadFn
	f.mu.Unlock()
	return fn(personID, photo)
}

func (f *fakeClient) DeleteFace(_ context.Context, id int64) error {
	f.record("DeleteFace")
	f.mu.Lock()
	f.deletedFaces = append(f.deletedFaces, id)
	fn := f.deleteFaceFn
	f.mu.Unlock()
	return fn(id)
}

func (f *fakeClient) Photo(context.Context, string) ([]byte, error) {
	f.record("Photo")
	return f.photo, f.photoErr
}

func (f *fakeClient) Events(_ context.Context, q client.EventsQuery) ([]models.Event, error) {
	f.record("Events")
	f.mu.Lock()
	f.eventQueries = append(f.eventQueries, q)
	fn := f.eventsFn
	f.mu.Unlock()
	return fn(q)
}

func (f *fakeClient) lastEventsQuery() client.EventsQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eventQueries[len(f.eventQueries)-1]
}

func (f *fakeClient) PassageNames(context.Context) (models.PassageNames, error) {
	f.record("PassageNames")
	return f.passageNames, f.passageErr
}

func statusErr(code int) error {
	return &client.StatusError{Code: code}
}

var errUnauthorized = statusErr(http.StatusUnauthorized)

// env wires the session store to a real sqlite database and a router.
type env struct {
	fc     *fakeClient
	store  *metadata.SQLiteStore
	router *nav.Router
	auth   AuthService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := metadata.NewSQLiteStore(db)
	router := nav.NewRouter(store, logging.Discard())
	fc := &fakeClient{
		loginUser: &models.User{Login: "root", Role: models.RoleAdmin},
		loginTok:  "opaque-token",
	}
	return &env{
		fc:     fc,
		store:  store,
		router: router,
		auth:   NewAuthService(fc, store, router, logging.Discard()),
	}
}

// loggedIn logs in and navigates to origin.
func (e *env) loggedIn(t *testing.T, origin string) {
	t.Helper()
	require.NoError(t, e.auth.Login(context.Background(), "root", "pw", origin))
}

func (e *env) requireLoggedOut(t *testing.T, origin string) {
	t.Helper()
	require.Nil(t, e.auth.User())
	require.Empty(t, e.auth.Token())
	loc := e.router.Current()
	require.Equal(t, nav.PathLogin, loc.Path)
	require.Equal(t, origin, loc.Query.Get(models.QueryReturnPath))
}

func statusOf(err error) int {
	return client.StatusCode(err)
}
