package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/skudadmin/internal/client/models"
)

// Client is the SKUD REST API as seen by the console stores.
type Client interface {
	Login(ctx context.Context, login, password string) (*models.User, string, error)

	Users(ctx context.Context) ([]models.User, error)
	User(ctx context.Context, login string) (*models.User, error)
	CreateUser(ctx context.Context, u models.User) error
	UpdateUser(ctx context.Context, u models.User) error
	DeleteUser(ctx context.Context, login string) error

	Persons(ctx context.Context) ([]models.Person, error)
	Person(ctx context.Context, id int64) (*models.Person, error)
	CreatePerson(ctx context.Context, p models.Person) (*models.Person, error)
	UpdatePerson(ctx context.Context, p models.Person) error
	DeletePerson(ctx context.Context, id int64) error

	PersonFaces(ctx context.Context, personID int64) ([]models.Face, error)
	UploadFace(ctx context.Context, personID int64, photo []byte) (*models.Face, error)
	DeleteFace(ctx context.Context, faceID int64) error
	Photo(ctx context.Context, photoID string) ([]byte, error)

	Events(ctx context.Context, q EventsQuery) ([]models.Event, error)
	PassageNames(ctx context.Context) (models.PassageNames, error)
}

// TokenSource supplies the session token attached to every request.
type TokenSource interface {
	Token() string
}

// EventsQuery is the parameter set of GET /api/events.
type EventsQuery struct {
	From           *time.Time
	To             *time.Time
	PassageID      string
	PersonName     string
	OrderBy        string
	OrderDirection string
	Limit          int
	Offset         int
}

// Values encodes q. Times are sent as RFC3339, empty strings are omitted.
// Offset is always present.
func (q EventsQuery) Values() url.Values {
	v := url.Values{}
	if q.From != nil {
		v.Set("from", q.From.Format(time.RFC3339))
	}
	if q.To != nil {
		v.Set("to", q.To.Format(time.RFC3339))
	}
	if q.PassageID != "" {
		v.Set("passage_id", q.PassageID)
	}
	if q.PersonName != "" {
		v.Set("person_name", q.PersonName)
	}
	if q.OrderBy != "" {
		v.Set("order_by", q.OrderBy)
	}
	if q.OrderDirection != "" {
		v.Set("order_direction", q.OrderDirection)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	v.Set("offset", strconv.Itoa(q.Offset))
	return v
}
