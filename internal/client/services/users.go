package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/skudadmin/internal/client/client"
	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
)

// MinPasswordLength is the shortest password the server accepts.
const MinPasswordLength = 16

// UserDraft is an open create or edit form. On edit Login is fixed and an
// empty Password keeps the current one.
type UserDraft struct {
	Login    string
	Password string
	Role     models.Role
	Err      error
}

// UserService is the users entity store.
type UserService interface {
	Load(ctx context.Context) error
	Users() []models.User
	ListErr() error

	StartCreate() error
	SetNewLogin(login string) error
	SetNewPassword(password string) error
	SetNewRole(role models.Role) error
	SubmitCreate(ctx context.Context) error
	CancelCreate()
	NewDraft() *UserDraft

	StartEdit(ctx context.Context, login string) error
	SetEditPassword(password string) error
	SetEditRole(role models.Role) error
	SubmitSave(ctx context.Context) error
	CancelEdit()
	EditDraft() *UserDraft

	Remove(ctx context.Context, login string) error
}

type userService struct {
	client client.Client
	auth   AuthService
	log    logging.Logger

	mu        sync.Mutex
	users     []models.User
	listErr   error
	newDraft  *UserDraft
	editDraft *UserDraft
}

// NewUserService constructs the users store.
func NewUserService(c client.Client, auth AuthService, log logging.Logger) UserService {
	return &userService{client: c, auth: auth, log: log.With("store", "users")}
}

func (s *userService) Load(ctx context.Context) error {
	us, err := s.client.Users(ctx)
	if err != nil {
		err = failure(ctx, s.auth, s.log, "load users", err)
		if !errors.Is(err, ErrAuthExpired) {
			s.mu.Lock()
			s.listErr = err
			s.mu.Unlock()
		}
		return err
	}

	list := make([]models.User, 0, len(us))
	for _, u := range us {
		list = append(list, u.WithoutPassword())
	}

	s.mu.Lock()
	s.users = list
	s.listErr = nil
	s.mu.Unlock()

	s.log.Debug(ctx, "users loaded", "count", len(list))
	return nil
}

func (s *userService) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.users...)
}

func (s *userService) ListErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listErr
}

func (s *userService) StartCreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.newDraft != nil {
		return ErrDraftOpen
	}
	s.newDraft = &UserDraft{}
	return nil
}

func (s *userService) updateNew(fn func(d *UserDraft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.newDraft == nil {
		return ErrNoDraft
	}
	fn(s.newDraft)
	return nil
}

func (s *userService) updateEdit(fn func(d *UserDraft)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editDraft == nil {
		return ErrNoDraft
	}
	fn(s.editDraft)
	return nil
}

func (s *userService) SetNewLogin(login string) error {
	return s.updateNew(func(d *UserDraft) { d.Login = login })
}

func (s *userService) SetNewPassword(password string) error {
	return s.updateNew(func(d *UserDraft) { d.Password = password })
}

func (s *userService) SetNewRole(role models.Role) error {
	return s.updateNew(func(d *UserDraft) { d.Role = role })
}

func validateNewUser(d *UserDraft) *ValidationError {
	if err := required("login", d.Login); err != nil {
		return err
	}
	if err := required("password", strings.TrimSpace(d.Password)); err != nil {
		return err
	}
	if utf8.RuneCountInString(d.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "must be at least 16 characters"}
	}
	if !d.Role.Valid() {
		return &ValidationError{Field: "role", Message: "required"}
	}
	return nil
}

func (s *userService) SubmitCreate(ctx context.Context) error {
	s.mu.Lock()
	d := s.newDraft
	if d == nil {
		s.mu.Unlock()
		return ErrNoDraft
	}
	d.Login = strings.TrimSpace(d.Login)
	if verr := validateNewUser(d); verr != nil {
		d.Err = verr
		s.mu.Unlock()
		return verr
	}
	d.Err = nil
	u := models.User{Login: d.Login, Password: d.Password, Role: d.Role}
	s.mu.Unlock()

	if err := s.client.CreateUser(ctx, u); err != nil {
		err = failure(ctx, s.auth, s.log, "create user", err)
		if !errors.Is(err, ErrAuthExpired) {
			s.mu.Lock()
			if s.newDraft == d {
				d.Err = errors.Unwrap(err)
			}
			s.mu.Unlock()
		}
		return err
	}

	s.mu.Lock()
	s.users = append(s.users, u.WithoutPassword())
	if s.newDraft == d {
		s.newDraft = nil
	}
	s.mu.Unlock()

	s.log.Info(ctx, "user created", "login", u.Login)
	return nil
}

func (s *userService) CancelCreate() {
	s.mu.Lock()
	s.newDraft = nil
	s.mu.Unlock()
}

func (s *userService) NewDraft() *UserDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUserDraft(s.newDraft)
}

func copyUserDraft(d *UserDraft) *UserDraft {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func (s *userService) StartEdit(ctx context.Context, login string) error {
	s.mu.Lock()
	open := s.editDraft != nil
	s.mu.Unlock()
	if open {
		return ErrDraftOpen
	}

	u, err := s.client.User(ctx, login)
	if err != nil {
		return failure(ctx, s.auth, s.log, "load user", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editDraft != nil {
		return ErrDraftOpen
	}
	s.editDraft = &UserDraft{Login: u.Login, Role: u.Role}
	return nil
}

func (s *userService) SetEditPassword(password string) error {
	return s.updateEdit(func(d *UserDraft) { d.Password = password })
}

func (s *userService) SetEditRole(role models.Role) error {
	return s.updateEdit(func(d *UserDraft) { d.Role = role })
}

func validateEditUser(d *UserDraft) *ValidationError {
	if d.Password != "" && utf8.RuneCountInString(d.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "must be empty or at least 16 characters"}
	}
	if !d.Role.Valid() {
		return &ValidationError{Field: "role", Message: "required"}
	}
	return nil
}

func (s *userService) SubmitSave(ctx context.Context) error {
	s.mu.Lock()
	d := s.editDraft
	if d == nil {
		s.mu.Unlock()
		return ErrNoDraft
	}
	if strings.TrimSpace(d.Password) == "" {
		d.Password = ""
	}
	if verr := validateEditUser(d); verr != nil {
		d.Err = verr
		s.mu.Unlock()
		return verr
	}
	d.Err = nil
	u := models.User{Login: d.Login, Password: d.Password, Role: d.Role}
	s.mu.Unlock()

	if err := s.client.UpdateUser(ctx, u); err != nil {
		err = failure(ctx, s.auth, s.log, "save user", err)
		if !errors.Is(err, ErrAuthExpired) {
			s.mu.Lock()
			if s.editDraft == d {
				d.Err = errors.Unwrap(err)
			}
			s.mu.Unlock()
		}
		return err
	}

	s.mu.Lock()
	if s.editDraft == d {
		s.editDraft = nil
	}
	s.mu.Unlock()

	s.log.Info(ctx, "user saved", "login", u.Login)
	return s.reload(ctx)
}

// reload refreshes the list after a successful write. Only a lost session
// is reported; other failures stay in ListErr.
func (s *userService) reload(ctx context.Context) error {
	if err := s.Load(ctx); errors.Is(err, ErrAuthExpired) {
		return err
	}
	return nil
}

func (s *userService) CancelEdit() {
	s.mu.Lock()
	s.editDraft = nil
	s.mu.Unlock()
}

func (s *userService) EditDraft() *UserDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUserDraft(s.editDraft)
}

func (s *userService) Remove(ctx context.Context, login string) error {
	if err := s.client.DeleteUser(ctx, login); err != nil {
		return failure(ctx, s.auth, s.log, "remove user", err)
	}
	s.log.Info(ctx, "user removed", "login", login)
	return s.reload(ctx)
}
