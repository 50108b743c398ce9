package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/skudadmin/internal/client/client"
	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/client/photosync"
	"github.com/dmitrijs2005/skudadmin/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	errUploadFailed = errors.New(photosync.MsgUploadFailed)
	errSyncFailed   = errors.New(photosync.MsgSyncFailed)
)

// PersonDraft is an open create or edit form. ID is zero until the person
// exists on the server. Faces are only populated on edit.
type PersonDraft struct {
	ID       int64
	Name     string
	Position string
	Unit     string
	Faces    []models.Face
	Photos   []models.PendingPhoto
	Sync     photosync.State
	Err      error

	batch *photosync.Batch
}

// PersonService is the persons entity store, including face photo sync.
type PersonService interface {
	Load(ctx context.Context) error
	Persons() []models.Person
	ListErr() error

	StartCreate() error
	SetNewName(name string) error
	SetNewPosition(position string) error
	SetNewUnit(unit string) error
	AddNewPhoto(name string, data []byte) (uuid.UUID, error)
	RemoveNewPhoto(id uuid.UUID) error
	SubmitCreate(ctx context.Context) error
	CancelCreate()
	NewDraft() *PersonDraft

	StartEdit(ctx context.Context, id int64) error
	SetEditName(name string) error
	SetEditPosition(position string) error
	SetEditUnit(unit string) error
	AddEditPhoto(name string, data []byte) (uuid.UUID, error)
	RemoveEditPhoto(id uuid.UUID) error
	MarkFaceToRemove(faceID int64) error
	RestoreFace(faceID int64) error
	SubmitSave(ctx context.Context) error
	CancelEdit()
	EditDraft() *PersonDraft

	Remove(ctx context.Context, id int64) error
	Photo(ctx context.Context, photoID string) ([]byte, error)
}

type personService struct {
	client client.Client
	auth   AuthService
	log    logging.Logger
	limit  int

	mu        sync.Mutex
	persons   []models.Person
	listErr   error
	newDraft  *PersonDraft
	editDraft *PersonDraft
}

// NewPersonService constructs the persons store. uploadConcurrency bounds
// the in-flight requests of one photo batch.
func NewPersonService(c client.Client, auth AuthService, log logging.Logger, uploadConcurrency int) PersonService {
	return &personService{
		client: c,
		auth:   auth,
		log:    log.With("store", "persons"),
		limit:  uploadConcurrency,
	}
}

func (s *personService) Load(ctx context.Context) error {
	ps, err := s.client.Persons(ctx)
	if err != nil {
		err = failure(ctx, s.auth, s.log, "load persons", err)
		if !errors.Is(err, ErrAuthExpired) {
			s.mu.Lock()
			s.listErr = err
			s.mu.Unlock()
		}
		return err
	}

	s.mu.Lock()
	s.persons = append([]models.Person{}, ps...)
	s.listErr = nil
	s.mu.Unlock()

	s.log.Debug(ctx, "persons loaded", "count", len(ps))
	return nil
}

func (s *personService) Persons() []models.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Person(nil), s.persons...)
}

func (s *personService) ListErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listErr
}

func (s *personService) newBatch() *photosync.Batch {
	return photosync.NewBatch(s.limit)
}

func (s *personService) StartCreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.newDraft != nil {
		return ErrDraftOpen
	}
	s.newDraft = &PersonDraft{batch: s.newBatch()}
	return nil
}

func (s *personService) update(draft **PersonDraft, fn func(d *PersonDraft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *draft == nil {
		return ErrNoDraft
	}
	return fn(*draft)
}

func (s *personService) SetNewName(name string) error {
	return s.update(&s.newDraft, func(d *PersonDraft) error { d.Name = name; return nil })
}

func (s *personService) SetNewPosition(position string) error {
	return s.update(&s.newDraft, func(d *PersonDraft) error { d.Position = position; return nil })
}

func (s *personService) SetNewUnit(unit string) error {
	return s.update(&s.newDraft, func(d *PersonDraft) error { d.Unit = unit; return nil })
}

func (s *personService) SetEditName(name string) error {
	return s.update(&s.editDraft, func(d *PersonDraft) error { d.Name = name; return nil })
}

func (s *personService) SetEditPosition(position string) error {
	return s.update(&s.editDraft, func(d *PersonDraft) error { d.Position = position; return nil })
}

func (s *personService) SetEditUnit(unit string) error {
	return s.update(&s.editDraft, func(d *PersonDraft) error { d.Unit = unit; return nil })
}

func addPhoto(d *PersonDraft, name string, data []byte) uuid.UUID {
	p := models.NewPendingPhoto(name, data)
	d.Photos = append(d.Photos, p)
	return p.ID
}

func removePhoto(d *PersonDraft, id uuid.UUID) error {
	for i, p := range d.Photos {
		if p.ID == id {
			d.Photos = append(d.Photos[:i], d.Photos[i+1:]...)
			return nil
		}
	}
	return errNoSuchPhoto
}

var (
	errNoSuchPhoto = errors.New("no such photo")
	errNoSuchFace  = errors.New("no such face")
)

func (s *personService) AddNewPhoto(name string, data []byte) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.update(&s.newDraft, func(d *PersonDraft) error { id = addPhoto(d, name, data); return nil })
	return id, err
}

func (s *personService) RemoveNewPhoto(id uuid.UUID) error {
	return s.update(&s.newDraft, func(d *PersonDraft) error { return removePhoto(d, id) })
}

func (s *personService) AddEditPhoto(name string, data []byte) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.update(&s.editDraft, func(d *PersonDraft) error { id = addPhoto(d, name, data); return nil })
	return id, err
}

func (s *personService) RemoveEditPhoto(id uuid.UUID) error {
	return s.update(&s.editDraft, func(d *PersonDraft) error { return removePhoto(d, id) })
}

func (s *personService) flagFace(faceID int64, remove bool) error {
	return s.update(&s.editDraft, func(d *PersonDraft) error {
		for i := range d.Faces {
			if d.Faces[i].ID == faceID {
				d.Faces[i].ToRemove = remove
				d.Faces[i].Error = ""
				return nil
			}
		}
		return errNoSuchFace
	})
}

func (s *personService) MarkFaceToRemove(faceID int64) error { return s.flagFace(faceID, true) }

func (s *personService) RestoreFace(faceID int64) error { return s.flagFace(faceID, false) }

// trimAndValidate normalizes the draft fields under the store lock.
func trimAndValidate(d *PersonDraft) *ValidationError {
	d.Name = strings.TrimSpace(d.Name)
	d.Position = strings.TrimSpace(d.Position)
	d.Unit = strings.TrimSpace(d.Unit)
	if err := required("name", d.Name); err != nil {
		return err
	}
	if err := required("position", d.Position); err != nil {
		return err
	}
	return required("unit", d.Unit)
}

func (d *PersonDraft) person() models.Person {
	return models.Person{ID: d.ID, Name: d.Name, Position: d.Position, Unit: d.Unit}
}

// SubmitCreate creates the person and uploads the selected photos. A draft
// that already carries a server id only retries the photos that have not
// been uploaded.
func (s *personService) SubmitCreate(ctx context.Context) error {
	s.mu.Lock()
	d := s.newDraft
	if d == nil {
		s.mu.Unlock()
		return ErrNoDraft
	}
	if d.batch.State() == photosync.Submitting {
		s.mu.Unlock()
		return photosync.ErrInFlight
	}
	if verr := trimAndValidate(d); verr != nil {
		d.Err = verr
		s.mu.Unlock()
		return verr
	}
	d.Err = nil
	p := d.person()
	s.mu.Unlock()

	if p.ID == 0 {
		created, err := s.client.CreatePerson(ctx, p)
		if err != nil {
			err = failure(ctx, s.auth, s.log, "create person", err)
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
		s.persons = append(s.persons, *created)
		d.ID = created.ID
		s.mu.Unlock()

		p.ID = created.ID
		s.log.Info(ctx, "person created", "id", p.ID)
	}

	return s.attachPhotos(ctx, d, p.ID)
}

func photoKey(id uuid.UUID) string { return "photo:" + id.String() }

func faceKey(id int64) string { return "face:" + strconv.FormatInt(id, 10) }

func (s *personService) uploadTask(personID int64, p models.PendingPhoto) photosync.Task {
	data := p.Data
	return photosync.Task{
		Key: photoKey(p.ID),
		Op:  photosync.OpUpload,
		Do: func(ctx context.Context) (any, error) {
			return s.client.UploadFace(ctx, personID, data)
		},
	}
}

// attachPhotos uploads every photo of d that is not uploaded yet.
func (s *personService) attachPhotos(ctx context.Context, d *PersonDraft, personID int64) error {
	s.mu.Lock()
	var tasks []photosync.Task
	for _, p := range d.Photos {
		if p.Status != models.PhotoUploaded {
			tasks = append(tasks, s.uploadTask(personID, p))
		}
	}
	s.mu.Unlock()

	rep, err := s.runBatch(ctx, d, personID, tasks, &createSink{baseSink{s: s, d: d, msg: errUploadFailed}})
	if err != nil {
		return err
	}
	if rep.State != photosync.Complete {
		if rep.AuthLost {
			return ErrAuthExpired
		}
		return errUploadFailed
	}

	s.mu.Lock()
	if s.newDraft == d {
		s.newDraft = nil
	}
	s.mu.Unlock()
	return nil
}

func (s *personService) runBatch(ctx context.Context, d *PersonDraft, personID int64, tasks []photosync.Task, sink photosync.Sink) (photosync.Report, error) {
	s.mu.Lock()
	d.Sync = photosync.Submitting
	s.mu.Unlock()

	rep, err := d.batch.Submit(ctx, tasks, sink)

	s.mu.Lock()
	d.Sync = d.batch.State()
	s.mu.Unlock()

	if err == nil {
		s.log.Debug(ctx, "photo batch settled", "person", personID, "state", rep.State.String(),
			"succeeded", rep.Succeeded, "failed", rep.Failed)
	}
	return rep, err
}

// baseSink carries the parts shared by the create and edit sinks.
type baseSink struct {
	s   *personService
	d   *PersonDraft
	msg error
}

func (b *baseSink) FirstFailure() {
	b.s.mu.Lock()
	b.d.Err = b.msg
	b.s.mu.Unlock()
}

func (b *baseSink) AuthLost(ctx context.Context, err error) {
	b.s.auth.HandleAuthError(ctx, err)
}

func (b *baseSink) photo(key string) *models.PendingPhoto {
	for i := range b.d.Photos {
		if photoKey(b.d.Photos[i].ID) == key {
			return &b.d.Photos[i]
		}
	}
	return nil
}

type createSink struct {
	baseSink
}

func (c *createSink) Succeeded(t photosync.Task, _ any) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if p := c.photo(t.Key); p != nil {
		p.Status = models.PhotoUploaded
		p.Error = ""
	}
}

func (c *createSink) Failed(t photosync.Task, e *photosync.ItemError) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if p := c.photo(t.Key); p != nil {
		p.Status = models.PhotoErrored
		p.Error = e.Message
	}
}

type editSink struct {
	baseSink
}

// Succeeded drops deleted faces and promotes uploaded photos to faces so a
// retry only resubmits what is left.
func (e *editSink) Succeeded(t photosync.Task, result any) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	d := e.d

	switch t.Op {
	case photosync.OpDelete:
		for i := range d.Faces {
			if faceKey(d.Faces[i].ID) == t.Key {
				d.Faces = append(d.Faces[:i], d.Faces[i+1:]...)
				return
			}
		}
	case photosync.OpUpload:
		for i := range d.Photos {
			if photoKey(d.Photos[i].ID) == t.Key {
				d.Photos = append(d.Photos[:i], d.Photos[i+1:]...)
				break
			}
		}
		if f, ok := result.(*models.Face); ok && f != nil {
			d.Faces = append(d.Faces, *f)
		}
	}
}

func (e *editSink) Failed(t photosync.Task, ie *photosync.ItemError) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	d := e.d

	switch t.Op {
	case photosync.OpDelete:
		for i := range d.Faces {
			if faceKey(d.Faces[i].ID) == t.Key {
				d.Faces[i].Error = ie.Message
				return
			}
		}
	case photosync.OpUpload:
		if p := e.photo(t.Key); p != nil {
			p.Status = models.PhotoErrored
			p.Error = ie.Message
		}
	}
}

func (s *personService) CancelCreate() {
	s.mu.Lock()
	s.newDraft = nil
	s.mu.Unlock()
}

func (s *personService) NewDraft() *PersonDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPersonDraft(s.newDraft)
}

func (s *personService) EditDraft() *PersonDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyPersonDraft(s.editDraft)
}

func copyPersonDraft(d *PersonDraft) *PersonDraft {
	if d == nil {
		return nil
	}
	c := *d
	c.Faces = append([]models.Face(nil), d.Faces...)
	c.Photos = append([]models.PendingPhoto(nil), d.Photos...)
	c.batch = nil
	return &c
}

// StartEdit fetches the person and its faces and opens the edit draft.
func (s *personService) StartEdit(ctx context.Context, id int64) error {
	s.mu.Lock()
	open := s.editDraft != nil
	s.mu.Unlock()
	if open {
		return ErrDraftOpen
	}

	var (
		p     *models.Person
		faces []models.Face
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.client.Person(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		faces, err = s.client.PersonFaces(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return failure(ctx, s.auth, s.log, "load person", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editDraft != nil {
		return ErrDraftOpen
	}
	s.editDraft = &PersonDraft{
		ID:       p.ID,
		Name:     p.Name,
		Position: p.Position,
		Unit:     p.Unit,
		Faces:    append([]models.Face{}, faces...),
		batch:    s.newBatch(),
	}
	return nil
}

// SubmitSave updates the person, then deletes flagged faces and uploads new
// photos in one batch. The draft closes only when every request succeeded.
func (s *personService) SubmitSave(ctx context.Context) error {
	s.mu.Lock()
	d := s.editDraft
	if d == nil {
		s.mu.Unlock()
		return ErrNoDraft
	}
	if d.batch.State() == photosync.Submitting {
		s.mu.Unlock()
		return photosync.ErrInFlight
	}
	if verr := trimAndValidate(d); verr != nil {
		d.Err = verr
		s.mu.Unlock()
		return verr
	}
	d.Err = nil
	p := d.person()
	s.mu.Unlock()

	if err := s.client.UpdatePerson(ctx, p); err != nil {
		err = failure(ctx, s.auth, s.log, "save person", err)
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
	var tasks []photosync.Task
	for _, f := range d.Faces {
		if !f.ToRemove {
			continue
		}
		faceID := f.ID
		tasks = append(tasks, photosync.Task{
			Key: faceKey(faceID),
			Op:  photosync.OpDelete,
			Do: func(ctx context.Context) (any, error) {
				return nil, s.client.DeleteFace(ctx, faceID)
			},
		})
	}
	for _, ph := range d.Photos {
		tasks = append(tasks, s.uploadTask(p.ID, ph))
	}
	s.mu.Unlock()

	rep, err := s.runBatch(ctx, d, p.ID, tasks, &editSink{baseSink{s: s, d: d, msg: errSyncFailed}})
	if err != nil {
		return err
	}
	if rep.State != photosync.Complete {
		if rep.AuthLost {
			return ErrAuthExpired
		}
		return errSyncFailed
	}

	s.mu.Lock()
	if s.editDraft == d {
		s.editDraft = nil
	}
	s.mu.Unlock()

	s.log.Info(ctx, "person saved", "id", p.ID)
	return s.reload(ctx)
}

func (s *personService) reload(ctx context.Context) error {
	if err := s.Load(ctx); errors.Is(err, ErrAuthExpired) {
		return err
	}
	return nil
}

func (s *personService) CancelEdit() {
	s.mu.Lock()
	s.editDraft = nil
	s.mu.Unlock()
}

func (s *personService) Remove(ctx context.Context, id int64) error {
	if err := s.client.DeletePerson(ctx, id); err != nil {
		return failure(ctx, s.auth, s.log, "remove person", err)
	}
	s.log.Info(ctx, "person removed", "id", id)
	return s.reload(ctx)
}

func (s *personService) Photo(ctx context.Context, photoID string) ([]byte, error) {
	b, err := s.client.Photo(ctx, photoID)
	if err != nil {
		return nil, failure(ctx, s.auth, s.log, "load photo", err)
	}
	return b, nil
}
