package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/skudadmin/internal/client/nav"
	"github.com/dmitrijs2005/skudadmin/internal/client/photosync"
	"github.com/dmitrijs2005/skudadmin/internal/client/services"
	"github.com/dmitrijs2005/skudadmin/internal/filex"
)

const photosPrompt = "Enter photo file paths, one per line"

// ListPersons opens the persons page and prints the loaded roster.
func (a *App) ListPersons(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if a.router.Current().Path != nav.PathPersons {
		a.router.Push(ctx, nav.Location{Path: nav.PathPersons})
	}
	if err := a.persons.Load(ctx); err != nil {
		return a.report(err)
	}

	persons := a.persons.Persons()
	rows := make([][]string, 0, len(persons))
	for _, p := range persons {
		rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Name, p.Position, p.Unit})
	}
	a.printTable("No persons.", []string{"ID", "Name", "Position", "Unit"}, rows)
	return nil
}

func (a *App) pendingDraft() error {
	if a.persons.NewDraft() != nil || a.persons.EditDraft() != nil {
		a.printErr("A person draft is pending. Type 'person-retry' to resubmit or 'person-cancel' to discard it.")
		return services.ErrDraftOpen
	}
	return nil
}

// AddPerson walks through the create form and uploads the chosen photos.
// A draft whose photos partly failed stays open for person-retry.
func (a *App) AddPerson(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.pendingDraft(); err != nil {
		return err
	}
	if err := a.persons.StartCreate(); err != nil {
		return a.report(err)
	}

	fields := []struct {
		prompt string
		set    func(string) error
	}{
		{"Enter name", a.persons.SetNewName},
		{"Enter position", a.persons.SetNewPosition},
		{"Enter unit", a.persons.SetNewUnit},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			a.persons.CancelCreate()
			return err
		}
		_ = f.set(v)
	}

	paths, err := GetLines(a.reader, photosPrompt, a.out)
	if err != nil {
		a.persons.CancelCreate()
		return err
	}
	for _, p := range paths {
		data, err := filex.ReadPhoto(p)
		if err != nil {
			a.printErr(fmt.Sprintf("Skipping %s: %v", p, err))
			continue
		}
		_, _ = a.persons.AddNewPhoto(filepath.Base(p), data)
	}

	return a.submitNewPerson(ctx)
}

func (a *App) submitNewPerson(ctx context.Context) error {
	err := a.persons.SubmitCreate(ctx)
	if err == nil {
		a.printOK("Person created.")
		return nil
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		a.persons.CancelCreate()
		return a.report(err)
	}
	if d := a.persons.NewDraft(); d != nil {
		a.printDraft(d)
	}
	return a.report(err)
}

// EditPerson loads a person with its faces and walks through the edit form.
// Empty answers keep the current values.
func (a *App) EditPerson(ctx context.Context, arg string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		a.printErr("Invalid person id: " + arg)
		return err
	}
	if err := a.pendingDraft(); err != nil {
		return err
	}
	if err := a.persons.StartEdit(ctx, id); err != nil {
		return a.report(err)
	}
	d := a.persons.EditDraft()

	fields := []struct {
		label, current string
		set            func(string) error
	}{
		{"name", d.Name, a.persons.SetEditName},
		{"position", d.Position, a.persons.SetEditPosition},
		{"unit", d.Unit, a.persons.SetEditUnit},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, fmt.Sprintf("Enter %s [%s]", f.label, f.current), a.out)
		if err != nil {
			a.persons.CancelEdit()
			return err
		}
		if v != "" {
			_ = f.set(v)
		}
	}

	if len(d.Faces) > 0 {
		rows := make([][]string, 0, len(d.Faces))
		for _, f := range d.Faces {
			rows = append(rows, []string{strconv.FormatInt(f.ID, 10), f.PhotoID})
		}
		a.printTable("", []string{"Face", "Photo"}, rows)

		v, err := getSimpleText(a.reader, "Enter face ids to remove, separated by spaces", a.out)
		if err != nil {
			a.persons.CancelEdit()
			return err
		}
		for _, s := range strings.Fields(v) {
			faceID, err := strconv.ParseInt(s, 10, 64)
			if err == nil {
				err = a.persons.MarkFaceToRemove(faceID)
			}
			if err != nil {
				a.printErr(fmt.Sprintf("Skipping face %s: %v", s, err))
			}
		}
	}

	paths, err := GetLines(a.reader, photosPrompt, a.out)
	if err != nil {
		a.persons.CancelEdit()
		return err
	}
	for _, p := range paths {
		data, err := filex.ReadPhoto(p)
		if err != nil {
			a.printErr(fmt.Sprintf("Skipping %s: %v", p, err))
			continue
		}
		_, _ = a.persons.AddEditPhoto(filepath.Base(p), data)
	}

	return a.submitEditPerson(ctx)
}

func (a *App) submitEditPerson(ctx context.Context) error {
	err := a.persons.SubmitSave(ctx)
	if err == nil {
		a.printOK("Person saved.")
		return nil
	}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		a.persons.CancelEdit()
		return a.report(err)
	}
	if d := a.persons.EditDraft(); d != nil {
		a.printDraft(d)
	}
	return a.report(err)
}

// RetryPerson resubmits the pending create or edit draft. Items that
// already succeeded are not sent again.
func (a *App) RetryPerson(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	switch {
	case a.persons.NewDraft() != nil:
		return a.submitNewPerson(ctx)
	case a.persons.EditDraft() != nil:
		return a.submitEditPerson(ctx)
	default:
		fmt.Fprintln(a.out, "Nothing to retry.")
		return nil
	}
}

// CancelPerson discards any pending person draft.
func (a *App) CancelPerson(ctx context.Context) error {
	a.persons.CancelCreate()
	a.persons.CancelEdit()
	fmt.Fprintln(a.out, "Draft discarded.")
	return nil
}

// RemovePerson deletes a person by id.
func (a *App) RemovePerson(ctx context.Context, arg string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		a.printErr("Invalid person id: " + arg)
		return err
	}
	if err := a.persons.Remove(ctx, id); err != nil {
		return a.report(err)
	}
	a.printOK(fmt.Sprintf("Person %d removed.", id))
	return nil
}

// SavePhoto downloads a stored photo to file.
func (a *App) SavePhoto(ctx context.Context, photoID, file string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	data, err := a.persons.Photo(ctx, photoID)
	if err != nil {
		return a.report(err)
	}
	path, err := filex.EnsureParentDir(file)
	if err != nil {
		return a.report(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return a.report(err)
	}
	a.printOK(fmt.Sprintf("Saved %d bytes to %s.", len(data), path))
	return nil
}

// printDraft shows per-item results of the last photo batch.
func (a *App) printDraft(d *services.PersonDraft) {
	fmt.Fprintf(a.out, "Photo sync: %s\n", d.Sync)
	if d.Err != nil {
		a.printErr(d.Err.Error())
	}
	rows := make([][]string, 0, len(d.Photos)+len(d.Faces))
	for _, p := range d.Photos {
		rows = append(rows, []string{"photo " + p.Name, string(p.Status), p.Error})
	}
	for _, f := range d.Faces {
		if f.ToRemove {
			rows = append(rows, []string{"face " + strconv.FormatInt(f.ID, 10), "remove", f.Error})
		}
	}
	a.printTable("", []string{"Item", "Status", "Error"}, rows)
	if d.Sync == photosync.PartiallyFailed {
		a.printMuted("Type 'person-retry' to resubmit failed items or 'person-cancel' to discard.")
	}
}
