package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/skudadmin/internal/client/models"
	"github.com/dmitrijs2005/skudadmin/internal/client/nav"
	"github.com/dmitrijs2005/skudadmin/internal/client/services"
)

const dateLayout = "2006-01-02"

// clearArg resets a filter field.
const clearArg = "-"

// openEvents moves to the events page, carrying the current filter in its
// query.
func (a *App) openEvents(ctx context.Context) {
	if a.router.Current().Path == nav.PathEvents {
		return
	}
	q := url.Values{}
	a.events.Filter().ApplyTo(q, a.loc)
	a.router.Push(ctx, nav.Location{Path: nav.PathEvents, Query: q})
}

// ListEvents loads and prints the current page of the event log.
func (a *App) ListEvents(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	a.openEvents(ctx)

	if len(a.events.PassageNames()) == 0 {
		if err := a.events.LoadPassageNames(ctx); err != nil {
			if errors.Is(err, services.ErrAuthExpired) {
				return a.report(err)
			}
			a.printMuted("Passage names unavailable: " + err.Error())
		}
	}
	if err := a.events.Load(ctx); err != nil {
		return a.report(err)
	}

	a.printFilter()
	names := a.events.PassageNames()
	events := a.events.Events()
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			models.FormatFilterTime(e.Time, a.loc),
			names.Name(e.PassageID),
			string(e.Type),
			eventDetails(e),
		})
	}
	a.printTable("No events.", []string{"Time", "Passage", "Type", "Details"}, rows)
	return nil
}

func eventDetails(e models.Event) string {
	p, err := e.Payload()
	if err != nil {
		return err.Error()
	}
	switch d := p.(type) {
	case *models.PassageOpenData:
		return personLabel(d.PersonName, d.PersonPosition, d.PersonUnit)
	case *models.FaceRecognizedData:
		return fmt.Sprintf("photo %s, confidence %.2f", d.PhotoID, d.DetectConfidence)
	case *models.PersonRecognizeData:
		return fmt.Sprintf("%s, photo %s, distance %.3f",
			personLabel(d.PersonName, d.PersonPosition, d.PersonUnit), d.PhotoID, d.DescriptorsDistance)
	default:
		return string(e.Data)
	}
}

func personLabel(name, position, unit string) string {
	parts := []string{name}
	for _, s := range []string{position, unit} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func (a *App) printFilter() {
	f := a.events.Filter()
	parts := []string{fmt.Sprintf("page %d", f.Page)}
	if f.From != nil {
		parts = append(parts, "from "+models.FormatFilterTime(*f.From, a.loc))
	}
	if f.To != nil {
		parts = append(parts, "to "+models.FormatFilterTime(*f.To, a.loc))
	}
	if f.PassageID != "" {
		parts = append(parts, "passage "+a.events.PassageNames().Name(f.PassageID))
	}
	if f.PersonName != "" {
		parts = append(parts, fmt.Sprintf("name %q", f.PersonName))
	}
	fmt.Fprintln(a.out, headerStyle.Render("Events: "+strings.Join(parts, ", ")))
}

// parseTimeArg accepts "-", a date or a full filter timestamp.
func (a *App) parseTimeArg(arg string) (*time.Time, error) {
	arg = strings.TrimSpace(arg)
	if arg == clearArg {
		return nil, nil
	}
	if len(arg) == len(dateLayout) {
		t, err := time.ParseInLocation(dateLayout, arg, a.loc)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	t, err := models.ParseFilterTime(arg, a.loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (a *App) setTime(ctx context.Context, arg string, set func(context.Context, *time.Time)) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	t, err := a.parseTimeArg(arg)
	if err != nil {
		a.printErr(fmt.Sprintf("Invalid time %q, expected %s or %s", arg, dateLayout, models.FilterTimeLayout))
		return err
	}
	a.openEvents(ctx)
	set(ctx, t)
	a.printFilter()
	return nil
}

// SetFrom sets or clears the lower time bound.
func (a *App) SetFrom(ctx context.Context, arg string) error {
	return a.setTime(ctx, arg, a.events.SetFrom)
}

// SetTo sets or clears the upper time bound.
func (a *App) SetTo(ctx context.Context, arg string) error {
	return a.setTime(ctx, arg, a.events.SetTo)
}

func (a *App) setText(ctx context.Context, arg string, set func(context.Context, string)) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if arg == clearArg {
		arg = ""
	}
	a.openEvents(ctx)
	set(ctx, arg)
	a.printFilter()
	return nil
}

// SetPassage sets or clears the passage filter.
func (a *App) SetPassage(ctx context.Context, arg string) error {
	return a.setText(ctx, arg, a.events.SetPassageID)
}

// SetName sets or clears the person name filter.
func (a *App) SetName(ctx context.Context, arg string) error {
	return a.setText(ctx, arg, a.events.SetPersonName)
}

// SetPage moves the event log to page arg.
func (a *App) SetPage(ctx context.Context, arg string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	page, err := strconv.Atoi(arg)
	if err != nil {
		a.printErr("Invalid page: " + arg)
		return err
	}
	return a.gotoPage(ctx, page)
}

// NextPage moves one page forward.
func (a *App) NextPage(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	return a.gotoPage(ctx, a.events.Filter().Page+1)
}

// PrevPage moves one page back.
func (a *App) PrevPage(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	return a.gotoPage(ctx, a.events.Filter().Page-1)
}

func (a *App) gotoPage(ctx context.Context, page int) error {
	a.openEvents(ctx)
	if err := a.events.SetPage(ctx, page); err != nil {
		a.printErr(fmt.Sprintf("Page %d is not available.", page))
		return err
	}
	a.printFilter()
	return nil
}
