package models

import (
	"net/url"
	"strconv"
	"time"
)

// FilterTimeLayout is the layout of from/to in the console location.
const FilterTimeLayout = "2006-01-02 15:04:05"

// Location query keys.
const (
	QueryFrom       = "from"
	QueryTo         = "to"
	QueryPassageID  = "passage_id"
	QueryPersonName = "person_name"
	QueryPage       = "page"
	QueryReturnPath = "return_path"
)

// EventFilter is the user-editable part of the event log state.
// If both From and To are set, From is not after To.
type EventFilter struct {
	From       *time.Time
	To         *time.Time
	PassageID  string
	PersonName string
	Page       int
}

// DefaultEventFilter is the filter with nothing set on the first page.
func DefaultEventFilter() EventFilter {
	return EventFilter{Page: 1}
}

// FormatFilterTime renders t in loc using FilterTimeLayout.
func FormatFilterTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(FilterTimeLayout)
}

// ParseFilterTime parses s as FilterTimeLayout in loc.
func ParseFilterTime(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(FilterTimeLayout, s, loc)
}

// ApplyTo writes the filter fields into q. Unset fields and page 1 remove
// their keys.
func (f EventFilter) ApplyTo(q url.Values, loc *time.Location) {
	setOrDel := func(key, v string) {
		if v == "" {
			q.Del(key)
			return
		}
		q.Set(key, v)
	}

	if f.From != nil {
		q.Set(QueryFrom, FormatFilterTime(*f.From, loc))
	} else {
		q.Del(QueryFrom)
	}
	if f.To != nil {
		q.Set(QueryTo, FormatFilterTime(*f.To, loc))
	} else {
		q.Del(QueryTo)
	}
	setOrDel(QueryPassageID, f.PassageID)
	setOrDel(QueryPersonName, f.PersonName)
	if f.Page > 1 {
		q.Set(QueryPage, strconv.Itoa(f.Page))
	} else {
		q.Del(QueryPage)
	}
}

// FilterFromQuery parses a filter out of q. Malformed values are ignored.
func FilterFromQuery(q url.Values, loc *time.Location) EventFilter {
	f := DefaultEventFilter()
	if s := q.Get(QueryFrom); s != "" {
		if t, err := ParseFilterTime(s, loc); err == nil {
			f.From = &t
		}
	}
	if s := q.Get(QueryTo); s != "" {
		if t, err := ParseFilterTime(s, loc); err == nil {
			f.To = &t
		}
	}
	f.PassageID = q.Get(QueryPassageID)
	f.PersonName = q.Get(QueryPersonName)
	if s := q.Get(QueryPage); s != "" {
		if p, err := strconv.Atoi(s); err == nil && p >= 1 {
			f.Page = p
		}
	}
	return f
}
