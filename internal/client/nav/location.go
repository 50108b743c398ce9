// Package nav holds the console's navigable location: a path plus query
// that plays the role of a browser URL. The current location is persisted
// so a restart comes back to the same place.
package nav

import (
	"fmt"
	"net/url"
	"strings"
)

// Location is a path with its query parameters.
type Location struct {
	Path  string
	Query url.Values
}

// String renders the location as path[?query].
func (l Location) String() string {
	p := l.Path
	if p == "" {
		p = "/"
	}
	if len(l.Query) == 0 {
		return p
	}
	return p + "?" + l.Query.Encode()
}

// Clone returns a deep copy of l.
func (l Location) Clone() Location {
	q := make(url.Values, len(l.Query))
	for k, vs := range l.Query {
		q[k] = append([]string(nil), vs...)
	}
	return Location{Path: l.Path, Query: q}
}

// WithQuery returns a copy of l with its query replaced.
func (l Location) WithQuery(q url.Values) Location {
	c := Location{Path: l.Path, Query: q}
	return c.Clone()
}

// ParseLocation parses "path?query". A missing path becomes "/".
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", s, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return Location{}, fmt.Errorf("parse location %q: absolute URLs are not locations", s)
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return Location{Path: p, Query: u.Query()}, nil
}

// MustParseLocation is ParseLocation for literals.
func MustParseLocation(s string) Location {
	l, err := ParseLocation(s)
	if err != nil {
		panic(err)
	}
	return l
}
