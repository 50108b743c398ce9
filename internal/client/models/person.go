package models

// Person is a known individual the recognition pipeline can identify.
type Person struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Unit     string `json:"unit"`
}

// Face is a reference photo attached to a person. ToRemove and Error are
// client-side edit annotations and are never sent to the server.
type Face struct {
	ID       int64  `json:"id"`
	PersonID int64  `json:"person_id"`
	PhotoID  string `json:"photo_id"`

	ToRemove bool   `json:"-"`
	Error    string `json:"-"`
}
