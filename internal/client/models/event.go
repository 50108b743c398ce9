package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType classifies an audit event.
type EventType string

const (
	EventPassageOpen     EventType = "passage_open"
	EventFaceRecognize   EventType = "face_recognize"
	EventPersonRecognize EventType = "person_recognize"
)

// Event is an immutable audit record. Data holds a payload whose shape
// depends on Type.
type Event struct {
	ID        int64           `json:"id"`
	Time      time.Time       `json:"time"`
	PassageID string          `json:"passageID"`
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data"`
}

type PassageOpenData struct {
	PersonID       int64  `json:"person_id"`
	PersonName     string `json:"person_name"`
	PersonPosition string `json:"person_position"`
	PersonUnit     string `json:"person_unit"`
	PassageID      string `json:"passage_id"`
}

type FaceRecognizedData struct {
	PhotoID          string  `json:"photo_id"`
	DetectConfidence float64 `json:"detect_confidence"`
}

type PersonRecognizeData struct {
	PhotoID             string  `json:"photo_id"`
	PersonID            int64   `json:"person_id"`
	PersonName          string  `json:"person_name"`
	PersonPosition      string  `json:"person_position"`
	PersonUnit          string  `json:"person_unit"`
	DetectConfidence    float64 `json:"detect_confidence"`
	DescriptorsDistance float64 `json:"descriptors_distance"`
}

// Payload decodes Data according to Type. Unknown types return the raw
// message unchanged.
func (e Event) Payload() (any, error) {
	var dst any
	switch e.Type {
	case EventPassageOpen:
		dst = &PassageOpenData{}
	case EventFaceRecognize:
		dst = &FaceRecognizedData{}
	case EventPersonRecognize:
		dst = &PersonRecognizeData{}
	default:
		return e.Data, nil
	}
	if len(e.Data) == 0 {
		return dst, nil
	}
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return dst, nil
}

// PassageNames maps a passage id to its display name.
type PassageNames map[string]string

// Name returns the display name of id, falling back to the id itself.
func (p PassageNames) Name(id string) string {
	if n, ok := p[id]; ok && n != "" {
		return n
	}
	return id
}
