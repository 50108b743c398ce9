package models

import (
	"encoding/base64"
	"net/http"

	"github.com/google/uuid"
)

// PhotoStatus is the upload state of a PendingPhoto.
type PhotoStatus string

const (
	PhotoPending  PhotoStatus = "pending"
	PhotoUploaded PhotoStatus = "uploaded"
	PhotoErrored  PhotoStatus = "errored"
)

// PendingPhoto is a locally selected photo that has not been attached to a
// person yet.
type PendingPhoto struct {
	ID      uuid.UUID
	Name    string
	Data    []byte
	Preview string
	Status  PhotoStatus
	Error   string
}

// NewPendingPhoto wraps raw photo bytes read from a local file.
func NewPendingPhoto(name string, data []byte) PendingPhoto {
	return PendingPhoto{
		ID:      uuid.New(),
		Name:    name,
		Data:    data,
		Preview: DataURL(data),
		Status:  PhotoPending,
	}
}

// DataURL encodes data as a data: URL with a sniffed content type.
func DataURL(data []byte) string {
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
