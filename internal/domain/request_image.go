package domain

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type RequestImage struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	RequestID   uuid.UUID  `json:"request_id" db:"request_id"`
	ImageURL    string     `json:"image_url" db:"image_url"`
	ImageType   ImageType  `json:"image_type" db:"image_type"`
	UploadedBy  uuid.UUID  `json:"uploaded_by" db:"uploaded_by"`
	Description *string    `json:"description,omitempty" db:"description"`
	UploadedAt  *time.Time `json:"uploaded_at,omitempty" db:"uploaded_at"`
	StoragePath string     `json:"-" db:"storage_path"`
}

type ImageType string

const (
	ImageInitial    ImageType = "initial"
	ImageProgress   ImageType = "progress"
	ImageCompletion ImageType = "completion"
	ImageAdditional ImageType = "additional"
	ImageGeneral    ImageType = "general"
)

func (t ImageType) IsValid() bool {
	switch t {
	case ImageInitial, ImageProgress, ImageCompletion, ImageAdditional, ImageGeneral:
		return true
	default:
		return false
	}
}

// Upload is a file handed to the engine by the boundary layer. Open is
// called once per upload attempt.
type Upload struct {
	FileName    string
	Size        int64
	ContentType string
	Description *string
	Open        func() (io.ReadCloser, error)
}

// StoredObject is what the blob collaborator returns for a finished upload.
// Reused is set when identical content was already stored under the same
// key, in which case a rollback must leave the object alone.
type StoredObject struct {
	URL         string
	StoragePath string
	Reused      bool
}

type FileFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// ImageBatchResult summarises a multi-file upload where files succeed or
// fail independently.
type ImageBatchResult struct {
	Request   *MaintenanceRequest `json:"request,omitempty"`
	Added     []RequestImage      `json:"added"`
	Failed    []FileFailure       `json:"failed"`
	Succeeded int                 `json:"succeeded"`
	FailedN   int                 `json:"failed_count"`
}
