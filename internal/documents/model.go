package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document lifecycle statuses. A document moves pending -> processing and
// then to exactly one of completed or failed. Failed documents may be reset
// to pending on resubmission.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Document is one submitted URL and the state of its ingestion.
type Document struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	URL          string    `gorm:"uniqueIndex;not null" json:"url"`
	Title        string    `json:"title"`
	Status       string    `gorm:"index;not null;default:pending" json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ChunkCount   int       `json:"chunk_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = StatusPending
	}
	return nil
}

// Terminal reports whether the document has finished processing.
func (d *Document) Terminal() bool {
	return d.Status == StatusCompleted || d.Status == StatusFailed
}
