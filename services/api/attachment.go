package api

import (
	"time"

	"github.com/google/uuid"
)

// Attachment records a file stored for a ticket. The row is created when a
// presigned upload URL is requested; the bytes live in the object store.
type Attachment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TeamID      uuid.UUID `json:"team_id" db:"team_id"`
	TicketID    uuid.UUID `json:"ticket_id" db:"ticket_id"`
	Filename    string    `json:"filename" db:"filename"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	UploadedBy  string    `json:"uploaded_by" db:"uploaded_by"`
	Created     time.Time `json:"created" db:"created"`
}

type attachmentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID      uuid.UUID `gorm:"type:uuid;not null;index"`
	TicketID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ObjectKey   string    `gorm:"type:text;not null;uniqueIndex"`
	Filename    string    `gorm:"type:text;not null"`
	ContentType string    `gorm:"type:text"`
	Size        int64     `gorm:"type:bigint;not null;default:0"`
	UploadedBy  string    `gorm:"type:text;not null"`
	Created     time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (attachmentModel) TableName() string { return "attachments" }

func (m attachmentModel) toAPI() Attachment {
	return Attachment{
		ID:          m.ID,
		TeamID:      m.TeamID,
		TicketID:    m.TicketID,
		Filename:    m.Filename,
		ContentType: m.ContentType,
		Size:        m.Size,
		UploadedBy:  m.UploadedBy,
		Created:     m.Created,
	}
}
