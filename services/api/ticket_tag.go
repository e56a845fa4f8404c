package api

import (
	"time"

	"github.com/google/uuid"
)

// ticketTagModel associates a ticket with a tag; unique per (ticket, tag).
// Rows are created and deleted only by the tag reconciler.
type ticketTagModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ticket_tag"`
	TagID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ticket_tag"`
	Created  time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (ticketTagModel) TableName() string { return "ticket_tags" }
