package api

import (
	"time"

	"github.com/google/uuid"
)

// TicketComment is a comment on a ticket, owned by its author.
type TicketComment struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TeamID   uuid.UUID `json:"team_id" db:"team_id"`
	TicketID uuid.UUID `json:"ticket_id" db:"ticket_id"`
	Author   string    `json:"author" db:"author"`
	Content  string    `json:"content" db:"content"`
	Created  time.Time `json:"created" db:"created"`
	Edited   time.Time `json:"edited" db:"edited"`
}

type commentModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;index"`
	Author   string    `gorm:"type:text;not null"`
	Content  string    `gorm:"type:text;not null"`
	Created  time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Edited   time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (commentModel) TableName() string { return "ticket_comments" }

func (c commentModel) toAPI() TicketComment {
	return TicketComment{
		ID:       c.ID,
		TeamID:   c.TeamID,
		TicketID: c.TicketID,
		Author:   c.Author,
		Content:  c.Content,
		Created:  c.Created,
		Edited:   c.Edited,
	}
}
