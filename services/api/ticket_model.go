package api

import (
	"time"

	"github.com/google/uuid"
)

type ticketModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TeamID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_ticket_team_number"`
	TicketNumber     int64      `gorm:"type:bigint;not null;uniqueIndex:uq_ticket_team_number"`
	Title            string     `gorm:"type:text;not null"`
	Description      string     `gorm:"type:text"`
	StatusID         *uuid.UUID `gorm:"type:uuid"`
	AssignedMemberID *string    `gorm:"type:varchar(128)"`
	DueDate          *time.Time `gorm:"type:timestamptz"`
	Created          time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated        *time.Time `gorm:"type:timestamptz"`
	Deactivated      *time.Time `gorm:"type:timestamptz"`
}

func (ticketModel) TableName() string { return "tickets" }

func (t ticketModel) toAPI() Ticket {
	return Ticket{
		ID:               t.ID,
		TeamID:           t.TeamID,
		TicketNumber:     t.TicketNumber,
		Title:            t.Title,
		Description:      t.Description,
		StatusID:         t.StatusID,
		AssignedMemberID: t.AssignedMemberID,
		DueDate:          t.DueDate,
		TagList:          []Tag{},
		Created:          t.Created,
		Activated:        t.Activated,
		Deactivated:      t.Deactivated,
	}
}
