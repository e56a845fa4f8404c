package api

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is a team-owned work item. TicketNumber is unique within the team
// and assigned from the team's counter in the same transaction that creates
// the row.
type Ticket struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	TeamID           uuid.UUID  `json:"team_id" db:"team_id"`
	TicketNumber     int64      `json:"ticket_number" db:"ticket_number"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	StatusID         *uuid.UUID `json:"status_id" db:"status_id"`
	AssignedMemberID *string    `json:"assigned_member_id" db:"assigned_member_id"`
	DueDate          *time.Time `json:"due_date" db:"due_date"`
	TagList          []Tag      `json:"tag_list" db:"-"`
	Created          time.Time  `json:"created" db:"created"`
	Activated        *time.Time `json:"activated" db:"activated"`
	Deactivated      *time.Time `json:"deactivated" db:"deactivated"`
}
