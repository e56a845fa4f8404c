package api

import (
	"time"

	"github.com/google/uuid"
)

// Team is a tenant owning tickets, members, statuses, and tags. TicketHead
// is the per-team ticket counter: it never decreases and advances exactly
// once per ticket created.
type Team struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	TicketHead  int64      `json:"ticket_head" db:"ticket_head"`
	Created     time.Time  `json:"created" db:"created"`
	Activated   *time.Time `json:"activated" db:"activated"`
	Deactivated *time.Time `json:"deactivated" db:"deactivated"`
}
