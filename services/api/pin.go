package api

import (
	"time"

	"github.com/google/uuid"
)

// PinnedTicket marks a ticket a member keeps at hand. The primary key is
// derived from (member id, ticket id), one pin per pair.
type PinnedTicket struct {
	ID       string    `json:"id" db:"id"`
	TeamID   uuid.UUID `json:"team_id" db:"team_id"`
	MemberID string    `json:"member_id" db:"member_id"`
	TicketID uuid.UUID `json:"ticket_id" db:"ticket_id"`
	Pinned   time.Time `json:"pinned" db:"pinned"`
}

type pinModel struct {
	ID       string    `gorm:"type:varchar(128);primaryKey"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;index"`
	MemberID string    `gorm:"type:varchar(128);not null;uniqueIndex:uq_pin_ticket_member"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_pin_ticket_member"`
	Pinned   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (pinModel) TableName() string { return "pinned_tickets" }

func newPinModel(teamID uuid.UUID, memberID string, ticketID uuid.UUID) (pinModel, error) {
	key, err := DeriveKey(memberID, ticketID.String())
	if err != nil {
		return pinModel{}, err
	}

	return pinModel{
		ID:       key,
		TeamID:   teamID,
		MemberID: memberID,
		TicketID: ticketID,
		Pinned:   time.Now().UTC(),
	}, nil
}

func (p pinModel) toAPI() PinnedTicket {
	return PinnedTicket{
		ID:       p.ID,
		TeamID:   p.TeamID,
		MemberID: p.MemberID,
		TicketID: p.TicketID,
		Pinned:   p.Pinned,
	}
}
