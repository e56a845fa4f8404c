package api

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus is a team-defined workflow state for tickets. Like tags, the
// (team, title) pair is unique via a derived hash column.
type TicketStatus struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TeamID      uuid.UUID  `json:"team_id" db:"team_id"`
	Title       string     `json:"title" db:"title"`
	Created     time.Time  `json:"created" db:"created"`
	Activated   *time.Time `json:"activated" db:"activated"`
	Deactivated *time.Time `json:"deactivated" db:"deactivated"`
}

type statusModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title         string     `gorm:"type:text;not null"`
	TeamTitleHash string     `gorm:"type:varchar(128);uniqueIndex:uq_ticket_statuses_team_title,where:deactivated IS NULL;not null"`
	Created       time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated     *time.Time `gorm:"type:timestamptz"`
	Deactivated   *time.Time `gorm:"type:timestamptz"`
}

func (statusModel) TableName() string { return "ticket_statuses" }

func newStatusModel(teamID uuid.UUID, title string) (statusModel, error) {
	if title == "" {
		return statusModel{}, missingField("title")
	}
	hash, err := DeriveKey(teamID.String(), title)
	if err != nil {
		return statusModel{}, err
	}

	now := time.Now().UTC()
	return statusModel{
		ID:            uuid.New(),
		TeamID:        teamID,
		Title:         title,
		TeamTitleHash: hash,
		Created:       now,
		Activated:     &now,
	}, nil
}

func (s statusModel) toAPI() TicketStatus {
	return TicketStatus{
		ID:          s.ID,
		TeamID:      s.TeamID,
		Title:       s.Title,
		Created:     s.Created,
		Activated:   s.Activated,
		Deactivated: s.Deactivated,
	}
}

// defaultStatusTitles seed every new team; the set is configurable.
var defaultStatusTitles = []string{"Created", "Started", "Completed"}
