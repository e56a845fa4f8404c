package api

import (
	"time"

	"github.com/google/uuid"
)

type teamModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"type:text;uniqueIndex:uq_teams_name,where:deactivated IS NULL;not null"`
	Description string     `gorm:"type:text"`
	TicketHead  int64      `gorm:"type:bigint;not null;default:0"`
	Created     time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated   *time.Time `gorm:"type:timestamptz"`
	Deactivated *time.Time `gorm:"type:timestamptz"`
}

func (teamModel) TableName() string { return "teams" }

func (t teamModel) toAPI() Team {
	return Team{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		TicketHead:  t.TicketHead,
		Created:     t.Created,
		Activated:   t.Activated,
		Deactivated: t.Deactivated,
	}
}
