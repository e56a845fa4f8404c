package api

import (
	"time"

	"github.com/google/uuid"
)

type memberModel struct {
	ID          string     `gorm:"type:varchar(128);primaryKey"`
	TeamID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Username    string     `gorm:"type:text;not null;index"`
	Role        string     `gorm:"type:varchar(2);not null;default:'UA'"`
	Bio         string     `gorm:"type:text"`
	Pronouns    string     `gorm:"type:text"`
	Created     time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated   *time.Time `gorm:"type:timestamptz"`
	Deactivated *time.Time `gorm:"type:timestamptz"`
}

func (memberModel) TableName() string { return "members" }

func (m memberModel) toAPI() Member {
	return Member{
		ID:          m.ID,
		TeamID:      m.TeamID,
		Username:    m.Username,
		Role:        Role(m.Role),
		Bio:         m.Bio,
		Pronouns:    m.Pronouns,
		Created:     m.Created,
		Activated:   m.Activated,
		Deactivated: m.Deactivated,
	}
}
