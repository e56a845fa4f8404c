package api

import (
	"time"

	"github.com/google/uuid"
)

// TeamInvite is a pending invitation of a user to a team, unique per
// (team, user) via a derived hash column. Accepting one creates the
// membership and deletes the invite atomically.
type TeamInvite struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TeamID   uuid.UUID `json:"team_id" db:"team_id"`
	Username string    `json:"username" db:"username"`
	Created  time.Time `json:"created" db:"created"`
}

type inviteModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Username     string    `gorm:"type:text;not null;index"`
	TeamUserHash string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	Created      time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (inviteModel) TableName() string { return "team_invites" }

func newInviteModel(teamID uuid.UUID, username string) (inviteModel, error) {
	if username == "" {
		return inviteModel{}, missingField("username")
	}
	hash, err := DeriveKey(teamID.String(), username)
	if err != nil {
		return inviteModel{}, err
	}

	return inviteModel{
		ID:           uuid.New(),
		TeamID:       teamID,
		Username:     username,
		TeamUserHash: hash,
		Created:      time.Now().UTC(),
	}, nil
}

func (i inviteModel) toAPI() TeamInvite {
	return TeamInvite{
		ID:       i.ID,
		TeamID:   i.TeamID,
		Username: i.Username,
		Created:  i.Created,
	}
}
