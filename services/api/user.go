package api

import (
	"time"

	"github.com/google/uuid"
)

// userModel exists so usernames seen by the token endpoint have a durable
// home; full identity management (passwords, OAuth) is handled upstream.
type userModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username string    `gorm:"type:text;uniqueIndex;not null"`
	Created  time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (userModel) TableName() string { return "users" }
