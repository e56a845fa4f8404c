package api

import (
	"time"

	"github.com/google/uuid"
)

// Role governs what a member may do within their team.
type Role string

const (
	RoleUnapproved Role = "UA"
	RoleApproved   Role = "AP"
	RoleAdmin      Role = "AD"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUnapproved, RoleApproved, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role carries admin rights.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// IsApproved reports whether the role permits regular mutations; admins are
// approved by definition.
func (r Role) IsApproved() bool { return r == RoleApproved || r == RoleAdmin }

// Member is the role-bearing relationship between a user and a team. Its ID
// is the derived key of (team id, username), which doubles as the uniqueness
// constraint: one membership per pair.
type Member struct {
	ID          string     `json:"id" db:"id"`
	TeamID      uuid.UUID  `json:"team_id" db:"team_id"`
	Username    string     `json:"username" db:"username"`
	Role        Role       `json:"role" db:"role"`
	Bio         string     `json:"bio" db:"bio"`
	Pronouns    string     `json:"pronouns" db:"pronouns"`
	Created     time.Time  `json:"created" db:"created"`
	Activated   *time.Time `json:"activated" db:"activated"`
	Deactivated *time.Time `json:"deactivated" db:"deactivated"`
}
