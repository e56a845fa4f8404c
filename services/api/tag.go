package api

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// tagTitlePattern restricts tag names to word characters and dashes.
var tagTitlePattern = regexp.MustCompile(`^[\w-]+$`)

func validateTagTitle(title string) error {
	if title == "" {
		return missingField("title")
	}
	if !tagTitlePattern.MatchString(title) {
		return FieldErrors{"title": "tag names must be word characters and dashes"}
	}
	return nil
}

// Tag is a team-scoped label. The (team, title) pair is unique, enforced by
// the derived team_title_hash column.
type Tag struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TeamID      uuid.UUID  `json:"team_id" db:"team_id"`
	Title       string     `json:"title" db:"title"`
	Created     time.Time  `json:"created" db:"created"`
	Activated   *time.Time `json:"activated" db:"activated"`
	Deactivated *time.Time `json:"deactivated" db:"deactivated"`
}

type tagModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title         string     `gorm:"type:text;not null"`
	TeamTitleHash string     `gorm:"type:varchar(128);uniqueIndex:uq_tags_team_title,where:deactivated IS NULL;not null"`
	Created       time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated     *time.Time `gorm:"type:timestamptz"`
	Deactivated   *time.Time `gorm:"type:timestamptz"`
}

func (tagModel) TableName() string { return "tags" }

// newTagModel builds a tag with its uniqueness hash already computed, so
// persistence is a plain insert with no hidden hook.
func newTagModel(teamID uuid.UUID, title string) (tagModel, error) {
	if err := validateTagTitle(title); err != nil {
		return tagModel{}, err
	}
	hash, err := DeriveKey(teamID.String(), title)
	if err != nil {
		return tagModel{}, err
	}

	now := time.Now().UTC()
	return tagModel{
		ID:            uuid.New(),
		TeamID:        teamID,
		Title:         title,
		TeamTitleHash: hash,
		Created:       now,
		Activated:     &now,
	}, nil
}

func (t tagModel) toAPI() Tag {
	return Tag{
		ID:          t.ID,
		TeamID:      t.TeamID,
		Title:       t.Title,
		Created:     t.Created,
		Activated:   t.Activated,
		Deactivated: t.Deactivated,
	}
}
