package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username string    `gorm:"type:text;uniqueIndex;not null"`
	Created  time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

// Unique indexes on soft-deleted tables are partial so a deactivated row
// does not block recreating the same name or title.
type Team struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"type:text;uniqueIndex:uq_teams_name,where:deactivated IS NULL;not null"`
	Description string     `gorm:"type:text"`
	TicketHead  int64      `gorm:"type:bigint;not null;default:0"`
	Created     time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated   *time.Time `gorm:"type:timestamptz"`
	Deactivated *time.Time `gorm:"type:timestamptz"`
}

type Member struct {
	ID          string     `gorm:"type:varchar(128);primaryKey"`
	TeamID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Username    string     `gorm:"type:text;not null;index"`
	Role        string     `gorm:"type:varchar(2);not null;default:'UA'"`
	Bio         string     `gorm:"type:text"`
	Pronouns    string     `gorm:"type:text"`
	Created     time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated   *time.Time `gorm:"type:timestamptz"`
	Deactivated *time.Time `gorm:"type:timestamptz"`
	Team        Team       `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type TicketStatus struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title         string     `gorm:"type:text;not null"`
	TeamTitleHash string     `gorm:"type:varchar(128);uniqueIndex:uq_ticket_statuses_team_title,where:deactivated IS NULL;not null"`
	Created       time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated     *time.Time `gorm:"type:timestamptz"`
	Deactivated   *time.Time `gorm:"type:timestamptz"`
	Team          Team       `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Tag struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TeamID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title         string     `gorm:"type:text;not null"`
	TeamTitleHash string     `gorm:"type:varchar(128);uniqueIndex:uq_tags_team_title,where:deactivated IS NULL;not null"`
	Created       time.Time  `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated     *time.Time `gorm:"type:timestamptz"`
	Deactivated   *time.Time `gorm:"type:timestamptz"`
	Team          Team       `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Ticket struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey"`
	TeamID           uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:uq_ticket_team_number"`
	TicketNumber     int64         `gorm:"type:bigint;not null;uniqueIndex:uq_ticket_team_number"`
	Title            string        `gorm:"type:text;not null"`
	Description      string        `gorm:"type:text"`
	StatusID         *uuid.UUID    `gorm:"type:uuid"`
	AssignedMemberID *string       `gorm:"type:varchar(128)"`
	DueDate          *time.Time    `gorm:"type:timestamptz"`
	Created          time.Time     `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Activated        *time.Time    `gorm:"type:timestamptz"`
	Deactivated      *time.Time    `gorm:"type:timestamptz"`
	Team             Team          `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Status           *TicketStatus `gorm:"foreignKey:StatusID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	AssignedMember   *Member       `gorm:"foreignKey:AssignedMemberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

type TicketTag struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ticket_tag"`
	TagID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ticket_tag"`
	Created  time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Team     Team      `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Ticket   Ticket    `gorm:"foreignKey:TicketID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tag      Tag       `gorm:"foreignKey:TagID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type TeamInvite struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Username     string    `gorm:"type:text;not null;index"`
	TeamUserHash string    `gorm:"type:varchar(128);uniqueIndex;not null"`
	Created      time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Team         Team      `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type PinnedTicket struct {
	ID       string    `gorm:"type:varchar(128);primaryKey"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;index"`
	MemberID string    `gorm:"type:varchar(128);not null;uniqueIndex:uq_pin_ticket_member"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_pin_ticket_member"`
	Pinned   time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Team     Team      `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Member   Member    `gorm:"foreignKey:MemberID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Ticket   Ticket    `gorm:"foreignKey:TicketID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type TicketComment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;index"`
	Author   string    `gorm:"type:text;not null"`
	Content  string    `gorm:"type:text;not null"`
	Created  time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Edited   time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	Team     Team      `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Ticket   Ticket    `gorm:"foreignKey:TicketID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Event struct {
	ID       int64             `gorm:"type:bigserial;primaryKey"`
	TeamID   *uuid.UUID        `gorm:"type:uuid;index"`
	Actor    string            `gorm:"type:text;not null"`
	Action   string            `gorm:"type:text;not null"`
	ObjectID string            `gorm:"type:text;not null"`
	Details  datatypes.JSONMap `gorm:"type:jsonb"`
	Edited   time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime;index:idx_events_edited,sort:desc"`
	Team     *Team             `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TeamID      uuid.UUID `gorm:"type:uuid;not null;index"`
	TicketID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ObjectKey   string    `gorm:"type:text;not null;uniqueIndex"`
	Filename    string    `gorm:"type:text;not null"`
	ContentType string    `gorm:"type:text"`
	Size        int64     `gorm:"type:bigint;not null;default:0"`
	UploadedBy  string    `gorm:"type:text;not null"`
	Created     time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	Team        Team      `gorm:"foreignKey:TeamID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Ticket      Ticket    `gorm:"foreignKey:TicketID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&User{},
		&Team{},
		&Member{},
		&TicketStatus{},
		&Tag{},
		&Ticket{},
		&TicketTag{},
		&TeamInvite{},
		&PinnedTicket{},
		&TicketComment{},
		&Event{},
		&Attachment{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	constraints := []struct {
		model any
		field string
	}{
		{&Member{}, "Team"},
		{&TicketStatus{}, "Team"},
		{&Tag{}, "Team"},
		{&Ticket{}, "Team"},
		{&Ticket{}, "Status"},
		{&Ticket{}, "AssignedMember"},
		{&TicketTag{}, "Ticket"},
		{&TicketTag{}, "Tag"},
		{&TeamInvite{}, "Team"},
		{&PinnedTicket{}, "Member"},
		{&PinnedTicket{}, "Ticket"},
		{&TicketComment{}, "Ticket"},
		{&Event{}, "Team"},
		{&Attachment{}, "Ticket"},
	}
	for _, c := range constraints {
		if err := m.CreateConstraint(c.model, c.field); err != nil {
			return err
		}
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Migrator().DropTable(
		&Attachment{},
		&Event{},
		&TicketComment{},
		&PinnedTicket{},
		&TeamInvite{},
		&TicketTag{},
		&Ticket{},
		&Tag{},
		&TicketStatus{},
		&Member{},
		&Team{},
		&User{},
	); err != nil {
		return err
	}

	return nil
}
