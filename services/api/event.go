package api

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	actionCreated = "created"
	actionUpdated = "updated"
	actionDeleted = "deleted"
)

// Event is an append-only activity record. The team reference is nullable so
// history survives a team hard-delete.
type Event struct {
	ID       int64          `json:"id" db:"id"`
	TeamID   *uuid.UUID     `json:"team_id" db:"team_id"`
	Actor    string         `json:"actor" db:"actor"`
	Action   string         `json:"action" db:"action"`
	ObjectID string         `json:"object_id" db:"object_id"`
	Details  map[string]any `json:"details" db:"details"`
	Edited   time.Time      `json:"edited" db:"edited"`
}

type eventModel struct {
	ID       int64             `gorm:"type:bigserial;primaryKey"`
	TeamID   *uuid.UUID        `gorm:"type:uuid;index"`
	Actor    string            `gorm:"type:text;not null"`
	Action   string            `gorm:"type:text;not null"`
	ObjectID string            `gorm:"type:text;not null"`
	Details  datatypes.JSONMap `gorm:"type:jsonb"`
	Edited   time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (eventModel) TableName() string { return "events" }

func (e eventModel) toAPI() Event {
	return Event{
		ID:       e.ID,
		TeamID:   e.TeamID,
		Actor:    e.Actor,
		Action:   e.Action,
		ObjectID: e.ObjectID,
		Details:  mapFromJSONMap(e.Details),
		Edited:   e.Edited,
	}
}

// recordEvent appends an activity row and mirrors it onto the bus. The row
// is the durable record; a failed insert is only logged by the caller's
// middleware, never turned into a request failure.
func (a *API) recordEvent(ctx context.Context, teamID uuid.UUID, actor, resource, action, objectID string, details map[string]any) {
	tid := teamID
	model := eventModel{
		TeamID:   &tid,
		Actor:    actor,
		Action:   fmt.Sprintf("%s.%s", resource, action),
		ObjectID: objectID,
		Details:  toJSONMap(details),
		Edited:   time.Now().UTC(),
	}

	if err := a.store.ORM.WithContext(ctx).Create(&model).Error; err != nil {
		return
	}
	eventsRecorded.Inc()

	a.publishJSON(fmt.Sprintf("sluggo.%s.%s", resource, action), map[string]any{
		"team_id":   teamID,
		"actor":     actor,
		"object_id": objectID,
		"details":   details,
	})
}

func mapFromJSONMap(src datatypes.JSONMap) map[string]any {
	if src == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func toJSONMap(src map[string]any) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	if src == nil {
		return out
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}
