package api

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tagDiff computes the minimal add/remove sets taking the current
// associations to the desired ones. Duplicates in either input collapse.
func tagDiff(current, desired []uuid.UUID) (toAdd, toRemove []uuid.UUID) {
	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	desiredSet := make(map[uuid.UUID]struct{}, len(desired))
	for _, id := range desired {
		desiredSet[id] = struct{}{}
	}

	for id := range desiredSet {
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for id := range currentSet {
		if _, ok := desiredSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}

// reconcileTags applies the desired tag set to a ticket. nil means "tags not
// supplied, leave alone", while an empty slice removes every association.
// Idempotent: reapplying the current set touches no rows.
//
// Every desired tag must belong to the ticket's team; a foreign tag rejects
// the whole update before any write.
func reconcileTags(tx *gorm.DB, ticket *ticketModel, desired *[]uuid.UUID) error {
	if desired == nil {
		return nil
	}

	if len(*desired) > 0 {
		var count int64
		if err := tx.Model(&tagModel{}).
			Where("id IN ? AND team_id = ? AND deactivated IS NULL", *desired, ticket.TeamID).
			Count(&count).Error; err != nil {
			return err
		}
		uniq := make(map[uuid.UUID]struct{}, len(*desired))
		for _, id := range *desired {
			uniq[id] = struct{}{}
		}
		if count != int64(len(uniq)) {
			return FieldErrors{"tag_list": "contains tags that do not belong to this team"}
		}
	}

	var rows []ticketTagModel
	if err := tx.Where("ticket_id = ?", ticket.ID).Find(&rows).Error; err != nil {
		return err
	}
	current := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		current = append(current, row.TagID)
	}

	toAdd, toRemove := tagDiff(current, *desired)

	if len(toRemove) > 0 {
		if err := tx.Where("ticket_id = ? AND tag_id IN ?", ticket.ID, toRemove).
			Delete(&ticketTagModel{}).Error; err != nil {
			return err
		}
	}

	for _, tagID := range toAdd {
		row := ticketTagModel{
			ID:       uuid.New(),
			TeamID:   ticket.TeamID,
			TicketID: ticket.ID,
			TagID:    tagID,
		}
		// get-or-create: a concurrent writer inserting the same pair is a
		// benign no-op, not an error.
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ticket_id"}, {Name: "tag_id"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}
	}

	return nil
}
