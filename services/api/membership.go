package api

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memberKey derives the primary key for a membership record.
func memberKey(teamID uuid.UUID, username string) (string, error) {
	return DeriveKey(teamID.String(), username)
}

// getMembership looks up the live membership for (team, user) by its derived
// key: a single primary-key read. Deactivated rows are treated as absent and
// reported as gorm.ErrRecordNotFound.
func (a *API) getMembership(ctx context.Context, teamID uuid.UUID, username string) (*Member, error) {
	key, err := memberKey(teamID, username)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var model memberModel
	if err := a.store.ORM.WithContext(ctx).First(&model, "id = ?", key).Error; err != nil {
		return nil, err
	}
	if model.Deactivated != nil {
		return nil, gorm.ErrRecordNotFound
	}

	member := model.toAPI()
	return &member, nil
}

// createMembership inserts a membership row with its derived key already
// computed; the key being the primary key makes a second (team, user) row a
// unique violation. A deactivated row left behind by a departed member still
// occupies the key, so it is revived in place instead of rejected. Runs on
// the handle it is given so callers can place it inside a transaction.
func createMembership(tx *gorm.DB, teamID uuid.UUID, username string, role Role) (memberModel, error) {
	key, err := memberKey(teamID, username)
	if err != nil {
		return memberModel{}, err
	}
	if !role.Valid() {
		return memberModel{}, FieldErrors{"role": "must be one of UA, AP, AD"}
	}

	var existing memberModel
	err = tx.First(&existing, "id = ?", key).Error
	switch {
	case err == nil:
		revived, err := reviveMembership(existing, role)
		if err != nil {
			return memberModel{}, err
		}
		if err := tx.Save(&revived).Error; err != nil {
			return memberModel{}, err
		}
		return revived, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return memberModel{}, err
	}

	now := time.Now().UTC()
	model := memberModel{
		ID:        key,
		TeamID:    teamID,
		Username:  username,
		Role:      string(role),
		Created:   now,
		Activated: &now,
	}
	if err := tx.Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return memberModel{}, ErrDuplicate
		}
		return memberModel{}, err
	}
	return model, nil
}

// reviveMembership reactivates a row left behind by a departed member. The
// role always resets to the requested one, never the role held before
// leaving. A row that is still active is a duplicate.
func reviveMembership(existing memberModel, role Role) (memberModel, error) {
	if existing.Deactivated == nil {
		return memberModel{}, ErrDuplicate
	}
	now := time.Now().UTC()
	existing.Role = string(role)
	existing.Activated = &now
	existing.Deactivated = nil
	return existing, nil
}
