package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// pinOwnership reports whether the caller owns the member record the pins
// hang off. Pins are strictly personal, so ownership is the only gate that
// ever opens a mutation.
func pinOwnership(member memberModel, actor string) bool {
	return member.Username == actor
}

func (a *API) handleListPins(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	member, err := a.memberFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	actor := actorFrom(r.Context())
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, rulePin, pinOwnership(member, actor)); err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// A member's pin list is small by nature; no pagination.
	var models []pinModel
	err = a.store.ORM.WithContext(ctx).
		Where("member_id = ?", member.ID).
		Order("pinned").
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	pins := make([]PinnedTicket, 0, len(models))
	for _, m := range models {
		pins = append(pins, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{"pins": pins})
}

func (a *API) handleCreatePin(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	member, err := a.memberFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	actor := actorFrom(r.Context())
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, rulePin, pinOwnership(member, actor)); err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		TicketID uuid.UUID `json:"ticket_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// The pinned ticket must be a live ticket of the same team.
	var ticket ticketModel
	if err := a.store.ORM.WithContext(ctx).First(&ticket, "id = ?", req.TicketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondAPIError(w, FieldErrors{"ticket_id": "does not name a ticket on this team"})
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if ticket.TeamID != team.ID || ticket.Deactivated != nil {
		respondAPIError(w, FieldErrors{"ticket_id": "does not name a ticket on this team"})
		return
	}

	pin, err := newPinModel(team.ID, member.ID, ticket.ID)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.store.ORM.WithContext(ctx).Create(&pin).Error; err != nil {
		if isUniqueViolation(err) {
			respondAPIError(w, ErrDuplicate)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"pin": pin.toAPI()})
}

func (a *API) handleGetPin(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	member, err := a.memberFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	actor := actorFrom(r.Context())
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, rulePin, pinOwnership(member, actor)); err != nil {
		respondAPIError(w, err)
		return
	}

	pin, err := a.pinFromRequest(r, member)
	if err != nil {
		respondAPIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"pin": pin.toAPI()})
}

func (a *API) handleDeletePin(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	member, err := a.memberFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	actor := actorFrom(r.Context())
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, rulePin, pinOwnership(member, actor)); err != nil {
		respondAPIError(w, err)
		return
	}

	pin, err := a.pinFromRequest(r, member)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.ORM.WithContext(ctx).Delete(&pin).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) pinFromRequest(r *http.Request, member memberModel) (pinModel, error) {
	pinID := chi.URLParam(r, "pinID")
	if pinID == "" {
		return pinModel{}, ErrNotFound
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var pin pinModel
	if err := a.store.ORM.WithContext(ctx).First(&pin, "id = ?", pinID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pinModel{}, ErrNotFound
		}
		return pinModel{}, err
	}
	if pin.MemberID != member.ID {
		return pinModel{}, ErrNotFound
	}
	return pin, nil
}
