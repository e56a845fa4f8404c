package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// memberFromRequest resolves the {memberID} URL segment to a live member of
// the given team. A member belonging to another team is reported as absent.
func (a *API) memberFromRequest(ctx context.Context, r *http.Request, team teamModel) (memberModel, error) {
	memberID := chi.URLParam(r, "memberID")
	if memberID == "" {
		return memberModel{}, ErrNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var member memberModel
	if err := a.store.ORM.WithContext(ctx).First(&member, "id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return memberModel{}, ErrNotFound
		}
		return memberModel{}, err
	}
	if member.TeamID != team.ID || member.Deactivated != nil {
		return memberModel{}, ErrNotFound
	}
	return member, nil
}

func (a *API) handleListMembers(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleMember, false); err != nil {
		respondAPIError(w, err)
		return
	}

	pg, err := parsePage(r, a.config.PageSize, a.config.MaxPageSize)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var models []memberModel
	err = a.store.ORM.WithContext(ctx).
		Where("team_id = ? AND deactivated IS NULL", team.ID).
		Order("username").
		Limit(pg.limit()).Offset(pg.offset()).
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	members := make([]Member, 0, len(models))
	for _, m := range models {
		members = append(members, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"members":  members,
		"page":     pg.Number,
		"per_page": pg.PerPage,
	})
}

// handleJoinTeam adds the caller to a team. Joining is open to any
// authenticated user and always produces an unapproved membership; a role in
// the request body is accepted and ignored so clients cannot self-promote.
func (a *API) handleJoinTeam(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Role     string `json:"role"`
		Bio      string `json:"bio"`
		Pronouns string `json:"pronouns"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	actor := actorFrom(r.Context())

	var member memberModel
	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err = createMembership(tx, team.ID, actor, RoleUnapproved)
		if err != nil {
			return err
		}
		if req.Bio != "" || req.Pronouns != "" {
			member.Bio = req.Bio
			member.Pronouns = req.Pronouns
			return tx.Save(&member).Error
		}
		return nil
	})
	if err != nil {
		respondAPIError(w, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actor, "members", actionCreated, member.ID, map[string]any{"username": actor})
	respondJSON(w, http.StatusCreated, map[string]any{"member": member.toAPI()})
}

func (a *API) handleGetMember(w http.ResponseWriter, r *http.Request) {
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
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, ruleMember, member.Username == actor); err != nil {
		respondAPIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"member": member.toAPI()})
}

// canSetRole reports whether the acting member may apply a role change, given
// the result of their own membership lookup. A missing membership is an
// ordinary "no"; anything else from the store is a real failure.
func canSetRole(membership *Member, err error) (bool, error) {
	switch {
	case err == nil:
		return membership.Role.IsAdmin(), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (a *API) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
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
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, ruleMember, member.Username == actor); err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Role     *string `json:"role"`
		Bio      *string `json:"bio"`
		Pronouns *string `json:"pronouns"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	// Role changes are an admin privilege; a member editing their own
	// profile has the field silently dropped.
	if req.Role != nil {
		actorMembership, lookupErr := a.getMembership(r.Context(), team.ID, actor)
		allowed, lookupErr := canSetRole(actorMembership, lookupErr)
		if lookupErr != nil {
			respondError(w, http.StatusInternalServerError, lookupErr)
			return
		}
		if allowed {
			role := Role(strings.ToUpper(strings.TrimSpace(*req.Role)))
			if !role.Valid() {
				respondAPIError(w, FieldErrors{"role": "must be one of UA, AP, AD"})
				return
			}
			member.Role = string(role)
		}
	}
	if req.Bio != nil {
		member.Bio = *req.Bio
	}
	if req.Pronouns != nil {
		member.Pronouns = *req.Pronouns
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.ORM.WithContext(ctx).Save(&member).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actor, "members", actionUpdated, member.ID, nil)
	respondJSON(w, http.StatusOK, map[string]any{"member": member.toAPI()})
}

func (a *API) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
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
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, ruleMember, member.Username == actor); err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	now := time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).Model(&member).Update("deactivated", now).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actor, "members", actionDeleted, member.ID, nil)
	respondJSON(w, http.StatusNoContent, nil)
}
