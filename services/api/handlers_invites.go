package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (a *API) handleListInvites(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleInvite, false); err != nil {
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

	var models []inviteModel
	err = a.store.ORM.WithContext(ctx).
		Where("team_id = ?", team.ID).
		Order("created").
		Limit(pg.limit()).Offset(pg.offset()).
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	invites := make([]TeamInvite, 0, len(models))
	for _, m := range models {
		invites = append(invites, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"invites":  invites,
		"page":     pg.Number,
		"per_page": pg.PerPage,
	})
}

func (a *API) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleInvite, false); err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	username := strings.TrimSpace(req.Username)
	invite, err := newInviteModel(team.ID, username)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	// Inviting someone who already holds a live membership is a client
	// error, not a conflict.
	if _, err := a.getMembership(r.Context(), team.ID, username); err == nil {
		respondAPIError(w, FieldErrors{"username": "already a member of this team"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.ORM.WithContext(ctx).Create(&invite).Error; err != nil {
		if isUniqueViolation(err) {
			respondAPIError(w, ErrDuplicate)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "invites", actionCreated, invite.ID.String(), map[string]any{"username": username})

	// Downstream notifiers get the rendered message alongside the raw
	// fields so the wording lives in one place.
	if message, err := a.renderer.Render("invite.tmpl", map[string]string{
		"Username": username,
		"TeamName": team.Name,
	}); err == nil {
		a.publishJSON("sluggo.invites.notify", map[string]any{
			"team_id":  team.ID,
			"username": username,
			"message":  message,
		})
	}

	respondJSON(w, http.StatusCreated, map[string]any{"invite": invite.toAPI()})
}

func (a *API) handleDeleteInvite(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleInvite, false); err != nil {
		respondAPIError(w, err)
		return
	}

	inviteID, err := uuid.Parse(chi.URLParam(r, "inviteID"))
	if err != nil {
		respondAPIError(w, ErrNotFound)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var invite inviteModel
	if err := a.store.ORM.WithContext(ctx).First(&invite, "id = ?", inviteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondAPIError(w, ErrNotFound)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if invite.TeamID != team.ID {
		respondAPIError(w, ErrNotFound)
		return
	}

	if err := a.store.ORM.WithContext(ctx).Delete(&invite).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "invites", actionDeleted, invite.ID.String(), nil)
	respondJSON(w, http.StatusNoContent, nil)
}

// handleListUserInvites lists the caller's own pending invites across every
// team. There is no team in scope, so no policy rule applies beyond being
// authenticated.
func (a *API) handleListUserInvites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var models []inviteModel
	err := a.store.ORM.WithContext(ctx).
		Where("username = ?", actorFrom(r.Context())).
		Order("created").
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	invites := make([]TeamInvite, 0, len(models))
	for _, m := range models {
		invites = append(invites, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{"invites": invites})
}

// handleAcceptInvite turns one of the caller's invites into an unapproved
// membership and removes the invite, atomically. An invite addressed to
// someone else is reported as absent.
func (a *API) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	inviteID, err := uuid.Parse(chi.URLParam(r, "inviteID"))
	if err != nil {
		respondAPIError(w, ErrNotFound)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	actor := actorFrom(r.Context())

	var member memberModel
	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite inviteModel
		if err := tx.First(&invite, "id = ?", inviteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if invite.Username != actor {
			return ErrNotFound
		}

		member, err = createMembership(tx, invite.TeamID, actor, RoleUnapproved)
		if err != nil {
			return err
		}
		return tx.Delete(&invite).Error
	})
	if err != nil {
		respondAPIError(w, err)
		return
	}

	a.recordEvent(r.Context(), member.TeamID, actor, "members", actionCreated, member.ID, map[string]any{"via": "invite"})
	respondJSON(w, http.StatusCreated, map[string]any{"member": member.toAPI()})
}
