package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// teamFromRequest resolves the {teamID} URL segment to a live team. A bad
// uuid, a missing row, and a deactivated team all surface as ErrNotFound.
func (a *API) teamFromRequest(ctx context.Context, r *http.Request) (teamModel, error) {
	teamID, err := uuid.Parse(chi.URLParam(r, "teamID"))
	if err != nil {
		return teamModel{}, ErrNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var team teamModel
	if err := a.store.ORM.WithContext(ctx).First(&team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return teamModel{}, ErrNotFound
		}
		return teamModel{}, err
	}
	if team.Deactivated != nil {
		return teamModel{}, ErrNotFound
	}
	return team, nil
}

func (a *API) handleListTeams(w http.ResponseWriter, r *http.Request) {
	pg, err := parsePage(r, a.config.PageSize, a.config.MaxPageSize)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	actor := actorFrom(r.Context())

	var models []teamModel
	err = a.store.ORM.WithContext(ctx).
		Joins("JOIN members ON members.team_id = teams.id").
		Where("members.username = ? AND members.deactivated IS NULL", actor).
		Where("teams.deactivated IS NULL").
		Order("teams.created").
		Limit(pg.limit()).Offset(pg.offset()).
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	teams := make([]Team, 0, len(models))
	for _, m := range models {
		teams = append(teams, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"teams":    teams,
		"page":     pg.Number,
		"per_page": pg.PerPage,
	})
}

func (a *API) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondAPIError(w, missingField("name"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	actor := actorFrom(r.Context())
	now := time.Now().UTC()
	team := teamModel{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Created:     now,
		Activated:   &now,
	}

	// The creator becomes an admin member and the default statuses are
	// seeded in the same transaction as the team row.
	err := a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}

		if _, err := createMembership(tx, team.ID, actor, RoleAdmin); err != nil {
			return err
		}

		for _, title := range defaultStatusTitles {
			status, err := newStatusModel(team.ID, title)
			if err != nil {
				return err
			}
			if err := tx.Create(&status).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondAPIError(w, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actor, "teams", actionCreated, team.ID.String(), map[string]any{"name": team.Name})
	respondJSON(w, http.StatusCreated, map[string]any{"team": team.toAPI()})
}

func (a *API) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTeam, false); err != nil {
		respondAPIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"team": team.toAPI()})
}

func (a *API) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTeam, false); err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondAPIError(w, missingField("name"))
			return
		}
		team.Name = name
	}
	if req.Description != nil {
		team.Description = *req.Description
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.ORM.WithContext(ctx).Save(&team).Error; err != nil {
		if isUniqueViolation(err) {
			respondAPIError(w, ErrDuplicate)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "teams", actionUpdated, team.ID.String(), nil)
	respondJSON(w, http.StatusOK, map[string]any{"team": team.toAPI()})
}

func (a *API) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTeam, false); err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// Teams are soft-deleted; rows and history stay queryable for audit.
	now := time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).Model(&team).Update("deactivated", now).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "teams", actionDeleted, team.ID.String(), nil)
	respondJSON(w, http.StatusNoContent, nil)
}
