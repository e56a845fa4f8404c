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

func (a *API) statusFromRequest(ctx context.Context, r *http.Request, team teamModel) (statusModel, error) {
	statusID, err := uuid.Parse(chi.URLParam(r, "statusID"))
	if err != nil {
		return statusModel{}, ErrNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var status statusModel
	if err := a.store.ORM.WithContext(ctx).First(&status, "id = ?", statusID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return statusModel{}, ErrNotFound
		}
		return statusModel{}, err
	}
	if status.TeamID != team.ID || status.Deactivated != nil {
		return statusModel{}, ErrNotFound
	}
	return status, nil
}

func (a *API) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleStatus, false); err != nil {
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

	var models []statusModel
	err = a.store.ORM.WithContext(ctx).
		Where("team_id = ? AND deactivated IS NULL", team.ID).
		Order("created").
		Limit(pg.limit()).Offset(pg.offset()).
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	statuses := make([]TicketStatus, 0, len(models))
	for _, m := range models {
		statuses = append(statuses, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"statuses": statuses,
		"page":     pg.Number,
		"per_page": pg.PerPage,
	})
}

func (a *API) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleStatus, false); err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	status, err := newStatusModel(team.ID, strings.TrimSpace(req.Title))
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.ORM.WithContext(ctx).Create(&status).Error; err != nil {
		if isUniqueViolation(err) {
			respondAPIError(w, ErrDuplicate)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "statuses", actionCreated, status.ID.String(), map[string]any{"title": status.Title})
	respondJSON(w, http.StatusCreated, map[string]any{"status": status.toAPI()})
}

func (a *API) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleStatus, false); err != nil {
		respondAPIError(w, err)
		return
	}

	status, err := a.statusFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": status.toAPI()})
}

func (a *API) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleStatus, false); err != nil {
		respondAPIError(w, err)
		return
	}

	status, err := a.statusFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		respondAPIError(w, missingField("title"))
		return
	}

	hash, err := DeriveKey(team.ID.String(), title)
	if err != nil {
		respondAPIError(w, err)
		return
	}
	status.Title = title
	status.TeamTitleHash = hash

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.ORM.WithContext(ctx).Save(&status).Error; err != nil {
		if isUniqueViolation(err) {
			respondAPIError(w, ErrDuplicate)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "statuses", actionUpdated, status.ID.String(), nil)
	respondJSON(w, http.StatusOK, map[string]any{"status": status.toAPI()})
}

func (a *API) handleDeleteStatus(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleStatus, false); err != nil {
		respondAPIError(w, err)
		return
	}

	status, err := a.statusFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// Tickets pointing at the status are left alone; the reference clears
	// through the SET NULL constraint only on a hard delete, so here the
	// tickets keep their status id but listings stop offering it.
	now := time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).Model(&status).Update("deactivated", now).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "statuses", actionDeleted, status.ID.String(), nil)
	respondJSON(w, http.StatusNoContent, nil)
}
