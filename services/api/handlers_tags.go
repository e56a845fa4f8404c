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

func (a *API) tagFromRequest(ctx context.Context, r *http.Request, team teamModel) (tagModel, error) {
	tagID, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		return tagModel{}, ErrNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var tag tagModel
	if err := a.store.ORM.WithContext(ctx).First(&tag, "id = ?", tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tagModel{}, ErrNotFound
		}
		return tagModel{}, err
	}
	if tag.TeamID != team.ID || tag.Deactivated != nil {
		return tagModel{}, ErrNotFound
	}
	return tag, nil
}

func (a *API) handleListTags(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTag, false); err != nil {
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

	var models []tagModel
	err = a.store.ORM.WithContext(ctx).
		Where("team_id = ? AND deactivated IS NULL", team.ID).
		Order("title").
		Limit(pg.limit()).Offset(pg.offset()).
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	tags := make([]Tag, 0, len(models))
	for _, m := range models {
		tags = append(tags, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"tags":     tags,
		"page":     pg.Number,
		"per_page": pg.PerPage,
	})
}

func (a *API) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTag, false); err != nil {
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

	tag, err := newTagModel(team.ID, strings.TrimSpace(req.Title))
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.ORM.WithContext(ctx).Create(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			respondAPIError(w, ErrDuplicate)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "tags", actionCreated, tag.ID.String(), map[string]any{"title": tag.Title})
	respondJSON(w, http.StatusCreated, map[string]any{"tag": tag.toAPI()})
}

func (a *API) handleGetTag(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTag, false); err != nil {
		respondAPIError(w, err)
		return
	}

	tag, err := a.tagFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"tag": tag.toAPI()})
}

func (a *API) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTag, false); err != nil {
		respondAPIError(w, err)
		return
	}

	tag, err := a.tagFromRequest(r.Context(), r, team)
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
	if err := validateTagTitle(title); err != nil {
		respondAPIError(w, err)
		return
	}

	// Renaming recomputes the uniqueness hash; colliding with an existing
	// title on the team is a conflict.
	hash, err := DeriveKey(team.ID.String(), title)
	if err != nil {
		respondAPIError(w, err)
		return
	}
	tag.Title = title
	tag.TeamTitleHash = hash

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.ORM.WithContext(ctx).Save(&tag).Error; err != nil {
		if isUniqueViolation(err) {
			respondAPIError(w, ErrDuplicate)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "tags", actionUpdated, tag.ID.String(), nil)
	respondJSON(w, http.StatusOK, map[string]any{"tag": tag.toAPI()})
}

func (a *API) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTag, false); err != nil {
		respondAPIError(w, err)
		return
	}

	tag, err := a.tagFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// Deactivating a tag also detaches it from every ticket so it stops
	// appearing in tag lists immediately.
	now := time.Now().UTC()
	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&tag).Update("deactivated", now).Error; err != nil {
			return err
		}
		return tx.Where("tag_id = ?", tag.ID).Delete(&ticketTagModel{}).Error
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "tags", actionDeleted, tag.ID.String(), nil)
	respondJSON(w, http.StatusNoContent, nil)
}
