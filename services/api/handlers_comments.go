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

func (a *API) commentFromRequest(ctx context.Context, r *http.Request, ticket ticketModel) (commentModel, error) {
	commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		return commentModel{}, ErrNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var comment commentModel
	if err := a.store.ORM.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return commentModel{}, ErrNotFound
		}
		return commentModel{}, err
	}
	if comment.TicketID != ticket.ID {
		return commentModel{}, ErrNotFound
	}
	return comment, nil
}

func (a *API) handleListComments(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleComment, false); err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
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

	var models []commentModel
	err = a.store.ORM.WithContext(ctx).
		Where("ticket_id = ?", ticket.ID).
		Order("created").
		Limit(pg.limit()).Offset(pg.offset()).
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	comments := make([]TicketComment, 0, len(models))
	for _, m := range models {
		comments = append(comments, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"comments": comments,
		"page":     pg.Number,
		"per_page": pg.PerPage,
	})
}

func (a *API) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	actor := actorFrom(r.Context())

	// Creating a comment makes the caller its owner, so the owner gate is
	// satisfied from the start; approval is still required.
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, ruleComment, true); err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondAPIError(w, missingField("content"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	now := time.Now().UTC()
	comment := commentModel{
		ID:       uuid.New(),
		TeamID:   team.ID,
		TicketID: ticket.ID,
		Author:   actor,
		Content:  content,
		Created:  now,
		Edited:   now,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&comment).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actor, "comments", actionCreated, comment.ID.String(), map[string]any{"ticket_id": ticket.ID})
	respondJSON(w, http.StatusCreated, map[string]any{"comment": comment.toAPI()})
}

func (a *API) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	comment, err := a.commentFromRequest(r.Context(), r, ticket)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	actor := actorFrom(r.Context())
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, ruleComment, comment.Author == actor); err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondAPIError(w, missingField("content"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	comment.Content = content
	comment.Edited = time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).Save(&comment).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actor, "comments", actionUpdated, comment.ID.String(), nil)
	respondJSON(w, http.StatusOK, map[string]any{"comment": comment.toAPI()})
}

func (a *API) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	comment, err := a.commentFromRequest(r.Context(), r, ticket)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	actor := actorFrom(r.Context())
	if err := a.authorize(r.Context(), actor, r.Method, team.ID, ruleComment, comment.Author == actor); err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// Comments are hard-deleted; there is no recovery path for them.
	if err := a.store.ORM.WithContext(ctx).Delete(&comment).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actor, "comments", actionDeleted, comment.ID.String(), nil)
	respondJSON(w, http.StatusNoContent, nil)
}
