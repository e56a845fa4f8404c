package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (a *API) attachmentFromRequest(ctx context.Context, r *http.Request, ticket ticketModel) (attachmentModel, error) {
	attachmentID, err := uuid.Parse(chi.URLParam(r, "attachmentID"))
	if err != nil {
		return attachmentModel{}, ErrNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var attachment attachmentModel
	if err := a.store.ORM.WithContext(ctx).First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return attachmentModel{}, ErrNotFound
		}
		return attachmentModel{}, err
	}
	if attachment.TicketID != ticket.ID {
		return attachmentModel{}, ErrNotFound
	}
	return attachment, nil
}

func (a *API) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleAttachment, false); err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var models []attachmentModel
	err = a.store.ORM.WithContext(ctx).
		Where("ticket_id = ?", ticket.ID).
		Order("created").
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	attachments := make([]Attachment, 0, len(models))
	for _, m := range models {
		attachments = append(attachments, m.toAPI())
	}
	respondJSON(w, http.StatusOK, map[string]any{"attachments": attachments})
}

// handleCreateAttachment registers an upload and hands back a presigned PUT
// URL. The client uploads directly to the object store; this service never
// sees the bytes.
func (a *API) handleCreateAttachment(w http.ResponseWriter, r *http.Request) {
	if a.store.S3 == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("attachment storage is not configured"))
		return
	}

	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleAttachment, false); err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
		Size        int64  `json:"size"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	// Strip any path components a client smuggles into the filename.
	filename := path.Base(strings.TrimSpace(req.Filename))
	if filename == "" || filename == "." || filename == "/" {
		respondAPIError(w, missingField("filename"))
		return
	}

	attachment := attachmentModel{
		ID:          uuid.New(),
		TeamID:      team.ID,
		TicketID:    ticket.ID,
		Filename:    filename,
		ContentType: req.ContentType,
		Size:        req.Size,
		UploadedBy:  actorFrom(r.Context()),
	}
	attachment.ObjectKey = fmt.Sprintf("%s/%s/%s/%s/%s",
		attachmentKeyPrefix, team.ID, ticket.ID, attachment.ID, filename)

	uploadURL, err := a.store.S3.PresignPut(r.Context(), a.config.AttachmentBucket,
		attachment.ObjectKey, req.ContentType, attachmentURLExpiry)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.ORM.WithContext(ctx).Create(&attachment).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "attachments", actionCreated, attachment.ID.String(), map[string]any{"filename": filename})
	respondJSON(w, http.StatusCreated, map[string]any{
		"attachment": attachment.toAPI(),
		"upload_url": uploadURL,
	})
}

// handleGetAttachment returns the attachment record plus a short-lived
// download URL.
func (a *API) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	if a.store.S3 == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("attachment storage is not configured"))
		return
	}

	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleAttachment, false); err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	attachment, err := a.attachmentFromRequest(r.Context(), r, ticket)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	downloadURL, err := a.store.S3.PresignGet(r.Context(), a.config.AttachmentBucket,
		attachment.ObjectKey, attachmentURLExpiry)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"attachment":   attachment.toAPI(),
		"download_url": downloadURL,
	})
}

func (a *API) handleDeleteAttachment(w http.ResponseWriter, r *http.Request) {
	if a.store.S3 == nil {
		respondError(w, http.StatusServiceUnavailable, errors.New("attachment storage is not configured"))
		return
	}

	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleAttachment, false); err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	attachment, err := a.attachmentFromRequest(r.Context(), r, ticket)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	// The row goes first; a failed object delete leaves an orphan in the
	// bucket, which is recoverable, while the reverse order would leave a
	// record pointing at nothing.
	if err := a.store.ORM.WithContext(ctx).Delete(&attachment).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if err := a.store.S3.Delete(r.Context(), a.config.AttachmentBucket, attachment.ObjectKey); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "attachments", actionDeleted, attachment.ID.String(), nil)
	respondJSON(w, http.StatusNoContent, nil)
}
