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

func (a *API) ticketFromRequest(ctx context.Context, r *http.Request, team teamModel) (ticketModel, error) {
	ticketID, err := uuid.Parse(chi.URLParam(r, "ticketID"))
	if err != nil {
		return ticketModel{}, ErrNotFound
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var ticket ticketModel
	if err := a.store.ORM.WithContext(ctx).First(&ticket, "id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ticketModel{}, ErrNotFound
		}
		return ticketModel{}, err
	}
	if ticket.TeamID != team.ID || ticket.Deactivated != nil {
		return ticketModel{}, ErrNotFound
	}
	return ticket, nil
}

// attachTags fills TagList for a batch of tickets with two queries instead of
// one per ticket.
func (a *API) attachTags(ctx context.Context, tickets []Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var rows []ticketTagModel
	if err := a.store.ORM.WithContext(ctx).Where("ticket_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tagIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		tagIDs = append(tagIDs, row.TagID)
	}
	var tags []tagModel
	if err := a.store.ORM.WithContext(ctx).
		Where("id IN ? AND deactivated IS NULL", tagIDs).
		Find(&tags).Error; err != nil {
		return err
	}

	byID := make(map[uuid.UUID]Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t.toAPI()
	}
	byTicket := make(map[uuid.UUID][]Tag, len(tickets))
	for _, row := range rows {
		if tag, ok := byID[row.TagID]; ok {
			byTicket[row.TicketID] = append(byTicket[row.TicketID], tag)
		}
	}
	for i := range tickets {
		if list, ok := byTicket[tickets[i].ID]; ok {
			tickets[i].TagList = list
		}
	}
	return nil
}

// validateTicketRefs checks that an assigned status and member, when set,
// belong to the ticket's team and are live.
func validateTicketRefs(tx *gorm.DB, teamID uuid.UUID, statusID *uuid.UUID, assignedMemberID *string) error {
	if statusID != nil {
		var count int64
		err := tx.Model(&statusModel{}).
			Where("id = ? AND team_id = ? AND deactivated IS NULL", *statusID, teamID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return FieldErrors{"status_id": "does not name a status on this team"}
		}
	}
	if assignedMemberID != nil {
		var count int64
		err := tx.Model(&memberModel{}).
			Where("id = ? AND team_id = ? AND deactivated IS NULL", *assignedMemberID, teamID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return FieldErrors{"assigned_member_id": "does not name a member of this team"}
		}
	}
	return nil
}

func (a *API) handleListTickets(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTicket, false); err != nil {
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

	query := a.store.ORM.WithContext(ctx).
		Where("team_id = ? AND deactivated IS NULL", team.ID)

	// ?search= matches against title and description.
	if search := strings.TrimSpace(r.URL.Query().Get("search")); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var models []ticketModel
	err = query.Order("ticket_number").
		Limit(pg.limit()).Offset(pg.offset()).
		Find(&models).Error
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	tickets := make([]Ticket, 0, len(models))
	for _, m := range models {
		tickets = append(tickets, m.toAPI())
	}
	if err := a.attachTags(r.Context(), tickets); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"tickets":  tickets,
		"page":     pg.Number,
		"per_page": pg.PerPage,
	})
}

func (a *API) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTicket, false); err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Title            string       `json:"title"`
		Description      string       `json:"description"`
		StatusID         *uuid.UUID   `json:"status_id"`
		AssignedMemberID *string      `json:"assigned_member_id"`
		DueDate          *time.Time   `json:"due_date"`
		TagList          *[]uuid.UUID `json:"tag_list"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondAPIError(w, missingField("title"))
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	now := time.Now().UTC()
	ticket := ticketModel{
		ID:               uuid.New(),
		TeamID:           team.ID,
		Title:            req.Title,
		Description:      req.Description,
		StatusID:         req.StatusID,
		AssignedMemberID: req.AssignedMemberID,
		DueDate:          req.DueDate,
		Created:          now,
		Activated:        &now,
	}

	// The ticket number comes from the team's counter, claimed with a
	// single UPDATE ... RETURNING so concurrent creates never collide.
	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateTicketRefs(tx, team.ID, req.StatusID, req.AssignedMemberID); err != nil {
			return err
		}

		var number int64
		err := tx.Raw(
			"UPDATE teams SET ticket_head = ticket_head + 1 WHERE id = ? RETURNING ticket_head",
			team.ID,
		).Scan(&number).Error
		if err != nil {
			return err
		}
		ticket.TicketNumber = number

		if err := tx.Create(&ticket).Error; err != nil {
			if isUniqueViolation(err) {
				return errors.New("ticket number collision")
			}
			return err
		}

		return reconcileTags(tx, &ticket, req.TagList)
	})
	if err != nil {
		respondAPIError(w, err)
		return
	}

	ticketsCreated.Inc()
	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "tickets", actionCreated, ticket.ID.String(), map[string]any{
		"ticket_number": ticket.TicketNumber,
		"title":         ticket.Title,
	})

	tickets := []Ticket{ticket.toAPI()}
	if err := a.attachTags(r.Context(), tickets); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"ticket": tickets[0]})
}

func (a *API) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTicket, false); err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	tickets := []Ticket{ticket.toAPI()}
	if err := a.attachTags(r.Context(), tickets); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ticket": tickets[0]})
}

func (a *API) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTicket, false); err != nil {
		respondAPIError(w, err)
		return
	}

	ticket, err := a.ticketFromRequest(r.Context(), r, team)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	var req struct {
		Title            *string      `json:"title"`
		Description      *string      `json:"description"`
		StatusID         *uuid.UUID   `json:"status_id"`
		AssignedMemberID *string      `json:"assigned_member_id"`
		DueDate          *time.Time   `json:"due_date"`
		ClearStatus      bool         `json:"clear_status"`
		ClearAssignee    bool         `json:"clear_assignee"`
		ClearDueDate     bool         `json:"clear_due_date"`
		TagList          *[]uuid.UUID `json:"tag_list"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			respondAPIError(w, missingField("title"))
			return
		}
		ticket.Title = title
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.StatusID != nil {
		ticket.StatusID = req.StatusID
	}
	if req.AssignedMemberID != nil {
		ticket.AssignedMemberID = req.AssignedMemberID
	}
	if req.DueDate != nil {
		ticket.DueDate = req.DueDate
	}
	if req.ClearStatus {
		ticket.StatusID = nil
	}
	if req.ClearAssignee {
		ticket.AssignedMemberID = nil
	}
	if req.ClearDueDate {
		ticket.DueDate = nil
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	err = a.store.ORM.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateTicketRefs(tx, team.ID, ticket.StatusID, ticket.AssignedMemberID); err != nil {
			return err
		}
		if err := tx.Save(&ticket).Error; err != nil {
			return err
		}
		return reconcileTags(tx, &ticket, req.TagList)
	})
	if err != nil {
		respondAPIError(w, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "tickets", actionUpdated, ticket.ID.String(), nil)

	tickets := []Ticket{ticket.toAPI()}
	if err := a.attachTags(r.Context(), tickets); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ticket": tickets[0]})
}

func (a *API) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleTicket, false); err != nil {
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

	now := time.Now().UTC()
	if err := a.store.ORM.WithContext(ctx).Model(&ticket).Update("deactivated", now).Error; err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.recordEvent(r.Context(), team.ID, actorFrom(r.Context()), "tickets", actionDeleted, ticket.ID.String(), nil)
	respondJSON(w, http.StatusNoContent, nil)
}
