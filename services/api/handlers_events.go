package api

import (
	"net/http"

	"sluggo/pkg/db"
)

// handleListEvents pages through a team's activity feed, newest first. The
// feed is read straight off the pool; it is append-only and needs none of the
// ORM's change tracking.
func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleEvent, false); err != nil {
		respondAPIError(w, err)
		return
	}

	pg, err := parsePage(r, a.config.PageSize, a.config.MaxPageSize)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	events := []Event{}
	err = db.Select(r.Context(), a.store.DB, &events,
		`SELECT id, team_id, actor, action, object_id, details, edited
		   FROM events
		  WHERE team_id = $1
		  ORDER BY id DESC
		  LIMIT $2 OFFSET $3`,
		team.ID, pg.limit(), pg.offset())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"events":   events,
		"page":     pg.Number,
		"per_page": pg.PerPage,
	})
}
