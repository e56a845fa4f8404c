package api

import (
	"encoding/json"
	"net/http"

	"github.com/klauspost/compress/zstd"
)

// handleExportTeam streams a zstd-compressed JSON dump of everything the team
// owns. Admin only; the dump includes deactivated rows so it doubles as a
// backup before deleting a team.
func (a *API) handleExportTeam(w http.ResponseWriter, r *http.Request) {
	team, err := a.teamFromRequest(r.Context(), r)
	if err != nil {
		respondAPIError(w, err)
		return
	}

	if err := a.authorize(r.Context(), actorFrom(r.Context()), r.Method, team.ID, ruleExport, false); err != nil {
		respondAPIError(w, err)
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var (
		members     []memberModel
		tickets     []ticketModel
		tags        []tagModel
		statuses    []statusModel
		ticketTags  []ticketTagModel
		comments    []commentModel
		invites     []inviteModel
		pins        []pinModel
		attachments []attachmentModel
	)
	orm := a.store.ORM.WithContext(ctx)
	for _, dest := range []any{
		&members, &tickets, &tags, &statuses, &ticketTags,
		&comments, &invites, &pins, &attachments,
	} {
		if err := orm.Where("team_id = ?", team.ID).Find(dest).Error; err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
	}

	memberList := make([]Member, 0, len(members))
	for _, m := range members {
		memberList = append(memberList, m.toAPI())
	}
	ticketList := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		ticketList = append(ticketList, t.toAPI())
	}
	tagList := make([]Tag, 0, len(tags))
	for _, t := range tags {
		tagList = append(tagList, t.toAPI())
	}
	statusList := make([]TicketStatus, 0, len(statuses))
	for _, s := range statuses {
		statusList = append(statusList, s.toAPI())
	}
	commentList := make([]TicketComment, 0, len(comments))
	for _, c := range comments {
		commentList = append(commentList, c.toAPI())
	}
	inviteList := make([]TeamInvite, 0, len(invites))
	for _, i := range invites {
		inviteList = append(inviteList, i.toAPI())
	}
	pinList := make([]PinnedTicket, 0, len(pins))
	for _, p := range pins {
		pinList = append(pinList, p.toAPI())
	}
	attachmentList := make([]Attachment, 0, len(attachments))
	for _, at := range attachments {
		attachmentList = append(attachmentList, at.toAPI())
	}

	type tagPair struct {
		TicketID string `json:"ticket_id"`
		TagID    string `json:"tag_id"`
	}
	pairs := make([]tagPair, 0, len(ticketTags))
	for _, tt := range ticketTags {
		pairs = append(pairs, tagPair{TicketID: tt.TicketID.String(), TagID: tt.TagID.String()})
	}

	w.Header().Set("Content-Type", "application/zstd")
	w.Header().Set("Content-Disposition", `attachment; filename="team-export.json.zst"`)
	w.WriteHeader(http.StatusOK)

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return
	}
	defer zw.Close()

	_ = json.NewEncoder(zw).Encode(map[string]any{
		"team":        team.toAPI(),
		"members":     memberList,
		"tickets":     ticketList,
		"tags":        tagList,
		"statuses":    statusList,
		"ticket_tags": pairs,
		"comments":    commentList,
		"invites":     inviteList,
		"pins":        pinList,
		"attachments": attachmentList,
	})
}
