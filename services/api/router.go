package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes constructs the chi router containing all API endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", a.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/token", a.handleIssueToken)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)

			r.Route("/invites", func(r chi.Router) {
				r.Get("/", a.handleListUserInvites)
				r.Post("/{inviteID}/accept", a.handleAcceptInvite)
			})

			r.Route("/teams", func(r chi.Router) {
				r.Get("/", a.handleListTeams)
				r.Post("/", a.handleCreateTeam)

				r.Route("/{teamID}", func(r chi.Router) {
					r.Get("/", a.handleGetTeam)
					r.Put("/", a.handleUpdateTeam)
					r.Delete("/", a.handleDeleteTeam)

					r.Get("/events", a.handleListEvents)
					r.Get("/export", a.handleExportTeam)

					r.Route("/members", func(r chi.Router) {
						r.Get("/", a.handleListMembers)
						r.Post("/", a.handleJoinTeam)
						r.Route("/{memberID}", func(r chi.Router) {
							r.Get("/", a.handleGetMember)
							r.Put("/", a.handleUpdateMember)
							r.Delete("/", a.handleDeleteMember)

							r.Route("/pins", func(r chi.Router) {
								r.Get("/", a.handleListPins)
								r.Post("/", a.handleCreatePin)
								r.Get("/{pinID}", a.handleGetPin)
								r.Delete("/{pinID}", a.handleDeletePin)
							})
						})
					})

					r.Route("/tickets", func(r chi.Router) {
						r.Get("/", a.handleListTickets)
						r.Post("/", a.handleCreateTicket)
						r.Route("/{ticketID}", func(r chi.Router) {
							r.Get("/", a.handleGetTicket)
							r.Put("/", a.handleUpdateTicket)
							r.Delete("/", a.handleDeleteTicket)

							r.Route("/comments", func(r chi.Router) {
								r.Get("/", a.handleListComments)
								r.Post("/", a.handleCreateComment)
								r.Put("/{commentID}", a.handleUpdateComment)
								r.Delete("/{commentID}", a.handleDeleteComment)
							})

							r.Route("/attachments", func(r chi.Router) {
								r.Get("/", a.handleListAttachments)
								r.Post("/", a.handleCreateAttachment)
								r.Get("/{attachmentID}", a.handleGetAttachment)
								r.Delete("/{attachmentID}", a.handleDeleteAttachment)
							})
						})
					})

					r.Route("/tags", func(r chi.Router) {
						r.Get("/", a.handleListTags)
						r.Post("/", a.handleCreateTag)
						r.Get("/{tagID}", a.handleGetTag)
						r.Put("/{tagID}", a.handleUpdateTag)
						r.Delete("/{tagID}", a.handleDeleteTag)
					})

					r.Route("/statuses", func(r chi.Router) {
						r.Get("/", a.handleListStatuses)
						r.Post("/", a.handleCreateStatus)
						r.Get("/{statusID}", a.handleGetStatus)
						r.Put("/{statusID}", a.handleUpdateStatus)
						r.Delete("/{statusID}", a.handleDeleteStatus)
					})

					r.Route("/invites", func(r chi.Router) {
						r.Get("/", a.handleListInvites)
						r.Post("/", a.handleCreateInvite)
						r.Delete("/{inviteID}", a.handleDeleteInvite)
					})
				})
			})
		})
	})

	return r, nil
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	if err := a.store.DB.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
