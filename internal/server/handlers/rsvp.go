package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AlexTLDR/rsvp/internal/database"
	"github.com/AlexTLDR/rsvp/internal/guest"
	"github.com/AlexTLDR/rsvp/internal/i18n"
	"github.com/AlexTLDR/rsvp/internal/logger"
	"github.com/AlexTLDR/rsvp/templates"
)

// targetGuest returns the guest named by the "guest" query parameter,
// defaulting to the actor
func targetGuest(r *http.Request, actor guest.Identity) (guest.Identity, error) {
	value := r.URL.Query().Get("guest")
	if value == "" {
		return actor, nil
	}
	return guest.ParseIdentity(value)
}

// statusFor maps store errors to a response status
func statusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// HandleDashboard lists every guest in the logged in guest's party
func HandleDashboard(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := s.CurrentGuest(r)

		guests, err := s.GetDB().Members(actor)
		if err != nil {
			// The session outlived its guestlist
			logger.WithError(err).Error("dashboard")
			RenderError(s, w, r, statusFor(err))
			return
		}

		var user guest.User
		for _, g := range guests {
			if g.Ident() == actor {
				user = g.User
			}
		}

		render(w, r, templates.Dashboard(pageFor(s, r), user, guests))
	}
}

// HandleRSVP shows the reply form for a guest in the actor's party
func HandleRSVP(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := s.CurrentGuest(r)
		target, err := targetGuest(r, actor)
		if err != nil {
			RenderError(s, w, r, http.StatusBadRequest)
			return
		}

		db := s.GetDB()
		if err := db.Authorize(actor, target); err != nil {
			logger.WithError(err).WithField("actor", actor).Warn("unauthorized")
			RenderError(s, w, r, statusFor(err))
			return
		}
		g, ok := db.Guest(target)
		if !ok {
			RenderError(s, w, r, http.StatusInternalServerError)
			return
		}

		closed := s.GetConfig().RepliesClosed(time.Now())
		render(w, r, templates.RSVP(pageFor(s, r), g, closed))
	}
}

// HandleReply records a reply for a guest in the actor's party and saves
// the guestlist
func HandleReply(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.GetConfig().RepliesClosed(time.Now()) {
			renderErrorMessage(s, w, r, http.StatusForbidden, i18n.RepliesClosed)
			return
		}

		actor, _ := s.CurrentGuest(r)
		target, err := targetGuest(r, actor)
		if err != nil {
			RenderError(s, w, r, http.StatusBadRequest)
			return
		}

		if err := r.ParseForm(); err != nil {
			RenderError(s, w, r, http.StatusBadRequest)
			return
		}
		reply, err := guest.ParseReply(r.PostFormValue("attend"), r.PostFormValue("meal"), r.PostFormValue("msg"))
		if err != nil {
			RenderError(s, w, r, http.StatusBadRequest)
			return
		}
		reply.Validate()

		log := logger.WithField("actor", actor).WithField("guest", target)
		db := s.GetDB()
		if err := db.Respond(actor, target, reply); err != nil {
			log.WithError(err).Warn("reply rejected")
			RenderError(s, w, r, statusFor(err))
			return
		}
		log.Tracef("reply: %s", reply)

		// The in-memory guestlist is authoritative; a failed save is only logged
		err = db.Persist(context.WithoutCancel(r.Context()))
		switch {
		case err == nil, errors.Is(err, database.ErrNoOutputPath):
		default:
			log.WithError(err).Error("failed to save guestlist")
		}

		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}
