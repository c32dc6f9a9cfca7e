package handlers

import (
	"net/http"

	"github.com/AlexTLDR/rsvp/internal/guest"
	"github.com/AlexTLDR/rsvp/internal/i18n"
	"github.com/AlexTLDR/rsvp/internal/logger"
	"github.com/AlexTLDR/rsvp/templates"
)

// HandleLoginPage shows the login form, or the dashboard when already logged in
func HandleLoginPage(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.CurrentGuest(r); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		render(w, r, templates.Login(pageFor(s, r), ""))
	}
}

// HandleLogin resolves the submitted name to a guest and starts a session
func HandleLogin(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Malformed forms fall through to the same generic failure message
		_ = r.ParseForm()

		user := guest.NewUser(r.PostFormValue("first"), r.PostFormValue("last"))
		user.Sanitize()
		log := logger.WithField("user", user.Name())
		log.Trace("attempt")

		ident, ok := s.GetDB().FindIdentity(user)
		if !ok {
			log.Warn("reject")
			page := pageFor(s, r)
			msg := i18n.T(i18n.Language(page.Lang), i18n.LoginFailed, user.Name())
			render(w, r, templates.Login(page, msg))
			return
		}

		if err := s.Login(w, r, ident); err != nil {
			log.WithError(err).Error("failed to save session")
			RenderError(s, w, r, http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

// HandleLogout ends the session
func HandleLogout(s Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Logout(w, r); err != nil {
			logger.WithError(err).Error("failed to clear session")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}
