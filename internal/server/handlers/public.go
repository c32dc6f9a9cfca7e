package handlers

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/AlexTLDR/rsvp/internal/config"
	"github.com/AlexTLDR/rsvp/internal/database"
	"github.com/AlexTLDR/rsvp/internal/guest"
	"github.com/AlexTLDR/rsvp/internal/i18n"
	"github.com/AlexTLDR/rsvp/internal/logger"
	"github.com/AlexTLDR/rsvp/templates"
)

// Server interface defines the methods needed by handlers
type Server interface {
	GetDB() *database.DB
	GetConfig() *config.Config
	CurrentGuest(r *http.Request) (guest.Identity, bool)
	Login(w http.ResponseWriter, r *http.Request, ident guest.Identity) error
	Logout(w http.ResponseWriter, r *http.Request) error
}

// pageFor gathers the chrome shared by every page
func pageFor(s Server, r *http.Request) templates.Page {
	_, authenticated := s.CurrentGuest(r)
	return templates.Page{
		Lang:          string(i18n.GetLanguageFromRequest(r)),
		Themes:        config.GetThemes(s.GetConfig().Root),
		Authenticated: authenticated,
	}
}

// render writes a component. A failed render may already have streamed part
// of the page, so it is only logged.
func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logger.WithError(err).WithField("uri", r.URL.RequestURI()).Error("failed to render page")
	}
}

func staticPage(s Server, page func(templates.Page) templ.Component) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, page(pageFor(s, r)))
	}
}

// HandleHome renders the home page
func HandleHome(s Server) http.HandlerFunc {
	return staticPage(s, templates.Home)
}

// HandleAbout renders the about page
func HandleAbout(s Server) http.HandlerFunc {
	return staticPage(s, templates.About)
}

// HandleRegistry renders the registry page
func HandleRegistry(s Server) http.HandlerFunc {
	return staticPage(s, templates.Registry)
}

// HandleTravel renders the travel page
func HandleTravel(s Server) http.HandlerFunc {
	return staticPage(s, templates.Travel)
}
