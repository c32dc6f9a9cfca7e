package server

import (
	"net/http"

	"github.com/AlexTLDR/rsvp/internal/guest"
	"github.com/AlexTLDR/rsvp/internal/logger"
)

const (
	sessionName = "guest-session"
	identKey    = "ident"
)

// Login binds the session to ident, replacing any previous login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request, ident guest.Identity) error {
	session, _ := s.sessionStore.Get(r, sessionName)
	if prev, ok := session.Values[identKey].(string); ok && prev != "" {
		logger.Get().Debugf("logout: `%s`", prev)
	}
	session.Values[identKey] = ident.String()
	if err := session.Save(r, w); err != nil {
		return err
	}
	logger.Get().Debugf("login: `%s`", ident)
	return nil
}

// Logout clears the session.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.sessionStore.Get(r, sessionName)
	if ident, ok := session.Values[identKey].(string); ok && ident != "" {
		logger.Get().Debugf("logout: `%s`", ident)
	}
	delete(session.Values, identKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// CurrentGuest implements handlers.Server interface
func (s *Server) CurrentGuest(r *http.Request) (guest.Identity, bool) {
	session, _ := s.sessionStore.Get(r, sessionName)
	value, ok := session.Values[identKey].(string)
	if !ok || value == "" {
		return guest.Identity{}, false
	}
	ident, err := guest.ParseIdentity(value)
	if err != nil {
		return guest.Identity{}, false
	}
	return ident, true
}
