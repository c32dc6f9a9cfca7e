package handlers

import (
	"net/http"

	"github.com/AlexTLDR/rsvp/internal/i18n"
	"github.com/AlexTLDR/rsvp/templates"
)

var errorMessages = map[int]string{
	http.StatusBadRequest:          i18n.BadRequest,
	http.StatusUnauthorized:        i18n.Forbidden,
	http.StatusForbidden:           i18n.Forbidden,
	http.StatusNotFound:            i18n.NotFound,
	http.StatusInternalServerError: i18n.ServerError,
}

// RenderError writes the error page for code. Messages are generic so that
// nothing about the guestlist leaks through them.
func RenderError(s Server, w http.ResponseWriter, r *http.Request, code int) {
	key, ok := errorMessages[code]
	if !ok {
		key = i18n.ServerError
	}
	renderErrorMessage(s, w, r, code, key)
}

func renderErrorMessage(s Server, w http.ResponseWriter, r *http.Request, code int, key string) {
	page := pageFor(s, r)
	msg := i18n.T(i18n.Language(page.Lang), key)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_ = templates.Error(page, code, msg).Render(r.Context(), w)
}
