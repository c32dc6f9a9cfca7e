package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/AlexTLDR/rsvp/internal/config"
	"github.com/AlexTLDR/rsvp/internal/database"
	"github.com/AlexTLDR/rsvp/internal/logger"
	"github.com/AlexTLDR/rsvp/internal/server/handlers"
)

const shutdownTimeout = time.Second

type Server struct {
	config       *config.Config
	db           *database.DB
	sessionStore *sessions.CookieStore
	router       *http.ServeMux
}

// GetDB implements handlers.Server interface
func (s *Server) GetDB() *database.DB {
	return s.db
}

// GetConfig implements handlers.Server interface
func (s *Server) GetConfig() *config.Config {
	return s.config
}

func New(cfg *config.Config, db *database.DB) *Server {
	s := &Server{
		config:       cfg,
		db:           db,
		sessionStore: newSessionStore(cfg),
		router:       http.NewServeMux(),
	}

	s.setupRoutes()
	return s
}

func newSessionStore(cfg *config.Config) *sessions.CookieStore {
	var store *sessions.CookieStore
	if cfg.SessionSecret != "" {
		store = sessions.NewCookieStore([]byte(cfg.SessionSecret))
	} else {
		// Sessions do not survive a restart without a configured secret.
		logger.Get().Debug("session: using random keys")
		store = sessions.NewCookieStore(
			securecookie.GenerateRandomKey(64),
			securecookie.GenerateRandomKey(32),
		)
	}
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *Server) setupRoutes() {
	// Public routes
	s.router.HandleFunc("GET /{$}", handlers.HandleHome(s))
	s.router.HandleFunc("GET /about", handlers.HandleAbout(s))
	s.router.HandleFunc("GET /registry", handlers.HandleRegistry(s))
	s.router.HandleFunc("GET /travel", handlers.HandleTravel(s))

	// Auth routes
	s.router.HandleFunc("GET /login", handlers.HandleLoginPage(s))
	s.router.HandleFunc("POST /login", handlers.HandleLogin(s))
	s.router.HandleFunc("GET /logout", handlers.HandleLogout(s))

	// Guest routes (protected)
	s.router.HandleFunc("GET /dashboard", s.requireGuest(handlers.HandleDashboard(s)))
	s.router.HandleFunc("GET /rsvp", s.requireGuest(handlers.HandleRSVP(s)))
	s.router.HandleFunc("POST /rsvp", s.requireGuest(handlers.HandleReply(s)))

	// Static files, with the error page for anything missing
	fs := http.FileServer(http.Dir(s.config.Root))
	s.router.Handle("GET /", s.static(fs))
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.trace(s.router)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log := logger.Get()
	tls := s.config.TLS()
	switch {
	case tls:
		log.Debugf("tls: cert: `%s`, key: `%s`", s.config.CertFile, s.config.KeyFile)
	case s.config.CertFile != "":
		log.Warnf("missing TLS key file, ignoring certificate: `%s`", s.config.CertFile)
	case s.config.KeyFile != "":
		log.Warnf("missing TLS certificate file, ignoring key: `%s`", s.config.KeyFile)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("listening on %s", srv.Addr)
		var err error
		if tls {
			err = srv.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Warn("commencing graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// requireGuest is a middleware that checks if a guest is logged in
func (s *Server) requireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.CurrentGuest(r); !ok {
			if r.Method == http.MethodGet {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			handlers.RenderError(s, w, r, http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// static serves existing files under the root and the not found page for
// everything else.
func (s *Server) static(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := filepath.FromSlash(path.Clean("/" + r.URL.Path))
		info, err := os.Stat(filepath.Join(s.config.Root, name))
		if err != nil || info.IsDir() {
			handlers.RenderError(s, w, r, http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// trace logs every incoming request.
func (s *Server) trace(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry := logger.WithField("from", r.RemoteAddr)
		if from := r.Header.Get("CF-Connecting-IP"); from != "" {
			entry = logger.WithFields(logrus.Fields{"proxy": r.RemoteAddr, "for": from})
		}
		entry.Tracef("req: %s %s", r.Method, r.URL.RequestURI())
		next.ServeHTTP(w, r)
	}
}
