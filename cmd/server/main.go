package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AlexTLDR/rsvp/internal/config"
	"github.com/AlexTLDR/rsvp/internal/database"
	"github.com/AlexTLDR/rsvp/internal/logger"
	"github.com/AlexTLDR/rsvp/internal/server"
)

// flags holds command line overrides for the environment configuration.
type flags struct {
	out          string
	logPath      string
	logLevel     string
	port         int
	root         string
	cert         string
	key          string
	lock         bool
	mirrorDriver string
	mirrorDSN    string
}

func main() {
	// Load .env file (ignore error if a file doesn't exist)
	// Use Overload to force to overwrite any existing environment variables
	if err := godotenv.Overload(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "server [guests]",
		Short: "Serve the wedding site and collect RSVPs",
		Long: `Serve the wedding site and collect RSVPs.

Guests log in with their first and last name and reply for everyone in
their party. The guestlist is read from a CSV file and written back to
the output file after every reply.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			f.apply(cmd, cfg, args)
			return run(cmd.Context(), cfg)
		},
	}

	f.register(cmd)

	return cmd
}

// register binds the flags to cmd.
func (f *flags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "guestlist output path (env OUTPUT_PATH)")
	cmd.Flags().StringVar(&f.logPath, "log", "", "also write logs to this file (env LOG_PATH)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "trace, debug, info, warn or error (env LOG_LEVEL)")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "port to listen on (env PORT)")
	cmd.Flags().StringVar(&f.root, "root", "", "static file root (env WWW_ROOT)")
	cmd.Flags().StringVar(&f.cert, "cert", "", "TLS certificate file (env TLS_CERT)")
	cmd.Flags().StringVar(&f.key, "key", "", "TLS key file (env TLS_KEY)")
	cmd.Flags().BoolVar(&f.lock, "lock", false, "reject new replies (env RSVP_LOCKED)")
	cmd.Flags().StringVar(&f.mirrorDriver, "mirror-driver", "", "SQL mirror driver: sqlite3 or postgres (env MIRROR_DRIVER)")
	cmd.Flags().StringVar(&f.mirrorDSN, "mirror-dsn", "", "SQL mirror data source; empty disables the mirror (env MIRROR_DSN)")
}

// apply overrides cfg with every flag set on the command line.
func (f *flags) apply(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.GuestsPath = args[0]
	}

	set := cmd.Flags().Changed
	if set("out") {
		cfg.OutputPath = f.out
	}
	if set("log") {
		cfg.LogPath = f.logPath
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("port") {
		cfg.Port = f.port
	}
	if set("root") {
		cfg.Root = f.root
	}
	if set("cert") {
		cfg.CertFile = f.cert
	}
	if set("key") {
		cfg.KeyFile = f.key
	}
	if set("lock") {
		cfg.Locked = f.lock
	}
	if set("mirror-driver") {
		cfg.MirrorDriver = f.mirrorDriver
	}
	if set("mirror-dsn") {
		cfg.MirrorDSN = f.mirrorDSN
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	closer, err := logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogPath})
	if err != nil {
		return err
	}
	defer closer.Close()
	log := logger.Get()
	log.Debugf("config: port=%d root=`%s` out=`%s`", cfg.Port, cfg.Root, cfg.OutputPath)

	db, err := openGuestlist(cfg.GuestsPath)
	if err != nil {
		return err
	}
	db.SetOutput(cfg.OutputPath)
	if cfg.OutputPath == "" {
		log.Warn("no output path, replies will not be saved to a file")
	}

	if cfg.MirrorDSN != "" {
		mirror, err := database.OpenMirror(ctx, cfg.MirrorDriver, cfg.MirrorDSN)
		if err != nil {
			return err
		}
		defer mirror.Close()
		db.AttachMirror(mirror)
		log.Debugf("mirror: %s", cfg.MirrorDriver)
	}

	if cfg.Locked {
		log.Warn("database is locked, replies are disabled")
	} else if !cfg.RSVPDeadline.IsZero() {
		log.Infof("replies close at %s", cfg.RSVPDeadline.Format("2006-01-02 15:04 MST"))
	}

	stats := db.Stats()
	log.Infof("loaded %d guests in %d groups: %d attending, %d declined, %d unanswered",
		stats.Guests, stats.Groups, stats.Attending, stats.Declined, stats.Unanswered)

	return server.New(cfg, db).Start(ctx)
}

func openGuestlist(path string) (*database.DB, error) {
	if path == "" {
		logger.Get().Warn("no guestlist given, starting with an empty one")
		return database.New(nil)
	}
	return database.Load(path)
}
