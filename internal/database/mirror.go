package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/AlexTLDR/rsvp/internal/guest"
	"github.com/AlexTLDR/rsvp/internal/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Supported mirror drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Mirror keeps a SQL copy of the guestlist, replaced wholesale on every
// snapshot.
type Mirror struct {
	db     *sql.DB
	driver string
}

// OpenMirror connects to the mirror database and migrates its schema.
func OpenMirror(ctx context.Context, driver, dsn string) (*Mirror, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported mirror driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}

	backoff := retry.WithMaxRetries(4, retry.NewExponential(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.WithError(err).Debug("mirror: ping failed")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close() // Ignore close error, we're already returning ping error
		return nil, fmt.Errorf("failed to ping mirror: %w", err)
	}

	m := &Mirror{db: db, driver: driver}
	if err := m.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func (m *Mirror) migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(logger.Get())
	if err := goose.SetDialect(m.driver); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(m.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Snapshot replaces the mirrored rows with guests in one transaction.
func (m *Mirror) Snapshot(ctx context.Context, guests []guest.Guest) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM guests`); err != nil {
		return fmt.Errorf("failed to clear mirror: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, m.rebind(
		`INSERT INTO guests (position, ident, grp, first, last, child, attend, meal, msg)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, g := range guests {
		_, err := stmt.ExecContext(ctx, i, g.Ident().String(), int64(g.Group),
			g.User.First, g.User.Last, g.Child,
			g.Reply.Attend.String(), g.Reply.Meal.String(), g.Reply.Msg)
		if err != nil {
			return fmt.Errorf("failed to mirror `%s`: %w", g.User.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	logger.Get().Debugf("mirror: %d guests", len(guests))
	return nil
}

// Guests reads the mirrored guestlist back in order.
func (m *Mirror) Guests(ctx context.Context) ([]guest.Guest, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT ident, grp, first, last, child, attend, meal, msg FROM guests ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mirror: %w", err)
	}
	defer rows.Close()

	var guests []guest.Guest
	for rows.Next() {
		var (
			ident, attend, meal string
			grp                 int64
			g                   guest.Guest
		)
		if err := rows.Scan(&ident, &grp, &g.User.First, &g.User.Last, &g.Child,
			&attend, &meal, &g.Reply.Msg); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		if g.User.Ident, err = guest.ParseIdentity(ident); err != nil {
			return nil, err
		}
		if g.Reply.Attend, err = guest.ParseAttend(attend); err != nil {
			return nil, err
		}
		if g.Reply.Meal, err = guest.ParseMeal(meal); err != nil {
			return nil, err
		}
		g.Group = guest.Group(grp)
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

// Close closes the mirror connection.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// rebind converts ? placeholders to the driver's syntax.
func (m *Mirror) rebind(query string) string {
	if m.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
