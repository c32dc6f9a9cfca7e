package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/AlexTLDR/rsvp/internal/guest"
	"github.com/AlexTLDR/rsvp/internal/logger"
)

// Persist writes every guest, in guestlist order, to the CSV output path and
// the SQL mirror, whichever are configured. It returns ErrNoOutputPath when
// neither is. Persist holds the write lock for the whole write.
func (db *DB) Persist(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.path == "" && db.mirror == nil {
		return ErrNoOutputPath
	}

	guests := db.snapshot()
	var err error
	if db.path != "" {
		err = multierr.Append(err, writeFile(db.path, guests))
	}
	if db.mirror != nil {
		err = multierr.Append(err, db.mirror.Snapshot(ctx, guests))
	}
	return err
}

// Export encodes the current guestlist as CSV.
func (db *DB) Export(w io.Writer) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return WriteGuests(w, db.snapshot())
}

// writeFile replaces path with the encoded guestlist. The rows go to a
// temporary file in the same directory first, so readers never see a
// partial file.
func writeFile(path string, guests []guest.Guest) (err error) {
	log := logger.Get()
	log.Debugf("writing: `%s`", path)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err = WriteGuests(tmp, guests); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	for _, g := range guests {
		log.Tracef("wrote: `%s`, rsvp: %t", g.User.Name(), g.Reply.Responded())
	}
	return nil
}
