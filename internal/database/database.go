// Package database holds the in-memory guestlist: every guest record plus
// the name and group indexes derived from it, with optional persistence to a
// CSV file and a SQL mirror.
package database

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/AlexTLDR/rsvp/internal/guest"
	"github.com/AlexTLDR/rsvp/internal/logger"
)

var (
	// ErrNotFound is returned for an identity the store does not hold.
	ErrNotFound = errors.New("missing guest")
	// ErrForbidden is returned when the acting guest is not in the target's group.
	ErrForbidden = errors.New("guest not in group")
	// ErrNoOutputPath is returned by Persist when no destination is configured.
	ErrNoOutputPath = errors.New("missing output path")
	// ErrDuplicateGuest is returned when two records normalize to the same name.
	ErrDuplicateGuest = errors.New("duplicate guest")
)

// DB is the guestlist store. All methods are safe for concurrent use:
// lookups share a read lock, while updates and persistence take the write
// lock.
type DB struct {
	mu sync.RWMutex

	path   string
	mirror *Mirror

	order  []guest.Identity
	idents map[guest.Key]guest.Identity
	guests map[guest.Identity]*guest.Guest
	groups map[guest.Group][]guest.Identity
}

// New builds a store from guests in the given order, minting a fresh
// identity for each one. Any identity already on a record is replaced.
func New(guests []guest.Guest) (*DB, error) {
	db := &DB{
		order:  make([]guest.Identity, 0, len(guests)),
		idents: make(map[guest.Key]guest.Identity, len(guests)),
		guests: make(map[guest.Identity]*guest.Guest, len(guests)),
		groups: make(map[guest.Group][]guest.Identity),
	}

	log := logger.Get()
	for i := range guests {
		g := guests[i]
		key := g.User.Key()
		if prev, ok := db.idents[key]; ok {
			return nil, fmt.Errorf("%w: %q matches %q", ErrDuplicateGuest,
				g.User.Name(), db.guests[prev].User.Name())
		}

		ident := guest.NewIdentity()
		g.User.Ident = ident
		g.Reply.Validate()
		log.Tracef("read: `%s`, rsvp: %t", g.User.Name(), g.Reply.Responded())

		db.idents[key] = ident
		db.guests[ident] = &g
		db.groups[g.Group] = append(db.groups[g.Group], ident)
		db.order = append(db.order, ident)
	}

	log.Debugf("database: %d guests, %d groups", len(db.guests), len(db.groups))
	return db, nil
}

// Load reads a guestlist CSV file and builds a store from it.
func Load(path string) (*DB, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open guestlist: %w", err)
	}
	defer file.Close()

	logger.Get().Debugf("reading: `%s`", path)
	guests, err := ReadGuests(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read guestlist %s: %w", path, err)
	}
	return New(guests)
}

// SetOutput sets the CSV file Persist writes to. An empty path disables it.
func (db *DB) SetOutput(path string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.path = path
}

// Output returns the configured CSV output path.
func (db *DB) Output() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.path
}

// AttachMirror makes Persist also snapshot the guestlist into m.
func (db *DB) AttachMirror(m *Mirror) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.mirror = m
}
