package database

import (
	"slices"

	"github.com/AlexTLDR/rsvp/internal/guest"
)

// Stats summarizes the replies held by the store.
type Stats struct {
	Guests     int
	Groups     int
	Children   int
	Attending  int
	Declined   int
	Unanswered int
}

// Len returns the number of guests.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.guests)
}

// FindIdentity resolves a login attempt by normalized name.
func (db *DB) FindIdentity(user guest.User) (guest.Identity, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	ident, ok := db.idents[user.Key()]
	return ident, ok
}

// Guest returns a copy of the record for ident.
func (db *DB) Guest(ident guest.Identity) (guest.Guest, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	g, ok := db.guests[ident]
	if !ok {
		return guest.Guest{}, false
	}
	return *g, true
}

// GroupMembers returns every identity in ident's group, ident included, in
// guestlist order.
func (db *DB) GroupMembers(ident guest.Identity) ([]guest.Identity, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	members, err := db.group(ident)
	if err != nil {
		return nil, err
	}
	return slices.Clone(members), nil
}

// Members returns the records of everyone in actor's group.
func (db *DB) Members(actor guest.Identity) ([]guest.Guest, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	members, err := db.group(actor)
	if err != nil {
		return nil, err
	}
	guests := make([]guest.Guest, 0, len(members))
	for _, ident := range members {
		guests = append(guests, *db.guests[ident])
	}
	return guests, nil
}

// Authorize reports whether actor may view or answer for target: both must
// belong to the same group.
func (db *DB) Authorize(actor, target guest.Identity) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.authorize(actor, target)
}

// Groups returns every group on the guestlist in ascending order.
func (db *DB) Groups() []guest.Group {
	db.mu.RLock()
	defer db.mu.RUnlock()
	groups := make([]guest.Group, 0, len(db.groups))
	for group := range db.groups {
		groups = append(groups, group)
	}
	slices.Sort(groups)
	return groups
}

// Guests returns a copy of every record in guestlist order.
func (db *DB) Guests() []guest.Guest {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.snapshot()
}

// Stats counts guests by reply.
func (db *DB) Stats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()

	stats := Stats{Guests: len(db.guests), Groups: len(db.groups)}
	for _, g := range db.guests {
		if g.Child {
			stats.Children++
		}
		switch g.Reply.Attend {
		case guest.Yes:
			stats.Attending++
		case guest.No:
			stats.Declined++
		default:
			stats.Unanswered++
		}
	}
	return stats
}

func (db *DB) group(ident guest.Identity) ([]guest.Identity, error) {
	g, ok := db.guests[ident]
	if !ok {
		return nil, &NotFoundError{Ident: ident}
	}
	return db.groups[g.Group], nil
}

func (db *DB) authorize(actor, target guest.Identity) error {
	members, err := db.group(actor)
	if err != nil {
		return err
	}
	if !slices.Contains(members, target) {
		return ErrForbidden
	}
	return nil
}

func (db *DB) snapshot() []guest.Guest {
	guests := make([]guest.Guest, 0, len(db.order))
	for _, ident := range db.order {
		guests = append(guests, *db.guests[ident])
	}
	return guests
}
