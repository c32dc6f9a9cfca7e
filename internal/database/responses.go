package database

import (
	"github.com/AlexTLDR/rsvp/internal/guest"
	"github.com/AlexTLDR/rsvp/internal/logger"
)

// Update replaces the reply of the guest with the given identity. The reply
// is validated first, so a declined or unanswered reply never keeps a meal.
func (db *DB) Update(ident guest.Identity, reply guest.Reply) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.update(ident, reply)
}

// Respond records reply for target on behalf of actor. The group check and
// the update happen under one write lock.
func (db *DB) Respond(actor, target guest.Identity, reply guest.Reply) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.authorize(actor, target); err != nil {
		return err
	}
	return db.update(target, reply)
}

func (db *DB) update(ident guest.Identity, reply guest.Reply) error {
	g, ok := db.guests[ident]
	if !ok {
		return &NotFoundError{Ident: ident}
	}
	reply.Validate()
	logger.Get().Tracef("update: `%s` -> %s", g.User.Name(), reply)
	g.Update(reply)
	return nil
}
