// Package guest holds the guestlist domain: identities, names, RSVP replies
// and the guest record that ties them together.
package guest

// Group is the party a guest was invited with. Members of a group may view
// and answer for each other.
type Group uint

// Guest is one person on the guestlist.
type Guest struct {
	Group Group
	User  User
	Child bool
	Reply Reply
}

// Ident returns the guest's identity.
func (g Guest) Ident() Identity {
	return g.User.Ident
}

// Update replaces the guest's reply.
func (g *Guest) Update(reply Reply) {
	g.Reply = reply
}
