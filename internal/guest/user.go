package guest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Identity is the opaque token naming one guest record. It is minted once
// per record when a guestlist is constructed and never derived from the
// guest's name.
type Identity uuid.UUID

// NewIdentity mints a fresh random identity.
func NewIdentity() Identity {
	return Identity(uuid.New())
}

// ParseIdentity parses the textual form produced by Identity.String.
func ParseIdentity(s string) (Identity, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	return Identity(id), nil
}

func (id Identity) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether the identity was never assigned.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Normalize returns the matching form of a name: surrounding whitespace
// removed and Unicode case folded. It is only used for comparison.
func Normalize(name string) string {
	// cases.Caser is stateful, so one is built per call.
	return cases.Fold().String(strings.TrimSpace(name))
}

// Key is the normalized name pair two users are compared by.
type Key struct {
	First string
	Last  string
}

// User is a person as entered on the guestlist. Display uses the original
// casing; equality goes through Key.
type User struct {
	Ident Identity
	First string
	Last  string
}

// NewUser builds a user that has not yet been assigned an identity.
func NewUser(first, last string) User {
	return User{First: first, Last: last}
}

// Key returns the normalized lookup key for the user.
func (u User) Key() Key {
	return Key{First: Normalize(u.First), Last: Normalize(u.Last)}
}

// Matches reports whether both users normalize to the same name.
func (u User) Matches(other User) bool {
	return u.Key() == other.Key()
}

// Sanitize trims the surrounding whitespace of login input.
func (u *User) Sanitize() {
	u.First = strings.TrimSpace(u.First)
	u.Last = strings.TrimSpace(u.Last)
}

// Name is the display name.
func (u User) Name() string {
	return strings.TrimSpace(u.First + " " + u.Last)
}

func (u User) String() string {
	return u.Name()
}
