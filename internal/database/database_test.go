package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexTLDR/rsvp/internal/guest"
)

func newGuest(group guest.Group, first, last string) guest.Guest {
	return guest.Guest{Group: group, User: guest.NewUser(first, last)}
}

// newTestDB builds Jane and John Doe in group 1 and Carol Smith in group 2.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New([]guest.Guest{
		newGuest(1, "Jane", "Doe"),
		newGuest(1, "John", "Doe"),
		newGuest(2, "Carol", "Smith"),
	})
	require.NoError(t, err)
	return db
}

func mustFind(t *testing.T, db *DB, first, last string) guest.Identity {
	t.Helper()
	ident, ok := db.FindIdentity(guest.NewUser(first, last))
	require.True(t, ok, "guest %s %s not found", first, last)
	return ident
}

func TestNew_BuildsIndexes(t *testing.T) {
	db := newTestDB(t)

	assert.Equal(t, 3, db.Len())
	stats := db.Stats()
	assert.Equal(t, 2, stats.Groups)
	assert.Equal(t, 3, stats.Unanswered)
	assert.Equal(t, []guest.Group{1, 2}, db.Groups())

	guests := db.Guests()
	require.Len(t, guests, 3)
	assert.Equal(t, "Jane", guests[0].User.First)
	assert.Equal(t, "John", guests[1].User.First)
	assert.Equal(t, "Carol", guests[2].User.First)

	seen := make(map[guest.Identity]bool)
	for _, g := range guests {
		assert.False(t, g.Ident().IsZero())
		assert.False(t, seen[g.Ident()], "identity minted twice")
		seen[g.Ident()] = true
	}
}

func TestNew_MintsFreshIdentities(t *testing.T) {
	input := []guest.Guest{newGuest(1, "Jane", "Doe")}

	first, err := New(input)
	require.NoError(t, err)
	second, err := New(input)
	require.NoError(t, err)

	assert.NotEqual(t, first.Guests()[0].Ident(), second.Guests()[0].Ident())
	assert.True(t, input[0].Ident().IsZero(), "input records must not be modified")
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	_, err := New([]guest.Guest{
		newGuest(1, "Jane", "Doe"),
		newGuest(3, " JANE ", "doe"),
	})
	require.ErrorIs(t, err, ErrDuplicateGuest)
}

func TestNew_ClearsMealUnlessAttending(t *testing.T) {
	g := newGuest(1, "Jane", "Doe")
	g.Reply = guest.Reply{Attend: guest.No, Meal: guest.Fish, Msg: "sorry"}

	db, err := New([]guest.Guest{g})
	require.NoError(t, err)

	assert.Equal(t, guest.Reply{Attend: guest.No, Msg: "sorry"}, db.Guests()[0].Reply)
}

func TestNew_Empty(t *testing.T) {
	db, err := New(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, db.Len())
	_, ok := db.FindIdentity(guest.NewUser("Jane", "Doe"))
	assert.False(t, ok)
}

func TestFindIdentity(t *testing.T) {
	db := newTestDB(t)
	jane := db.Guests()[0]

	tests := []struct {
		name  string
		first string
		last  string
		found bool
	}{
		{name: "exact", first: "Jane", last: "Doe", found: true},
		{name: "case and whitespace", first: " jane ", last: "DOE", found: true},
		{name: "wrong last name", first: "Jane", last: "Smith", found: false},
		{name: "unknown", first: "Bob", last: "Jones", found: false},
		{name: "empty", first: "", last: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, ok := db.FindIdentity(guest.NewUser(tt.first, tt.last))
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, jane.Ident(), ident)
			}
		})
	}
}

func TestGuest_ReturnsCopy(t *testing.T) {
	db := newTestDB(t)
	jane := mustFind(t, db, "Jane", "Doe")

	g, ok := db.Guest(jane)
	require.True(t, ok)
	assert.Equal(t, "Jane", g.User.First)

	g.Reply.Msg = "changed"
	again, _ := db.Guest(jane)
	assert.Empty(t, again.Reply.Msg)

	_, ok = db.Guest(guest.NewIdentity())
	assert.False(t, ok)
}

func TestGroupMembers(t *testing.T) {
	db := newTestDB(t)
	jane := mustFind(t, db, "Jane", "Doe")
	john := mustFind(t, db, "John", "Doe")
	carol := mustFind(t, db, "Carol", "Smith")

	members, err := db.GroupMembers(jane)
	require.NoError(t, err)
	assert.Equal(t, []guest.Identity{jane, john}, members)

	members, err = db.GroupMembers(carol)
	require.NoError(t, err)
	assert.Equal(t, []guest.Identity{carol}, members)

	_, err = db.GroupMembers(guest.NewIdentity())
	require.ErrorIs(t, err, ErrNotFound)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestGroupMembers_CallerCannotMutateIndex(t *testing.T) {
	db := newTestDB(t)
	jane := mustFind(t, db, "Jane", "Doe")

	members, err := db.GroupMembers(jane)
	require.NoError(t, err)
	members[0] = guest.NewIdentity()

	again, err := db.GroupMembers(jane)
	require.NoError(t, err)
	assert.Equal(t, jane, again[0])
}

func TestMembers(t *testing.T) {
	db := newTestDB(t)
	john := mustFind(t, db, "John", "Doe")

	guests, err := db.Members(john)
	require.NoError(t, err)
	require.Len(t, guests, 2)
	assert.Equal(t, "Jane", guests[0].User.First)
	assert.Equal(t, "John", guests[1].User.First)

	_, err = db.Members(guest.NewIdentity())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorize(t *testing.T) {
	db := newTestDB(t)
	jane := mustFind(t, db, "Jane", "Doe")
	john := mustFind(t, db, "John", "Doe")
	carol := mustFind(t, db, "Carol", "Smith")

	assert.NoError(t, db.Authorize(jane, john))
	assert.NoError(t, db.Authorize(john, jane))
	assert.NoError(t, db.Authorize(jane, jane))
	assert.ErrorIs(t, db.Authorize(carol, jane), ErrForbidden)
	assert.ErrorIs(t, db.Authorize(carol, john), ErrForbidden)
	assert.ErrorIs(t, db.Authorize(jane, carol), ErrForbidden)
	assert.ErrorIs(t, db.Authorize(guest.NewIdentity(), jane), ErrNotFound)
	assert.ErrorIs(t, db.Authorize(jane, guest.NewIdentity()), ErrForbidden)
}

func TestUpdate_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	john := mustFind(t, db, "John", "Doe")

	reply := guest.Reply{Attend: guest.Yes, Meal: guest.Fish, Msg: "yay"}
	require.NoError(t, db.Update(john, reply))

	g, ok := db.Guest(john)
	require.True(t, ok)
	assert.Equal(t, reply, g.Reply)
}

func TestUpdate_Validates(t *testing.T) {
	db := newTestDB(t)
	john := mustFind(t, db, "John", "Doe")

	require.NoError(t, db.Update(john, guest.Reply{Attend: guest.No, Meal: guest.Fish, Msg: "hi"}))

	g, _ := db.Guest(john)
	assert.Equal(t, guest.Reply{Attend: guest.No, Msg: "hi"}, g.Reply)
}

func TestUpdate_LastWriteWins(t *testing.T) {
	db := newTestDB(t)
	jane := mustFind(t, db, "Jane", "Doe")

	require.NoError(t, db.Update(jane, guest.Reply{Attend: guest.Yes, Meal: guest.Meat}))
	require.NoError(t, db.Update(jane, guest.Reply{Attend: guest.No}))

	g, _ := db.Guest(jane)
	assert.Equal(t, guest.Reply{Attend: guest.No}, g.Reply)
}

func TestUpdate_UnknownIdentityLeavesStoreUnchanged(t *testing.T) {
	db := newTestDB(t)
	before := db.Guests()

	err := db.Update(guest.NewIdentity(), guest.Reply{Attend: guest.Yes})
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, before, db.Guests())
}

func TestRespond(t *testing.T) {
	db := newTestDB(t)
	jane := mustFind(t, db, "Jane", "Doe")
	john := mustFind(t, db, "John", "Doe")
	carol := mustFind(t, db, "Carol", "Smith")
	reply := guest.Reply{Attend: guest.Yes, Meal: guest.Fish, Msg: "yay"}

	t.Run("same group", func(t *testing.T) {
		require.NoError(t, db.Respond(jane, john, reply))
		g, _ := db.Guest(john)
		assert.Equal(t, reply, g.Reply)
	})

	t.Run("other group is forbidden", func(t *testing.T) {
		before := db.Guests()
		err := db.Respond(carol, jane, reply)
		require.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, before, db.Guests())
	})

	t.Run("unknown actor", func(t *testing.T) {
		err := db.Respond(guest.NewIdentity(), jane, reply)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConcurrentAccess(t *testing.T) {
	db := newTestDB(t)
	out := filepath.Join(t.TempDir(), "guests.csv")
	db.SetOutput(out)
	jane := mustFind(t, db, "Jane", "Doe")
	john := mustFind(t, db, "John", "Doe")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			assert.NoError(t, db.Respond(jane, john, guest.Reply{Attend: guest.Yes, Meal: guest.Veggie}))
		}()
		go func() {
			defer wg.Done()
			_, _ = db.FindIdentity(guest.NewUser("jane", "doe"))
			_, err := db.Members(jane)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, db.Persist(ctx))
		}()
	}
	wg.Wait()

	g, _ := db.Guest(john)
	assert.Equal(t, guest.Yes, g.Reply.Attend)

	// every write replaced the file whole
	reloaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Len())

	require.NoError(t, db.Persist(ctx))
	reloaded, err = Load(out)
	require.NoError(t, err)
	ident := mustFind(t, reloaded, "John", "Doe")
	g, _ = reloaded.Guest(ident)
	assert.Equal(t, guest.Reply{Attend: guest.Yes, Meal: guest.Veggie}, g.Reply)
}
