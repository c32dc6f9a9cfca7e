package server

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexTLDR/rsvp/internal/config"
	"github.com/AlexTLDR/rsvp/internal/database"
	"github.com/AlexTLDR/rsvp/internal/guest"
)

type testEnv struct {
	ts  *httptest.Server
	db  *database.DB
	out string
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	db, err := database.New([]guest.Guest{
		{Group: 1, User: guest.NewUser("Jane", "Doe")},
		{Group: 1, User: guest.NewUser("John", "Doe")},
		{Group: 2, User: guest.NewUser("Carol", "Smith")},
	})
	require.NoError(t, err)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "css", "style.css"), []byte("body{}"), 0o644))
	cfg.Root = root
	cfg.SessionSecret = "test-secret-test-secret-test-sec"

	out := filepath.Join(t.TempDir(), "out.csv")
	db.SetOutput(out)

	ts := httptest.NewServer(New(cfg, db).Handler())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, db: db, out: out}
}

func (e *testEnv) ident(t *testing.T, first, last string) guest.Identity {
	t.Helper()
	ident, ok := e.db.FindIdentity(guest.NewUser(first, last))
	require.True(t, ok)
	return ident
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func (e *testEnv) login(t *testing.T, c *http.Client, first, last string) *http.Response {
	t.Helper()
	resp, err := c.PostForm(e.ts.URL+"/login", url.Values{"first": {first}, "last": {last}})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, c *http.Client, path string) *http.Response {
	t.Helper()
	resp, err := c.Get(e.ts.URL + path)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) reply(t *testing.T, c *http.Client, target guest.Identity, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(e.ts.URL+"/rsvp?guest="+target.String(), form)
	require.NoError(t, err)
	return resp
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	tests := []struct {
		name  string
		first string
		last  string
		ok    bool
	}{
		{name: "exact", first: "Jane", last: "Doe", ok: true},
		{name: "case and whitespace", first: " jane ", last: "DOE", ok: true},
		{name: "unknown", first: "Bob", last: "Jones", ok: false},
		{name: "empty", first: "", last: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t)
			resp := env.login(t, c, tt.first, tt.last)
			if tt.ok {
				assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
				assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
				_ = body(t, resp)

				dash := env.get(t, c, "/dashboard")
				assert.Equal(t, http.StatusOK, dash.StatusCode)
				assert.Contains(t, body(t, dash), "Welcome, Jane!")
				return
			}

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body(t, resp), "couldn&#39;t find a login")

			dash := env.get(t, c, "/dashboard")
			assert.Equal(t, http.StatusSeeOther, dash.StatusCode)
			assert.Equal(t, "/login", dash.Header.Get("Location"))
		})
	}
}

func TestLoginPage_RedirectsWhenLoggedIn(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	c := newClient(t)

	resp := env.get(t, c, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = body(t, resp)

	_ = body(t, env.login(t, c, "Jane", "Doe"))
	resp = env.get(t, c, "/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	c := newClient(t)
	_ = body(t, env.login(t, c, "Jane", "Doe"))

	resp := env.get(t, c, "/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp = env.get(t, c, "/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestDashboard_ListsGroupOnly(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	c := newClient(t)
	_ = body(t, env.login(t, c, "John", "Doe"))

	page := body(t, env.get(t, c, "/dashboard"))
	assert.Contains(t, page, "Jane Doe")
	assert.Contains(t, page, "John Doe")
	assert.NotContains(t, page, "Carol Smith")
}

func TestRSVP_Authorization(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	jane := env.ident(t, "Jane", "Doe")
	john := env.ident(t, "John", "Doe")

	carol := newClient(t)
	_ = body(t, env.login(t, carol, "Carol", "Smith"))

	for _, target := range []guest.Identity{jane, john} {
		resp := env.get(t, carol, "/rsvp?guest="+target.String())
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Contains(t, body(t, resp), "You don&#39;t have access to that!")

		resp = env.reply(t, carol, target, url.Values{"attend": {"No"}})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		_ = body(t, resp)

		g, _ := env.db.Guest(target)
		assert.Equal(t, guest.Reply{}, g.Reply)
	}

	janeClient := newClient(t)
	_ = body(t, env.login(t, janeClient, "Jane", "Doe"))
	resp := env.get(t, janeClient, "/rsvp?guest="+john.String())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "RSVP for John Doe")

	// without a guest parameter the form is for the actor
	resp = env.get(t, janeClient, "/rsvp")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "RSVP for Jane Doe")
}

func TestReply_ForGroupMember(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	john := env.ident(t, "John", "Doe")
	c := newClient(t)
	_ = body(t, env.login(t, c, "jane", "doe"))

	resp := env.reply(t, c, john, url.Values{"attend": {"Yes"}, "meal": {"Fish"}, "msg": {"yay"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	_ = body(t, resp)

	g, ok := env.db.Guest(john)
	require.True(t, ok)
	assert.Equal(t, guest.Reply{Attend: guest.Yes, Meal: guest.Fish, Msg: "yay"}, g.Reply)

	data, err := os.ReadFile(env.out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,John,Doe,false,Yes,Fish,yay\n")

	reloaded, err := database.Load(env.out)
	require.NoError(t, err)
	ident, ok := reloaded.FindIdentity(guest.NewUser("John", "Doe"))
	require.True(t, ok)
	g, _ = reloaded.Guest(ident)
	assert.Equal(t, guest.Reply{Attend: guest.Yes, Meal: guest.Fish, Msg: "yay"}, g.Reply)
}

func TestReply_DeclineClearsMeal(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	jane := env.ident(t, "Jane", "Doe")
	c := newClient(t)
	_ = body(t, env.login(t, c, "Jane", "Doe"))

	resp := env.reply(t, c, jane, url.Values{"attend": {"No"}, "meal": {"Fish"}, "msg": {"hi"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_ = body(t, resp)

	g, _ := env.db.Guest(jane)
	assert.Equal(t, guest.Reply{Attend: guest.No, Msg: "hi"}, g.Reply)
}

func TestReply_WithoutOutputPath(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	env.db.SetOutput("")
	jane := env.ident(t, "Jane", "Doe")
	c := newClient(t)
	_ = body(t, env.login(t, c, "Jane", "Doe"))

	resp := env.reply(t, c, jane, url.Values{"attend": {"Yes"}, "meal": {"Meat"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_ = body(t, resp)

	g, _ := env.db.Guest(jane)
	assert.Equal(t, guest.Yes, g.Reply.Attend)
}

func TestReply_BadRequests(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	jane := env.ident(t, "Jane", "Doe")
	c := newClient(t)
	_ = body(t, env.login(t, c, "Jane", "Doe"))

	resp, err := c.PostForm(env.ts.URL+"/rsvp?guest=nobody", url.Values{"attend": {"Yes"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = body(t, resp)

	resp = env.reply(t, c, jane, url.Values{"attend": {"Maybe"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = body(t, resp)

	resp = env.reply(t, c, jane, url.Values{"attend": {"Yes"}, "meal": {"Lobster"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = body(t, resp)

	g, _ := env.db.Guest(jane)
	assert.Equal(t, guest.Reply{}, g.Reply)
}

func TestReply_RequiresLogin(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	jane := env.ident(t, "Jane", "Doe")

	resp := env.reply(t, newClient(t), jane, url.Values{"attend": {"Yes"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = body(t, resp)
}

func TestDashboard_StaleSession(t *testing.T) {
	// Both servers share a session secret; the second was loaded from a
	// different guestlist, so the identity in the cookie means nothing to it.
	first := newTestEnv(t, &config.Config{})
	second := newTestEnv(t, &config.Config{})
	c := newClient(t)
	_ = body(t, first.login(t, c, "Jane", "Doe"))

	resp := second.get(t, c, "/dashboard")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body(t, resp), "Jane")
}

func TestReply_Closed(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{name: "locked", cfg: &config.Config{Locked: true}},
		{name: "deadline passed", cfg: &config.Config{RSVPDeadline: time.Now().Add(-time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.cfg)
			jane := env.ident(t, "Jane", "Doe")
			c := newClient(t)
			_ = body(t, env.login(t, c, "Jane", "Doe"))

			resp := env.get(t, c, "/rsvp")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body(t, resp), "disabled")

			resp = env.reply(t, c, jane, url.Values{"attend": {"Yes"}})
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assert.Contains(t, body(t, resp), "closed")

			g, _ := env.db.Guest(jane)
			assert.Equal(t, guest.Reply{}, g.Reply)
		})
	}
}

func TestPublicPages(t *testing.T) {
	env := newTestEnv(t, &config.Config{})
	c := newClient(t)

	for _, path := range []string{"/", "/about", "/registry", "/travel", "/css/style.css"} {
		t.Run(path, func(t *testing.T) {
			resp := env.get(t, c, path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			_ = body(t, resp)
		})
	}

	resp := env.get(t, c, "/missing.html")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Page not found")

	resp = env.get(t, c, "/css/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = body(t, resp)
}

func TestPublicPages_Language(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	resp := env.get(t, newClient(t), "/missing?lang=ro")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	page := body(t, resp)
	assert.True(t, strings.Contains(page, `lang="ro"`))
	assert.Contains(t, page, "Pagina nu a fost găsită")
}
