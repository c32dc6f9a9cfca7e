package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"GUESTS_PATH", "OUTPUT_PATH", "PORT", "WWW_ROOT", "RSVP_LOCKED", "RSVP_DEADLINE", "SECURE_COOKIES"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "www", cfg.Root)
	assert.Empty(t, cfg.GuestsPath)
	assert.Empty(t, cfg.OutputPath)
	assert.False(t, cfg.Locked)
	assert.True(t, cfg.RSVPDeadline.IsZero())
	assert.False(t, cfg.TLS())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GUESTS_PATH", "guests.csv")
	t.Setenv("OUTPUT_PATH", "out.csv")
	t.Setenv("PORT", "8443")
	t.Setenv("TLS_CERT", "cert.pem")
	t.Setenv("TLS_KEY", "key.pem")
	t.Setenv("RSVP_LOCKED", "true")
	t.Setenv("RSVP_DEADLINE", "2026-04-12T23:59:59+03:00")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "guests.csv", cfg.GuestsPath)
	assert.Equal(t, "out.csv", cfg.OutputPath)
	assert.Equal(t, 8443, cfg.Port)
	assert.True(t, cfg.TLS())
	assert.True(t, cfg.Locked)
	assert.Equal(t, 2026, cfg.RSVPDeadline.Year())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "PORT", value: "http"},
		{key: "RSVP_LOCKED", value: "sometimes"},
		{key: "RSVP_DEADLINE", value: "next spring"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestRepliesClosed(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&Config{}).RepliesClosed(now))
	assert.True(t, (&Config{Locked: true}).RepliesClosed(now))
	assert.False(t, (&Config{RSVPDeadline: now.Add(time.Hour)}).RepliesClosed(now))
	assert.True(t, (&Config{RSVPDeadline: now.Add(-time.Hour)}).RepliesClosed(now))
}

func TestGetThemes(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, ThemeConfig{Light: "garden", Dark: "dim"}, GetThemes(root))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "css"), 0o755))
	css := `@plugin "daisyui" { themes: fantasy --default, aqua --prefersdark; }`
	require.NoError(t, os.WriteFile(filepath.Join(root, "css", "input.css"), []byte(css), 0o644))
	assert.Equal(t, ThemeConfig{Light: "fantasy", Dark: "aqua"}, GetThemes(root))
}
