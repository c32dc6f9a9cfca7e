package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexTLDR/rsvp/internal/config"
)

func TestFlags_Apply(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want config.Config
	}{
		{
			name: "no flags keep the environment",
			want: config.Config{Port: 3000, Root: "www", LogLevel: "info", MirrorDriver: "sqlite3"},
		},
		{
			name: "flags override",
			args: []string{"--out", "out.csv", "-p", "8080", "--lock", "--mirror-dsn", "rsvp.db", "--log-level", "trace", "guests.csv"},
			want: config.Config{
				GuestsPath:   "guests.csv",
				OutputPath:   "out.csv",
				Port:         8080,
				Root:         "www",
				LogLevel:     "trace",
				Locked:       true,
				MirrorDriver: "sqlite3",
				MirrorDSN:    "rsvp.db",
			},
		},
		{
			name: "explicit empty value clears",
			args: []string{"--root", "", "--cert", "cert.pem", "--key", "key.pem"},
			want: config.Config{Port: 3000, LogLevel: "info", MirrorDriver: "sqlite3", CertFile: "cert.pem", KeyFile: "key.pem"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &flags{}
			cmd := &cobra.Command{Use: "server"}
			f.register(cmd)
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg := &config.Config{Port: 3000, Root: "www", LogLevel: "info", MirrorDriver: "sqlite3"}
			f.apply(cmd, cfg, cmd.Flags().Args())
			assert.Equal(t, tt.want, *cfg)
		})
	}
}

func TestRootCommand_RejectsExtraArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"a.csv", "b.csv"})
	assert.Error(t, cmd.Execute())
}
