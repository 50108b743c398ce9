package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd", "-a", "https://skud.local", "-d", "/tmp/s.db", "-l", "debug", "-t", "5"},
			expected: &Config{APIBaseURL: "https://skud.local", DatabasePath: "/tmp/s.db", LogLevel: "debug", RequestTimeout: 5 * time.Second}},
		{name: "foreign args are ignored", args: []string{"cmd", "whoami", "-a", "https://skud.local", "--verbose"},
			expected: &Config{APIBaseURL: "https://skud.local"}},
		{name: "incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
