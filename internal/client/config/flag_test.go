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
		{name: "Test1 OK", args: []string{"cmd", "-a", "http://api:9090", "-t", "10", "-w", "20", "-d", "x.db", "-l", "debug"}, expectPanic: false,
			expected: &Config{APIURL: "http://api:9090", DBPath: "x.db", LogLevel: "debug", SessionTimeout: 10 * time.Minute, WarningLead: 20 * time.Second}},
		{name: "Test2 incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true, expected: &Config{}},
		{name: "Test3 foreign flags ignored", args: []string{"cmd", "-c", "cfg.json", "-a", "http://h"}, expectPanic: false,
			expected: &Config{APIURL: "http://h"}},
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
