package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

// --- routes ---

func TestRoutesCommand(t *testing.T) {
	out := execute(t, "routes", "--no-color")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	require.Contains(t, lines[0], "VERB")
	require.Contains(t, lines[0], "HANDLER")
	require.Contains(t, out, "/hello/@name")
	require.Contains(t, out, "Home.clock")
	require.Contains(t, out, "ajax")
}

func TestRoutesFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.ini")
	require.NoError(t, os.WriteFile(path, []byte(`
PACKAGE = demo

[routes]
GET home / 30 = Home.index
`), 0o600))

	out := execute(t, "routes", "--no-color", "--config", path)
	require.Contains(t, out, "Home.index (ttl 30s)")
	require.NotContains(t, out, "/hello/@name")

	require.Equal(t, "Welcome to demo", execute(t, "mock", "GET /", "-c", path))
}

// --- mock ---

func TestMockCommand(t *testing.T) {
	require.Equal(t, "Hello, bob", execute(t, "mock", "GET hello(name=bob)"))
	require.Equal(t, "ping", execute(t, "mock", "POST /echo", "--body", "ping"))

	out := execute(t, "mock", "GET /missing", "--include")
	require.True(t, strings.HasPrefix(out, "404 Not Found\n"), out)

	out = execute(t, "mock", "GET /clock ajax", "-i", "-H", "X-Request-ID: fixed-id")
	require.Contains(t, out, "X-Request-Id: fixed-id\n")
	require.Contains(t, out, `{"now":`)
}

func TestMockCommandMalformedHeader(t *testing.T) {
	cmd := newRootCmd(viper.New())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"mock", "GET /", "-H", "no-colon"})
	require.ErrorContains(t, cmd.Execute(), "malformed header")
}

// --- helpers ---

func TestRedisAddr(t *testing.T) {
	for _, tt := range []struct {
		dsn  string
		addr string
		db   int
		ok   bool
	}{
		{"redis=cache.local:6380:2", "cache.local:6380", 2, true},
		{"redis", "localhost:6379", 0, true},
		{"true", "", 0, false},
		{"memcache=localhost:11211", "", 0, false},
	} {
		addr, db, ok := redisAddr(tt.dsn)
		require.Equal(t, tt.addr, addr, tt.dsn)
		require.Equal(t, tt.db, db, tt.dsn)
		require.Equal(t, tt.ok, ok, tt.dsn)
	}
}

func TestVersionCommand(t *testing.T) {
	require.Equal(t, "stick dev (unknown)\n", execute(t, "version"))
}
