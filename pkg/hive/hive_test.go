package hive_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eghojansu/stick/pkg/hive"
)

// --- Ref ---

func TestRef(t *testing.T) {
	t.Parallel()

	t.Run("creates intermediate maps when asked", func(t *testing.T) {
		t.Parallel()

		h := hive.New(nil)
		ref := h.Ref("a.b.c", true)
		require.False(t, ref.Found())

		ref.Set(1)
		require.True(t, ref.Found())
		require.Equal(t, 1, h.Get("a.b.c", nil))
		require.Equal(t, map[string]any{"c": 1}, h.Get("a.b", nil))
	})

	t.Run("read-only lookup does not fabricate structure", func(t *testing.T) {
		t.Parallel()

		h := hive.New(nil)
		ref := h.Ref("x.y", false)
		require.False(t, ref.Found())
		require.Nil(t, ref.Get())

		ref.Set("ignored")
		require.False(t, h.Has("x"))
	})

	t.Run("writes through the same handle", func(t *testing.T) {
		t.Parallel()

		h := hive.New(nil)
		h.Set("counter", 1)

		ref := h.Ref("counter", false)
		ref.Set(ref.Get().(int) + 1)
		require.Equal(t, 2, h.Get("counter", 0))
	})

	t.Run("replaces scalar ancestor in create mode", func(t *testing.T) {
		t.Parallel()

		h := hive.New(nil)
		h.Set("a", "scalar")
		h.Set("a.b", true)
		require.Equal(t, map[string]any{"b": true}, h.Get("a", nil))
	})

	t.Run("walks lists by index", func(t *testing.T) {
		t.Parallel()

		h := hive.New(nil)
		h.Set("list", []string{"x", "y"})
		require.Equal(t, "y", h.Get("list.1", nil))
		require.False(t, h.Has("list.5"))

		h.Set("list.3", "z")
		require.Equal(t, []any{"x", "y", nil, "z"}, h.Get("list", nil))
	})
}

// --- Has ---

func TestHas(t *testing.T) {
	t.Parallel()

	h := hive.New(nil)
	h.Set("a", "leaf")
	h.Set("b.c", nil)

	require.True(t, h.Has("a"))
	require.False(t, h.Has("a.b"), "scalar ancestor is not a container")
	require.True(t, h.Has("b.c"), "nil leaf still exists")
	require.False(t, h.Has("missing"))
	require.False(t, h.Has(""))
}

// --- Get ---

func TestGet(t *testing.T) {
	t.Parallel()

	h := hive.New(nil)
	require.Equal(t, "fallback", h.Get("nope.deep", "fallback"))
	require.False(t, h.Has("nope"), "absent read must not mutate")

	h.Set("typed", map[string]string{"k": "v"})
	require.Equal(t, "v", h.Get("typed.k", nil))
}

// --- Remove ---

func TestRemove(t *testing.T) {
	t.Parallel()

	t.Run("restores reserved keys", func(t *testing.T) {
		t.Parallel()

		h := hive.New(map[string]any{
			"LANGUAGE": "en",
			"CORS":     map[string]any{"origin": false, "ttl": 0},
		})
		h.Set("LANGUAGE", "fr")
		h.Set("CORS.origin", "*")

		h.Remove("LANGUAGE")
		h.Remove("CORS.origin")

		require.Equal(t, "en", h.Get("LANGUAGE", nil))
		require.Equal(t, false, h.Get("CORS.origin", nil))
		require.True(t, h.IsReserved("CORS.ttl"))
	})

	t.Run("deletes user keys", func(t *testing.T) {
		t.Parallel()

		h := hive.New(map[string]any{"DEBUG": 0})
		h.Set("user.name", "bob")

		h.Remove("user.name")
		require.False(t, h.Has("user.name"))
		require.True(t, h.Has("user"))

		h.Remove("user")
		require.False(t, h.Has("user"))
	})

	t.Run("deletes list elements", func(t *testing.T) {
		t.Parallel()

		h := hive.New(nil)
		h.Set("L", []any{"a", "b"})

		h.Remove("L.1")
		require.False(t, h.Has("L.1"))
		require.Equal(t, []any{"a"}, h.Get("L", nil))

		h.Set("M", []any{"a", "b", "c"})
		h.Remove("M.0")
		require.False(t, h.Has("M.0"))
		require.Equal(t, "b", h.Get("M.1", nil))
		require.Equal(t, "c", h.Get("M.2", nil))
	})

	t.Run("reset does not leak mutations into defaults", func(t *testing.T) {
		t.Parallel()

		h := hive.New(map[string]any{"LIST": []any{"a"}})
		h.Remove("LIST")
		h.Set("LIST.0", "changed")
		h.Remove("LIST")

		require.Equal(t, []any{"a"}, h.Get("LIST", nil))
	})

	t.Run("explicit operations", func(t *testing.T) {
		t.Parallel()

		h := hive.New(map[string]any{"TZ": "UTC"})
		require.False(t, h.ResetToDefault("custom"))

		h.Delete("TZ")
		require.False(t, h.Has("TZ"))
		require.True(t, h.ResetToDefault("TZ"))
		require.Equal(t, "UTC", h.String("TZ"))
	})
}

// --- Fork ---

func TestFork(t *testing.T) {
	t.Parallel()

	base := hive.New(map[string]any{"DEBUG": 0})
	base.Set("app.name", "stick")

	fork := base.Fork()
	fork.Set("app.name", "other")
	fork.Set("DEBUG", 3)

	require.Equal(t, "stick", base.String("app.name"))
	require.Equal(t, 3, fork.Int("DEBUG"))

	fork.Remove("DEBUG")
	require.Equal(t, 0, fork.Int("DEBUG"))
}

// --- Typed readers ---

func TestTypedReaders(t *testing.T) {
	t.Parallel()

	h := hive.New(nil)
	h.Set("port", "8080")
	h.Set("debug", "true")
	h.Set("csv", "a, b,c")
	h.Set("list", []string{"x", "y"})
	h.Merge("db", map[string]any{"host": "localhost", "port": 5432})

	require.Equal(t, 8080, h.Int("port"))
	require.True(t, h.Bool("debug"))
	require.Equal(t, []string{"a", "b", "c"}, h.Strings("csv"))
	require.Equal(t, []string{"x", "y"}, h.Strings("list"))
	require.Equal(t, map[string]string{"host": "localhost", "port": "5432"}, h.StringMap("db"))
	require.Equal(t, []string{"csv", "db", "debug", "list", "port"}, h.Keys())

	v, ok := hive.Value[int](h, "db.port")
	require.True(t, ok)
	require.Equal(t, 5432, v)

	_, ok = hive.Value[string](h, "db.port")
	require.False(t, ok)
}
