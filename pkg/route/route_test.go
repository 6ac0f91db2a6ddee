package route_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eghojansu/stick/pkg/route"
)

// --- ParseSpec ---

func TestParseSpec(t *testing.T) {
	t.Parallel()

	t.Run("recognizes fields by shape in any order", func(t *testing.T) {
		t.Parallel()

		s, err := route.ParseSpec("get|Post 60 ajax blog /blog/@id")
		require.NoError(t, err)
		require.Equal(t, []string{"GET", "POST"}, s.Verbs)
		require.Equal(t, "blog", s.Alias)
		require.Equal(t, "/blog/@id", s.Pattern)
		require.Equal(t, route.ModeAjax, s.Mode)
		require.Equal(t, 60, s.TTL)
	})

	t.Run("defaults mode and ttl", func(t *testing.T) {
		t.Parallel()

		s, err := route.ParseSpec("GET /")
		require.NoError(t, err)
		require.Equal(t, route.ModeAll, s.Mode)
		require.Zero(t, s.TTL)
		require.Equal(t, "GET /", s.String())
	})

	t.Run("rejects malformed specs", func(t *testing.T) {
		t.Parallel()

		for _, spec := range []string{
			"",
			"GET",
			"G3T /",
			"GET / /other",
			"GET a b /",
			"GET / cli sync",
			"GET / 1 2",
			"GET / $weird",
		} {
			_, err := route.ParseSpec(spec)
			require.ErrorIs(t, err, route.ErrMalformedSpec, spec)

			var cfgErr *route.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			require.Equal(t, spec, cfgErr.Input)
		}
	})
}

// --- Pattern ---

func TestPattern(t *testing.T) {
	t.Parallel()

	t.Run("named placeholders", func(t *testing.T) {
		t.Parallel()

		p, err := route.Compile("/blog/@year/@slug")
		require.NoError(t, err)
		require.Equal(t, []string{"year", "slug"}, p.Params())

		params, ok := p.Match("/blog/2024/hello", false)
		require.True(t, ok)
		require.Equal(t, route.Params{"year": "2024", "slug": "hello"}, params)

		_, ok = p.Match("/blog/2024/hello/extra", false)
		require.False(t, ok)
	})

	t.Run("typed placeholders", func(t *testing.T) {
		t.Parallel()

		p, err := route.Compile("/item/@id:digit")
		require.NoError(t, err)

		_, ok := p.Match("/item/abc", false)
		require.False(t, ok)

		params, ok := p.Match("/item/42", false)
		require.True(t, ok)
		require.Equal(t, "42", params.String("id"))

		p, err = route.Compile("/v/@ver:(\\d+\\.\\d+)/x")
		require.NoError(t, err)
		params, ok = p.Match("/v/1.2/x", false)
		require.True(t, ok)
		require.Equal(t, "1.2", params.String("ver"))

		p, err = route.Compile("/raw/@path:([a-z/]+)")
		require.NoError(t, err)
		params, ok = p.Match("/raw/a/b", false)
		require.True(t, ok)
		require.Equal(t, "a/b", params.String("path"))
	})

	t.Run("catch-all splits into segments", func(t *testing.T) {
		t.Parallel()

		p, err := route.Compile("/files/@rest*")
		require.NoError(t, err)
		require.Equal(t, "rest", p.CatchAll())

		params, ok := p.Match("/files/a/b/c", false)
		require.True(t, ok)
		require.Equal(t, []string{"a", "b", "c"}, params.Strings("rest"))

		params, ok = p.Match("/files/", false)
		require.True(t, ok)
		require.Empty(t, params.Strings("rest"))
	})

	t.Run("literals are not regular expressions", func(t *testing.T) {
		t.Parallel()

		p, err := route.Compile("/a.b/@x")
		require.NoError(t, err)

		_, ok := p.Match("/aXb/1", false)
		require.False(t, ok)
	})

	t.Run("case policy", func(t *testing.T) {
		t.Parallel()

		p, err := route.Compile("/About/@x")
		require.NoError(t, err)

		_, ok := p.Match("/about/1", false)
		require.False(t, ok)
		_, ok = p.Match("/about/1", true)
		require.True(t, ok)

		static, err := route.Compile("/Static")
		require.NoError(t, err)
		_, ok = static.Match("/static", true)
		require.True(t, ok)
		_, ok = static.Match("/static", false)
		require.False(t, ok)
	})

	t.Run("rejects malformed patterns", func(t *testing.T) {
		t.Parallel()

		for _, src := range []string{"/@", "/@rest*/tail", "/@a/@a", "/@x:(abc", "/@x:"} {
			_, err := route.Compile(src)
			require.ErrorIs(t, err, route.ErrMalformedPattern, src)
		}
	})

	t.Run("build", func(t *testing.T) {
		t.Parallel()

		p, err := route.Compile("/files/@dir/@rest*")
		require.NoError(t, err)

		url, err := p.Build(map[string]any{"dir": "my docs", "rest": []string{"a", "b"}})
		require.NoError(t, err)
		require.Equal(t, "/files/my%20docs/a/b", url)

		url, err = p.Build(map[string]any{"dir": 1, "rest": "x/y"})
		require.NoError(t, err)
		require.Equal(t, "/files/1/x/y", url)

		_, err = p.Build(map[string]any{"dir": "x"})
		require.ErrorIs(t, err, route.ErrMissingParam)
	})
}

// --- Table ---

func TestTable_Lookup(t *testing.T) {
	t.Parallel()

	newTable := func(t *testing.T) *route.Table[string] {
		t.Helper()

		tbl := route.NewTable[string]()
		require.NoError(t, tbl.Route("GET home /", "home"))
		require.NoError(t, tbl.Route("GET|POST item /item/@id 30", "item"))
		require.NoError(t, tbl.Route("PUT item", "item.update"))
		require.NoError(t, tbl.Route("GET /item/new", "never"))
		require.NoError(t, tbl.Route("GET /ajax-only ajax", "ajax"))
		require.NoError(t, tbl.Route("GET /multi", "all"))
		require.NoError(t, tbl.Route("GET /multi cli", "cli"))
		return tbl
	}

	t.Run("returns the registered binding", func(t *testing.T) {
		t.Parallel()

		res := newTable(t).Lookup(route.Query{Path: "/item/9", Verb: "POST", Mode: route.ModeSync})
		require.Equal(t, route.Matched, res.Status)
		require.Equal(t, "item", res.Handler)
		require.Equal(t, "item", res.Alias)
		require.Equal(t, 30, res.TTL)
		require.Equal(t, "/item/@id", res.Pattern)
		require.Equal(t, "9", res.Params.String("id"))
	})

	t.Run("alias without pattern reuses the aliased pattern", func(t *testing.T) {
		t.Parallel()

		res := newTable(t).Lookup(route.Query{Path: "/item/9", Verb: "PUT", Mode: route.ModeSync})
		require.Equal(t, route.Matched, res.Status)
		require.Equal(t, "item.update", res.Handler)
	})

	t.Run("first registered pattern wins", func(t *testing.T) {
		t.Parallel()

		res := newTable(t).Lookup(route.Query{Path: "/item/new", Verb: "GET", Mode: route.ModeSync})
		require.Equal(t, "item", res.Handler)
	})

	t.Run("verb mismatch is not a miss", func(t *testing.T) {
		t.Parallel()

		res := newTable(t).Lookup(route.Query{Path: "/item/9", Verb: "DELETE", Mode: route.ModeSync})
		require.Equal(t, route.MethodNotAllowed, res.Status)
		require.Equal(t, []string{"GET", "POST", "PUT"}, res.Allowed)
	})

	t.Run("pre-flight never matches a binding", func(t *testing.T) {
		t.Parallel()

		res := newTable(t).Lookup(route.Query{Path: "/", Verb: "OPTIONS", Mode: route.ModeSync, Preflight: true})
		require.Equal(t, route.MethodNotAllowed, res.Status)
		require.Equal(t, []string{"GET"}, res.Allowed)
	})

	t.Run("head falls back to get", func(t *testing.T) {
		t.Parallel()

		res := newTable(t).Lookup(route.Query{Path: "/", Verb: "HEAD", Mode: route.ModeSync})
		require.Equal(t, route.Matched, res.Status)
		require.Equal(t, "home", res.Handler)
	})

	t.Run("mode specific bindings", func(t *testing.T) {
		t.Parallel()

		tbl := newTable(t)

		res := tbl.Lookup(route.Query{Path: "/multi", Verb: "GET", Mode: route.ModeCLI})
		require.Equal(t, "cli", res.Handler)

		res = tbl.Lookup(route.Query{Path: "/multi", Verb: "GET", Mode: route.ModeAjax})
		require.Equal(t, "all", res.Handler)

		res = tbl.Lookup(route.Query{Path: "/ajax-only", Verb: "GET", Mode: route.ModeSync})
		require.Equal(t, route.BadRequest, res.Status)
	})

	t.Run("verb missing in the mode bucket falls back to all", func(t *testing.T) {
		t.Parallel()

		tbl := route.NewTable[string]()
		require.NoError(t, tbl.Route("GET /x", "generic-get"))
		require.NoError(t, tbl.Route("POST /x ajax", "ajax-post"))

		res := tbl.Lookup(route.Query{Path: "/x", Verb: "GET", Mode: route.ModeAjax})
		require.Equal(t, route.Matched, res.Status)
		require.Equal(t, "generic-get", res.Handler)

		res = tbl.Lookup(route.Query{Path: "/x", Verb: "DELETE", Mode: route.ModeAjax})
		require.Equal(t, route.MethodNotAllowed, res.Status)
		require.Equal(t, []string{"GET", "POST"}, res.Allowed)
	})

	t.Run("unknown path", func(t *testing.T) {
		t.Parallel()

		res := newTable(t).Lookup(route.Query{Path: "/nope", Verb: "GET", Mode: route.ModeSync})
		require.Equal(t, route.NotFound, res.Status)
	})
}

func TestTable_Registration(t *testing.T) {
	t.Parallel()

	t.Run("unknown alias without pattern", func(t *testing.T) {
		t.Parallel()

		tbl := route.NewTable[int]()
		err := tbl.Route("GET missing", 1)
		require.ErrorIs(t, err, route.ErrUnknownAlias)
		require.Zero(t, tbl.Len())
	})

	t.Run("build round-trips aliases", func(t *testing.T) {
		t.Parallel()

		tbl := route.NewTable[int]()
		require.NoError(t, tbl.Route("GET foo /foo/@bar", 1))

		url, err := tbl.Build("foo", map[string]any{"bar": "baz"})
		require.NoError(t, err)
		require.Equal(t, "/foo/baz", url)

		_, err = tbl.Build("foo", nil)
		require.ErrorIs(t, err, route.ErrMissingParam)

		_, err = tbl.Build("bar", nil)
		require.ErrorIs(t, err, route.ErrUnknownAlias)
	})

	t.Run("lists routes in registration order", func(t *testing.T) {
		t.Parallel()

		tbl := route.NewTable[int]()
		require.NoError(t, tbl.Route("POST|GET b /b", 1))
		require.NoError(t, tbl.Route("GET /a cli 5", 2))

		routes := tbl.Routes()
		require.Len(t, routes, 3)
		require.Equal(t, "GET", routes[0].Verb)
		require.Equal(t, "/b", routes[0].Pattern)
		require.Equal(t, "POST", routes[1].Verb)
		require.Equal(t, route.ModeCLI, routes[2].Mode)
		require.Equal(t, 5, routes[2].TTL)
	})
}

// --- Target ---

func TestParseTarget(t *testing.T) {
	t.Parallel()

	tbl := route.NewTable[int]()
	require.NoError(t, tbl.Route("GET post /post/@id/@slug", 1))

	target, err := route.ParseTarget("post(id=1, slug=hi)?page=2")
	require.NoError(t, err)
	require.Equal(t, "post", target.Name)
	require.Equal(t, map[string]any{"id": "1", "slug": "hi"}, target.Params)

	uri, err := route.Resolve(tbl, target)
	require.NoError(t, err)
	require.Equal(t, "/post/1/hi?page=2", uri)

	target, err = route.ParseTarget("/plain/path?x=1")
	require.NoError(t, err)
	require.True(t, target.Path)

	uri, err = route.Resolve(tbl, target)
	require.NoError(t, err)
	require.Equal(t, "/plain/path?x=1", uri)

	_, err = route.ParseTarget("post(id=1")
	require.ErrorIs(t, err, route.ErrMalformedSpec)
}
