package internal_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eghojansu/stick/internal"
	"github.com/eghojansu/stick/pkg/event"
)

// --- HTTPError ---

func TestParseHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		msg  string
		code int
	}{
		{name: "plain error", err: errors.New("boom"), code: 500},
		{name: "coded message", err: errors.New("http:404 No such post"), code: 404, msg: "No such post"},
		{name: "coded without message", err: errors.New("http:503"), code: 503},
		{name: "out of range code", err: errors.New("http:999 nope"), code: 500},
		{name: "http error", err: internal.ErrForbidden("go away"), code: 403, msg: "go away"},
		{name: "wrapped http error", err: errors.Join(errors.New("ctx"), internal.ErrNotFound("gone")), code: 404, msg: "gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := internal.ParseHTTPError(tt.err)
			require.Equal(t, tt.code, got.Code)
			require.Equal(t, tt.msg, got.Message)
		})
	}

	require.Nil(t, internal.ParseHTTPError(nil))
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	cause := errors.New("db down")
	err := internal.ErrServiceUnavailable("", internal.WithError(cause))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "db down", err.Error())
	require.Equal(t, "Service Unavailable", err.StatusText())

	bare := internal.NewHTTPError(http.StatusTeapot, "")
	require.Equal(t, "HTTP 418 (I'm a teapot)", bare.Error())
}

// --- Error responses ---

func TestErrorResponses(t *testing.T) {
	t.Parallel()

	failing := func(err error) internal.HandlerFunc {
		return func(internal.Context) (internal.Result, error) {
			return nil, err
		}
	}

	t.Run("plain error message is hidden outside debug", func(t *testing.T) {
		t.Parallel()

		app := internal.New()
		app.Route("GET /", failing(errors.New("secret detail")))

		res := mock(t, app, "GET /")
		require.Equal(t, http.StatusInternalServerError, res.Status())
		require.NotContains(t, res.String(), "secret detail")
		require.Contains(t, res.String(), "HTTP 500 (GET /)")
		require.Contains(t, res.String(), "<h1>Internal Server Error</h1>")
		require.NotContains(t, res.String(), "<pre>")
	})

	t.Run("debug shows message and trace", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithDebug(3))
		app.Route("GET /", failing(errors.New("secret detail")))

		res := mock(t, app, "GET /")
		require.Contains(t, res.String(), "secret detail")
		require.Contains(t, res.String(), "<pre>")
	})

	t.Run("html page escapes the message", func(t *testing.T) {
		t.Parallel()

		app := internal.New()
		app.Route("GET /", failing(internal.ErrBadRequest("<script>alert(1)</script>bad")))

		res := mock(t, app, "GET /")
		require.Equal(t, http.StatusBadRequest, res.Status())
		require.NotContains(t, res.String(), "<script>")
	})

	t.Run("ajax gets json", func(t *testing.T) {
		t.Parallel()

		app := internal.New()
		app.Route("GET /", failing(errors.New("http:422 Invalid title")))

		res := mock(t, app, "GET / ajax")
		require.Equal(t, http.StatusUnprocessableEntity, res.Status())
		require.Equal(t, "application/json", res.Header().Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(res.Body(), &body))
		require.Equal(t, float64(422), body["code"])
		require.Equal(t, "Unprocessable Entity", body["status"])
		require.Equal(t, "Invalid title", body["text"])
		require.NotContains(t, body, "trace")
	})

	t.Run("cli gets plain text", func(t *testing.T) {
		t.Parallel()

		app := internal.New()
		app.Route("GET /", failing(internal.ErrNotFound("No such command")))

		res := mock(t, app, "GET / cli")
		require.Equal(t, "404 Not Found\nNo such command\n", res.String())
		require.Contains(t, res.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("error discards partial output and marks no-store", func(t *testing.T) {
		t.Parallel()

		app := internal.New()
		app.Route("GET / 60", func(c internal.Context) (internal.Result, error) {
			_, _ = c.Response().WriteString("partial")
			return nil, errors.New("late failure")
		})

		res := mock(t, app, "GET /")
		require.NotContains(t, res.String(), "partial")
		require.Equal(t, "no-cache, no-store, must-revalidate", res.Header().Get("Cache-Control"))
	})

	t.Run("panic is recovered", func(t *testing.T) {
		t.Parallel()

		app := internal.New(internal.WithDebug(1))
		app.Route("GET /", func(internal.Context) (internal.Result, error) {
			panic("controller exploded")
		})

		res := mock(t, app, "GET /")
		require.Equal(t, http.StatusInternalServerError, res.Status())
		require.Contains(t, res.String(), "panic: controller exploded")
	})

	t.Run("error record is visible to listeners", func(t *testing.T) {
		t.Parallel()

		var rec map[string]any
		app := internal.New()
		app.On(internal.EventError, func(c internal.Context) (any, error) {
			rec, _ = c.Get("ERROR", nil).(map[string]any)
			return nil, nil
		})
		app.Route("GET /", failing(internal.ErrForbidden("members only")))

		mock(t, app, "GET /")
		require.Equal(t, 403, rec["code"])
		require.Equal(t, "Forbidden", rec["status"])
		require.Equal(t, "members only", rec["text"])
	})

	t.Run("rerouted error page records the prior error", func(t *testing.T) {
		t.Parallel()

		var prior map[string]any
		app := internal.New()
		app.On(internal.EventError, func(c internal.Context) (any, error) {
			if c.Path() == "/fail" {
				if err := c.Reroute("/error-page", false); err != nil {
					return nil, err
				}
				return nil, event.ErrStop
			}
			prior, _ = c.Get("ERROR.prior", nil).(map[string]any)
			return nil, nil
		})
		app.Route("GET /fail", failing(errors.New("db down")))

		res := mock(t, app, "GET /fail cli")
		require.Equal(t, http.StatusNotFound, res.Status())
		require.NotNil(t, prior)
		require.Equal(t, 500, prior["code"])
	})

	t.Run("error listener can take over", func(t *testing.T) {
		t.Parallel()

		app := internal.New()
		app.On(internal.EventError, func(c internal.Context) (any, error) {
			_, _ = c.Response().WriteString("custom page")
			return nil, event.ErrStop
		})
		app.Route("GET /", failing(internal.ErrNotFound("")))

		res := mock(t, app, "GET /")
		require.Equal(t, http.StatusNotFound, res.Status())
		require.Equal(t, "custom page", res.String())
	})

	t.Run("failure while handling a failure is fatal", func(t *testing.T) {
		t.Parallel()

		app := internal.New()
		app.On(internal.EventError, func(c internal.Context) (any, error) {
			_, _ = c.Response().WriteString("half written")
			panic("listener exploded")
		})
		app.Route("GET /", failing(internal.ErrNotFound("")))

		res := mock(t, app, "GET /")
		require.Equal(t, http.StatusNotFound, res.Status())
		require.Equal(t, "half written", res.String())
	})

	t.Run("error keeps the allow header of a 405", func(t *testing.T) {
		t.Parallel()

		app := internal.New()
		app.Route("GET /", failing(nil))

		res := mock(t, app, "PUT /")
		require.Equal(t, http.StatusMethodNotAllowed, res.Status())
		require.Equal(t, "GET", res.Header().Get("Allow"))
	})
}
