package stick_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eghojansu/stick"
)

type pingHandler struct{}

func (pingHandler) Routes(r stick.Router) {
	r.Route("GET ping /ping/@n", func(c stick.Context) (stick.Result, error) {
		return stick.Map(map[string]any{"n": stick.Param[int](c, "n")}), nil
	})
	r.Route("GET /teapot", func(stick.Context) (stick.Result, error) {
		return nil, stick.NewHTTPError(http.StatusTeapot, "short and stout")
	})
}

func TestPublicAPI(t *testing.T) {
	t.Parallel()

	var seen []string
	app := stick.New(
		stick.WithHandlers(pingHandler{}),
		stick.WithListener(stick.EventBeforeRoute, func(c stick.Context) (any, error) {
			seen = append(seen, c.Path())
			return nil, nil
		}),
	)

	res, err := app.Mock(context.Background(), "GET ping(n=7) ajax")
	require.NoError(t, err)
	require.JSONEq(t, `{"n":7}`, res.String())
	require.Equal(t, []string{"/ping/7"}, seen)

	res, err = app.Mock(context.Background(), "GET /teapot")
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, res.Status())

	url, err := app.URL("ping(n=3)")
	require.NoError(t, err)
	require.Equal(t, "/ping/3", url)

	httpErr := stick.AsHTTPError(errors.Join(errors.New("wrapped"), stick.ErrNotFound("gone")))
	require.NotNil(t, httpErr)
	require.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestStopListener(t *testing.T) {
	t.Parallel()

	app := stick.New(stick.WithHandlers(pingHandler{}))
	app.On(stick.EventBeforeRoute, func(c stick.Context) (any, error) {
		c.SetStatus(http.StatusUnauthorized)
		return nil, stick.ErrStop
	})

	res, err := app.Mock(context.Background(), "GET /ping/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, res.Status())
	require.Empty(t, res.String())
}
