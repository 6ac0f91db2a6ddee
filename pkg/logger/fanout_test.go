package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("remote down") }

func TestFanout(t *testing.T) {
	t.Parallel()

	t.Run("local keeps logging when another handler fails", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		local := slog.NewTextHandler(&buf, nil)
		remote := failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)}
		log := slog.New(fanout{remote, local})

		err := log.Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "boom", 0))
		require.EqualError(t, err, "remote down")
		require.Contains(t, buf.String(), "msg=boom")
	})

	t.Run("level gate per handler", func(t *testing.T) {
		t.Parallel()

		var debug, warn bytes.Buffer
		f := fanout{
			slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
			slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
		}
		require.True(t, f.Enabled(context.Background(), slog.LevelDebug))

		slog.New(f).Info("hello")
		require.Contains(t, debug.String(), "msg=hello")
		require.Empty(t, warn.String())
	})

	t.Run("attrs reach every handler", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		log := slog.New(fanout{slog.NewTextHandler(&a, nil), slog.NewTextHandler(&b, nil)})
		log.With("app", "stick").WithGroup("req").Info("hit", "path", "/")

		for _, out := range []string{a.String(), b.String()} {
			require.Contains(t, out, "app=stick")
			require.Contains(t, out, "req.path=/")
		}
	})
}
