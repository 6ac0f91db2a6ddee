package internal_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eghojansu/stick/internal"
)

// blogHandler declares routes through Handler.Routes.
type blogHandler struct{}

func (h *blogHandler) Routes(r internal.Router) {
	r.Route("GET|HEAD blog /blog", h.index)
	r.Route("GET blog_post /blog/@slug 60", h.show)
	r.Route("POST /echo", h.echo)
	r.Redirect("GET /posts", "blog", true)
}

func (h *blogHandler) index(internal.Context) (internal.Result, error) {
	return internal.Text("blog index"), nil
}

func (h *blogHandler) show(c internal.Context) (internal.Result, error) {
	return internal.Map(map[string]any{"slug": c.Param("slug")}), nil
}

func (h *blogHandler) echo(c internal.Context) (internal.Result, error) {
	return internal.Text(string(c.Body())), nil
}

func get(t *testing.T, url string, header ...string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET %s error: %v", url, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

// --- Integration ---

func TestIntegration(t *testing.T) {
	t.Parallel()

	assets := fstest.MapFS{
		"public/app.css": &fstest.MapFile{Data: []byte("body{}")},
	}

	app := internal.New(
		internal.WithHandlers(&blogHandler{}),
		internal.WithStaticFiles("/static/", assets, "public"),
		internal.WithHealthChecks(
			internal.WithReadinessCheck("db", func(context.Context) error { return nil }),
		),
		internal.WithMetrics(""),
		internal.WithMiddleware(func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) (internal.Result, error) {
				c.SetHeader("X-Powered-By", "stick")
				return next(c)
			}
		}),
	)

	ts := httptest.NewServer(app)
	defer ts.Close()

	t.Run("GET /blog", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/blog")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if body != "blog index" {
			t.Errorf("body = %q, want %q", body, "blog index")
		}
		if got := resp.Header.Get("X-Powered-By"); got != "stick" {
			t.Errorf("X-Powered-By = %q, want %q", got, "stick")
		}
	})

	t.Run("HEAD /blog", func(t *testing.T) {
		resp, err := http.Head(ts.URL + "/blog")
		if err != nil {
			t.Fatalf("HEAD /blog error: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || len(body) != 0 {
			t.Errorf("HEAD = %d with %d bytes, want 200 with none", resp.StatusCode, len(body))
		}
	})

	t.Run("GET /blog/@slug", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/blog/hello")
		if body != `{"slug":"hello"}` {
			t.Errorf("body = %q", body)
		}
		if got := resp.Header.Get("Cache-Control"); got != "max-age=60" {
			t.Errorf("Cache-Control = %q, want max-age=60", got)
		}
	})

	t.Run("POST /echo", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/echo", "text/plain", strings.NewReader("echo me"))
		if err != nil {
			t.Fatalf("POST /echo error: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if string(body) != "echo me" {
			t.Errorf("body = %q, want %q", string(body), "echo me")
		}
	})

	t.Run("redirect", func(t *testing.T) {
		resp, _ := get(t, ts.URL+"/posts")
		if resp.StatusCode != http.StatusMovedPermanently {
			t.Errorf("status = %d, want 301", resp.StatusCode)
		}
		if got := resp.Header.Get("Location"); got != ts.URL+"/blog" {
			t.Errorf("Location = %q, want %q", got, ts.URL+"/blog")
		}
	})

	t.Run("forwarded client address", func(t *testing.T) {
		app := internal.New(internal.WithBlacklist("203.0.113.9"))
		app.Route("GET /", func(c internal.Context) (internal.Result, error) {
			return internal.Text(c.IP()), nil
		})
		srv := httptest.NewServer(app)
		defer srv.Close()

		resp, _ := get(t, srv.URL+"/", "X-Real-IP", "203.0.113.9")
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status = %d, want 403", resp.StatusCode)
		}

		_, body := get(t, srv.URL+"/", "X-Real-IP", "203.0.113.10")
		if body != "203.0.113.10" {
			t.Errorf("IP = %q, want 203.0.113.10", body)
		}
	})

	t.Run("static files", func(t *testing.T) {
		resp, body := get(t, ts.URL+"/static/app.css")
		if resp.StatusCode != http.StatusOK || body != "body{}" {
			t.Errorf("static = %d %q", resp.StatusCode, body)
		}
		if got := resp.Header.Get("Cache-Control"); got != "public, max-age=3600" {
			t.Errorf("Cache-Control = %q", got)
		}
	})

	t.Run("health", func(t *testing.T) {
		for _, path := range []string{"/health/live", "/health/ready"} {
			resp, body := get(t, ts.URL+path)
			if resp.StatusCode != http.StatusOK || body != "OK" {
				t.Errorf("%s = %d %q", path, resp.StatusCode, body)
			}
		}
	})

	t.Run("metrics", func(t *testing.T) {
		get(t, ts.URL+"/missing")

		resp, body := get(t, ts.URL+"/metrics")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		for _, want := range []string{
			`stick_requests_total{mode="sync",status="200"}`,
			`stick_errors_total{code="404"} 1`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("metrics missing %s", want)
			}
		}
		if app.Registry() == nil {
			t.Error("Registry() returned nil")
		}
	})
}

// --- Run ---

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("startup and shutdown hooks", func(t *testing.T) {
		t.Parallel()

		var started, stopped atomic.Bool
		ctx, cancel := context.WithCancel(context.Background())

		app := internal.New(internal.WithCache("true"), internal.WithCachePurge("@every 1h"))
		app.Route("GET /", text("x"))

		done := make(chan error, 1)
		go func() {
			done <- app.Run("127.0.0.1:0",
				internal.WithContext(ctx),
				internal.ShutdownTimeout(time.Second),
				internal.StartupHook(func(context.Context) error {
					started.Store(true)
					return nil
				}),
				internal.ShutdownHook(func(context.Context) error {
					stopped.Store(true)
					return nil
				}),
			)
		}()

		require.Eventually(t, started.Load, time.Second, 10*time.Millisecond)
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("Run did not return")
		}
		require.True(t, stopped.Load())
	})

	t.Run("failing startup hook aborts", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("migrations failed")
		var stopped atomic.Bool

		err := internal.New().Run("127.0.0.1:0",
			internal.StartupHook(func(context.Context) error { return boom }),
			internal.ShutdownHook(func(context.Context) error {
				stopped.Store(true)
				return nil
			}),
		)
		require.ErrorIs(t, err, boom)
		require.True(t, stopped.Load())
	})

	t.Run("invalid purge schedule panics", func(t *testing.T) {
		t.Parallel()

		require.Panics(t, func() { internal.New(internal.WithCachePurge("not a schedule")) })
	})
}
