package internal

import (
	"net/http"
	"strings"

	"github.com/eghojansu/stick/pkg/route"
)

// maxRerouteDepth bounds nested in-process reroutes.
const maxRerouteDepth = 8

// resolveTarget turns a path or alias reference into a request URI.
// Absolute URLs pass through.
func (a *App) resolveTarget(target string) (string, error) {
	if strings.Contains(target, "://") {
		return target, nil
	}
	t, err := route.ParseTarget(target)
	if err != nil {
		return "", err
	}
	return route.Resolve(a.routes, t)
}

func (a *App) reroute(c *requestContext, target string, permanent bool) error {
	url, err := a.resolveTarget(target)
	if err != nil {
		return err
	}

	c.hive.Set("REROUTE", map[string]any{"url": url, "permanent": permanent})
	if stop, err := a.emit(c, EventReroute); err != nil || stop {
		return err
	}

	absolute := strings.Contains(url, "://")
	if c.hive.Bool("CLI") && !absolute {
		return a.rerouteInProcess(c, url)
	}

	if !absolute {
		host := c.request.Host
		if host == "" {
			host = c.hive.String("HOST")
		}
		url = c.hive.String("SCHEME") + "://" + host + url
	}

	status := http.StatusFound
	if permanent {
		status = http.StatusMovedPermanently
	}
	c.response.ResetBody()
	c.SetHeader("Location", url)
	c.SetStatus(status)
	return nil
}

// rerouteInProcess dispatches a GET for uri and adopts its response. An
// error being handled carries over as the prior error of the target.
func (a *App) rerouteInProcess(c *requestContext, uri string) error {
	if c.depth >= maxRerouteDepth {
		return ErrRerouteLoop
	}

	req, err := http.NewRequestWithContext(c, http.MethodGet, uri, nil)
	if err != nil {
		return ErrBadRequest("", WithError(err))
	}
	req.Host = c.request.Host
	req.RemoteAddr = c.request.RemoteAddr

	sub := a.newContext(req, true, c.depth+1)
	if prior, ok := c.hive.Get("ERROR", nil).(map[string]any); ok {
		sub.hive.Set("ERROR", prior)
	}
	a.dispatch(sub)

	c.response.replace(sub.response.Status(), sub.response.Header(), sub.response.Body())
	c.hive.Set("RESPONSE", sub.response.String())
	return nil
}
