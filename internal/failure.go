package internal

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/eghojansu/stick/pkg/httpcache"
	"github.com/eghojansu/stick/pkg/route"
	"github.com/eghojansu/stick/pkg/sanitizer"
)

// fail converts err into the error response. A failure raised while a
// previous one is being handled is fatal: it is logged and the buffered
// response is sent as it stands.
func (a *App) fail(c *requestContext, err error) {
	if c.failing {
		a.fatal(c, err)
		return
	}
	c.failing = true

	defer func() {
		if v := recover(); v != nil {
			a.fatal(c, &PanicError{Value: v, Stack: debug.Stack()})
		}
	}()

	if herr := a.renderError(c, err); herr != nil {
		a.fatal(c, herr)
	}
}

func (a *App) fatal(c *requestContext, err error) {
	attrs := []any{
		slog.String("verb", c.Verb()),
		slog.String("uri", c.URI()),
		slog.String("error", err.Error()),
	}
	if prior, ok := c.hive.Get("ERROR", nil).(map[string]any); ok {
		attrs = append(attrs, slog.Any("prior", prior["text"]))
	}
	a.logger.ErrorContext(c, "fatal error while handling error", attrs...)
}

// errorRecord is the ERROR hive entry and the payload of JSON and CLI
// error responses.
type errorRecord struct {
	Prior  map[string]any `json:"prior,omitempty"`
	Status string         `json:"status"`
	Text   string         `json:"text"`
	Trace  string         `json:"trace,omitempty"`
	Code   int            `json:"code"`
}

func (r errorRecord) asMap() map[string]any {
	return map[string]any{
		"code":   r.Code,
		"status": r.Status,
		"text":   r.Text,
		"trace":  r.Trace,
		"prior":  r.Prior,
	}
}

// renderError records err in the hive, lets error listeners take over and
// otherwise renders the error page for the request mode.
func (a *App) renderError(c *requestContext, cause error) error {
	herr := ParseHTTPError(cause)
	verbose := c.hive.Int("DEBUG") > 0

	rec := errorRecord{
		Code:   herr.Code,
		Status: herr.StatusText(),
		Text:   herr.Message,
		Trace:  herr.Trace,
		Prior:  herr.Prior,
	}
	if rec.Prior == nil {
		rec.Prior, _ = c.hive.Get("ERROR", nil).(map[string]any)
	}
	if rec.Text == "" && verbose && herr.Err != nil && AsHTTPError(cause) == nil {
		rec.Text = herr.Err.Error()
	}
	if rec.Text == "" {
		rec.Text = fmt.Sprintf("HTTP %d (%s %s)", rec.Code, c.Verb(), c.URI())
	}
	if rec.Trace == "" {
		var pe *PanicError
		switch {
		case errors.As(cause, &pe):
			rec.Trace = string(pe.Stack)
		case verbose:
			rec.Trace = string(debug.Stack())
		}
	}
	c.hive.Set("ERROR", rec.asMap())

	res := c.response
	res.ResetBody()
	res.WriteHeader(rec.Code)
	res.Header().Del("X-Cache")
	httpcache.NoCacheHeaders(res.Header())

	attrs := []any{
		slog.Int("code", rec.Code),
		slog.String("verb", c.Verb()),
		slog.String("uri", c.URI()),
		slog.String("text", rec.Text),
	}
	if herr.Err != nil {
		attrs = append(attrs, slog.String("error", herr.Err.Error()))
	}
	if rec.Code >= http.StatusInternalServerError {
		a.logger.ErrorContext(c, "request failed", attrs...)
	} else {
		a.logger.WarnContext(c, "request failed", attrs...)
	}
	a.metrics.errorCode(rec.Code)

	stop, err := a.emit(c, EventError)
	if err != nil || stop {
		return err
	}

	if !verbose {
		rec.Trace = ""
	}

	switch c.Mode() {
	case route.ModeAjax:
		return JSON(rec).apply(c)
	case route.ModeCLI:
		res.Header().Set("Content-Type", "text/plain; charset="+c.hive.String("ENCODING"))
		_, err := res.WriteString(cliError(rec))
		return err
	default:
		res.Header().Set("Content-Type", "text/html; charset="+c.hive.String("ENCODING"))
		_, err := res.WriteString(htmlError(rec))
		return err
	}
}

func cliError(rec errorRecord) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(rec.Code) + " " + rec.Status + "\n")
	b.WriteString(rec.Text + "\n")
	if rec.Trace != "" {
		b.WriteString("\n" + rec.Trace + "\n")
	}
	return b.String()
}

func htmlError(rec errorRecord) string {
	title := strconv.Itoa(rec.Code) + " " + rec.Status

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head><title>" + title + "</title></head>\n<body>\n")
	b.WriteString("<h1>" + rec.Status + "</h1>\n")
	b.WriteString("<p>" + sanitizer.StripHTML(rec.Text) + "</p>\n")
	if rec.Trace != "" {
		b.WriteString("<pre>" + html.EscapeString(rec.Trace) + "</pre>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
