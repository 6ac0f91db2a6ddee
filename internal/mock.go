package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// mockLine matches "VERB target [ajax|cli|sync]".
var mockLine = regexp.MustCompile(`^(\w+)\s+(.+?)(?:\s+(ajax|cli|sync))?$`)

// MockOption configures a mocked request.
type MockOption func(*mockRequest)

type mockRequest struct {
	header  http.Header
	form    url.Values
	ip      string
	cookies []*http.Cookie
	body    []byte
}

// WithMockBody sets the raw request payload.
func WithMockBody(body []byte) MockOption {
	return func(m *mockRequest) {
		m.body = body
	}
}

// WithMockForm adds form values. For GET and HEAD they join the query
// string; for other verbs they become a form-encoded body unless a body
// was given.
func WithMockForm(values url.Values) MockOption {
	return func(m *mockRequest) {
		for k, vs := range values {
			for _, v := range vs {
				m.form.Add(k, v)
			}
		}
	}
}

// WithMockHeader sets a request header.
func WithMockHeader(name, value string) MockOption {
	return func(m *mockRequest) {
		m.header.Set(name, value)
	}
}

// WithMockCookie adds a request cookie.
func WithMockCookie(name, value string) MockOption {
	return func(m *mockRequest) {
		m.cookies = append(m.cookies, &http.Cookie{Name: name, Value: value})
	}
}

// WithMockIP sets the client address. Default: 127.0.0.1.
func WithMockIP(ip string) MockOption {
	return func(m *mockRequest) {
		if ip != "" {
			m.ip = ip
		}
	}
}

// Mock dispatches a simulated request without a transport and returns the
// buffered response. line is "VERB target [ajax|cli|sync]" where target is
// a path or an alias reference such as "blog_item(item=1)?page=2".
//
// Example:
//
//	res, err := app.Mock(ctx, "GET blog_item(item=7) ajax")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Status(), res.String())
func (a *App) Mock(ctx context.Context, line string, opts ...MockOption) (*Response, error) {
	m := mockLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMockSyntax, line)
	}
	verb, target, mode := strings.ToUpper(m[1]), m[2], m[3]

	uri, err := a.resolveTarget(target)
	if err != nil {
		return nil, err
	}
	if strings.Contains(uri, "://") {
		return nil, fmt.Errorf("%w: absolute target %q", ErrMockSyntax, target)
	}

	mr := &mockRequest{header: make(http.Header), form: make(url.Values), ip: "127.0.0.1"}
	for _, opt := range opts {
		opt(mr)
	}

	body := mr.body
	if len(mr.form) > 0 {
		if verb == http.MethodGet || verb == http.MethodHead {
			sep := "?"
			if strings.Contains(uri, "?") {
				sep = "&"
			}
			uri += sep + mr.form.Encode()
		} else if body == nil {
			body = []byte(mr.form.Encode())
			if mr.header.Get("Content-Type") == "" {
				mr.header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
		}
	}

	var rd io.Reader = http.NoBody
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, verb, uri, rd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMockSyntax, err)
	}
	host := a.hive.String("HOST")
	if host == "" {
		host = "localhost"
	}
	req.Host = host
	req.RemoteAddr = net.JoinHostPort(mr.ip, "0")
	for k, vs := range mr.header {
		req.Header[k] = vs
	}
	for _, ck := range mr.cookies {
		req.AddCookie(ck)
	}
	if mode == "ajax" {
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
	}

	c := a.newContext(req, mode == "cli", 0)
	a.dispatch(c)
	a.finish(c)
	return c.response, nil
}
