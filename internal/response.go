package internal

import (
	"bytes"
	"net/http"
	"strconv"
)

// Response buffers status, headers and body until the dispatch finishes,
// so the page cache and error handling can inspect or replace them.
// It implements http.ResponseWriter.
type Response struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponse() *Response {
	return &Response{header: make(http.Header), status: http.StatusOK}
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	return r.header
}

// WriteHeader sets the status code. Unlike a live writer it may be
// called again before the flush.
func (r *Response) WriteHeader(code int) {
	r.status = code
}

// Write appends to the body.
func (r *Response) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

// WriteString appends to the body.
func (r *Response) WriteString(s string) (int, error) {
	return r.body.WriteString(s)
}

// Status returns the HTTP status code of the response.
func (r *Response) Status() int {
	return r.status
}

// Body returns the buffered body.
func (r *Response) Body() []byte {
	return r.body.Bytes()
}

// String returns the buffered body as text.
func (r *Response) String() string {
	return r.body.String()
}

// Size returns the number of buffered body bytes.
func (r *Response) Size() int {
	return r.body.Len()
}

// Written reports whether a body has been buffered.
func (r *Response) Written() bool {
	return r.body.Len() > 0
}

// ResetBody drops the buffered body and content headers, keeping the
// remaining headers and the status.
func (r *Response) ResetBody() {
	r.body.Reset()
	r.header.Del("Content-Type")
	r.header.Del("Content-Length")
}

// replace swaps in a complete response.
func (r *Response) replace(status int, header http.Header, body []byte) {
	r.status = status
	r.header = header.Clone()
	if r.header == nil {
		r.header = make(http.Header)
	}
	r.body.Reset()
	r.body.Write(body)
}

// flushTo writes the buffered response to w. The body is omitted for HEAD
// requests and for statuses that forbid one.
func (r *Response) flushTo(w http.ResponseWriter, head bool) error {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = v
	}

	bodiless := r.status == http.StatusNotModified || r.status == http.StatusNoContent || r.status < 200
	if !bodiless {
		dst.Set("Content-Length", strconv.Itoa(r.body.Len()))
	}
	w.WriteHeader(r.status)
	if bodiless || head {
		return nil
	}
	_, err := w.Write(r.body.Bytes())
	return err
}
