package httpcache

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Forever is the max-age advertised for entries stored without a TTL.
const Forever = 365 * 24 * time.Hour

// Entry is a stored response.
type Entry struct {
	Created time.Time     `json:"created"`
	Header  http.Header   `json:"header"`
	Body    []byte        `json:"body"`
	Status  int           `json:"status"`
	TTL     time.Duration `json:"ttl"` // 0 = never expires
}

// Key returns the storage key of a response for verb and uri.
func Key(verb, uri string) string {
	return strconv.FormatUint(xxhash.Sum64String(verb+" "+uri), 36) + ".url"
}

// Expires returns the expiry time, or the zero time when the entry never expires.
func (e Entry) Expires() time.Time {
	if e.TTL <= 0 {
		return time.Time{}
	}
	return e.Created.Add(e.TTL)
}

// Fresh reports whether the entry is still valid at now.
func (e Entry) Fresh(now time.Time) bool {
	exp := e.Expires()
	return exp.IsZero() || now.Before(exp)
}

// Remaining returns the unexpired part of the TTL window.
func (e Entry) Remaining(now time.Time) time.Duration {
	if e.TTL <= 0 {
		return Forever
	}
	return max(e.Expires().Sub(now), 0)
}

// NotModified reports whether a client holding a copy stamped ims
// (an If-Modified-Since value) may keep using it for ttl past that stamp.
func NotModified(ims string, ttl time.Duration, now time.Time) bool {
	if ims == "" {
		return false
	}
	t, err := http.ParseTime(ims)
	if err != nil {
		return false
	}
	if ttl <= 0 {
		return true
	}
	return t.Add(ttl).After(now)
}

// CacheHeaders marks a response as cacheable for ttl.
func CacheHeaders(h http.Header, ttl time.Duration, modified, now time.Time) {
	secs := int64(ttl.Round(time.Second) / time.Second)
	h.Set("Cache-Control", "max-age="+strconv.FormatInt(secs, 10))
	h.Set("Expires", now.Add(ttl).UTC().Format(http.TimeFormat))
	h.Set("Last-Modified", modified.UTC().Format(http.TimeFormat))
	h.Del("Pragma")
}

// NoCacheHeaders marks a response as not cacheable.
func NoCacheHeaders(h http.Header) {
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Del("Last-Modified")
}
