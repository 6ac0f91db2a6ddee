package internal

import (
	"strings"
)

// ExtractorSource reads one candidate value from the request.
// Returns the value and true if found, or ("", false) if not present.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value. Returns ("", false) if all
// sources miss.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func present(v string) (string, bool) {
	return v, v != ""
}

// FromHeader returns a source that reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return present(c.Header(name))
	}
}

// FromQuery returns a source that reads a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return present(c.Query(name))
	}
}

// FromCookie returns a source that reads a cookie through the jar.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, err := c.Cookie(name)
		if err != nil {
			return "", false
		}
		return present(v)
	}
}

// FromParam returns a source that reads a matched route parameter.
func FromParam(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		return present(c.Param(name))
	}
}

// FromHive returns a source that reads a hive value as text.
func FromHive(path string) ExtractorSource {
	return func(c Context) (string, bool) {
		return present(HiveValue[string](c, path))
	}
}

// FromBearerToken returns a source that reads a Bearer token from the
// Authorization header. The prefix is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		auth := c.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return present(auth[7:])
	}
}

// defaultLanguageSources picks the language preference: an explicit
// "lang" cookie first, then Accept-Language.
func defaultLanguageSources() Extractor {
	return NewExtractor(
		FromCookie("lang"),
		FromHeader("Accept-Language"),
	)
}
