package internal

import (
	"slices"

	"golang.org/x/text/language"

	"github.com/eghojansu/stick/pkg/hive"
)

// negotiateLanguage picks the request language from a preference list in
// Accept-Language form, as produced by the language extractor. A single
// tag from a cookie or query parameter is a one-entry list. With
// LANGUAGES configured the best supported entry wins and FALLBACK covers
// a miss; without it the client's first choice is taken as is.
func (a *App) negotiateLanguage(h *hive.Hive, accept string) string {
	fallback := h.String("FALLBACK")
	if fallback == "" {
		fallback = h.String("LANGUAGE")
	}

	desired, _, err := language.ParseAcceptLanguage(accept)
	if err != nil {
		desired = nil
	}

	supported := h.Strings("LANGUAGES")
	if len(supported) == 0 {
		if len(desired) > 0 {
			return desired[0].String()
		}
		return fallback
	}

	// The matcher falls back to its first tag, so the fallback leads.
	if i := slices.Index(supported, fallback); i > 0 {
		supported = append([]string{fallback}, slices.Delete(slices.Clone(supported), i, i+1)...)
	}

	tags := make([]language.Tag, len(supported))
	for i, s := range supported {
		tags[i] = language.Make(s)
	}

	_, idx, conf := language.NewMatcher(tags).Match(desired...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}
