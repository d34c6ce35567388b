// Package locale holds the two languages the résumé is published in and the
// rules for picking one per request.
package locale

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter that forces a language.
	LangParam = "lang"
	// CookieName stores the visitor's last chosen language.
	CookieName = "cv-language"
)

var (
	Spanish = language.Spanish
	English = language.English

	supported = []language.Tag{Spanish, English}
	matcher   = language.NewMatcher(supported)

	// names is the hardcoded whitelist of language names accepted from users.
	names = map[string]language.Tag{
		"es":      Spanish,
		"spanish": Spanish,
		"español": Spanish,
		"espanol": Spanish,
		"en":      English,
		"english": English,
		"inglés":  English,
		"ingles":  English,
	}
)

// Default is the language served when nothing else decides.
func Default() language.Tag { return Spanish }

// Supported returns the published languages, default first.
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// Parse maps a language name or BCP 47 tag onto a published language.
// Regional variants ("es-MX", "en-GB") collapse onto their base language.
func Parse(value string) (language.Tag, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Default(), false
	}
	if tag, ok := names[v]; ok {
		return tag, true
	}
	tag, err := language.Parse(v)
	if err != nil {
		return Default(), false
	}
	base, _ := tag.Base()
	for _, s := range supported {
		if sb, _ := s.Base(); sb == base {
			return s, true
		}
	}
	return Default(), false
}

// Key returns the short code used in cookies, storage and URLs.
func Key(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Name returns the English language name used by the download whitelist.
func Name(tag language.Tag) string {
	if Key(tag) == "en" {
		return "english"
	}
	return "spanish"
}

// Other returns the language that is not tag.
func Other(tag language.Tag) language.Tag {
	if Key(tag) == "en" {
		return Spanish
	}
	return English
}

// Resolve picks the language for r: ?lang first, then the preference cookie,
// then Accept-Language. The bool reports whether the choice came from ?lang
// and should be persisted.
func Resolve(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if tag, ok := Parse(v); ok {
			return tag, true
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		if tag, ok := Parse(cookie.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := matcher.Match(tags...)
			if conf != language.No {
				return supported[idx], false
			}
		}
	}
	return Default(), false
}

// PreferenceCookie returns the cookie that persists tag for a year.
func PreferenceCookie(tag language.Tag) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    Key(tag),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
}
