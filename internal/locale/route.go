package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Style is the naming convention that separates the two language variants.
type Style int

const (
	// StylePath serves Spanish at "/" and English at "/en".
	StylePath Style = iota
	// StyleSuffix serves Spanish at "/index.html" and English at "/index-en.html".
	StyleSuffix
)

// ParseStyle accepts "path" or "suffix".
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "path", "":
		return StylePath, nil
	case "suffix", "file":
		return StyleSuffix, nil
	default:
		return StylePath, fmt.Errorf("unknown route style %q", s)
	}
}

func (s Style) String() string {
	if s == StyleSuffix {
		return "suffix"
	}
	return "path"
}

// UnmarshalText lets Style be decoded from configuration.
func (s *Style) UnmarshalText(text []byte) error {
	parsed, err := ParseStyle(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Router maps between page paths and languages.
type Router struct {
	Style Style
}

// LanguageOf decides the language of path by substring matching against the
// configured convention.
func (r Router) LanguageOf(path string) language.Tag {
	p := strings.ToLower(path)
	switch r.Style {
	case StyleSuffix:
		if strings.Contains(p, "-en.") || strings.HasSuffix(p, "-en") {
			return English
		}
	default:
		trimmed := strings.TrimSuffix(p, "/")
		if strings.HasSuffix(trimmed, "/en") || strings.Contains(p, "/en/") {
			return English
		}
	}
	return Spanish
}

// PathFor returns the page path that serves tag.
func (r Router) PathFor(tag language.Tag) string {
	english := Key(tag) == "en"
	switch r.Style {
	case StyleSuffix:
		if english {
			return "/index-en.html"
		}
		return "/index.html"
	default:
		if english {
			return "/en"
		}
		return "/"
	}
}

// Toggle returns the path of the other language variant of path.
func (r Router) Toggle(path string) (string, language.Tag) {
	target := Other(r.LanguageOf(path))
	return r.PathFor(target), target
}

// Pages lists every page path with the language it serves.
func (r Router) Pages() map[string]language.Tag {
	pages := map[string]language.Tag{
		r.PathFor(Spanish): Spanish,
		r.PathFor(English): English,
	}
	if r.Style == StyleSuffix {
		pages["/"] = Spanish
	}
	return pages
}
