package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want language.Tag
		ok   bool
	}{
		{in: "es", want: Spanish, ok: true},
		{in: "Spanish", want: Spanish, ok: true},
		{in: "español", want: Spanish, ok: true},
		{in: "es-MX", want: Spanish, ok: true},
		{in: "english", want: English, ok: true},
		{in: " EN ", want: English, ok: true},
		{in: "en-GB", want: English, ok: true},
		{in: "inglés", want: English, ok: true},
		{in: "french", want: Spanish, ok: false},
		{in: "fr", want: Spanish, ok: false},
		{in: "", want: Spanish, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyNameOther(t *testing.T) {
	assert.Equal(t, "es", Key(Spanish))
	assert.Equal(t, "en", Key(English))
	assert.Equal(t, "spanish", Name(Spanish))
	assert.Equal(t, "english", Name(English))
	assert.Equal(t, English, Other(Spanish))
	assert.Equal(t, Spanish, Other(English))
}

func TestResolve(t *testing.T) {
	t.Run("query wins and persists", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "es"})

		tag, persist := Resolve(req)
		assert.Equal(t, English, tag)
		assert.True(t, persist)
	})

	t.Run("cookie before accept-language", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "en"})
		req.Header.Set("Accept-Language", "es-ES,es;q=0.9")

		tag, persist := Resolve(req)
		assert.Equal(t, English, tag)
		assert.False(t, persist)
	})

	t.Run("accept-language", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "en-US,en;q=0.8")

		tag, _ := Resolve(req)
		assert.Equal(t, English, tag)
	})

	t.Run("unsupported falls back to default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?lang=fr", nil)
		req.Header.Set("Accept-Language", "fr-FR")

		tag, persist := Resolve(req)
		assert.Equal(t, Default(), tag)
		assert.False(t, persist)
	})

	t.Run("nil request", func(t *testing.T) {
		tag, _ := Resolve(nil)
		assert.Equal(t, Default(), tag)
	})
}

func TestPreferenceCookie(t *testing.T) {
	c := PreferenceCookie(English)
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "en", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Positive(t, c.MaxAge)
}

func TestRouterPathStyle(t *testing.T) {
	r := Router{Style: StylePath}

	assert.Equal(t, Spanish, r.LanguageOf("/"))
	assert.Equal(t, English, r.LanguageOf("/en"))
	assert.Equal(t, English, r.LanguageOf("/en/"))
	assert.Equal(t, Spanish, r.LanguageOf("/engineering"))

	target, tag := r.Toggle("/")
	assert.Equal(t, "/en", target)
	assert.Equal(t, English, tag)

	target, tag = r.Toggle("/en")
	assert.Equal(t, "/", target)
	assert.Equal(t, Spanish, tag)
}

func TestRouterSuffixStyle(t *testing.T) {
	r := Router{Style: StyleSuffix}

	assert.Equal(t, English, r.LanguageOf("/index-en.html"))
	assert.Equal(t, Spanish, r.LanguageOf("/index.html"))

	target, _ := r.Toggle("/index.html")
	assert.Equal(t, "/index-en.html", target)

	pages := r.Pages()
	require.Len(t, pages, 3)
	assert.Equal(t, Spanish, pages["/"])
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("suffix")
	require.NoError(t, err)
	assert.Equal(t, StyleSuffix, s)

	_, err = ParseStyle("query")
	assert.Error(t, err)
}

func TestPrinter(t *testing.T) {
	assert.Equal(t, "Descargando CV en Español...", Printer(Spanish).Sprintf("download.started", LanguageName(Spanish, Spanish)))
	assert.Equal(t, "Downloading CV in Spanish...", Printer(English).Sprintf("download.started", LanguageName(English, Spanish)))
	assert.Equal(t, "Inglés", LanguageName(Spanish, English))
}
