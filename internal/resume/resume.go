// Package resume loads the bilingual résumé content.
//
// Each language lives in its own YAML document under content/. Section bodies
// are Markdown and are rendered to HTML once at load time.
package resume

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/sramirezortega/cv/internal/locale"
	"github.com/sramirezortega/cv/internal/section"
)

//go:embed content/*.yaml
var embedded embed.FS

// Section is one collapsible block of the résumé.
type Section struct {
	ID       string        `yaml:"id"`
	Title    string        `yaml:"title"`
	Icon     string        `yaml:"icon"`
	Markdown string        `yaml:"body"`
	Body     template.HTML `yaml:"-"`
}

// HeaderID is the element id of the section's clickable header.
func (s Section) HeaderID() string { return s.ID + "-header" }

// ContentID is the element id of the section's collapsible content.
func (s Section) ContentID() string { return s.ID + "-content" }

// Contact is one way of reaching the author.
type Contact struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Href  string `yaml:"href"`
	Icon  string `yaml:"icon"`
}

// Resume is the content of one language variant of the page.
type Resume struct {
	Lang     string    `yaml:"lang"`
	Name     string    `yaml:"name"`
	Headline string    `yaml:"headline"`
	Location string    `yaml:"location"`
	Contacts []Contact `yaml:"contacts"`
	Sections []Section `yaml:"sections"`
}

// Pairs returns the header/content pairs a section controller is built from.
func (r *Resume) Pairs() []section.Pair {
	pairs := make([]section.Pair, 0, len(r.Sections))
	for _, s := range r.Sections {
		pairs = append(pairs, section.Pair{ID: s.ID, HeaderID: s.HeaderID(), ContentID: s.ContentID()})
	}
	return pairs
}

// Section returns the section with id.
func (r *Resume) Section(id string) (Section, bool) {
	for _, s := range r.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Library holds every language variant.
type Library struct {
	variants map[string]*Resume
}

// LoadEmbedded loads the content compiled into the binary.
func LoadEmbedded() (*Library, error) {
	return Load(embedded, "content")
}

// Load reads <dir>/<lang>.yaml for every published language.
func Load(fsys fs.FS, dir string) (*Library, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	lib := &Library{variants: map[string]*Resume{}}
	for _, tag := range locale.Supported() {
		key := locale.Key(tag)
		path := dir + "/" + key + ".yaml"
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var r Resume
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if r.Lang != key {
			return nil, fmt.Errorf("%s: lang %q does not match file name", path, r.Lang)
		}
		seen := map[string]bool{}
		for i := range r.Sections {
			s := &r.Sections[i]
			s.ID = strings.TrimSpace(s.ID)
			if s.ID == "" {
				return nil, fmt.Errorf("%s: section %d has no id", path, i)
			}
			if seen[s.ID] {
				return nil, fmt.Errorf("%s: duplicate section id %q", path, s.ID)
			}
			seen[s.ID] = true

			var buf bytes.Buffer
			if err := md.Convert([]byte(s.Markdown), &buf); err != nil {
				return nil, fmt.Errorf("%s: render section %q: %w", path, s.ID, err)
			}
			s.Body = template.HTML(buf.String())
		}
		lib.variants[key] = &r
	}
	return lib, nil
}

// For returns the résumé published in tag, falling back to the default language.
func (l *Library) For(tag language.Tag) *Resume {
	if r, ok := l.variants[locale.Key(tag)]; ok {
		return r
	}
	return l.variants[locale.Key(locale.Default())]
}
