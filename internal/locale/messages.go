package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var catalog = map[string]map[string]string{
	"es": {
		"lang.toggle":           "English",
		"lang.name.es":          "Español",
		"lang.name.en":          "Inglés",
		"download.started":      "Descargando CV en %s...",
		"download.invalid":      "No hay CV disponible para el idioma %q",
		"download.rate_limited": "Demasiadas descargas. Inténtalo de nuevo en unos segundos.",
		"download.button":       "Descargar CV (%s)",
		"sections.collapse":     "Cerrar todas las secciones",
		"nav.title":             "Navegación",
	},
	"en": {
		"lang.toggle":           "Español",
		"lang.name.es":          "Spanish",
		"lang.name.en":          "English",
		"download.started":      "Downloading CV in %s...",
		"download.invalid":      "No CV available for language %q",
		"download.rate_limited": "Too many downloads. Try again in a few seconds.",
		"download.button":       "Download CV (%s)",
		"sections.collapse":     "Collapse all sections",
		"nav.title":             "Navigation",
	},
}

func init() {
	for key, messages := range catalog {
		tag := language.MustParse(key)
		for id, msg := range messages {
			if err := message.SetString(tag, id, msg); err != nil {
				panic(err)
			}
		}
	}
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// LanguageName returns the display name of subject in the viewer's language.
func LanguageName(viewer, subject language.Tag) string {
	return Printer(viewer).Sprintf("lang.name." + Key(subject))
}
