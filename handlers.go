package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/sramirezortega/cv/internal/fault"
	"github.com/sramirezortega/cv/internal/locale"
	"github.com/sramirezortega/cv/internal/nav"
	"github.com/sramirezortega/cv/internal/notify"
	"github.com/sramirezortega/cv/internal/resume"
	"github.com/sramirezortega/cv/internal/section"
)

var templateFuncs = template.FuncMap{
	"px": func(n int) string { return fmt.Sprintf("%dpx", n) },
}

// sectionView is one accordion entry as the template sees it.
type sectionView struct {
	resume.Section
	Open     bool
	Expanded string
	Extent   int
}

type downloadButton struct {
	Language string
	Label    string
}

// pageData feeds index.html and accordion.html.
type pageData struct {
	Lang          string
	Resume        *resume.Resume
	Sections      []sectionView
	Nav           []nav.Link
	Chrome        nav.Chrome
	Policy        string
	Focus         string
	TogglePath    string
	ToggleLabel   string
	Downloads     []downloadButton
	CollapseLabel string
	NavTitle      string
}

func (s *server) pageData(sess *visitorSession, tag language.Tag, focus string) pageData {
	r := s.library.For(tag)
	p := locale.Printer(tag)

	data := pageData{
		Lang:          locale.Key(tag),
		Resume:        r,
		Chrome:        s.cfg.Chrome(),
		Policy:        sess.controller.Policy().String(),
		Focus:         focus,
		TogglePath:    "/lang/toggle?" + url.Values{"from": {s.router.PathFor(tag)}}.Encode(),
		ToggleLabel:   p.Sprintf("lang.toggle"),
		CollapseLabel: p.Sprintf("sections.collapse"),
		NavTitle:      p.Sprintf("nav.title"),
	}
	for _, sec := range r.Sections {
		open := sess.view.isExpanded(sec.ID)
		expanded := "false"
		if open {
			expanded = "true"
		}
		data.Sections = append(data.Sections, sectionView{
			Section:  sec,
			Open:     open,
			Expanded: expanded,
			Extent:   sess.view.extent(sec.ID),
		})
		data.Nav = append(data.Nav, nav.Link{SectionID: sec.ID, Label: sec.Title, Icon: sec.Icon})
	}
	for _, a := range s.downloads.Assets() {
		data.Downloads = append(data.Downloads, downloadButton{
			Language: locale.Name(a.Lang),
			Label:    p.Sprintf("download.button", locale.LanguageName(tag, a.Lang)),
		})
	}
	return data
}

// page renders one language variant of the résumé. A visitor landing on the
// default variant with a stored preference for the other language is sent
// there; ?lang forces a language and persists it.
func (s *server) page(tag language.Tag) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v := c.Query(locale.LangParam); v != "" {
			if forced, ok := locale.Parse(v); ok {
				s.rememberLanguage(c, forced)
				if forced != tag {
					c.Redirect(http.StatusFound, s.router.PathFor(forced))
					return
				}
			}
		} else if tag == locale.Default() {
			if pref, ok := s.preferredLanguage(c); ok && pref != tag {
				c.Redirect(http.StatusFound, s.router.PathFor(pref))
				return
			}
		}

		id, _ := c.Cookie(sessionCookie)
		sess := s.sessions.start(id, tag)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, sess.id, int(s.cfg.SessionTTL.Seconds()), "/", "", false, true)

		c.HTML(http.StatusOK, "index.html", s.pageData(sess, tag, ""))
	}
}

// preferredLanguage reads the stored preference: cookie first, then the
// preference store.
func (s *server) preferredLanguage(c *gin.Context) (language.Tag, bool) {
	if v, err := c.Cookie(locale.CookieName); err == nil {
		if tag, ok := locale.Parse(v); ok {
			return tag, true
		}
	}
	lang, ok, err := s.prefs.Preference(c.Request.Context(), s.admin.hashIP(c.ClientIP()))
	if err != nil {
		s.logger.Warn("reading language preference", slog.Any("error", err))
		return language.Und, false
	}
	if !ok {
		return language.Und, false
	}
	return locale.Parse(lang)
}

func (s *server) rememberLanguage(c *gin.Context, tag language.Tag) {
	http.SetCookie(c.Writer, locale.PreferenceCookie(tag))
	if err := s.prefs.SavePreference(c.Request.Context(), s.admin.hashIP(c.ClientIP()), locale.Key(tag)); err != nil {
		s.logger.Warn("saving language preference", slog.Any("error", err))
	}
}

// toggleLanguage redirects to the other language variant of the page the
// visitor came from.
func (s *server) toggleLanguage(c *gin.Context) {
	from := c.Query("from")
	if from == "" {
		if ref, err := url.Parse(c.Request.Referer()); err == nil && ref.Path != "" {
			from = ref.Path
		} else {
			from = "/"
		}
	}
	target, tag := s.router.Toggle(from)
	s.rememberLanguage(c, tag)
	recordLanguageSwitch(locale.Key(tag))
	c.Redirect(http.StatusFound, target)
}

// session returns the visitor's page session, starting one if it expired.
func (s *server) session(c *gin.Context) *visitorSession {
	id, _ := c.Cookie(sessionCookie)
	if sess, ok := s.sessions.get(id); ok {
		return sess
	}
	tag, _ := locale.Resolve(c.Request)
	sess := s.sessions.start(id, tag)
	c.SetCookie(sessionCookie, sess.id, int(s.cfg.SessionTTL.Seconds()), "/", "", false, true)
	return sess
}

func (s *server) renderAccordion(c *gin.Context, sess *visitorSession, focus string) {
	tag := sess.lang
	if v := c.PostForm("lang"); v != "" {
		if parsed, ok := locale.Parse(v); ok {
			tag = parsed
		}
	}
	c.HTML(http.StatusOK, "accordion.html", s.pageData(sess, tag, focus))
}

func (s *server) sectionAction(c *gin.Context) {
	sess := s.session(c)
	sess.view.report(parseHeights(c.PostForm("heights")))

	id := c.Param("id")
	action := c.Param("action")
	var changed bool
	switch action {
	case "toggle":
		changed = sess.controller.Toggle(id)
	case "open":
		changed = sess.controller.Open(id)
	case "close":
		changed = sess.controller.Close(id)
	case "reveal":
		changed = sess.controller.Reveal(id)
	default:
		c.String(http.StatusNotFound, "unknown section action %q", action)
		return
	}
	recordSectionAction(action, changed)

	if action == "reveal" {
		if sec, ok := s.library.For(sess.lang).Section(id); ok {
			// After settle, so the scroll sees the other sections already collapsed.
			trigger, err := json.Marshal(map[string]map[string]string{
				"cv:scroll": {"target": sec.ContentID()},
			})
			if err == nil {
				c.Header("HX-Trigger-After-Settle", string(trigger))
			}
		}
	}
	s.renderAccordion(c, sess, "")
}

func (s *server) closeAllSections(c *gin.Context) {
	sess := s.session(c)
	n := sess.controller.CloseAll()
	recordSectionAction("close_all", n > 0)
	s.renderAccordion(c, sess, "")
}

func (s *server) sectionKey(c *gin.Context) {
	sess := s.session(c)
	sess.view.report(parseHeights(c.PostForm("heights")))

	before := sess.controller.OpenIDs()
	focus := sess.controller.HandleKey(c.PostForm("focus"), section.ParseKey(c.PostForm("key")))
	recordSectionAction("key", !slices.Equal(before, sess.controller.OpenIDs()))
	s.renderAccordion(c, sess, focus)
}

func (s *server) remeasureSections(c *gin.Context) {
	sess := s.session(c)
	sess.view.report(parseHeights(c.PostForm("heights")))
	n := sess.controller.Remeasure()
	recordSectionAction("remeasure", n > 0)
	s.renderAccordion(c, sess, "")
}

// downloadCV answers the download button. On success it returns a toast and
// an HX-Redirect to the asset, which the browser saves as an attachment.
// An unsupported language gets an error toast and no redirect.
func (s *server) downloadCV(c *gin.Context) {
	tag, _ := locale.Resolve(c.Request)
	p := locale.Printer(tag)
	lang := strings.TrimSpace(c.PostForm("language"))
	visitor := s.admin.hashIP(c.ClientIP())

	if !s.limiter.allow(visitor) {
		recordDownload(downloadLabel(lang), "rate_limited")
		s.toast(c, http.StatusTooManyRequests, notify.Error(p.Sprintf("download.rate_limited")))
		return
	}

	plan, err := s.downloads.Prepare(c.Request.Context(), lang)
	if err != nil {
		s.logger.Warn("download rejected", slog.String("language", lang), slog.Any("error", err))
		if errors.Is(err, fault.ErrInvalidParameter) {
			recordDownload("invalid", "rejected")
			s.toast(c, http.StatusBadRequest, notify.Error(p.Sprintf("download.invalid", lang)))
			return
		}
		recordDownload(downloadLabel(lang), "unconfigured")
		s.toast(c, http.StatusNotFound, notify.Error(p.Sprintf("download.invalid", lang)))
		return
	}

	outcome := "started"
	if !plan.Available {
		outcome = "unverified"
	}
	recordDownload(locale.Key(plan.Lang), outcome)
	s.logger.Info("download", slog.String("plan", plan.String()), slog.Bool("verified", plan.Available))

	c.Header("HX-Redirect", plan.Href)
	s.toast(c, http.StatusOK, notify.Success(p.Sprintf("download.started", locale.LanguageName(tag, plan.Lang))))
}

// downloadLabel maps user input onto the bounded set of metric labels.
func downloadLabel(lang string) string {
	if tag, ok := locale.Parse(lang); ok {
		return locale.Key(tag)
	}
	return "invalid"
}

func (s *server) toast(c *gin.Context, status int, t notify.Toast) {
	c.HTML(status, "toast.html", t.WithDismiss(s.cfg.ToastDuration))
}

// serveCV streams a whitelisted CV file as an attachment.
func (s *server) serveCV(c *gin.Context) {
	asset, ok := s.downloads.Lookup(c.Param("name"))
	if !ok {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.FileAttachment(s.downloads.Path(asset), asset.FileName)
}
