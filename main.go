package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"

	"github.com/sramirezortega/cv/internal/download"
	"github.com/sramirezortega/cv/internal/locale"
	"github.com/sramirezortega/cv/internal/logging"
	"github.com/sramirezortega/cv/internal/resume"
	"github.com/sramirezortega/cv/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/app.js static/style.css
var staticFS embed.FS

// server wires every collaborator the routes need. It is built once in main
// and handed to route setup.
type server struct {
	cfg       Config
	logger    *slog.Logger
	library   *resume.Library
	router    locale.Router
	downloads *download.Registry
	prefs     *store.Store
	sessions  *sessionStore
	limiter   *visitorLimiter
	admin     *adminAuth
}

func newServer(cfg Config, logger *slog.Logger, prefs *store.Store) (*server, error) {
	library, err := resume.LoadEmbedded()
	if err != nil {
		return nil, err
	}
	return &server{
		cfg:     cfg,
		logger:  logger,
		library: library,
		router:  locale.Router{Style: cfg.RouteStyle},
		downloads: download.NewRegistry(cfg.AssetDir, "/cv/files", map[language.Tag]string{
			locale.Spanish: cfg.SpanishCV,
			locale.English: cfg.EnglishCV,
		}, logger),
		prefs:    prefs,
		sessions: newSessionStore(cfg, library, logger),
		limiter:  newVisitorLimiter(cfg.DownloadRate, cfg.DownloadBurst, time.Hour),
		admin:    newAdminAuth(cfg, logger),
	}, nil
}

func (s *server) routes() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), requestTiming(s.logger))

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	r.StaticFS("/static", http.FS(static))

	// Both language variants of the page
	for path, tag := range s.router.Pages() {
		r.GET(path, s.page(tag))
	}
	r.GET("/lang/toggle", s.toggleLanguage)

	// Accordion fragments
	r.POST("/sections/:id/:action", s.sectionAction)
	r.POST("/accordion/close-all", s.closeAllSections)
	r.POST("/accordion/keys", s.sectionKey)
	r.POST("/accordion/remeasure", s.remeasureSections)

	// CV download
	r.POST("/cv/download", s.downloadCV)
	r.GET("/cv/files/:name", s.serveCV)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.setupAdminRoutes(r)
	return r, nil
}

// prunePreferences drops language preferences older than the retention
// window and returns how many were removed.
func (s *server) prunePreferences(ctx context.Context) int64 {
	removed, err := s.prefs.Cleanup(ctx, s.cfg.PreferenceRetention)
	if err != nil {
		s.logger.Error("preference cleanup", slog.Any("error", err))
		return 0
	}
	if removed > 0 {
		s.logger.Info("preference cleanup", slog.Int64("removed", removed))
	}
	return removed
}

// runPreferenceCleanup prunes once at startup and then on every tick until
// ctx is done.
func (s *server) runPreferenceCleanup(ctx context.Context, every time.Duration) {
	s.prunePreferences(ctx)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.prunePreferences(ctx)
		}
	}
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logging.New(os.Stderr, logging.Format(cfg.LogFormat), cfg.Debug)
	slog.SetDefault(logger)

	prefs, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open preference store: %v", err)
	}
	defer prefs.Close()

	srv, err := newServer(cfg, logger, prefs)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}
	r, err := srv.routes()
	if err != nil {
		log.Fatalf("routes: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.sessions.run(ctx, time.Minute, srv.limiter.prune)
	go srv.runPreferenceCleanup(ctx, cfg.PreferenceCleanupEvery)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", slog.Any("error", err))
		}
	}()

	log.Printf("CV site listening on :%s (sections: %s, routes: %s)", cfg.Port, cfg.SectionPolicy, cfg.RouteStyle)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("listen: %v", err)
	}
}

