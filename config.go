package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sramirezortega/cv/internal/locale"
	"github.com/sramirezortega/cv/internal/nav"
	"github.com/sramirezortega/cv/internal/section"
)

// Config is read from the environment. A .env file next to the binary is
// loaded first by godotenv/autoload.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	Debug     bool   `env:"CV_DEBUG"`
	LogFormat string `env:"CV_LOG_FORMAT" envDefault:"text"`

	DBPath                 string        `env:"CV_DB_PATH" envDefault:"cv.db"`
	VisitorSalt            string        `env:"CV_VISITOR_SALT"`
	PreferenceRetention    time.Duration `env:"CV_PREFERENCE_RETENTION" envDefault:"8760h"`
	PreferenceCleanupEvery time.Duration `env:"CV_PREFERENCE_CLEANUP_EVERY" envDefault:"24h"`

	SectionPolicy  section.Policy `env:"CV_SECTION_POLICY" envDefault:"exclusive"`
	InitialSection string         `env:"CV_INITIAL_SECTION" envDefault:"profile"`
	RemeasureDelay time.Duration  `env:"CV_REMEASURE_DELAY" envDefault:"50ms"`
	SessionTTL     time.Duration  `env:"CV_SESSION_TTL" envDefault:"30m"`
	MaxSessions    int            `env:"CV_MAX_SESSIONS" envDefault:"5000"`

	RouteStyle locale.Style `env:"CV_ROUTE_STYLE" envDefault:"path"`

	AssetDir      string        `env:"CV_ASSET_DIR" envDefault:"./static/cv"`
	SpanishCV     string        `env:"CV_FILE_ES" envDefault:"SalomónRamírezOrtega.CV.2.0.pdf_2025_9_8 (1).pdf"`
	EnglishCV     string        `env:"CV_FILE_EN" envDefault:"SALOMON_RAMIREZ_ORTEGA_CV_ENG.PDF"`
	DownloadRate  float64       `env:"CV_DOWNLOAD_RATE" envDefault:"0.5"`
	DownloadBurst int           `env:"CV_DOWNLOAD_BURST" envDefault:"3"`
	ToastDuration time.Duration `env:"CV_TOAST_DURATION" envDefault:"3s"`

	HeaderHeight      int `env:"CV_CHROME_HEADER" envDefault:"120"`
	DownloadBarHeight int `env:"CV_CHROME_DOWNLOAD_BAR" envDefault:"64"`
	NavHeight         int `env:"CV_CHROME_NAV" envDefault:"52"`
	ScrollMargin      int `env:"CV_SCROLL_MARGIN" envDefault:"40"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// loadConfig parses the environment into a Config.
func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("CV_SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.PreferenceCleanupEvery <= 0 {
		return Config{}, fmt.Errorf("CV_PREFERENCE_CLEANUP_EVERY must be positive, got %s", cfg.PreferenceCleanupEvery)
	}
	if cfg.MaxSessions <= 0 {
		return Config{}, fmt.Errorf("CV_MAX_SESSIONS must be positive, got %d", cfg.MaxSessions)
	}
	return cfg, nil
}

// Chrome is the fixed page chrome used for scroll offsets.
func (c Config) Chrome() nav.Chrome {
	return nav.Chrome{
		Header:      c.HeaderHeight,
		DownloadBar: c.DownloadBarHeight,
		Nav:         c.NavHeight,
		Margin:      c.ScrollMargin,
	}
}
