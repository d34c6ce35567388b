// admin.go - privacy-conscious admin view of stored language preferences
package main

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sramirezortega/cv/internal/store"
)

const adminCookie = "admin_token"

// AdminStats is what the dashboard shows.
type AdminStats struct {
	TotalVisitors  int64              `json:"total_visitors"`
	Languages      []store.LangCount  `json:"languages"`
	RecentVisitors []store.Preference `json:"recent_visitors"`
	ActiveSessions int                `json:"active_sessions"`
}

// adminAuth holds the per-process admin token and the salt used to hash
// visitor addresses.
type adminAuth struct {
	token    string
	salt     string
	username string
	password string
	logger   *slog.Logger
}

func newAdminAuth(cfg Config, logger *slog.Logger) *adminAuth {
	a := &adminAuth{
		token:    generateAdminToken(),
		salt:     cfg.VisitorSalt,
		username: cfg.AdminUsername,
		password: cfg.AdminPassword,
		logger:   logger,
	}
	if a.salt == "" {
		// Hashes change on restart, so stored preferences stop matching.
		a.salt = generateAdminToken()
		logger.Warn("CV_VISITOR_SALT not set, using a random salt for this process")
	}

	if a.username == "" {
		a.username = "admin"
		logger.Warn("using default admin username, set ADMIN_USERNAME")
	}
	if a.password == "" {
		a.password = "admin123"
		logger.Warn("using default admin password, set ADMIN_PASSWORD")
	}
	if gin.Mode() == gin.DebugMode {
		log.Printf("Admin token (dev only): %s", a.token)
	}
	return a
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate admin token:", err)
	}
	return hex.EncodeToString(bytes)
}

// hashIP hashes an address so visitors can be recognized without storing it.
func (a *adminAuth) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *adminAuth) validCredentials(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.password))
	return u&p == 1
}

// middleware checks the admin cookie.
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *server) adminStats(c *gin.Context) (*AdminStats, error) {
	ctx := c.Request.Context()
	counts, err := s.prefs.Counts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.prefs.Recent(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats := &AdminStats{
		Languages:      counts,
		RecentVisitors: recent,
		ActiveSessions: s.sessions.len(),
	}
	for _, lc := range counts {
		stats.TotalVisitors += lc.Visitors
	}
	return stats, nil
}

// setupAdminRoutes registers the login flow and the protected dashboard.
func (s *server) setupAdminRoutes(r *gin.Engine) {
	a := s.admin

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if a.validCredentials(c.PostForm("username"), c.PostForm("password")) {
			c.SetCookie(adminCookie, a.token, 3600*24, "/admin", "", false, true)
			s.logger.Info("admin login", slog.String("visitor", a.hashIP(c.ClientIP())))
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		s.logger.Warn("failed admin login", slog.String("visitor", a.hashIP(c.ClientIP())))
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"title": "Admin Login",
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(a.middleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.adminStats(c)
		if err != nil {
			s.logger.Error("loading admin stats", slog.Any("error", err))
			c.HTML(http.StatusInternalServerError, "admin-dashboard.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.adminStats(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.adminStats(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=cv-language-stats.json")
		c.JSON(http.StatusOK, stats)
	})

	// Drops preferences older than the retention window.
	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		removed, err := s.prefs.Cleanup(c.Request.Context(), s.cfg.PreferenceRetention)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		s.logger.Info("privacy cleanup", slog.Int64("removed", removed))
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})
}
