package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lymphly/vps-ai-bridge/internal/models"
)

type HealthHandler struct {
	authMode      string
	defaultLocale models.Locale
	started       time.Time
	now           func() time.Time
}

func NewHealthHandler(authMode string, defaultLocale models.Locale, started time.Time) *HealthHandler {
	return &HealthHandler{
		authMode:      authMode,
		defaultLocale: defaultLocale,
		started:       started,
		now:           time.Now,
	}
}

// GetHealth reports liveness and the locale configuration. It never requires auth.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":                true,
		"auth_mode":         h.authMode,
		"default_locale":    h.defaultLocale,
		"supported_locales": models.SupportedLocales(),
		"uptime_seconds":    int64(h.now().Sub(h.started).Seconds()),
	})
}
