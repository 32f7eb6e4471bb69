package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lymphly/vps-ai-bridge/internal/services"
)

type RoutineHandler struct {
	locales      *services.LocaleResolver
	assetBaseURL string
	now          func() time.Time
}

func NewRoutineHandler(locales *services.LocaleResolver, assetBaseURL string) *RoutineHandler {
	return &RoutineHandler{
		locales:      locales,
		assetBaseURL: assetBaseURL,
		now:          time.Now,
	}
}

// GetDailyRoutine handles GET /v1/routines/daily?average_score=&locale=&date=
// Unusable parameters fall back to defaults; the response is always 200.
func (h *RoutineHandler) GetDailyRoutine(c *gin.Context) {
	score := parseScore(c.Query("average_score"))
	locale := h.locales.Resolve(c.Query("locale"), c.GetHeader("Accept-Language"))

	date := h.now().UTC()
	if raw := c.Query("date"); raw != "" {
		if d, err := services.ParseRoutineDate(raw); err == nil {
			date = d
		}
	}

	c.JSON(http.StatusOK, services.BuildRoutine(score, date, locale, h.assetBaseURL))
}

// parseScore accepts integers and decimals; anything else is the default score.
func parseScore(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return services.DefaultRoutineScore
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return services.DefaultRoutineScore
	}
	// Clamp before converting so huge values cannot overflow int.
	return int(math.Round(math.Max(0, math.Min(100, f))))
}
