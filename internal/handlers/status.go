package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ledgerkit/remindd/internal/middleware"
)

var startTime = time.Now()

// StatusResponse represents the status endpoint response.
type StatusResponse struct {
	Status        string   `json:"status"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Version       string   `json:"version"`
	Kinds         []string `json:"recurrence_kinds"`
}

// StatusHandler reports process health and the supported recurrence kinds.
func StatusHandler(c *gin.Context) {
	logger := c.MustGet(middleware.LoggerKey).(*zap.Logger)
	response := StatusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Version:       "1.0.0",
		Kinds:         []string{"once", "daily", "weekly", "monthly", "month_end", "yearly", "year_end"},
	}
	logger.Info("Status endpoint checked", zap.Int64("uptime_seconds", response.UptimeSeconds))
	c.JSON(http.StatusOK, response)
}
