package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ledgerkit/remindd/internal/handlers"
	"github.com/ledgerkit/remindd/internal/middleware"
)

// SetupRoutes configures all API routes with their middleware.
func SetupRoutes(router *gin.Engine, reminderHandler *handlers.ReminderHandler, rateLimiter *middleware.RateLimiter, apiToken string, logger *zap.Logger) {
	router.Use(middleware.Logger(logger))

	// Public routes
	public := router.Group("/")
	{
		public.GET("/status", handlers.StatusHandler)
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})
	}

	// Protected routes with rate limiting
	protected := router.Group("/")
	protected.Use(middleware.TokenAuth(apiToken, logger))
	protected.Use(rateLimiter.RateLimit())
	{
		reminders := protected.Group("/reminders")
		{
			reminders.POST("", reminderHandler.CreateReminder)
			reminders.GET("", reminderHandler.ListReminders)
			reminders.GET("/due", reminderHandler.ListDue)
			reminders.GET("/:id", reminderHandler.GetReminder)
			reminders.PUT("/:id", reminderHandler.UpdateReminder)
			reminders.DELETE("/:id", reminderHandler.DeleteReminder)
			reminders.GET("/:id/occurrences", reminderHandler.ListOccurrences)
			reminders.POST("/:id/fire", reminderHandler.FireReminder)
			reminders.GET("/:id/firings", reminderHandler.ListFirings)
		}
	}
}
