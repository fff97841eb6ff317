package router

import (
	"github.com/labstack/echo/v4"

	"mailtrack-bridge/internal/handler"
)

// SetupRoutes registers the bridge's local API on the lock listener.
func SetupRoutes(e *echo.Echo, statusHandler *handler.StatusHandler, mailHandler *handler.MailHandler) {
	e.GET("/health", statusHandler.Health)
	e.GET("/api/bridge-logs", statusHandler.BridgeLogs)
	e.GET("/api/mails", mailHandler.MailsByYear)
	e.GET("/api/mails/:id", mailHandler.MailByID)
}
