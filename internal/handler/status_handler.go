package handler

import (
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"

	"mailtrack-bridge/internal/failover"
	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/store"
)

const logTailLines = 500

// StatusHandler exposes the bridge's health and recent log lines on the
// local lock listener.
type StatusHandler struct {
	config   store.ConfigStore
	notifier *failover.Notifier
	logFile  string
	logger   *logger.Logger
}

func NewStatusHandler(config store.ConfigStore, notifier *failover.Notifier, logFile string, logger *logger.Logger) *StatusHandler {
	return &StatusHandler{
		config:   config,
		notifier: notifier,
		logFile:  logFile,
		logger:   logger,
	}
}

// Health reports the sync status fields and the backup-mode flag.
func (h *StatusHandler) Health(c echo.Context) error {
	response := map[string]any{
		"status":     "running",
		"backupMode": h.notifier.Active(),
	}

	cfg, err := h.config.Get(c.Request().Context())
	if err != nil {
		response["syncStatus"] = "unknown"
		response["configError"] = err.Error()
		return c.JSON(http.StatusOK, response)
	}

	response["syncStatus"] = cfg.SyncStatus
	response["lastSyncAt"] = cfg.LastSyncAt
	response["lastError"] = cfg.LastError
	return c.JSON(http.StatusOK, response)
}

// BridgeLogs returns the tail of the bridge log file.
func (h *StatusHandler) BridgeLogs(c echo.Context) error {
	data, err := os.ReadFile(h.logFile)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusOK, map[string]any{"lines": []string{}})
		}
		h.logger.Error("Failed to read bridge log:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to read bridge log",
		})
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > logTailLines {
		lines = lines[len(lines)-logTailLines:]
	}
	return c.JSON(http.StatusOK, map[string]any{"lines": lines})
}
