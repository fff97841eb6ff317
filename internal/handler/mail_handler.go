package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"mailtrack-bridge/internal/failover"
	"mailtrack-bridge/internal/logger"
)

// MailHandler serves mail documents through the failover reader, so the
// local API keeps answering from the backup snapshot when the primary
// store is unreachable.
type MailHandler struct {
	reader *failover.Reader
	logger *logger.Logger
}

func NewMailHandler(reader *failover.Reader, logger *logger.Logger) *MailHandler {
	return &MailHandler{
		reader: reader,
		logger: logger,
	}
}

func (h *MailHandler) MailsByYear(c echo.Context) error {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "year query parameter is required",
		})
	}

	mails, err := h.reader.MailsForYear(c.Request().Context(), year)
	if err != nil {
		h.logger.Error("Failed to fetch mails:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to fetch mails",
		})
	}

	payload := make([]map[string]any, 0, len(mails))
	for _, mail := range mails {
		payload = append(payload, mail.Data())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"backupMode": h.reader.Notifier().Active(),
		"mails":      payload,
	})
}

func (h *MailHandler) MailByID(c echo.Context) error {
	mail, err := h.reader.MailByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to fetch mail:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to fetch mail",
		})
	}
	if mail == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "mail not found",
		})
	}
	return c.JSON(http.StatusOK, mail.Data())
}
