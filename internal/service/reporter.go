package service

import (
	"context"
	"strings"
	"time"

	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/model"
	"mailtrack-bridge/internal/store"
)

// Audit levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// remediation maps error message fragments to operator-facing advice. The
// table is ordered; the first match wins. It is advisory text only, never
// used for control flow, and the original error is always recorded verbatim.
var remediation = []struct {
	fragments []string
	solution  string
}{
	{
		fragments: []string{"no such file", "not found", "does not exist"},
		solution:  "The system cannot find the specified file or directory. Check that the database path in settings is correct and the file exists on this computer.",
	},
	{
		fragments: []string{"locked", "busy", "in use"},
		solution:  "The database file is currently in use by another program, likely the desktop database application. Close it and try again, or wait a moment.",
	},
	{
		fragments: []string{"timeout", "network", "connection refused", "deadline exceeded"},
		solution:  "Network connection timed out. Check your internet connection.",
	},
	{
		fragments: []string{"permission", "access is denied"},
		solution:  "Permission denied. Try running the bridge with elevated rights.",
	},
	{
		fragments: []string{"credential", "unauthenticated"},
		solution:  "The service account credentials were rejected. Check the credentials file configured for the bridge.",
	},
}

const fallbackSolution = "Please contact technical support."

// ClassifyError returns the remediation hint for an error message.
func ClassifyError(message string) string {
	lower := strings.ToLower(message)
	for _, entry := range remediation {
		for _, fragment := range entry.fragments {
			if strings.Contains(lower, fragment) {
				return entry.solution
			}
		}
	}
	return fallbackSolution
}

// Reporter classifies failures and publishes both the machine-readable
// status document and the narrative audit trail.
type Reporter struct {
	audit  store.AuditStore
	config store.ConfigStore
	logger *logger.Logger
}

func NewReporter(audit store.AuditStore, config store.ConfigStore, logger *logger.Logger) *Reporter {
	return &Reporter{
		audit:  audit,
		config: config,
		logger: logger,
	}
}

// LogAudit appends one entry to the audit trail. Failures to write the trail
// are logged locally and swallowed: audit logging must never take down a
// pass that already has a real error to report.
func (r *Reporter) LogAudit(ctx context.Context, err error, auditContext string, level string) {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}

	entry := model.NewAuditEntry(level, message, auditContext, ClassifyError(message))
	if writeErr := r.audit.Append(ctx, entry); writeErr != nil {
		r.logger.Error("Failed to write audit log:", writeErr)
		return
	}
	r.logger.Infof("Audit log written: [%s] %s", level, message)
}

// UpdateSyncStatus merges the outcome of a pass into the system
// configuration document so downstream readers can distinguish healthy,
// offline and never-synced states.
func (r *Reporter) UpdateSyncStatus(ctx context.Context, status string, lastError string) error {
	now := time.Now()
	updates := map[string]any{
		"syncStatus": status,
		"lastSyncAt": now,
		"lastActive": now,
	}
	if lastError != "" {
		updates["lastError"] = lastError
	} else if status == model.StatusOnline || status == model.StatusHealthy {
		updates["lastError"] = ""
	}

	if err := r.config.Update(ctx, updates); err != nil {
		return err
	}
	r.logger.Infof("Sync status: %s", strings.ToUpper(status))
	return nil
}
