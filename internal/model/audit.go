package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is an immutable record of a notable bridge event. Entries are
// appended once and never updated; retention is handled outside the bridge.
type AuditEntry struct {
	ID        string    `json:"id" firestore:"-"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	Level     string    `json:"level" firestore:"level"`
	Message   string    `json:"message" firestore:"message"`
	Context   string    `json:"context" firestore:"context"`
	Solution  string    `json:"solution" firestore:"solution"`
	Source    string    `json:"source" firestore:"source"`
}

func NewAuditEntry(level, message, context, solution string) *AuditEntry {
	return &AuditEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Context:   context,
		Solution:  solution,
		Source:    "bridge",
	}
}
