package store

import (
	"context"

	"mailtrack-bridge/internal/model"
)

// MaxBatchSize is the document store's hard per-request write limit. The
// engine's configured batch size must stay strictly below it.
const MaxBatchSize = 500

// MailStore defines the document-level operations on the mail collection.
type MailStore interface {
	// CommitBatch upserts every document in one atomic batch using
	// set-with-merge semantics: fields not present in the document are left
	// untouched in the store. Callers guarantee len(docs) < MaxBatchSize.
	CommitBatch(ctx context.Context, docs []*model.MailDocument) error

	// ByYear returns all mail documents whose year field matches.
	ByYear(ctx context.Context, year int) ([]*model.MailDocument, error)

	// ByID returns one document by composite ID, or (nil, nil) when absent.
	ByID(ctx context.Context, id string) (*model.MailDocument, error)
}

// ConfigStore manages the singleton system configuration document and the
// manual sync trigger.
type ConfigStore interface {
	Get(ctx context.Context) (*model.SystemConfig, error)

	// Update merges the given fields into the configuration document,
	// creating it if necessary.
	Update(ctx context.Context, updates map[string]any) error

	// Watch pushes a snapshot of the configuration on every remote change.
	// The channel is closed when ctx is cancelled. Updates are coalesced: a
	// slow consumer only ever sees the most recent state.
	Watch(ctx context.Context) (<-chan *model.SystemConfig, error)

	// WatchManualSync pushes one signal per observed manual sync request.
	// The trigger flag is cleared at the moment it is observed, before the
	// signal is delivered, so a failed pass cannot re-fire it. Signals are
	// coalesced to at most one pending.
	WatchManualSync(ctx context.Context) (<-chan struct{}, error)
}

// AuditStore appends immutable audit log entries. Entries are never updated
// or deleted by the bridge.
type AuditStore interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
}
