package service

import (
	"context"

	"mailtrack-bridge/internal/model"
)

// SyncService runs sync passes against the legacy database and reconciles
// the rows into the document store.
type SyncService interface {
	// RunPass executes one complete sync pass: read legacy rows, resolve
	// attachments, reconcile, export the backup snapshot and publish status.
	// Pass-level failures are reported through the audit trail and the
	// returned error; they never crash the process.
	RunPass(ctx context.Context, sys *model.SystemConfig) error

	// Reconcile derives composite identities for the given legacy records and
	// upserts the corresponding documents in bounded batches.
	Reconcile(ctx context.Context, records []model.LegacyRecord, attachments map[string][]model.Attachment) (*model.SyncResult, error)
}

// LegacyConnector opens the legacy desktop database file.
type LegacyConnector interface {
	// Open connects to the database at path. It fails with legacy.ErrNotFound
	// when the file does not exist.
	Open(path string) (LegacyDB, error)
}

// LegacyDB is a handle on an open legacy database. It is owned exclusively by
// the sync pass that opened it and released before the pass ends.
type LegacyDB interface {
	TableNames() ([]string, error)
	Columns(table string) ([]string, error)
	ReadAll(table string) ([]model.LegacyRecord, error)
	Close() error
}

// Uploader is the file-sharing capability used for attachments and the
// backup snapshot.
type Uploader interface {
	// Upload stores the local file under name in folderID, makes it viewable
	// by anyone with the link and returns its stable reference.
	Upload(ctx context.Context, localPath, name, folderID string) (*model.Attachment, error)

	// FindByName looks name up in folderID. It returns (nil, nil) when no
	// such file exists.
	FindByName(ctx context.Context, name, folderID string) (*model.Attachment, error)

	// GetOrUpload uploads only when no file of that name exists yet, so the
	// same attachment is never stored twice.
	GetOrUpload(ctx context.Context, localPath, name, folderID string) (*model.Attachment, error)

	// Replace overwrites the content of an existing file in place, keeping
	// its ID and share link stable.
	Replace(ctx context.Context, fileID, localPath string) (*model.Attachment, error)
}
