package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mailtrack-bridge/internal/config"
	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/model"
)

const (
	systemDocID  = "system"
	triggerDocID = "sync_trigger"
)

// Store implements the document store capabilities on Firestore.
type Store struct {
	client *fs.Client
	mails  string
	config string
	audit  string
	logger *logger.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Store, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := fs.NewClient(ctx, cfg.FirebaseProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &Store{
		client: client,
		mails:  cfg.MailsCollection,
		config: cfg.ConfigCollection,
		audit:  cfg.AuditCollection,
		logger: logger,
	}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) CommitBatch(ctx context.Context, docs []*model.MailDocument) error {
	batch := s.client.Batch()
	for _, doc := range docs {
		ref := s.client.Collection(s.mails).Doc(doc.ID)
		batch.Set(ref, doc.Data(), fs.MergeAll)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("batch commit of %d documents failed: %w", len(docs), err)
	}
	s.logger.Infof("Committed batch of %d records", len(docs))
	return nil
}

func (s *Store) ByYear(ctx context.Context, year int) ([]*model.MailDocument, error) {
	iter := s.client.Collection(s.mails).Where("year", "==", year).Documents(ctx)
	defer iter.Stop()

	var docs []*model.MailDocument
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query mails for year %d: %w", year, err)
		}
		docs = append(docs, docFromData(snap.Ref.ID, snap.Data()))
	}
	return docs, nil
}

func (s *Store) ByID(ctx context.Context, id string) (*model.MailDocument, error) {
	snap, err := s.client.Collection(s.mails).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mail %s: %w", id, err)
	}
	return docFromData(snap.Ref.ID, snap.Data()), nil
}

// docFromData rebuilds a MailDocument from its stored map form, separating
// the derived identity fields from the dynamic legacy columns.
func docFromData(id string, data map[string]any) *model.MailDocument {
	doc := &model.MailDocument{ID: id, Fields: make(map[string]any)}
	for k, v := range data {
		switch k {
		case "id":
			// Identity comes from the document reference.
		case "year":
			doc.Year = model.ToInt(v)
		case "sequenceId", "accessId":
			doc.SequenceID = model.ToString(v)
		case "attachments":
			if list, ok := v.([]any); ok {
				for _, item := range list {
					if m, ok := item.(map[string]any); ok {
						doc.Attachments = append(doc.Attachments, model.Attachment{
							FileName:      model.ToString(m["fileName"]),
							DriveFileID:   model.ToString(m["driveFileId"]),
							DriveViewLink: model.ToString(m["driveViewLink"]),
						})
					}
				}
			}
		default:
			doc.Fields[k] = v
		}
	}
	return doc
}

func (s *Store) systemRef() *fs.DocumentRef {
	return s.client.Collection(s.config).Doc(systemDocID)
}

func (s *Store) Get(ctx context.Context) (*model.SystemConfig, error) {
	snap, err := s.systemRef().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}
	var cfg model.SystemConfig
	if err := snap.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode system config: %w", err)
	}
	return &cfg, nil
}

func (s *Store) Update(ctx context.Context, updates map[string]any) error {
	if _, err := s.systemRef().Set(ctx, updates, fs.MergeAll); err != nil {
		return fmt.Errorf("failed to update system config: %w", err)
	}
	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan *model.SystemConfig, error) {
	ch := make(chan *model.SystemConfig, 1)
	iter := s.systemRef().Snapshots(ctx)

	go func() {
		defer close(ch)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("Config listener error:", err)
				}
				return
			}
			if !snap.Exists() {
				continue
			}
			var cfg model.SystemConfig
			if err := snap.DataTo(&cfg); err != nil {
				s.logger.Error("Failed to decode config snapshot:", err)
				continue
			}
			// Coalesce: a slow consumer only sees the latest state.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- &cfg:
			default:
			}
		}
	}()

	return ch, nil
}

func (s *Store) WatchManualSync(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	triggerRef := s.client.Collection(s.config).Doc(triggerDocID)
	iter := triggerRef.Snapshots(ctx)

	go func() {
		defer close(ch)
		defer iter.Stop()
		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("Manual sync listener error:", err)
				}
				return
			}
			if !snap.Exists() {
				continue
			}
			if flag, _ := snap.Data()["trigger"].(bool); !flag {
				continue
			}

			// Reset the flag before signaling so a failed pass cannot make
			// the trigger stick or double-fire.
			if _, err := triggerRef.Set(ctx, map[string]any{
				"trigger":     false,
				"triggeredAt": fs.ServerTimestamp,
			}, fs.MergeAll); err != nil {
				s.logger.Error("Failed to reset manual sync trigger:", err)
			}

			select {
			case ch <- struct{}{}:
			default:
				// A pass is already pending; coalesce.
			}
		}
	}()

	return ch, nil
}

func (s *Store) Append(ctx context.Context, entry *model.AuditEntry) error {
	ref := s.client.Collection(s.audit).Doc(entry.ID)
	if _, err := ref.Set(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
