package memory

import (
	"context"
	"errors"
	"sync"

	"mailtrack-bridge/internal/model"
)

// InMemoryMailStore keeps mail documents in a map, applying the same
// set-with-merge semantics as the real store.
type InMemoryMailStore struct {
	docs  map[string]map[string]any
	mutex sync.RWMutex

	// CommitFunc, when set, runs before a batch is applied and can fail the
	// commit (used by tests to simulate partial batch failures).
	CommitFunc func(docs []*model.MailDocument) error

	CommitCount int
}

func NewInMemoryMailStore() *InMemoryMailStore {
	return &InMemoryMailStore{
		docs: make(map[string]map[string]any),
	}
}

func (s *InMemoryMailStore) CommitBatch(ctx context.Context, docs []*model.MailDocument) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.CommitCount++
	if s.CommitFunc != nil {
		if err := s.CommitFunc(docs); err != nil {
			return err
		}
	}

	for _, doc := range docs {
		existing, ok := s.docs[doc.ID]
		if !ok {
			existing = make(map[string]any)
			s.docs[doc.ID] = existing
		}
		// Merge: unspecified existing fields survive.
		for k, v := range doc.Data() {
			existing[k] = v
		}
	}
	return nil
}

func (s *InMemoryMailStore) ByYear(ctx context.Context, year int) ([]*model.MailDocument, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var docs []*model.MailDocument
	for id, data := range s.docs {
		if model.ToInt(data["year"]) != year {
			continue
		}
		docs = append(docs, docFromData(id, data))
	}
	return docs, nil
}

func (s *InMemoryMailStore) ByID(ctx context.Context, id string) (*model.MailDocument, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	return docFromData(id, data), nil
}

// Raw returns the stored map for one document, or nil when absent.
func (s *InMemoryMailStore) Raw(id string) map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, ok := s.docs[id]
	if !ok {
		return nil
	}
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return copied
}

func (s *InMemoryMailStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.docs)
}

func docFromData(id string, data map[string]any) *model.MailDocument {
	doc := &model.MailDocument{ID: id, Fields: make(map[string]any)}
	for k, v := range data {
		switch k {
		case "id":
		case "year":
			doc.Year = model.ToInt(v)
		case "sequenceId", "accessId":
			doc.SequenceID = model.ToString(v)
		case "attachments":
			if list, ok := v.([]map[string]any); ok {
				for _, m := range list {
					doc.Attachments = append(doc.Attachments, model.Attachment{
						FileName:      model.ToString(m["fileName"]),
						DriveFileID:   model.ToString(m["driveFileId"]),
						DriveViewLink: model.ToString(m["driveViewLink"]),
					})
				}
			}
		default:
			doc.Fields[k] = v
		}
	}
	return doc
}

// InMemoryConfigStore holds the singleton configuration document and the
// manual sync trigger flag.
type InMemoryConfigStore struct {
	config  map[string]any
	trigger bool
	mutex   sync.Mutex

	configCh chan *model.SystemConfig
	manualCh chan struct{}

	// GetFunc, when set, replaces Get (used by tests to simulate an
	// unreachable primary store).
	GetFunc func(ctx context.Context) (*model.SystemConfig, error)
}

func NewInMemoryConfigStore() *InMemoryConfigStore {
	return &InMemoryConfigStore{
		config:   make(map[string]any),
		configCh: make(chan *model.SystemConfig, 1),
		manualCh: make(chan struct{}, 1),
	}
}

func (s *InMemoryConfigStore) Get(ctx context.Context) (*model.SystemConfig, error) {
	if s.GetFunc != nil {
		return s.GetFunc(ctx)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(s.config) == 0 {
		return nil, errors.New("system config not found")
	}
	return s.decode(), nil
}

func (s *InMemoryConfigStore) decode() *model.SystemConfig {
	cfg := &model.SystemConfig{}
	cfg.LegacyDBPath = model.ToString(s.config["accessDbPath"])
	cfg.TargetYear = model.ToInt(s.config["targetYear"])
	cfg.SyncStatus = model.ToString(s.config["syncStatus"])
	cfg.LastError = model.ToString(s.config["lastError"])
	cfg.DriveFolderID = model.ToString(s.config["driveFolderId"])
	cfg.BackupJSONURL = model.ToString(s.config["backup_json_url"])
	cfg.BackupJSONID = model.ToString(s.config["backup_json_id"])
	return cfg
}

func (s *InMemoryConfigStore) Update(ctx context.Context, updates map[string]any) error {
	s.mutex.Lock()
	for k, v := range updates {
		s.config[k] = v
	}
	cfg := s.decode()
	s.mutex.Unlock()

	select {
	case <-s.configCh:
	default:
	}
	select {
	case s.configCh <- cfg:
	default:
	}
	return nil
}

func (s *InMemoryConfigStore) Watch(ctx context.Context) (<-chan *model.SystemConfig, error) {
	return s.configCh, nil
}

// TriggerManualSync emulates an external actor setting the trigger flag.
func (s *InMemoryConfigStore) TriggerManualSync() {
	s.mutex.Lock()
	s.trigger = true
	s.mutex.Unlock()

	// Observe-and-clear: the flag is consumed the moment it is seen.
	s.mutex.Lock()
	fire := s.trigger
	s.trigger = false
	s.mutex.Unlock()

	if fire {
		select {
		case s.manualCh <- struct{}{}:
		default:
		}
	}
}

func (s *InMemoryConfigStore) WatchManualSync(ctx context.Context) (<-chan struct{}, error) {
	return s.manualCh, nil
}

// InMemoryAuditStore collects audit entries in order of arrival.
type InMemoryAuditStore struct {
	entries []*model.AuditEntry
	mutex   sync.Mutex
}

func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{}
}

func (s *InMemoryAuditStore) Append(ctx context.Context, entry *model.AuditEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryAuditStore) Entries() []*model.AuditEntry {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]*model.AuditEntry(nil), s.entries...)
}
