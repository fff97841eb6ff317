package failover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/model"
	"mailtrack-bridge/internal/store"
)

// Reader serves mail documents with a two-path strategy: a short-timeout
// liveness probe against the primary store, falling back to the exported
// backup snapshot when the primary is unreachable. Quota exhaustion and a
// genuine outage are indistinguishable here and handled identically.
type Reader struct {
	mails    store.MailStore
	config   store.ConfigStore
	client   *http.Client
	notifier *Notifier
	logger   *logger.Logger

	backupURL    string
	probeTimeout time.Duration

	mutex    sync.Mutex
	lastSeen *model.SystemConfig
}

func NewReader(
	mails store.MailStore,
	config store.ConfigStore,
	notifier *Notifier,
	backupURL string,
	probeTimeout time.Duration,
	logger *logger.Logger,
) *Reader {
	if probeTimeout <= 0 {
		probeTimeout = 3 * time.Second
	}
	return &Reader{
		mails:        mails,
		config:       config,
		client:       &http.Client{Timeout: 30 * time.Second},
		notifier:     notifier,
		logger:       logger,
		backupURL:    backupURL,
		probeTimeout: probeTimeout,
	}
}

// Notifier exposes the observable backup-mode state for injection into
// status surfaces.
func (r *Reader) Notifier() *Notifier {
	return r.notifier
}

// MailsForYear returns the year's documents sorted by numeric sequence
// descending, from the primary store when reachable and from the backup
// snapshot otherwise.
func (r *Reader) MailsForYear(ctx context.Context, year int) ([]*model.MailDocument, error) {
	if err := r.probe(ctx); err != nil {
		r.logger.Warnf("Primary store probe failed (%v), activating backup mode", err)
		return r.backupMailsForYear(ctx, year)
	}

	docs, err := r.mails.ByYear(ctx, year)
	if err != nil {
		r.logger.Warnf("Primary store query failed (%v), activating backup mode", err)
		return r.backupMailsForYear(ctx, year)
	}

	r.notifier.set(false)
	sortBySequenceDesc(docs)
	return docs, nil
}

// MailByID returns one document by composite ID, falling back to the
// snapshot when the primary store cannot serve it. Legacy hyphenated IDs
// are accepted and normalized.
func (r *Reader) MailByID(ctx context.Context, compositeID string) (*model.MailDocument, error) {
	wanted := normalizeCompositeID(compositeID)

	doc, err := r.mails.ByID(ctx, wanted)
	if err == nil {
		// A reachable primary is authoritative, including for not-found.
		r.notifier.set(false)
		return doc, nil
	}
	r.logger.Warnf("Primary store read failed (%v), trying backup snapshot", err)

	rows, fetchErr := r.fetchSnapshot(ctx)
	if fetchErr != nil {
		return nil, err
	}
	r.notifier.set(true)
	for _, row := range rows {
		if candidate := NormalizeSnapshotRow(row); candidate != nil && candidate.ID == wanted {
			return candidate, nil
		}
	}
	return nil, nil
}

// probe performs the short-timeout liveness check. A successful read of the
// system configuration doubles as a refresh of the backup snapshot location.
func (r *Reader) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	cfg, err := r.config.Get(probeCtx)
	if err != nil {
		return err
	}
	r.mutex.Lock()
	r.lastSeen = cfg
	r.mutex.Unlock()
	return nil
}

func (r *Reader) backupMailsForYear(ctx context.Context, year int) ([]*model.MailDocument, error) {
	r.notifier.set(true)

	rows, err := r.fetchSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup snapshot fetch failed: %w", err)
	}

	var docs []*model.MailDocument
	for _, row := range rows {
		doc := NormalizeSnapshotRow(row)
		if doc == nil {
			continue
		}
		if year != 0 && doc.Year != year {
			continue
		}
		docs = append(docs, doc)
	}
	sortBySequenceDesc(docs)
	return docs, nil
}

// snapshotURL prefers the location published by the bridge during its last
// reachable period, falling back to the statically configured URL.
func (r *Reader) snapshotURL() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.lastSeen != nil && r.lastSeen.BackupJSONURL != "" {
		return r.lastSeen.BackupJSONURL
	}
	return r.backupURL
}

func (r *Reader) fetchSnapshot(ctx context.Context) ([]map[string]any, error) {
	url := r.snapshotURL()
	if url == "" {
		return nil, errors.New("no backup snapshot location configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, DirectDownloadURL(url), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backup snapshot returned status %d", resp.StatusCode)
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode backup snapshot: %w", err)
	}
	return rows, nil
}

// DirectDownloadURL rewrites a Drive view link into its direct-download
// form; other URLs pass through unchanged.
func DirectDownloadURL(link string) string {
	const marker = "/file/d/"
	idx := strings.Index(link, marker)
	if idx < 0 {
		return link
	}
	rest := link[idx+len(marker):]
	if end := strings.Index(rest, "/"); end >= 0 {
		rest = rest[:end]
	}
	return "https://drive.google.com/uc?export=download&id=" + rest
}

// NormalizeSnapshotRow converts one snapshot row into the canonical mail
// document shape. Rows carrying the legacy hyphenated ID form
// ("{seq}-{year}") as well as the current composite form are accepted; rows
// with no derivable identity are dropped.
func NormalizeSnapshotRow(row map[string]any) *model.MailDocument {
	sequence := ""
	for _, key := range []string{"sequenceId", "accessId", "NO URUT"} {
		if v, ok := row[key]; ok {
			if s := strings.TrimSpace(model.ToString(v)); s != "" {
				sequence = s
				break
			}
		}
	}

	year := model.ToInt(row["year"])
	if id := model.ToString(row["id"]); id != "" {
		if parsedYear, parsedSeq, ok := splitCompositeID(id); ok {
			if year == 0 {
				year = parsedYear
			}
			if sequence == "" {
				sequence = parsedSeq
			}
		}
	}
	if sequence == "" {
		return nil
	}
	if year == 0 {
		year = time.Now().Year()
	}

	doc := &model.MailDocument{
		ID:         fmt.Sprintf("%d_%s", year, strings.ReplaceAll(sequence, "/", "-")),
		Year:       year,
		SequenceID: sequence,
		Fields:     make(map[string]any),
	}
	for k, v := range row {
		switch k {
		case "id", "year", "sequenceId", "accessId":
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

// normalizeCompositeID maps either ID convention to the current
// "{year}_{seq}" form. Unrecognizable IDs pass through unchanged.
func normalizeCompositeID(id string) string {
	year, seq, ok := splitCompositeID(id)
	if !ok {
		return id
	}
	return fmt.Sprintf("%d_%s", year, seq)
}

// splitCompositeID parses both identity conventions: the current
// "{year}_{seq}" and the legacy "{seq}-{year}".
func splitCompositeID(id string) (int, string, bool) {
	if idx := strings.Index(id, "_"); idx > 0 {
		if year, ok := parseYear(id[:idx]); ok && idx+1 < len(id) {
			return year, id[idx+1:], true
		}
	}
	if idx := strings.LastIndex(id, "-"); idx > 0 {
		if year, ok := parseYear(id[idx+1:]); ok {
			return year, id[:idx], true
		}
	}
	return 0, "", false
}

func parseYear(s string) (int, bool) {
	if len(s) != 4 || !strings.HasPrefix(s, "20") {
		return 0, false
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return year, true
}

func sortBySequenceDesc(docs []*model.MailDocument) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].SequenceNum() > docs[j].SequenceNum()
	})
}
