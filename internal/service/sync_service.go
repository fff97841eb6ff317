package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/model"
	"mailtrack-bridge/internal/store"
)

// Candidate column names, tried in priority order. The legacy database's
// schema is operator-defined, so the bridge detects rather than assumes.
var (
	mailTableCandidates     = []string{"Mails", "Mail", "SuratMasuk", "Surat", "tblMails", "tblSurat"}
	attachTableCandidates   = []string{"Attachments", "Lampiran", "LampiranSurat", "tblAttachments"}
	sequenceFieldCandidates = []string{"NO URUT", "ID", "Id", "id", "MailID", "MailId", "NoUrut"}
	dateFieldCandidates     = []string{"TANGGAL SURAT MASUK", "TANGGAL SURAT DITERIMA", "Date", "date", "MailDate", "CreatedDate", "Tanggal"}
	attachNameCandidates    = []string{"FileName", "NAMA FILE", "Name"}
	attachPathCandidates    = []string{"FilePath", "PATH", "Path"}
)

var yearToken = regexp.MustCompile(`\b(20\d{2})\b`)

type syncService struct {
	connector    LegacyConnector
	mails        store.MailStore
	config       store.ConfigStore
	reporter     *Reporter
	uploader     Uploader
	logger       *logger.Logger
	batchSize    int
	backupFileID string
}

func NewSyncService(
	connector LegacyConnector,
	mails store.MailStore,
	config store.ConfigStore,
	reporter *Reporter,
	uploader Uploader,
	logger *logger.Logger,
	batchSize int,
	backupFileID string,
) SyncService {
	if batchSize <= 0 || batchSize >= store.MaxBatchSize {
		batchSize = 400
	}
	return &syncService{
		connector:    connector,
		mails:        mails,
		config:       config,
		reporter:     reporter,
		uploader:     uploader,
		logger:       logger,
		batchSize:    batchSize,
		backupFileID: backupFileID,
	}
}

func (s *syncService) RunPass(ctx context.Context, sys *model.SystemConfig) error {
	s.logger.Infof("Sync started at %s", time.Now().Format(time.RFC3339))

	if err := s.runPass(ctx, sys); err != nil {
		s.reporter.LogAudit(ctx, err, "Sync Process", LevelError)
		if statusErr := s.reporter.UpdateSyncStatus(ctx, model.StatusOffline, err.Error()); statusErr != nil {
			s.logger.Error("Failed to update offline status:", statusErr)
		}
		s.logger.Warn("Sync failed, will retry on next interval:", err)
		return err
	}
	return nil
}

func (s *syncService) runPass(ctx context.Context, sys *model.SystemConfig) error {
	db, err := s.connector.Open(sys.LegacyDBPath)
	if err != nil {
		return fmt.Errorf("database not accessible: %w", err)
	}
	defer db.Close()

	tables, err := db.TableNames()
	if err != nil {
		return fmt.Errorf("failed to enumerate tables: %w", err)
	}
	s.logger.Infof("Available tables: %s", strings.Join(tables, ", "))

	mailTable := detectMailTable(tables)
	if mailTable == "" {
		return errors.New("no suitable mail table found in database, check the legacy database structure")
	}
	s.logger.Infof("Using table: %q", mailTable)

	columns, err := db.Columns(mailTable)
	if err != nil {
		return fmt.Errorf("failed to read schema of %q: %w", mailTable, err)
	}
	s.logger.Infof("Detected %d columns in %s", len(columns), mailTable)

	records, err := db.ReadAll(mailTable)
	if err != nil {
		return fmt.Errorf("failed to read records from %q: %w", mailTable, err)
	}

	attachments := s.resolveAttachments(ctx, db, tables, sys)

	docs, skipped := s.buildDocuments(records, attachments)
	result, commitErr := s.commitDocuments(ctx, docs)
	result.ErrorCount += skipped
	if commitErr != nil {
		// Already-committed batches stand; the remainder is re-derived and
		// retried on the next pass.
		s.logger.Warnf("Partial sync: %d records committed before failure", result.SuccessCount)
		return commitErr
	}

	s.exportSnapshot(ctx, docs, sys)

	if err := s.reporter.UpdateSyncStatus(ctx, model.StatusOnline, ""); err != nil {
		s.logger.Error("Failed to update sync status:", err)
	}

	s.logger.Infof("Sync completed: %d records synced, %d errors", result.SuccessCount, result.ErrorCount)
	return nil
}

func (s *syncService) Reconcile(ctx context.Context, records []model.LegacyRecord, attachments map[string][]model.Attachment) (*model.SyncResult, error) {
	docs, skipped := s.buildDocuments(records, attachments)
	result, err := s.commitDocuments(ctx, docs)
	result.ErrorCount += skipped
	if err != nil {
		return result, err
	}
	s.logger.Infof("Reconcile complete: %d processed, %d skipped/errors", result.SuccessCount, result.ErrorCount)
	return result, nil
}

// buildDocuments derives the composite identity for each record. Records
// with no usable sequence number are counted and skipped: without an
// identity there is nothing to retry.
func (s *syncService) buildDocuments(records []model.LegacyRecord, attachments map[string][]model.Attachment) ([]*model.MailDocument, int) {
	var docs []*model.MailDocument
	skipped := 0

	for _, record := range records {
		sequence := sequenceValue(record)
		if sequence == "" {
			// Only log a sample to avoid flooding when many rows are invalid.
			if skipped%10 == 0 {
				s.logger.Warnf("Skipping record without a sequence number (sample): %.120v", record.Values)
			}
			skipped++
			continue
		}

		year := extractYear(record)
		safeSequence := strings.ReplaceAll(sequence, "/", "-")

		docs = append(docs, &model.MailDocument{
			ID:          fmt.Sprintf("%d_%s", year, safeSequence),
			Year:        year,
			SequenceID:  sequence,
			Attachments: attachments[sequence],
			Fields:      record.Values,
		})
	}
	return docs, skipped
}

// commitDocuments flushes staged writes in batches below the store's hard
// limit. A batch boundary never splits a record; on failure the count that
// made it in is reported and the rest is left uncommitted.
func (s *syncService) commitDocuments(ctx context.Context, docs []*model.MailDocument) (*model.SyncResult, error) {
	result := &model.SyncResult{}
	for start := 0; start < len(docs); start += s.batchSize {
		end := min(start+s.batchSize, len(docs))
		if err := s.mails.CommitBatch(ctx, docs[start:end]); err != nil {
			return result, err
		}
		result.SuccessCount += end - start
	}
	return result, nil
}

// resolveAttachments reads the attachments side table, if the legacy
// database has one, and uploads each referenced file once. Upload failures
// skip the single attachment with a warning and never abort the pass.
func (s *syncService) resolveAttachments(ctx context.Context, db LegacyDB, tables []string, sys *model.SystemConfig) map[string][]model.Attachment {
	table := findTable(tables, attachTableCandidates)
	if table == "" {
		return nil
	}

	rows, err := db.ReadAll(table)
	if err != nil {
		s.logger.Warnf("Failed to read attachments table %q: %v", table, err)
		return nil
	}

	year := sys.TargetYear
	if year == 0 {
		year = time.Now().Year()
	}

	resolved := make(map[string][]model.Attachment)
	for _, row := range rows {
		sequence := sequenceValue(row)
		name := firstValue(row, attachNameCandidates)
		path := firstValue(row, attachPathCandidates)
		if sequence == "" || name == "" {
			continue
		}

		// Stable per-record name prevents duplicate uploads across passes.
		driveName := fmt.Sprintf("%d_%s_%s", year, sequence, name)
		att, err := s.uploader.GetOrUpload(ctx, path, driveName, sys.DriveFolderID)
		if err != nil {
			s.logger.Warnf("Skipping attachment %s: %v", name, err)
			continue
		}
		att.FileName = name
		resolved[sequence] = append(resolved[sequence], *att)
	}
	return resolved
}

// exportSnapshot writes the reconciled documents to a JSON file and pushes
// it to Drive under a stable file ID, so the dashboard has a failover source
// when the primary store is unreachable. Snapshot problems are warnings; the
// pass itself has already succeeded.
func (s *syncService) exportSnapshot(ctx context.Context, docs []*model.MailDocument, sys *model.SystemConfig) {
	if len(docs) == 0 {
		return
	}

	payload := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		payload = append(payload, doc.Data())
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warnf("Failed to encode backup snapshot: %v", err)
		return
	}

	year := sys.TargetYear
	if year == 0 {
		year = time.Now().Year()
	}
	name := fmt.Sprintf("latest_data_%d.json", year)
	path := filepath.Join(os.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Warnf("Failed to write backup snapshot: %v", err)
		return
	}
	defer os.Remove(path)

	fileID := sys.BackupJSONID
	if fileID == "" {
		fileID = s.backupFileID
	}
	if fileID == "" {
		if existing, err := s.uploader.FindByName(ctx, name, sys.DriveFolderID); err == nil && existing != nil {
			fileID = existing.DriveFileID
		}
	}

	var att *model.Attachment
	if fileID != "" {
		att, err = s.uploader.Replace(ctx, fileID, path)
	} else {
		att, err = s.uploader.Upload(ctx, path, name, sys.DriveFolderID)
	}
	if err != nil {
		s.logger.Warnf("Backup snapshot upload failed: %v", err)
		return
	}

	downloadLink := fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", att.DriveFileID)
	if err := s.config.Update(ctx, map[string]any{
		"backup_json_url": downloadLink,
		"backup_json_id":  att.DriveFileID,
	}); err != nil {
		s.logger.Warnf("Failed to record backup snapshot location: %v", err)
	}
}

// sequenceValue locates the sequence-number field: first non-empty candidate
// column wins. The raw value is the human-visible identifier.
func sequenceValue(record model.LegacyRecord) string {
	return firstValue(record, sequenceFieldCandidates)
}

func firstValue(record model.LegacyRecord, candidates []string) string {
	for _, column := range candidates {
		if v := record.GetString(column); v != "" {
			return v
		}
	}
	return ""
}

// extractYear scans the date-bearing columns in priority order. A 4-digit
// year token anywhere in the value wins (legacy dates are often free text,
// e.g. "12 Januari 2026"); generic date parsing is the fallback, and the
// current calendar year the last resort.
func extractYear(record model.LegacyRecord) int {
	for _, field := range dateFieldCandidates {
		raw, ok := record.Get(field)
		if !ok || raw == nil {
			continue
		}

		if match := yearToken.FindString(model.ToString(raw)); match != "" {
			year, _ := strconv.Atoi(match)
			return year
		}
		if seconds, ok := model.NormalizeDate(raw); ok {
			return time.Unix(seconds, 0).Year()
		}
	}
	return time.Now().Year()
}

// findTable returns the first candidate present in tables, or "".
func findTable(tables []string, candidates []string) string {
	for _, candidate := range candidates {
		for _, table := range tables {
			if table == candidate {
				return table
			}
		}
	}
	return ""
}

// detectMailTable picks the mail table: first well-known candidate name,
// otherwise the first table that is not a system table.
func detectMailTable(tables []string) string {
	if table := findTable(tables, mailTableCandidates); table != "" {
		return table
	}
	for _, table := range tables {
		if !strings.HasPrefix(table, "MSys") && !strings.HasPrefix(table, "sqlite_") {
			return table
		}
	}
	return ""
}
