package failover

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/model"
	"mailtrack-bridge/internal/store/memory"
)

func snapshotServer(t *testing.T, rows string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(rows))
	}))
}

func TestMailsForYearPrimary(t *testing.T) {
	// Setup: a reachable primary store
	mails := memory.NewInMemoryMailStore()
	config := memory.NewInMemoryConfigStore()
	assert.NoError(t, config.Update(context.Background(), map[string]any{"accessDbPath": "surat.accdb"}))
	assert.NoError(t, mails.CommitBatch(context.Background(), []*model.MailDocument{
		{ID: "2026_45", Year: 2026, SequenceID: "45", Fields: map[string]any{"PERIHAL": "a"}},
		{ID: "2026_102", Year: 2026, SequenceID: "102", Fields: map[string]any{"PERIHAL": "b"}},
		{ID: "2026_7", Year: 2026, SequenceID: "7", Fields: map[string]any{"PERIHAL": "c"}},
	}))

	reader := NewReader(mails, config, NewNotifier(), "", time.Second, logger.New())

	docs, err := reader.MailsForYear(context.Background(), 2026)
	assert.NoError(t, err)
	assert.Len(t, docs, 3)

	// Newest (highest sequence) first
	assert.Equal(t, "102", docs[0].SequenceID)
	assert.Equal(t, "45", docs[1].SequenceID)
	assert.Equal(t, "7", docs[2].SequenceID)
	assert.False(t, reader.Notifier().Active())
}

func TestMailsForYearFallsBackToSnapshot(t *testing.T) {
	// Setup: the primary probe fails, the snapshot endpoint answers
	server := snapshotServer(t, `[
		{"id": "2026_45", "year": 2026, "sequenceId": "45", "PERIHAL": "from snapshot"},
		{"id": "2026_46", "year": 2026, "sequenceId": "46", "PERIHAL": "newer"},
		{"id": "2025_9", "year": 2025, "sequenceId": "9", "PERIHAL": "other year"}
	]`)
	defer server.Close()

	config := memory.NewInMemoryConfigStore()
	config.GetFunc = func(ctx context.Context) (*model.SystemConfig, error) {
		return nil, errors.New("rpc error: code = Unavailable")
	}

	reader := NewReader(memory.NewInMemoryMailStore(), config, NewNotifier(), server.URL, time.Second, logger.New())

	docs, err := reader.MailsForYear(context.Background(), 2026)
	assert.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "46", docs[0].SequenceID)
	assert.Equal(t, "from snapshot", docs[1].Fields["PERIHAL"])
	assert.True(t, reader.Notifier().Active())
}

func TestBackupModeIsEdgeTriggered(t *testing.T) {
	// Setup: a primary that can be switched off and on
	server := snapshotServer(t, `[{"id": "2026_45", "year": 2026, "sequenceId": "45"}]`)
	defer server.Close()

	down := true
	mails := memory.NewInMemoryMailStore()
	config := memory.NewInMemoryConfigStore()
	config.GetFunc = func(ctx context.Context) (*model.SystemConfig, error) {
		if down {
			return nil, errors.New("rpc error: code = Unavailable")
		}
		return &model.SystemConfig{}, nil
	}

	notifier := NewNotifier()
	reader := NewReader(mails, config, notifier, server.URL, time.Second, logger.New())
	events, cancel := notifier.Subscribe()
	defer cancel()

	// Initial state delivered on subscription
	assert.False(t, <-events)

	// Two failing reads: one transition event, not two
	_, err := reader.MailsForYear(context.Background(), 2026)
	assert.NoError(t, err)
	_, err = reader.MailsForYear(context.Background(), 2026)
	assert.NoError(t, err)
	assert.True(t, <-events)
	select {
	case v := <-events:
		t.Fatalf("expected edge-triggered events, got repeat: %v", v)
	default:
	}

	// Recovery flips it back exactly once
	down = false
	_, err = reader.MailsForYear(context.Background(), 2026)
	assert.NoError(t, err)
	assert.False(t, <-events)
	assert.False(t, notifier.Active())
}

func TestMailByIDNormalizesLegacyIDs(t *testing.T) {
	// Setup
	mails := memory.NewInMemoryMailStore()
	config := memory.NewInMemoryConfigStore()
	assert.NoError(t, config.Update(context.Background(), map[string]any{"accessDbPath": "surat.accdb"}))
	assert.NoError(t, mails.CommitBatch(context.Background(), []*model.MailDocument{
		{ID: "2025_100", Year: 2025, SequenceID: "100", Fields: map[string]any{"PERIHAL": "arsip"}},
	}))

	reader := NewReader(mails, config, NewNotifier(), "", time.Second, logger.New())

	// The legacy hyphenated convention resolves to the same document
	doc, err := reader.MailByID(context.Background(), "100-2025")
	assert.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Equal(t, "2025_100", doc.ID)

	doc, err = reader.MailByID(context.Background(), "2025_100")
	assert.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestSnapshotLocationPrefersLastSeenConfig(t *testing.T) {
	// Setup: a healthy probe caches the published snapshot URL, which wins
	// over the static fallback once the store goes down.
	server := snapshotServer(t, `[{"id": "2026_45", "year": 2026, "sequenceId": "45"}]`)
	defer server.Close()

	down := false
	config := memory.NewInMemoryConfigStore()
	config.GetFunc = func(ctx context.Context) (*model.SystemConfig, error) {
		if down {
			return nil, errors.New("rpc error: code = Unavailable")
		}
		return &model.SystemConfig{BackupJSONURL: server.URL}, nil
	}

	reader := NewReader(memory.NewInMemoryMailStore(), config, NewNotifier(), "http://127.0.0.1:1/unreachable", time.Second, logger.New())

	// Healthy read caches the config
	_, err := reader.MailsForYear(context.Background(), 2026)
	assert.NoError(t, err)

	down = true
	docs, err := reader.MailsForYear(context.Background(), 2026)
	assert.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDirectDownloadURL(t *testing.T) {
	assert.Equal(t,
		"https://drive.google.com/uc?export=download&id=abc123",
		DirectDownloadURL("https://drive.google.com/file/d/abc123/view?usp=sharing"))
	assert.Equal(t,
		"https://drive.google.com/uc?export=download&id=abc123",
		DirectDownloadURL("https://drive.google.com/file/d/abc123"))

	// Non-Drive URLs pass through untouched
	assert.Equal(t, "https://example.com/snapshot.json", DirectDownloadURL("https://example.com/snapshot.json"))
}

func TestNormalizeSnapshotRow(t *testing.T) {
	// Current convention
	doc := NormalizeSnapshotRow(map[string]any{
		"id": "2026_45", "year": float64(2026), "sequenceId": "45", "PERIHAL": "a",
	})
	assert.NotNil(t, doc)
	assert.Equal(t, "2026_45", doc.ID)
	assert.Equal(t, 2026, doc.Year)
	assert.Equal(t, "a", doc.Fields["PERIHAL"])

	// Legacy snapshot: accessId field and hyphenated ID
	doc = NormalizeSnapshotRow(map[string]any{"id": "100-2025", "accessId": "100"})
	assert.NotNil(t, doc)
	assert.Equal(t, "2025_100", doc.ID)
	assert.Equal(t, 2025, doc.Year)
	assert.Equal(t, "100", doc.SequenceID)

	// Attachments survive JSON decoding
	doc = NormalizeSnapshotRow(map[string]any{
		"id": "2026_45", "sequenceId": "45",
		"attachments": []any{map[string]any{"fileName": "scan.pdf", "driveFileId": "abc"}},
	})
	assert.NotNil(t, doc)
	assert.Len(t, doc.Attachments, 1)
	assert.Equal(t, "scan.pdf", doc.Attachments[0].FileName)

	// No identity, no document
	assert.Nil(t, NormalizeSnapshotRow(map[string]any{"PERIHAL": "anon"}))
}

func TestSplitCompositeID(t *testing.T) {
	year, seq, ok := splitCompositeID("2026_45")
	assert.True(t, ok)
	assert.Equal(t, 2026, year)
	assert.Equal(t, "45", seq)

	year, seq, ok = splitCompositeID("100-2025")
	assert.True(t, ok)
	assert.Equal(t, 2025, year)
	assert.Equal(t, "100", seq)

	// Hyphens inside the sequence bind to the trailing year
	year, seq, ok = splitCompositeID("12-SK-2025")
	assert.True(t, ok)
	assert.Equal(t, 2025, year)
	assert.Equal(t, "12-SK", seq)

	_, _, ok = splitCompositeID("not-an-id")
	assert.False(t, ok)
	_, _, ok = splitCompositeID("45")
	assert.False(t, ok)
}
