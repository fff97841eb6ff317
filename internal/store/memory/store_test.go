package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"mailtrack-bridge/internal/model"
)

func TestCommitBatchMergeSemantics(t *testing.T) {
	// Setup
	store := NewInMemoryMailStore()
	ctx := context.Background()

	err := store.CommitBatch(ctx, []*model.MailDocument{
		{ID: "2026_45", Year: 2026, SequenceID: "45", Fields: map[string]any{
			"PERIHAL":   "Undangan",
			"DISPOSISI": "Kabag Umum",
		}},
	})
	assert.NoError(t, err)

	// A later commit without DISPOSISI must not erase it
	err = store.CommitBatch(ctx, []*model.MailDocument{
		{ID: "2026_45", Year: 2026, SequenceID: "45", Fields: map[string]any{
			"PERIHAL": "Undangan Rapat",
		}},
	})
	assert.NoError(t, err)

	data := store.Raw("2026_45")
	assert.Equal(t, "Undangan Rapat", data["PERIHAL"])
	assert.Equal(t, "Kabag Umum", data["DISPOSISI"])
	assert.Equal(t, 1, store.Len())
}

func TestByYearAndByID(t *testing.T) {
	// Setup
	store := NewInMemoryMailStore()
	ctx := context.Background()

	err := store.CommitBatch(ctx, []*model.MailDocument{
		{ID: "2026_45", Year: 2026, SequenceID: "45", Fields: map[string]any{"PERIHAL": "a"}},
		{ID: "2026_46", Year: 2026, SequenceID: "46", Fields: map[string]any{"PERIHAL": "b"}},
		{ID: "2025_99", Year: 2025, SequenceID: "99", Fields: map[string]any{"PERIHAL": "c"}},
	})
	assert.NoError(t, err)

	docs, err := store.ByYear(ctx, 2026)
	assert.NoError(t, err)
	assert.Len(t, docs, 2)

	doc, err := store.ByID(ctx, "2025_99")
	assert.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Equal(t, 2025, doc.Year)
	assert.Equal(t, "99", doc.SequenceID)
	assert.Equal(t, "c", doc.Fields["PERIHAL"])

	// Absent is (nil, nil), not an error
	doc, err = store.ByID(ctx, "2024_1")
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestConfigStoreUpdatePublishesSnapshot(t *testing.T) {
	// Setup
	store := NewInMemoryConfigStore()
	ctx := context.Background()

	ch, err := store.Watch(ctx)
	assert.NoError(t, err)

	assert.NoError(t, store.Update(ctx, map[string]any{"accessDbPath": "C:/data/surat.accdb"}))
	cfg := <-ch
	assert.Equal(t, "C:/data/surat.accdb", cfg.LegacyDBPath)

	// Rapid updates coalesce to the latest state
	assert.NoError(t, store.Update(ctx, map[string]any{"targetYear": 2025}))
	assert.NoError(t, store.Update(ctx, map[string]any{"targetYear": 2026}))
	cfg = <-ch
	assert.Equal(t, 2026, cfg.TargetYear)
	assert.Equal(t, "C:/data/surat.accdb", cfg.LegacyDBPath)
}

func TestManualSyncTriggerCoalesces(t *testing.T) {
	// Setup
	store := NewInMemoryConfigStore()
	ch, err := store.WatchManualSync(context.Background())
	assert.NoError(t, err)

	// Three rapid requests collapse into one pending signal
	store.TriggerManualSync()
	store.TriggerManualSync()
	store.TriggerManualSync()

	<-ch
	select {
	case <-ch:
		t.Fatal("expected coalesced trigger, got a second signal")
	default:
	}
}
