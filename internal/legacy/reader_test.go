package legacy

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"mailtrack-bridge/internal/logger"
)

// seedDatabase creates a small legacy-shaped database file for the test.
func seedDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "surat.db")
	db, err := sql.Open("sqlite3", path)
	assert.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE Mails ("NO URUT" TEXT, "TANGGAL SURAT MASUK" TEXT, "PERIHAL" TEXT)`)
	assert.NoError(t, err)
	_, err = db.Exec(`INSERT INTO Mails VALUES ('45', '12 Januari 2026', 'Undangan Rapat'), ('46', '2026-01-13', 'Laporan Bulanan')`)
	assert.NoError(t, err)
	return path
}

func TestConnectorReadsLegacyDatabase(t *testing.T) {
	// Setup
	path := seedDatabase(t)
	connector := NewConnector(logger.New())

	db, err := connector.Open(path)
	assert.NoError(t, err)
	defer db.Close()

	tables, err := db.TableNames()
	assert.NoError(t, err)
	assert.Contains(t, tables, "Mails")

	columns, err := db.Columns("Mails")
	assert.NoError(t, err)
	assert.Equal(t, []string{"NO URUT", "TANGGAL SURAT MASUK", "PERIHAL"}, columns)

	records, err := db.ReadAll("Mails")
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "45", records[0].GetString("NO URUT"))
	assert.Equal(t, "Undangan Rapat", records[0].GetString("PERIHAL"))
}

func TestConnectorMissingFile(t *testing.T) {
	connector := NewConnector(logger.New())

	_, err := connector.Open(filepath.Join(t.TempDir(), "missing.accdb"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestColumnsUnknownTable(t *testing.T) {
	// Setup
	path := seedDatabase(t)
	connector := NewConnector(logger.New())

	db, err := connector.Open(path)
	assert.NoError(t, err)
	defer db.Close()

	_, err = db.Columns("NoSuchTable")
	assert.Error(t, err)
}
