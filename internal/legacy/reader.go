package legacy

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/model"
	"mailtrack-bridge/internal/service"
)

// ErrNotFound reports that the legacy database file does not exist at the
// configured path.
var ErrNotFound = errors.New("legacy database file not found")

type connector struct {
	logger *logger.Logger
}

// NewConnector returns a LegacyConnector reading file-based databases through
// database/sql. The file is opened read-only; the bridge never writes to the
// legacy source.
func NewConnector(logger *logger.Logger) service.LegacyConnector {
	return &connector{logger: logger}
}

func (c *connector) Open(path string) (service.LegacyDB, error) {
	absolute := path
	if !filepath.IsAbs(path) {
		resolved, err := filepath.Abs(path)
		if err == nil {
			absolute = resolved
		}
	}

	if _, err := os.Stat(absolute); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at path: %s", ErrNotFound, absolute)
		}
		return nil, fmt.Errorf("failed to stat legacy database: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+absolute+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}

	// Surface locked/corrupt files now instead of on the first query.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read legacy database %s: %w", absolute, err)
	}

	c.logger.Info("Connected to legacy database:", absolute)
	return &legacyDB{db: db, logger: c.logger}, nil
}

type legacyDB struct {
	db     *sql.DB
	logger *logger.Logger
}

func (l *legacyDB) TableNames() ([]string, error) {
	rows, err := l.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (l *legacyDB) Columns(table string) ([]string, error) {
	rows, err := l.db.Query(fmt.Sprintf("SELECT * FROM %q LIMIT 0", table))
	if err != nil {
		return nil, fmt.Errorf("table %q not found: %w", table, err)
	}
	defer rows.Close()
	return rows.Columns()
}

func (l *legacyDB) ReadAll(table string) ([]model.LegacyRecord, error) {
	rows, err := l.db.Query(fmt.Sprintf("SELECT * FROM %q", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %q: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []model.LegacyRecord
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %q: %w", table, err)
		}

		values := make(map[string]any, len(columns))
		for i, col := range columns {
			values[col] = normalizeScalar(raw[i])
		}
		records = append(records, model.LegacyRecord{Columns: columns, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	l.logger.Infof("Retrieved %d records from %s", len(records), table)
	return records, nil
}

func (l *legacyDB) Close() error {
	return l.db.Close()
}

// normalizeScalar converts driver-specific value shapes into the scalar set
// the rest of the bridge works with (string, int64, float64, bool, time).
func normalizeScalar(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
