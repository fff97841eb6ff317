package legacy

import (
	"mailtrack-bridge/internal/model"
	"mailtrack-bridge/internal/service"
)

// MockConnector is a mock implementation of LegacyConnector for testing
type MockConnector struct {
	OpenFunc func(path string) (service.LegacyDB, error)
}

func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (m *MockConnector) Open(path string) (service.LegacyDB, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(path)
	}

	// Default mock behavior: empty database
	return NewMockDB(), nil
}

// MockDB is a mock implementation of LegacyDB for testing
type MockDB struct {
	TableNamesFunc func() ([]string, error)
	ColumnsFunc    func(table string) ([]string, error)
	ReadAllFunc    func(table string) ([]model.LegacyRecord, error)
	CloseFunc      func() error

	Closed bool
}

func NewMockDB() *MockDB {
	return &MockDB{}
}

func (m *MockDB) TableNames() ([]string, error) {
	if m.TableNamesFunc != nil {
		return m.TableNamesFunc()
	}
	return []string{}, nil
}

func (m *MockDB) Columns(table string) ([]string, error) {
	if m.ColumnsFunc != nil {
		return m.ColumnsFunc(table)
	}
	return []string{}, nil
}

func (m *MockDB) ReadAll(table string) ([]model.LegacyRecord, error) {
	if m.ReadAllFunc != nil {
		return m.ReadAllFunc(table)
	}
	return []model.LegacyRecord{}, nil
}

func (m *MockDB) Close() error {
	m.Closed = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
