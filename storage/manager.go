package storage

import (
	"errors"
)

// Manager resolves a raw connection into the matching adapter and driver.
// Pass a *sql.DB (sqlite or pgx) or a *mongo.Database to Start.
type Manager struct {
	adapter Adapter
	driver  Driver
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Start(conn any) error {
	if conn == nil {
		return nil
	}
	a, err := lookupAdapter(conn)
	if err != nil {
		return err
	}
	d, err := lookupDriver(a)
	if err != nil {
		return err
	}
	m.adapter = a
	m.driver = d
	return nil
}

func (m *Manager) Adapter() Adapter { return m.adapter }
func (m *Manager) Driver() Driver   { return m.driver }
func (m *Manager) Dialect() string {
	if m.adapter == nil {
		return ""
	}
	return m.adapter.Dialect()
}

// Build applies pending schema migrations for the active driver.
func (m *Manager) Build() error {
	if m.driver == nil {
		return nil
	}
	return m.driver.Migrate()
}

// Repos returns the repo set of the active driver, or nil when no storage
// has been started.
func (m *Manager) Repos() Repos {
	if m.driver == nil {
		return nil
	}
	r, ok := m.driver.(Repos)
	if !ok {
		return nil
	}
	return r
}

var (
	ErrNoAdapter = errors.New("no adapter registered for connection type")

	// ErrNotFound is returned by lookups that matched no row/document.
	ErrNotFound = errors.New("storage: not found")
)
