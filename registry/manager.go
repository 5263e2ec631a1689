package registry

import (
	"fmt"
	"sort"

	"github.com/pacco-io/pacco/settings"
	"github.com/pacco-io/pacco/storage"
)

// Manager is the top-level collection of named registries on one storage
// backend. Registry names are unique within a manager; credentials and
// location travel with the backend handle, never through process state.
type Manager struct {
	store storage.Backend
}

// NewManager creates a manager over the backend's root directory
func NewManager(store storage.Backend) *Manager {
	return &Manager{store: store}
}

// List returns the names of all registries in sorted order
func (m *Manager) List() ([]string, error) {
	names, err := m.store.List()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Add creates a new registry declaring the given parameters
func (m *Manager) Add(name string, params []string) (*Registry, error) {
	if !settings.ValidName(name) {
		return nil, fmt.Errorf("invalid registry name %q: %w", name, settings.ErrInvalidFormat)
	}
	// reject a bad schema before touching storage
	if _, err := settings.EncodeSchema(params); err != nil {
		return nil, err
	}
	if err := m.store.MakeDir(name); err != nil {
		return nil, fmt.Errorf("registry %q: %w", name, err)
	}
	return NewRegistry(name, m.store.Scoped(name), params)
}

// Get opens an existing registry, adopting its stored parameter schema
func (m *Manager) Get(name string) (*Registry, error) {
	names, err := m.List()
	if err != nil {
		return nil, err
	}
	if !contains(names, name) {
		return nil, fmt.Errorf("registry %q: %w", name, storage.ErrNotFound)
	}
	return NewRegistry(name, m.store.Scoped(name), nil)
}

// Remove recursively deletes a registry and every binary in it
func (m *Manager) Remove(name string) error {
	if err := m.store.RemoveDir(name); err != nil {
		return fmt.Errorf("registry %q: %w", name, err)
	}
	return nil
}
