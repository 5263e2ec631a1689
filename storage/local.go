package storage

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
)

// Local is a filesystem-backed Backend rooted at a fixed base path. Entries
// map 1:1 onto directories; the payload is a regular file named after the
// reserved payload entry.
type Local struct {
	base string
}

// assert at compile time that Local implements Backend
var _ Backend = (*Local)(nil)

// NewLocal creates a filesystem backend rooted at base, creating the base
// directory if it doesn't exist
func NewLocal(base string) (*Local, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("creating storage root %s: %s", base, err)
	}
	return &Local{base: base}, nil
}

// List enumerates entry names in the base directory
func (l *Local) List() ([]string, error) {
	fis, err := ioutil.ReadDir(l.base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", l.base, ErrNotFound)
		}
		return nil, err
	}
	names := make([]string, 0, len(fis))
	for _, fi := range fis {
		names = append(names, fi.Name())
	}
	return names, nil
}

// MakeDir creates the named child directory
func (l *Local) MakeDir(name string) error {
	if err := os.MkdirAll(l.base, 0755); err != nil {
		return err
	}
	if err := os.Mkdir(filepath.Join(l.base, name), 0755); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s: %w", name, ErrExists)
		}
		return err
	}
	return nil
}

// RemoveDir recursively removes the named child entry
func (l *Local) RemoveDir(name string) error {
	path := filepath.Join(l.base, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return err
	}
	return os.RemoveAll(path)
}

// Scoped returns a handle rooted at base/name
func (l *Local) Scoped(name string) Backend {
	return &Local{base: filepath.Join(l.base, name)}
}

// ReplacePayload removes any previous payload file, then writes data.
// Remove-then-write is not atomic: dying between the two steps leaves no
// payload behind.
func (l *Local) ReplacePayload(data []byte) error {
	path := filepath.Join(l.base, PayloadEntry)
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0644)
}

// FetchPayload reads the payload file back
func (l *Local) FetchPayload() ([]byte, error) {
	data, err := ioutil.ReadFile(filepath.Join(l.base, PayloadEntry))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no payload stored: %w", ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}
