// Package storage defines the directory-oriented capability a pacco registry
// operates against, with a filesystem implementation and a Nexus-site HTTP
// implementation. A Backend is a cursor over one directory: it can enumerate,
// create, and recursively remove child entries, hand out a handle scoped to a
// child, and move payload bytes wholesale.
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the named entry (or the payload) doesn't exist
	ErrNotFound = errors.New("storage: entry not found")
	// ErrExists indicates the named entry is already present
	ErrExists = errors.New("storage: entry already exists")
	// ErrConnection indicates the remote store couldn't be reached, or
	// answered with a non-2xx status
	ErrConnection = errors.New("storage: connection failure")
)

// PayloadEntry is the reserved child entry name payload bytes live under.
// Registries must never create a directory entry with this name.
const PayloadEntry = "bin"

// Backend is the storage capability interface. Handles are value-like and
// independent: a handle returned by Scoped is bound permanently to its child
// entry and can't be re-pointed. Backends perform no locking; using one
// handle from multiple goroutines without external synchronization is
// unsupported.
type Backend interface {
	// List enumerates the names of entries in this directory
	List() ([]string, error)
	// MakeDir creates an empty child entry, failing with ErrExists if an
	// entry of that name is already present
	MakeDir(name string) error
	// RemoveDir recursively removes a child entry, failing with
	// ErrNotFound if no entry of that name exists
	RemoveDir(name string) error
	// Scoped returns a handle bound to the named child entry. The child
	// need not exist yet
	Scoped(name string) Backend
	// ReplacePayload removes any previous payload, then writes data under
	// the reserved payload entry. The two steps are not atomic: a failure
	// between them loses the previous payload without storing the new one
	ReplacePayload(data []byte) error
	// FetchPayload reads the payload back, failing with ErrNotFound if
	// nothing was ever written
	FetchPayload() ([]byte, error)
}

// ConnectionError is the error surfaced for non-2xx responses from a remote
// document store. It unwraps to ErrConnection.
type ConnectionError struct {
	URL    string
	Status int
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("storage: %s responded with status %d", e.URL, e.Status)
}

func (e *ConnectionError) Unwrap() error {
	return ErrConnection
}
