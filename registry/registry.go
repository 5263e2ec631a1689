// Package registry implements pacco's domain model: a Manager holds named
// Registries, a Registry owns a parameter schema and maps settings
// assignments onto storage entries, and a Binary is a transient handle over
// one stored payload.
//
// Registries use indirect addressing. Each binary lives under a random
// fixed-length entry name; a nested marker entry named with the encoded
// assignment records which assignment the entry belongs to, and the payload
// lives under the reserved payload entry beside it. Entry naming therefore
// never depends on assignment content, which keeps backends with entry-name
// length or character restrictions out of trouble.
package registry

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	golog "github.com/ipfs/go-log"

	"github.com/pacco-io/pacco/settings"
	"github.com/pacco-io/pacco/storage"
)

var log = golog.Logger("registry")

// ErrWrongKeys indicates an assignment whose key set doesn't equal the
// registry's parameter schema
var ErrWrongKeys = errors.New("registry: assignment keys don't match declared parameters")

const (
	// entryNameLength is the length of the random names binaries are
	// stored under
	entryNameLength = 10
	// maxNameAttempts caps the retry loop on random-name collisions
	maxNameAttempts = 16
)

const entryNameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomName is a package variable so tests can pin name generation
var randomName = func(length int) string {
	name := make([]byte, length)
	for i := range name {
		name[i] = entryNameAlphabet[rand.Intn(len(entryNameAlphabet))]
	}
	return string(name)
}

func init() {
	rand.Seed(time.Now().UnixNano())
}

// Registry is a named collection of binaries sharing one parameter schema.
// The schema persisted on storage is authoritative: a caller-supplied schema
// only takes effect when none exists remotely.
type Registry struct {
	name   string
	store  storage.Backend
	params []string // sorted
}

// NewRegistry opens the registry stored on store, which must be scoped to
// the registry's own directory. When params is non-nil and no schema is
// declared on storage yet, params is persisted as the schema. When a schema
// is already declared, it wins; a differing caller schema is logged as a
// conflict, never an error. When neither exists the registry is undeclared
// and opening fails with ErrNotFound.
func NewRegistry(name string, store storage.Backend, params []string) (*Registry, error) {
	remote, err := readSchema(store)
	if err != nil {
		return nil, err
	}

	r := &Registry{name: name, store: store}
	switch {
	case remote != nil:
		if params != nil && !equalStrings(remote, sortedCopy(params)) {
			log.Warningf("registry %q already declares parameters %v, ignoring %v", name, remote, params)
		}
		r.params = remote
	case params != nil:
		token, err := settings.EncodeSchema(params)
		if err != nil {
			return nil, err
		}
		if err := store.MakeDir(token); err != nil {
			return nil, err
		}
		r.params = sortedCopy(params)
	default:
		return nil, fmt.Errorf("registry %q has no declared parameters, declare them explicitly: %w", name, storage.ErrNotFound)
	}
	return r, nil
}

// readSchema scans the registry directory for a schema marker, returning nil
// when none is declared
func readSchema(store storage.Backend) ([]string, error) {
	names, err := store.List()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if settings.IsSchemaToken(name) {
			return settings.DecodeSchema(name)
		}
	}
	return nil, nil
}

// Name returns the registry's name
func (r *Registry) Name() string {
	return r.name
}

// Params returns the registry's parameter names in sorted order
func (r *Registry) Params() []string {
	return sortedCopy(r.params)
}

func (r *Registry) String() string {
	return fmt.Sprintf("%s[%s]", r.name, strings.Join(r.params, ", "))
}

// checkKeys confirms an assignment's key set equals the schema exactly
func (r *Registry) checkKeys(a settings.Assignment) error {
	if !equalStrings(a.Keys(), r.params) {
		return fmt.Errorf("%v is not %v: %w", a.Keys(), r.params, ErrWrongKeys)
	}
	return nil
}

// entries maps each encoded assignment token to the entry name recording it.
// It is rebuilt from storage on every call; nothing is cached, so mutations
// by other processes show up on the next operation.
func (r *Registry) entries() (map[string]string, error) {
	names, err := r.store.List()
	if err != nil {
		return nil, err
	}

	mapping := map[string]string{}
	for _, name := range names {
		if settings.IsSchemaToken(name) {
			continue
		}
		children, err := r.store.Scoped(name).List()
		if err != nil {
			return nil, err
		}
		found := false
		for _, child := range children {
			if child == storage.PayloadEntry {
				continue
			}
			if _, err := settings.DecodeAssignment(child); err != nil {
				continue
			}
			mapping[child] = name
			found = true
		}
		if !found {
			log.Warningf("registry %q: entry %q has no assignment marker, skipping", r.name, name)
		}
	}
	return mapping, nil
}

// Assignments enumerates the assignment of every stored binary
func (r *Registry) Assignments() ([]settings.Assignment, error) {
	mapping, err := r.entries()
	if err != nil {
		return nil, err
	}
	as := make([]settings.Assignment, 0, len(mapping))
	for token := range mapping {
		a, err := settings.DecodeAssignment(token)
		if err != nil {
			return nil, err
		}
		as = append(as, a)
	}
	sort.Slice(as, func(i, j int) bool { return as[i].String() < as[j].String() })
	return as, nil
}

// AddBinary allocates storage for a new binary addressed by a. The entry
// name is random; on a collision with an existing name a bounded number of
// fresh names is tried before giving up. The presence check and the create
// are separate storage calls, so two concurrent adds for the same assignment
// can both pass the check; pacco assumes a single writer per registry.
func (r *Registry) AddBinary(a settings.Assignment) (*Binary, error) {
	if err := r.checkKeys(a); err != nil {
		return nil, err
	}
	token, err := settings.EncodeAssignment(a)
	if err != nil {
		return nil, err
	}
	mapping, err := r.entries()
	if err != nil {
		return nil, err
	}
	if _, ok := mapping[token]; ok {
		return nil, fmt.Errorf("binary %s: %w", a, storage.ErrExists)
	}

	name := ""
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := randomName(entryNameLength)
		err := r.store.MakeDir(candidate)
		if errors.Is(err, storage.ErrExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		name = candidate
		break
	}
	if name == "" {
		return nil, fmt.Errorf("registry %q: no unused entry name after %d attempts", r.name, maxNameAttempts)
	}

	scoped := r.store.Scoped(name)
	if err := scoped.MakeDir(token); err != nil {
		return nil, err
	}
	return &Binary{Assignment: a.Copy(), store: scoped}, nil
}

// GetBinary returns a handle over the binary addressed by a
func (r *Registry) GetBinary(a settings.Assignment) (*Binary, error) {
	name, err := r.resolve(a)
	if err != nil {
		return nil, err
	}
	return &Binary{Assignment: a.Copy(), store: r.store.Scoped(name)}, nil
}

// RemoveBinary deletes the binary addressed by a, payload included
func (r *Registry) RemoveBinary(a settings.Assignment) error {
	name, err := r.resolve(a)
	if err != nil {
		return err
	}
	return r.store.RemoveDir(name)
}

// resolve maps an assignment to its storage entry name
func (r *Registry) resolve(a settings.Assignment) (string, error) {
	if err := r.checkKeys(a); err != nil {
		return "", err
	}
	token, err := settings.EncodeAssignment(a)
	if err != nil {
		return "", err
	}
	mapping, err := r.entries()
	if err != nil {
		return "", err
	}
	name, ok := mapping[token]
	if !ok {
		return "", fmt.Errorf("binary %s: %w", a, storage.ErrNotFound)
	}
	return name, nil
}

// ReassignBinary re-labels the binary addressed by old with the assignment
// new. Only the nested marker is rewritten; payload bytes stay where they
// are. The new marker is created before the old one is removed, so an
// interruption leaves the binary reachable under at least one assignment.
func (r *Registry) ReassignBinary(old, new settings.Assignment) error {
	if err := r.checkKeys(old); err != nil {
		return err
	}
	if err := r.checkKeys(new); err != nil {
		return err
	}
	oldToken, err := settings.EncodeAssignment(old)
	if err != nil {
		return err
	}
	newToken, err := settings.EncodeAssignment(new)
	if err != nil {
		return err
	}
	mapping, err := r.entries()
	if err != nil {
		return err
	}
	name, ok := mapping[oldToken]
	if !ok {
		return fmt.Errorf("binary %s: %w", old, storage.ErrNotFound)
	}
	// reassigning a binary to its own assignment is a no-op, but only once
	// the binary is known to exist
	if oldToken == newToken {
		return nil
	}
	if _, ok := mapping[newToken]; ok {
		return fmt.Errorf("binary %s: %w", new, storage.ErrExists)
	}

	scoped := r.store.Scoped(name)
	if err := scoped.MakeDir(newToken); err != nil {
		return err
	}
	return scoped.RemoveDir(oldToken)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortedCopy(names []string) []string {
	cpy := make([]string, len(names))
	copy(cpy, names)
	sort.Strings(cpy)
	return cpy
}
