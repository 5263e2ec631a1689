// Package spec defines a conformance test suite for storage.Backend
// implementations. Backend tests should pass AssertBackend a fresh, empty
// handle; the suite exercises the full capability contract against it.
package spec

import (
	"bytes"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pacco-io/pacco/storage"
)

// AssertBackend confirms the passed-in Backend implementation behaves as the
// capability contract expects, calling t.Error for every violation it finds.
// The handle must refer to an existing, empty directory.
func AssertBackend(t *testing.T, b storage.Backend) {
	t.Helper()

	names, err := b.List()
	if err != nil {
		t.Fatalf("listing an empty directory: %s", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected an empty listing, got: %v", names)
	}

	if err := b.MakeDir("alpha"); err != nil {
		t.Fatalf("creating entry: %s", err)
	}
	if err := b.MakeDir("beta"); err != nil {
		t.Fatalf("creating second entry: %s", err)
	}
	if err := b.MakeDir("alpha"); !errors.Is(err, storage.ErrExists) {
		t.Errorf("creating a present entry: expected ErrExists, got: %v", err)
	}

	names, err = b.List()
	if err != nil {
		t.Fatalf("listing: %s", err)
	}
	sort.Strings(names)
	if diff := cmp.Diff([]string{"alpha", "beta"}, names); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}

	// a scoped handle is permanently bound to its child entry
	scoped := b.Scoped("alpha")
	if err := scoped.MakeDir("nested"); err != nil {
		t.Errorf("creating a nested entry via a scoped handle: %s", err)
	}
	names, err = scoped.List()
	if err != nil {
		t.Fatalf("listing via a scoped handle: %s", err)
	}
	if diff := cmp.Diff([]string{"nested"}, names); diff != "" {
		t.Errorf("scoped listing mismatch (-want +got):\n%s", diff)
	}

	// payload transfer on the scoped handle
	if _, err := scoped.FetchPayload(); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("fetching a never-written payload: expected ErrNotFound, got: %v", err)
	}
	payload := []byte("the quick brown fox")
	if err := scoped.ReplacePayload(payload); err != nil {
		t.Fatalf("writing payload: %s", err)
	}
	got, err := scoped.FetchPayload()
	if err != nil {
		t.Fatalf("fetching payload: %s", err)
	}
	if !bytes.Equal(payload, got) {
		t.Errorf("payload mismatch. expected: %q, got: %q", payload, got)
	}

	// replace is wholesale: the second write wins completely
	payload = []byte("jumped over")
	if err := scoped.ReplacePayload(payload); err != nil {
		t.Fatalf("replacing payload: %s", err)
	}
	got, err = scoped.FetchPayload()
	if err != nil {
		t.Fatalf("fetching replaced payload: %s", err)
	}
	if !bytes.Equal(payload, got) {
		t.Errorf("replaced payload mismatch. expected: %q, got: %q", payload, got)
	}

	// removal is recursive, and reports missing entries
	if err := b.RemoveDir("alpha"); err != nil {
		t.Errorf("removing an entry with nested content: %s", err)
	}
	if err := b.RemoveDir("alpha"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("removing a missing entry: expected ErrNotFound, got: %v", err)
	}
	names, err = b.List()
	if err != nil {
		t.Fatalf("listing after removal: %s", err)
	}
	if diff := cmp.Diff([]string{"beta"}, names); diff != "" {
		t.Errorf("listing after removal mismatch (-want +got):\n%s", diff)
	}
}
