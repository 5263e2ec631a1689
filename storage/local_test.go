package storage

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestNewLocalCreatesRoot(t *testing.T) {
	base := filepath.Join(t.TempDir(), "registries")
	if _, err := NewLocal(base); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(base)
	if err != nil {
		t.Fatal(err)
	}
	if !fi.IsDir() {
		t.Errorf("expected %s to be a directory", base)
	}
}

func TestLocalScopedIsBound(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.MakeDir("child"); err != nil {
		t.Fatal(err)
	}

	scoped := l.Scoped("child")
	if err := scoped.MakeDir("grandchild"); err != nil {
		t.Fatal(err)
	}

	// the child's entries must not leak into the parent's listing
	names, err := l.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "child" {
		t.Errorf("unexpected parent listing: %v", names)
	}
}

func TestLocalPayloadIsFile(t *testing.T) {
	base := t.TempDir()
	l, err := NewLocal(base)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.ReplacePayload([]byte("hi")); err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadFile(filepath.Join(base, PayloadEntry))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hi" {
		t.Errorf("unexpected payload file contents: %q", data)
	}
}

func TestLocalListMissingRoot(t *testing.T) {
	l := &Local{base: filepath.Join(t.TempDir(), "never-created")}
	if _, err := l.List(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
