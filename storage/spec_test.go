package storage_test

import (
	"testing"

	"github.com/pacco-io/pacco/storage"
	"github.com/pacco-io/pacco/storage/spec"
)

func TestLocalConformance(t *testing.T) {
	l, err := storage.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	spec.AssertBackend(t, l)
}

func TestNexusConformance(t *testing.T) {
	n, _ := newTestNexus(t)
	spec.AssertBackend(t, n)
}
