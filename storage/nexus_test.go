package storage_test

import (
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pacco-io/pacco/storage"
)

// mockNexus emulates the slice of a nexus raw-hosted site repository pacco
// relies on: HTML directory listings, implicit directory creation on file
// POST, and recursive DELETE of directory prefixes.
type mockNexus struct {
	username string
	password string

	mu    sync.Mutex
	files map[string][]byte
}

func newMockNexus() *mockNexus {
	return &mockNexus{
		username: "admin",
		password: "admin123",
		files:    map[string][]byte{},
	}
}

func (m *mockNexus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != m.username || pass != m.password {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	path := r.URL.Path
	switch r.Method {
	case http.MethodGet:
		if strings.HasSuffix(path, "/") {
			m.serveListing(w, path)
			return
		}
		data, ok := m.files[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	case http.MethodPost:
		data, err := ioutil.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		m.files[path] = data
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		if strings.HasSuffix(path, "/") {
			removed := false
			for name := range m.files {
				if strings.HasPrefix(name, path) {
					delete(m.files, name)
					removed = true
				}
			}
			if !removed {
				http.NotFound(w, r)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if _, ok := m.files[path]; !ok {
			http.NotFound(w, r)
			return
		}
		delete(m.files, path)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (m *mockNexus) serveListing(w http.ResponseWriter, dir string) {
	children := map[string]bool{}
	for name := range m.files {
		if !strings.HasPrefix(name, dir) {
			continue
		}
		rest := strings.TrimPrefix(name, dir)
		if idx := strings.Index(rest, "/"); idx >= 0 {
			children[rest[:idx+1]] = true
		} else {
			children[rest] = true
		}
	}
	if len(children) == 0 && dir != "/" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprint(w, `<html><body><table><tr><th>Name</th></tr>`)
	fmt.Fprint(w, `<tr><td><a href="../">Parent Directory</a></td></tr>`)
	for _, name := range names {
		fmt.Fprintf(w, `<tr><td><a href=%q>%s</a></td></tr>`, name, name)
	}
	fmt.Fprint(w, `</table></body></html>`)
}

func newTestNexus(t *testing.T) (*storage.Nexus, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(newMockNexus())
	t.Cleanup(srv.Close)

	n, err := storage.NewNexus(srv.URL+"/", "admin", "admin123")
	if err != nil {
		t.Fatal(err)
	}
	return n, srv
}

func TestNewNexusValidatesURL(t *testing.T) {
	bad := []string{
		"http://repo.example.com/pacco", // no trailing slash
		"ftp://repo.example.com/",
		"repo.example.com/",
		"",
	}
	for _, url := range bad {
		if _, err := storage.NewNexus(url, "", ""); err == nil {
			t.Errorf("url %q: expected an error", url)
		}
	}

	good := []string{
		"http://repo.example.com/",
		"https://repo.example.com:8081/pacco/",
		"http://127.0.0.1:8081/nested/repo-1.2/",
	}
	for _, url := range good {
		if _, err := storage.NewNexus(url, "", ""); err != nil {
			t.Errorf("url %q: unexpected error: %s", url, err)
		}
	}
}

func TestNexusBadCredentialsSurfaceAsConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(newMockNexus())
	defer srv.Close()

	n, err := storage.NewNexus(srv.URL+"/", "admin", "wrong")
	if err != nil {
		t.Fatal(err)
	}

	_, err = n.List()
	if !errors.Is(err, storage.ErrConnection) {
		t.Fatalf("expected ErrConnection, got: %v", err)
	}
	var connErr *storage.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected a *ConnectionError, got: %v", err)
	}
	if connErr.Status != http.StatusUnauthorized {
		t.Errorf("expected status %d, got: %d", http.StatusUnauthorized, connErr.Status)
	}
}

func TestNexusPlaceholderIsHidden(t *testing.T) {
	n, _ := newTestNexus(t)

	if err := n.MakeDir("openssl"); err != nil {
		t.Fatal(err)
	}

	// the placeholder file materializing the directory must not appear as
	// an entry at either level
	names, err := n.List()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"openssl"}, names); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}

	names, err = n.Scoped("openssl").List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("expected an empty listing, got: %v", names)
	}
}

func TestNexusScopedHandleURL(t *testing.T) {
	n, _ := newTestNexus(t)

	if err := n.MakeDir("lib"); err != nil {
		t.Fatal(err)
	}
	scoped := n.Scoped("lib")
	if err := scoped.ReplacePayload([]byte("payload bytes")); err != nil {
		t.Fatal(err)
	}

	// a fresh handle scoped to the same entry sees the payload
	again := n.Scoped("lib")
	data, err := again.FetchPayload()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload bytes" {
		t.Errorf("unexpected payload: %q", data)
	}
}
