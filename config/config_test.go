package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadMissingFile(t *testing.T) {
	cfg, err := ReadFromFile(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Default != "" || len(cfg.Remotes) != 0 {
		t.Errorf("expected the default config, got: %v", cfg)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &Config{
		Default: "team",
		Remotes: map[string]*Remote{
			"team": {
				Type:     RemoteTypeNexus,
				URL:      "http://repo.example.com/pacco/",
				Username: "admin",
				Password: "admin123",
			},
			"scratch": {
				Type: RemoteTypeLocal,
				Path: "/tmp/pacco-scratch",
			},
		},
	}

	if err := cfg.WriteToFile(path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		description string
		cfg         *Config
		err         bool
	}{
		{"empty config", DefaultConfig(), false},
		{"valid local remote",
			&Config{Remotes: map[string]*Remote{"r": {Type: RemoteTypeLocal}}}, false},
		{"valid nexus remote",
			&Config{Remotes: map[string]*Remote{"r": {Type: RemoteTypeNexus, URL: "http://x.com/"}}}, false},
		{"unknown remote type",
			&Config{Remotes: map[string]*Remote{"r": {Type: "ftp"}}}, true},
		{"missing remote type",
			&Config{Remotes: map[string]*Remote{"r": {}}}, true},
		{"nexus remote without url",
			&Config{Remotes: map[string]*Remote{"r": {Type: RemoteTypeNexus}}}, true},
		{"default names a missing remote",
			&Config{Default: "ghost", Remotes: map[string]*Remote{}}, true},
	}

	for i, c := range cases {
		err := c.cfg.Validate()
		if c.err && err == nil {
			t.Errorf("case %d %s: expected an error", i, c.description)
		}
		if !c.err && err != nil {
			t.Errorf("case %d %s: unexpected error: %s", i, c.description, err)
		}
	}
}

func TestConfigCopy(t *testing.T) {
	cfg := &Config{
		Default: "team",
		Remotes: map[string]*Remote{
			"team": {Type: RemoteTypeNexus, URL: "http://x.com/", Username: "u", Password: "p"},
		},
	}
	cpy := cfg.Copy()
	if diff := cmp.Diff(cfg, cpy); diff != "" {
		t.Fatalf("copy mismatch (-want +got):\n%s", diff)
	}

	cpy.Remotes["team"].URL = "http://y.com/"
	if cfg.Remotes["team"].URL != "http://x.com/" {
		t.Error("editing the copy affected the original")
	}
}

func TestWriteCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	if err := DefaultConfig().WriteToFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFromFile(path); err != nil {
		t.Fatal(err)
	}
}
