package config

import (
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// recognized remote types
const (
	// RemoteTypeLocal stores registries in a directory on the local
	// filesystem
	RemoteTypeLocal = "local"
	// RemoteTypeNexus stores registries on a Nexus raw-hosted site
	// repository
	RemoteTypeNexus = "nexus_site"
)

// Remote is the definition of one configured storage location
type Remote struct {
	// Type selects the storage backend: "local" or "nexus_site"
	Type string `json:"remote_type" yaml:"remote_type"`
	// Path roots a local remote. Empty means the default pacco directory
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// URL locates a nexus_site remote, trailing slash included
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Username and Password authenticate against a nexus_site remote
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Validate validates all fields of the remote, returning the first error
// found
func (cfg *Remote) Validate() error {
	schema := jsonschema.Must(`{
    "$schema": "http://json-schema.org/draft-06/schema#",
    "title": "Remote",
    "description": "Definition of one configured pacco storage location",
    "type": "object",
    "required": ["remote_type"],
    "properties": {
      "remote_type": {
        "description": "storage backend selector",
        "type": "string",
        "enum": ["local", "nexus_site"]
      },
      "path": { "type": "string" },
      "url": { "type": "string" },
      "username": { "type": "string" },
      "password": { "type": "string" }
    }
  }`)
	if err := validate(schema, cfg); err != nil {
		return err
	}

	if cfg.Type == RemoteTypeNexus && cfg.URL == "" {
		return fmt.Errorf("nexus_site remote needs a url")
	}
	return nil
}

// Copy returns a deep copy of the Remote struct
func (cfg *Remote) Copy() *Remote {
	res := &Remote{
		Type:     cfg.Type,
		Path:     cfg.Path,
		URL:      cfg.URL,
		Username: cfg.Username,
		Password: cfg.Password,
	}
	return res
}

// validate is a helper wrapping json.Marshal and ValidateBytes
func validate(rs *jsonschema.RootSchema, s interface{}) error {
	strct, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("error marshaling remote to json: %s", err)
	}
	if errs, err := rs.ValidateBytes(strct); len(errs) > 0 {
		return fmt.Errorf("%s", errs[0])
	} else if err != nil {
		return err
	}
	return nil
}
