package registry

import (
	"fmt"

	"github.com/pacco-io/pacco/settings"
	"github.com/pacco-io/pacco/storage"
)

// Parameter evolution rewrites the recorded assignment of every existing
// binary so key sets stay consistent with the schema, then swaps the schema
// marker. The policy is rewrite-first: all markers are rewritten before the
// schema is persisted, and the migration aborts on the first failure. There
// is no rollback log, so an abort can leave some binaries already relabeled;
// the error surfaces either way, partial completion is never reported as
// success.

// AddParam declares a new parameter, recording defaultValue for every
// existing binary
func (r *Registry) AddParam(name, defaultValue string) error {
	if !settings.ValidName(name) {
		return fmt.Errorf("invalid parameter name %q: %w", name, settings.ErrInvalidFormat)
	}
	if !settings.ValidName(defaultValue) {
		return fmt.Errorf("invalid default value %q for parameter %q: %w", defaultValue, name, settings.ErrInvalidFormat)
	}
	if contains(r.params, name) {
		return fmt.Errorf("parameter %q: %w", name, storage.ErrExists)
	}

	newParams := sortedCopy(append(sortedCopy(r.params), name))
	return r.migrate(newParams, func(a settings.Assignment) settings.Assignment {
		b := a.Copy()
		b[name] = defaultValue
		return b
	})
}

// RemoveParam drops a parameter, removing its key from every existing
// binary's assignment. Removal fails up front when two assignments would
// collapse into one, since that would break the one-location-per-assignment
// mapping.
func (r *Registry) RemoveParam(name string) error {
	if !contains(r.params, name) {
		return fmt.Errorf("parameter %q: %w", name, storage.ErrNotFound)
	}
	if len(r.params) == 1 {
		return fmt.Errorf("registry %q: cannot remove the last parameter: %w", r.name, settings.ErrInvalidFormat)
	}

	newParams := make([]string, 0, len(r.params)-1)
	for _, p := range r.params {
		if p != name {
			newParams = append(newParams, p)
		}
	}
	return r.migrate(newParams, func(a settings.Assignment) settings.Assignment {
		b := a.Copy()
		delete(b, name)
		return b
	})
}

// RenameParam renames a parameter, carrying each binary's value over to the
// new key
func (r *Registry) RenameParam(old, new string) error {
	if !contains(r.params, old) {
		return fmt.Errorf("parameter %q: %w", old, storage.ErrNotFound)
	}
	if !settings.ValidName(new) {
		return fmt.Errorf("invalid parameter name %q: %w", new, settings.ErrInvalidFormat)
	}
	if contains(r.params, new) {
		return fmt.Errorf("parameter %q: %w", new, storage.ErrExists)
	}

	newParams := make([]string, 0, len(r.params))
	for _, p := range r.params {
		if p != old {
			newParams = append(newParams, p)
		}
	}
	newParams = sortedCopy(append(newParams, new))
	return r.migrate(newParams, func(a settings.Assignment) settings.Assignment {
		b := a.Copy()
		b[new] = b[old]
		delete(b, old)
		return b
	})
}

// migrate relabels every binary through transform, then swaps the schema
// marker and adopts newParams in memory
func (r *Registry) migrate(newParams []string, transform func(settings.Assignment) settings.Assignment) error {
	oldSchemaToken, err := settings.EncodeSchema(r.params)
	if err != nil {
		return err
	}
	newSchemaToken, err := settings.EncodeSchema(newParams)
	if err != nil {
		return err
	}

	mapping, err := r.entries()
	if err != nil {
		return err
	}

	type relabel struct {
		entry    string
		oldToken string
		newToken string
	}
	relabels := make([]relabel, 0, len(mapping))
	projected := map[string]string{}
	for oldToken, entry := range mapping {
		a, err := settings.DecodeAssignment(oldToken)
		if err != nil {
			return err
		}
		newToken, err := settings.EncodeAssignment(transform(a))
		if err != nil {
			return err
		}
		if prev, ok := projected[newToken]; ok {
			return fmt.Errorf("registry %q: assignments %q and %q would collapse to %q: %w",
				r.name, prev, oldToken, newToken, storage.ErrExists)
		}
		projected[newToken] = oldToken
		relabels = append(relabels, relabel{entry: entry, oldToken: oldToken, newToken: newToken})
	}

	for _, rl := range relabels {
		if rl.oldToken == rl.newToken {
			continue
		}
		scoped := r.store.Scoped(rl.entry)
		if err := scoped.MakeDir(rl.newToken); err != nil {
			return fmt.Errorf("relabeling entry %q: %w", rl.entry, err)
		}
		if err := scoped.RemoveDir(rl.oldToken); err != nil {
			return fmt.Errorf("relabeling entry %q: %w", rl.entry, err)
		}
	}

	// swap the schema marker last. The registry is briefly undeclared
	// between the two calls; dying in that window means re-declaring the
	// registry with the new parameters.
	if err := r.store.RemoveDir(oldSchemaToken); err != nil {
		return err
	}
	if err := r.store.MakeDir(newSchemaToken); err != nil {
		return err
	}
	r.params = sortedCopy(newParams)
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
