// Package settings implements the canonical string encoding pacco uses to
// address binaries. A registry declares a parameter schema (an ordered set of
// parameter names), and each stored binary is identified by an assignment: a
// complete key/value mapping over that schema. Both are encoded into storage
// entry names, so encoding must be deterministic and bijective: sorting before
// joining makes the token independent of map iteration order, guaranteeing one
// canonical name per assignment.
package settings

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	// Separator joins encoded fields. It is disallowed inside parameter
	// names and values.
	Separator = "=="
	// SchemaPrefix marks the entry recording a registry's parameter schema.
	SchemaPrefix = "__params"
)

// ErrInvalidFormat is returned for tokens, names, and values that don't
// conform to the encoding grammar
var ErrInvalidFormat = errors.New("settings: invalid format")

var tokenRE = regexp.MustCompile(`^[\w\-.]+$`)

// ValidName reports whether s can be used as a parameter name, value, or
// registry name. The character set excludes both "=" and the separator.
func ValidName(s string) bool {
	return tokenRE.MatchString(s)
}

// Assignment is a complete key/value mapping over a registry's parameter
// schema, identifying one binary
type Assignment map[string]string

// Keys gives the assignment's parameter names in sorted order
func (a Assignment) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Copy returns a new assignment with the same contents
func (a Assignment) Copy() Assignment {
	cpy := make(Assignment, len(a))
	for k, v := range a {
		cpy[k] = v
	}
	return cpy
}

// String formats the assignment in the comma-separated form used on the
// command line: "compiler=clang,os=osx"
func (a Assignment) String() string {
	pairs := make([]string, 0, len(a))
	for _, k := range a.Keys() {
		pairs = append(pairs, k+"="+a[k])
	}
	return strings.Join(pairs, ",")
}

// EncodeSchema canonicalizes a parameter list into a schema marker token:
// "__params==compiler==os==version"
func EncodeSchema(names []string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("schema needs at least one parameter: %w", ErrInvalidFormat)
	}
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	for i, name := range sorted {
		if !ValidName(name) {
			return "", fmt.Errorf("invalid parameter name %q: %w", name, ErrInvalidFormat)
		}
		if i > 0 && sorted[i-1] == name {
			return "", fmt.Errorf("duplicate parameter name %q: %w", name, ErrInvalidFormat)
		}
	}
	return strings.Join(append([]string{SchemaPrefix}, sorted...), Separator), nil
}

// DecodeSchema parses a schema marker token back into its parameter list
func DecodeSchema(token string) ([]string, error) {
	if !IsSchemaToken(token) {
		return nil, fmt.Errorf("%q is not a schema token: %w", token, ErrInvalidFormat)
	}
	names := strings.Split(token, Separator)[1:]
	for _, name := range names {
		if !ValidName(name) {
			return nil, fmt.Errorf("invalid parameter name %q in schema token: %w", name, ErrInvalidFormat)
		}
	}
	sort.Strings(names)
	return names, nil
}

// IsSchemaToken reports whether an entry name is a schema marker
func IsSchemaToken(token string) bool {
	return strings.HasPrefix(token, SchemaPrefix+Separator)
}

// EncodeAssignment canonicalizes an assignment into a storage token:
// "compiler=clang==os=osx==version=1.0". Pairs are sorted by key, so two
// assignments with equal contents always encode to the same token.
func EncodeAssignment(a Assignment) (string, error) {
	if len(a) == 0 {
		return "", fmt.Errorf("assignment needs at least one pair: %w", ErrInvalidFormat)
	}
	pairs := make([]string, 0, len(a))
	for _, k := range a.Keys() {
		v := a[k]
		if !ValidName(k) {
			return "", fmt.Errorf("invalid parameter name %q: %w", k, ErrInvalidFormat)
		}
		if !ValidName(v) {
			return "", fmt.Errorf("invalid value %q for parameter %q: %w", v, k, ErrInvalidFormat)
		}
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, Separator), nil
}

// DecodeAssignment parses an assignment token. Tokens that don't match the
// strict key=value grammar are rejected, so schema markers and unrelated
// entries never misparse as assignments.
func DecodeAssignment(token string) (Assignment, error) {
	if token == "" {
		return nil, fmt.Errorf("empty assignment token: %w", ErrInvalidFormat)
	}
	a := Assignment{}
	for _, pair := range strings.Split(token, Separator) {
		parts := strings.Split(pair, "=")
		if len(parts) != 2 || !ValidName(parts[0]) || !ValidName(parts[1]) {
			return nil, fmt.Errorf("invalid assignment token %q: %w", token, ErrInvalidFormat)
		}
		if _, ok := a[parts[0]]; ok {
			return nil, fmt.Errorf("duplicate parameter %q in token %q: %w", parts[0], token, ErrInvalidFormat)
		}
		a[parts[0]] = parts[1]
	}
	return a, nil
}

// ParseAssignment reads the comma-separated settings grammar used on the
// command line: "os=osx,compiler=clang,version=1.0". A single trailing comma
// is tolerated.
func ParseAssignment(s string) (Assignment, error) {
	a := Assignment{}
	for _, pair := range strings.Split(strings.TrimSuffix(s, ","), ",") {
		parts := strings.Split(pair, "=")
		if len(parts) != 2 || !ValidName(parts[0]) || !ValidName(parts[1]) {
			return nil, fmt.Errorf("invalid settings string %q: %w", s, ErrInvalidFormat)
		}
		if _, ok := a[parts[0]]; ok {
			return nil, fmt.Errorf("duplicate setting %q in %q: %w", parts[0], s, ErrInvalidFormat)
		}
		a[parts[0]] = parts[1]
	}
	return a, nil
}

// ParseParams reads a comma-separated list of bare parameter names:
// "os,compiler,version"
func ParseParams(s string) ([]string, error) {
	names := strings.Split(strings.TrimSuffix(s, ","), ",")
	seen := map[string]bool{}
	for _, name := range names {
		if !ValidName(name) {
			return nil, fmt.Errorf("invalid parameter name %q: %w", name, ErrInvalidFormat)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate parameter name %q: %w", name, ErrInvalidFormat)
		}
		seen[name] = true
	}
	sort.Strings(names)
	return names, nil
}
