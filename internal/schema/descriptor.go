// Package schema checks LSP responses against lightweight shape descriptors.
//
// The check is shallow on purpose: it looks at whether a result is null,
// whether it is an array or an object, and whether required keys are
// present. Field values are never inspected.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind is the expected JSON shape of a result.
type Kind string

const (
	// KindAny places no constraint on the result's shape.
	KindAny Kind = ""
	// KindArray expects a JSON array.
	KindArray Kind = "array"
	// KindObject expects a JSON object.
	KindObject Kind = "object"
)

// ErrUnknownKind is returned for a descriptor kind other than array, object
// or empty.
var ErrUnknownKind = errors.New("schema: unknown kind")

// ParseKind converts a configuration value to a Kind. "scalar" and "any" are
// accepted as aliases for KindAny.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "scalar":
		return KindAny, nil
	case "array":
		return KindArray, nil
	case "object":
		return KindObject, nil
	default:
		return KindAny, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Descriptor is the expected shape of one method's result.
type Descriptor struct {
	Nullable bool
	Kind     Kind

	// ItemFields are the keys required in the first element of an array
	// result. Only the first element is sampled.
	ItemFields []string

	// RequiredFields are the keys required in an object result.
	RequiredFields []string
}

// Permissive is the descriptor used for methods without an entry: null is
// allowed and nothing else is checked.
var Permissive = Descriptor{Nullable: true}

func (d Descriptor) validate() error {
	switch d.Kind {
	case KindAny, KindArray, KindObject:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(d.Kind))
	}
}

// Table maps method names to descriptors.
type Table map[string]Descriptor

// Lookup returns the descriptor for method, or Permissive.
func (t Table) Lookup(method string) Descriptor {
	if d, ok := t[method]; ok {
		return d
	}
	return Permissive
}

// Methods returns the method names in the table, sorted.
func (t Table) Methods() []string {
	methods := make([]string, 0, len(t))
	for m := range t {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Validate reports the first descriptor with an unknown kind.
func (t Table) Validate() error {
	for _, m := range t.Methods() {
		if err := t[m].validate(); err != nil {
			return fmt.Errorf("schema for %s: %w", m, err)
		}
	}
	return nil
}

// Merge returns a new table with the entries of overrides replacing those of
// base. Neither input is modified.
func Merge(base, overrides Table) Table {
	merged := make(Table, len(base)+len(overrides))
	for m, d := range base {
		merged[m] = d
	}
	for m, d := range overrides {
		merged[m] = d
	}
	return merged
}
