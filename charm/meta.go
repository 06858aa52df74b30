// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"io"
	"sort"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/names/v5"
	"gopkg.in/yaml.v3"
)

const (
	ScopeGlobal    = "global"
	ScopeContainer = "container"
)

// Relation describes a single relation declared in charm metadata.
type Relation struct {
	Interface string `yaml:"interface"`
	Optional  bool   `yaml:"optional,omitempty"`
	Limit     int    `yaml:"limit,omitempty"`
	Scope     string `yaml:"scope,omitempty"`
}

// Storage describes a single storage item declared in charm metadata.
type Storage struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
	ReadOnly    bool   `yaml:"read-only,omitempty"`
	Location    string `yaml:"location,omitempty"`
}

// Meta is the structured content of a charm's metadata that the event
// framework consumes. Producing it is a collaborator's job; ReadMeta
// is a convenience for the common yaml form.
type Meta struct {
	Name        string              `yaml:"name"`
	Summary     string              `yaml:"summary,omitempty"`
	Description string              `yaml:"description,omitempty"`
	Provides    map[string]Relation `yaml:"provides,omitempty"`
	Requires    map[string]Relation `yaml:"requires,omitempty"`
	Peers       map[string]Relation `yaml:"peers,omitempty"`
	Storage     map[string]Storage  `yaml:"storage,omitempty"`
	Subordinate bool                `yaml:"subordinate,omitempty"`
}

// ReadMeta reads the yaml content of a metadata file and returns its
// validated representation.
func ReadMeta(r io.Reader) (*Meta, error) {
	var meta Meta
	if err := yaml.NewDecoder(r).Decode(&meta); err != nil {
		return nil, errors.Annotate(err, "metadata")
	}
	if meta.Name == "" {
		return nil, errors.New("metadata: name not set")
	}
	if err := meta.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &meta, nil
}

// Validate returns an error if the metadata is not well formed.
func (m *Meta) Validate() error {
	if m.Name != "" && !names.IsValidApplication(m.Name) {
		return errors.Errorf("charm name %q not valid", m.Name)
	}
	seen := set.NewStrings()
	for _, role := range []struct {
		name      string
		relations map[string]Relation
	}{
		{"requires", m.Requires},
		{"provides", m.Provides},
		{"peers", m.Peers},
	} {
		for name, rel := range role.relations {
			if seen.Contains(name) {
				return errors.Errorf("relation name %q declared more than once", name)
			}
			seen.Add(name)
			if rel.Interface == "" {
				return errors.Errorf("%s relation %q has no interface", role.name, name)
			}
			switch rel.Scope {
			case "", ScopeGlobal, ScopeContainer:
			default:
				return errors.Errorf("%s relation %q has invalid scope %q", role.name, name, rel.Scope)
			}
		}
	}
	for name, stor := range m.Storage {
		if seen.Contains(name) {
			return errors.Errorf("storage name %q collides with a relation name", name)
		}
		if stor.Type == "" {
			return errors.Errorf("storage %q has no type", name)
		}
	}
	return nil
}

// RelationNames returns every declared relation name, requirers first,
// then providers, then peers, sorted within each role. The order is
// deterministic regardless of the map iteration order of the input,
// and fixes the enumeration order of the generated events.
func (m *Meta) RelationNames() []string {
	var all []string
	for _, relations := range []map[string]Relation{m.Requires, m.Provides, m.Peers} {
		names := make([]string, 0, len(relations))
		for name := range relations {
			names = append(names, name)
		}
		sort.Strings(names)
		all = append(all, names...)
	}
	return all
}

// StorageNames returns every declared storage name, sorted.
func (m *Meta) StorageNames() []string {
	names := make([]string, 0, len(m.Storage))
	for name := range m.Storage {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
