// Package catalog holds the card definitions and ability blueprints every
// match reads from. It is populated once at startup and read-only afterwards.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gempswccg/swccg-server/internal/game/action"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

// Catalog maps definition IDs to definitions and blueprint keys to blueprints.
type Catalog struct {
	defs       map[string]*state.Definition
	blueprints map[string]action.Blueprint
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		defs:       make(map[string]*state.Definition),
		blueprints: make(map[string]action.Blueprint),
	}
}

// AddDefinition registers a card definition.
func (c *Catalog) AddDefinition(def *state.Definition) error {
	if def == nil || def.ID == "" {
		return errors.New("definition must have an id")
	}
	if _, exists := c.defs[def.ID]; exists {
		return fmt.Errorf("duplicate definition %q", def.ID)
	}
	c.defs[def.ID] = def
	return nil
}

// RegisterBlueprint registers the abilities a definition may reference by key.
func (c *Catalog) RegisterBlueprint(bp action.Blueprint) error {
	if bp.Key == "" {
		return errors.New("blueprint must have a key")
	}
	if _, exists := c.blueprints[bp.Key]; exists {
		return fmt.Errorf("duplicate blueprint %q", bp.Key)
	}
	c.blueprints[bp.Key] = bp
	return nil
}

// Definition returns the definition for id.
func (c *Catalog) Definition(id string) (*state.Definition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// Definitions returns every definition sorted by ID.
func (c *Catalog) Definitions() []*state.Definition {
	out := make([]*state.Definition, 0, len(c.defs))
	for _, def := range c.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Blueprint returns the blueprint registered under key.
func (c *Catalog) Blueprint(key string) (action.Blueprint, bool) {
	bp, ok := c.blueprints[key]
	return bp, ok
}

// BlueprintsFor returns the blueprints a definition contributes, in the
// order the definition lists them.
func (c *Catalog) BlueprintsFor(def *state.Definition) []action.Blueprint {
	if def == nil {
		return nil
	}
	out := make([]action.Blueprint, 0, len(def.Abilities))
	for _, key := range def.Abilities {
		if bp, ok := c.blueprints[key]; ok {
			out = append(out, bp)
		}
	}
	return out
}

// Validate reports every definition that references an unregistered blueprint.
func (c *Catalog) Validate() error {
	var errs []error
	for _, def := range c.Definitions() {
		for _, key := range def.Abilities {
			if _, ok := c.blueprints[key]; !ok {
				errs = append(errs, fmt.Errorf("definition %q references unknown blueprint %q", def.ID, key))
			}
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

type cardFile struct {
	Cards []*state.Definition `yaml:"cards"`
}

// LoadDirectory reads every *.yaml file in dir into the catalog.
// Each file holds a top-level "cards" list.
func (c *Catalog) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading catalog dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		var file cardFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, def := range file.Cards {
			if err := c.AddDefinition(def); err != nil {
				return fmt.Errorf("loading %q: %w", path, err)
			}
		}
	}
	return nil
}
