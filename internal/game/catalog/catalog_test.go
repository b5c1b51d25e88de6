package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gempswccg/swccg-server/internal/game/action"
	"github.com/gempswccg/swccg-server/internal/game/cards"
	"github.com/gempswccg/swccg-server/internal/game/catalog"
	"github.com/gempswccg/swccg-server/internal/game/state"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
cards:
  - id: "1"
    title: "Rebel Trooper"
    type: Character
    attributes:
      power: 1
  - id: "2"
    title: "Tatooine"
    type: Location
`)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	c := catalog.New()
	require.NoError(t, c.LoadDirectory(dir))
	assert.Equal(t, 2, c.Len())

	def, ok := c.Definition("1")
	require.True(t, ok)
	assert.Equal(t, "Rebel Trooper", def.Title)
	power, ok := def.Attribute("power")
	assert.True(t, ok)
	assert.Equal(t, 1, power)

	defs := c.Definitions()
	assert.Equal(t, "1", defs[0].ID)
	assert.Equal(t, "2", defs[1].ID)
}

func TestLoadDirectoryRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "cards:\n  - id: x\n    colour: red\n")
	assert.Error(t, catalog.New().LoadDirectory(dir))
}

func TestLoadDirectoryRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "cards:\n  - id: x\n")
	writeFile(t, dir, "b.yaml", "cards:\n  - id: x\n")
	assert.Error(t, catalog.New().LoadDirectory(dir))
}

func TestLoadDirectoryMissing(t *testing.T) {
	assert.Error(t, catalog.New().LoadDirectory(filepath.Join(t.TempDir(), "missing")))
}

func TestBlueprints(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.RegisterBlueprint(action.Blueprint{Key: "a"}))
	assert.Error(t, c.RegisterBlueprint(action.Blueprint{Key: "a"}))
	assert.Error(t, c.RegisterBlueprint(action.Blueprint{}))

	require.NoError(t, c.AddDefinition(&state.Definition{ID: "x", Abilities: []string{"a", "missing"}}))
	assert.Error(t, c.AddDefinition(&state.Definition{}))

	def, _ := c.Definition("x")
	bps := c.BlueprintsFor(def)
	require.Len(t, bps, 1)
	assert.Equal(t, "a", bps[0].Key)

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestBundledCatalogIsComplete(t *testing.T) {
	c := catalog.New()
	require.NoError(t, c.LoadDirectory(filepath.Join("..", "..", "..", "data", "cards")))
	require.NoError(t, cards.Register(c))
	assert.NoError(t, c.Validate())

	def, ok := c.Definition("220_10")
	require.True(t, ok)
	assert.Equal(t, cards.TitleThrownBack, def.Title)
	assert.Len(t, c.BlueprintsFor(def), 1)
}
