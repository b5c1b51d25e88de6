// Package cards registers the ability blueprints of individual cards. Each
// blueprint is data expressed against the action, effects and modifiers
// packages; none of it changes how the core resolves abilities.
package cards

import (
	"fmt"

	"github.com/gempswccg/swccg-server/internal/game/action"
	"github.com/gempswccg/swccg-server/internal/game/catalog"
	"github.com/gempswccg/swccg-server/internal/game/filter"
)

// Card titles referenced by other cards' text.
const (
	TitleThrownBack = "Thrown Back (V)"
	TitleMonnok     = "Monnok"
	TitleDrop       = "Drop!"
)

// Blueprint keys referenced from catalog definitions.
const (
	KeyThrownBack = "thrown_back_v"
	KeyMonnok     = "monnok"
	KeyDrop       = "drop"
)

// monnokOrDrop matches the interrupts Thrown Back (V) protects against.
var monnokOrDrop = filter.TitleIn(TitleMonnok, TitleDrop)

// Blueprints returns every blueprint in this package.
func Blueprints() []action.Blueprint {
	return []action.Blueprint{
		ThrownBack(),
		Monnok(),
		Drop(),
	}
}

// Register adds every blueprint to the catalog.
func Register(c *catalog.Catalog) error {
	for _, bp := range Blueprints() {
		if err := c.RegisterBlueprint(bp); err != nil {
			return fmt.Errorf("register %s: %w", bp.Key, err)
		}
	}
	return nil
}
