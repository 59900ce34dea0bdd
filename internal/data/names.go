package data

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns an item or object type into player-facing text:
// "woodobject" → "Wood", "dungeon key" → "Dungeon Key".
func DisplayName(itemType string) string {
	name := strings.TrimSuffix(itemType, "object")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return itemType
	}
	// Casers are stateful, so one per call.
	return cases.Title(language.English).String(name)
}
