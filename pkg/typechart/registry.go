package typechart

import (
	"errors"
	"fmt"
	"strings"
)

// TypeEntry describes one of the eighteen elemental types along with the
// display metadata used by the web UI.
type TypeEntry struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	TextColor string `json:"textColor,omitempty"`
}

// registry lists every type in canonical game order. The slice is never
// mutated at runtime.
var registry = []TypeEntry{
	{Name: "normal", Color: "#A8A77A", TextColor: "#1F1F1F"},
	{Name: "fighting", Color: "#C22E28"},
	{Name: "flying", Color: "#A98FF3", TextColor: "#1F1F1F"},
	{Name: "poison", Color: "#A33EA1"},
	{Name: "ground", Color: "#E2BF65", TextColor: "#1F1F1F"},
	{Name: "rock", Color: "#B6A136", TextColor: "#1F1F1F"},
	{Name: "bug", Color: "#A6B91A", TextColor: "#1F1F1F"},
	{Name: "ghost", Color: "#735797"},
	{Name: "steel", Color: "#B7B7CE", TextColor: "#1F1F1F"},
	{Name: "fire", Color: "#EE8130"},
	{Name: "water", Color: "#6390F0"},
	{Name: "grass", Color: "#7AC74C", TextColor: "#1F1F1F"},
	{Name: "electric", Color: "#F7D02C", TextColor: "#1F1F1F"},
	{Name: "psychic", Color: "#F95587"},
	{Name: "ice", Color: "#96D9D6", TextColor: "#1F1F1F"},
	{Name: "dragon", Color: "#6F35FC"},
	{Name: "dark", Color: "#705746"},
	{Name: "fairy", Color: "#D685AD", TextColor: "#1F1F1F"},
}

// Types returns the full registry in canonical order.
func Types() []TypeEntry {
	entries := make([]TypeEntry, len(registry))
	copy(entries, registry)
	return entries
}

var ErrUnknownType = errors.New("no matching type")

// TypeByName looks up a type entry by name, ignoring case.
func TypeByName(name string) (TypeEntry, error) {
	lower := strings.ToLower(name)
	for _, entry := range registry {
		if entry.Name == lower {
			return entry, nil
		}
	}

	return TypeEntry{}, fmt.Errorf("type %q not found: %w", name, ErrUnknownType)
}

// IsType reports whether name refers to a known type, ignoring case.
func IsType(name string) bool {
	_, err := TypeByName(name)
	return err == nil
}
