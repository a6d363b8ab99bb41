package colour

import (
	"fmt"
	"slices"
	"strings"
)

// GradientSpec is a two-stop gradient. Dark pixels map towards Low and
// bright pixels towards High.
type GradientSpec struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Low     RGB      `json:"low"`
	High    RGB      `json:"high"`
}

// String returns a short description of the gradient.
func (g GradientSpec) String() string {
	return fmt.Sprintf("%s (%s -> %s)", g.Name, g.Low.Hex(), g.High.Hex())
}

// DefaultPreset is the preset used when none is selected.
const DefaultPreset = "ember"

// presets is the closed catalogue of gradients, in display order.
var presets = []GradientSpec{
	{
		Name:    "ember",
		Aliases: []string{"option1"},
		Low:     MustParseHex("#353745"),
		High:    MustParseHex("#FC5467"),
	},
	{
		Name:    "harbour",
		Aliases: []string{"option2"},
		Low:     MustParseHex("#2a3e81"),
		High:    MustParseHex("#9da5b3"),
	},
}

// Presets returns a copy of the preset catalogue.
func Presets() []GradientSpec {
	out := make([]GradientSpec, len(presets))
	for i, p := range presets {
		out[i] = p.clone()
	}
	return out
}

// PresetNames returns the canonical preset names in display order.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// LookupPreset resolves a preset by name or alias, case-insensitively.
func LookupPreset(name string) (GradientSpec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range presets {
		if p.Name == key || slices.Contains(p.Aliases, key) {
			return p.clone(), nil
		}
	}
	return GradientSpec{}, fmt.Errorf("unknown gradient preset %q (valid: %s)", name, strings.Join(PresetNames(), ", "))
}

func (g GradientSpec) clone() GradientSpec {
	g.Aliases = slices.Clone(g.Aliases)
	return g
}
