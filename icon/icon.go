// Package icon renders the status symbols of the CLI and the player.
//
// The variant comes from icons.variant: emoji, nerd-font glyphs, plain
// ASCII, kaomoji or unicode squares.
package icon

import (
	"github.com/vibe-audio/vibe/key"
	"github.com/spf13/viper"
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

var variants = map[string]func(*iconDef) string{
	"emoji":   func(d *iconDef) string { return d.emoji },
	"nerd":    func(d *iconDef) string { return d.nerd },
	"plain":   func(d *iconDef) string { return d.plain },
	"kaomoji": func(d *iconDef) string { return d.kaomoji },
	"squares": func(d *iconDef) string { return d.squares },
}

// AvailableVariants lists the accepted values of icons.variant.
func AvailableVariants() []string {
	return []string{"emoji", "nerd", "plain", "kaomoji", "squares"}
}

// Get renders the icon in the configured variant. Unknown variants render nothing.
func (d *iconDef) Get() string {
	pick, ok := variants[viper.GetString(key.IconsVariant)]
	if !ok {
		return ""
	}
	return pick(d)
}

// Get renders i from the registry.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.Get()
}
