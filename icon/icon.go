// Package icon renders UI symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/key"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants lists the accepted values of icons.variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, squares}
}

// Icon identifies a symbol.
type Icon int

const (
	Play Icon = iota + 1
	Pause
	Loading
	Fail
	Success
	Repeat
	Sequence
	Mark
	Arrow
	Book
)

type variants struct {
	emoji   string
	nerd    string
	plain   string
	squares string
}

var icons = map[Icon]*variants{
	Play:     {emoji: "▶️", nerd: "", plain: ">", squares: "▶"},
	Pause:    {emoji: "⏸️", nerd: "", plain: "||", squares: "⏸"},
	Loading:  {emoji: "⏳", nerd: "", plain: "...", squares: "◌"},
	Fail:     {emoji: "❌", nerd: "", plain: "x", squares: "▣"},
	Success:  {emoji: "✅", nerd: "", plain: "+", squares: "■"},
	Repeat:   {emoji: "🔁", nerd: "", plain: "r", squares: "↻"},
	Sequence: {emoji: "⏭️", nerd: "", plain: ">>", squares: "⏭"},
	Mark:     {emoji: "🔊", nerd: "", plain: "*", squares: "▪"},
	Arrow:    {emoji: "➡️", nerd: "", plain: "->", squares: "→"},
	Book:     {emoji: "📖", nerd: "", plain: "#", squares: "□"},
}

func (v *variants) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return v.emoji
	case nerd:
		return v.nerd
	case plain:
		return v.plain
	case squares:
		return v.squares
	default:
		return ""
	}
}

// Get renders i, or returns an empty string for an unknown icon or variant.
func Get(i Icon) string {
	v, ok := icons[i]
	if !ok {
		return ""
	}
	return v.get()
}
