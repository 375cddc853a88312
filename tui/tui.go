// Package tui is the interactive surah browser and verse reader.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/player"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/util"
)

// Options configures the terminal user interface.
type Options struct {
	// Surah opens the reader on this surah instead of the surah list.
	Surah mo.Option[int]
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(options *Options) error {
	engine, err := player.New(viper.GetString(key.PlayerBackend), player.Options{
		MpvPath: viper.GetString(key.PlayerMpvPath),
		Title:   constant.Tilawah,
	})
	if err != nil {
		return err
	}
	defer util.Ignore(engine.Close)

	client := quran.NewClient(
		viper.GetString(key.QuranAPIURL),
		time.Duration(viper.GetInt(key.QuranCacheLifetime))*time.Hour,
	)

	bubble := newBubble(options, client, engine)
	program := tea.NewProgram(bubble, tea.WithAltScreen())

	// Playback callbacks fire on arbitrary goroutines, including the one running Update.
	bubble.send = func(msg tea.Msg) {
		go program.Send(msg)
	}

	_, err = program.Run()
	bubble.closePage()
	return err
}
