package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/tilawah-cli/tilawah/icon"
	"github.com/tilawah-cli/tilawah/util"
	"github.com/tilawah-cli/tilawah/where"
)

type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"downloaded audio", "audio", mo.Some("a"), where.Audio},
	{"logs", "logs", mo.Some("l"), where.Logs},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if short, ok := target.argShort.Get(); ok {
			clearCmd.Flags().BoolP(target.argLong, short, false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached surahs, downloaded audio or logs",
	Run: func(cmd *cobra.Command, args []string) {
		var cleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}
			cleared = true

			size, _ := util.DirSize(target.location())
			erase := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Loading), target.name))
			err := util.Delete(target.location())
			erase()
			handleErr(err)

			cmd.Printf("%s %s cleared (%s)\n", icon.Get(icon.Success), lo.Capitalize(target.name), humanize.IBytes(uint64(size)))
		}

		if !cleared {
			handleErr(cmd.Help())
		}
	},
}
