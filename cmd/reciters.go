package cmd

import (
	"encoding/json"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/icon"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/style"
)

func init() {
	rootCmd.AddCommand(recitersCmd)
	recitersCmd.Flags().BoolP("json", "j", false, "Print as JSON")
	recitersCmd.SetOut(os.Stdout)
}

var recitersCmd = &cobra.Command{
	Use:   "reciters",
	Short: "List the reciters audio is available for",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(quran.Reciters))
			return
		}

		current := viper.GetString(key.QuranReciter)
		for _, r := range quran.Reciters {
			marker := " "
			if r.ID == current {
				marker = icon.Get(icon.Mark)
			}
			cmd.Printf("%s %s %s\n", marker, style.Number(r.ID), r.Name)
		}
	},
}
