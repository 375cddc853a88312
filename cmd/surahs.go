package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/style"
)

func init() {
	rootCmd.AddCommand(surahsCmd)

	surahsCmd.Flags().BoolP("json", "j", false, "Print as JSON")
	surahsCmd.Flags().Bool("schema", false, "Print the JSON schema of a surah and exit")
	surahsCmd.MarkFlagsMutuallyExclusive("json", "schema")

	surahsCmd.SetOut(os.Stdout)
}

var surahsCmd = &cobra.Command{
	Use:     "surahs [query]",
	Short:   "List surahs, optionally filtered by name or meaning",
	Aliases: []string{"ls"},
	Args:    cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("schema")) {
			reflector := new(jsonschema.Reflector)
			reflector.DoNotReference = true
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reflector.Reflect([]*quran.Surah{})))
			return
		}

		surahs, err := newClient().Surahs(cmd.Context())
		handleErr(err)

		if len(args) == 1 {
			surahs = quran.Search(surahs, args[0])
			if len(surahs) == 0 {
				handleErr(fmt.Errorf("%w: %s", quran.ErrSurahNotFound, args[0]))
			}
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(surahs))
			return
		}

		for _, s := range surahs {
			cmd.Println(surahLine(s))
		}
	},
}

func surahLine(s *quran.Surah) string {
	return fmt.Sprintf("%s %s %s %s",
		style.Number(fmt.Sprintf("%3d", s.Number)),
		style.Bold(s.NameLatin),
		style.Faint(fmt.Sprintf("(%s, %d verses, %s)", s.Meaning, s.VerseCount, strings.ToLower(s.Revelation))),
		s.Name,
	)
}
