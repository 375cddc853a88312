// Package cmd implements the tilawah command-line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/color"
	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/icon"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/log"
	"github.com/tilawah-cli/tilawah/player"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/style"
	"github.com/tilawah-cli/tilawah/tui"
	"github.com/tilawah-cli/tilawah/version"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icon variant: "+strings.Join(icon.AvailableVariants(), ", "))
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("reciter", "r", "", "Reciter id, see `tilawah reciters`")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("reciter", completionReciters))
	lo.Must0(viper.BindPFlag(key.QuranReciter, rootCmd.PersistentFlags().Lookup("reciter")))

	rootCmd.PersistentFlags().StringP("backend", "b", "", "Audio backend: "+strings.Join(player.Backends(), ", "))
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("backend", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return player.Backends(), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.PlayerBackend, rootCmd.PersistentFlags().Lookup("backend")))

	rootCmd.Flags().StringP("surah", "s", "", "Open the reader on this surah, by number or name")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify(context.Background())
	})
}

var rootCmd = &cobra.Command{
	Use:   constant.Tilawah,
	Short: "Read and listen to the Qur'an in your terminal",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.Gold).Render("    - Read and listen to the Qur'an in your terminal"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.SetContext(cmd.Context())
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies()

		options := tui.Options{Surah: mo.None[int]()}
		if arg := lo.Must(cmd.Flags().GetString("surah")); arg != "" {
			s, err := findSurah(cmd.Context(), arg)
			handleErr(err)
			options.Surah = mo.Some(s.Number)
		}

		handleErr(tui.Run(&options))
	},
}

// Execute runs the command selected by the arguments.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiYellow + cc.Bold + cc.Underline,
			Commands:      cc.HiCyan + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

func newClient() *quran.Client {
	return quran.NewClient(
		viper.GetString(key.QuranAPIURL),
		time.Duration(viper.GetInt(key.QuranCacheLifetime))*time.Hour,
	)
}

// findSurah resolves a number or a (possibly misspelled) name against the surah index.
func findSurah(ctx context.Context, arg string) (*quran.Surah, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	surahs, err := newClient().Surahs(ctx)
	if err != nil {
		return nil, err
	}

	s, ok := quran.Find(surahs, arg).Get()
	if !ok {
		return nil, fmt.Errorf("%w: %s", quran.ErrSurahNotFound, style.Fg(color.Red)(arg))
	}
	return s, nil
}

func completionReciters(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Map(quran.Reciters, func(r quran.Reciter, _ int) string {
		return r.ID + "\t" + r.Name
	}), cobra.ShellCompDirectiveNoFileComp
}
