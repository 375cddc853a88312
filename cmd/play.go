package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/icon"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/playback"
	"github.com/tilawah-cli/tilawah/player"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/reader"
	"github.com/tilawah-cli/tilawah/style"
	"github.com/tilawah-cli/tilawah/util"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("verses", "V", "", `Verses to recite one after another, e.g. "1-7" or "1,3,5-7". All when empty`)
	playCmd.Flags().BoolP("full", "f", false, "Play the full-surah recitation instead of single verses")
	playCmd.Flags().Bool("replay", false, "Replay the full surah after it ends, until interrupted")
	playCmd.Flags().BoolP("pick", "p", false, "Pick the reciter interactively")
	playCmd.MarkFlagsMutuallyExclusive("verses", "full")

	playCmd.SetOut(os.Stdout)
}

var playCmd = &cobra.Command{
	Use:   "play <surah>",
	Short: "Recite a surah without the TUI",
	Long: `Recite a surah without the TUI.
The surah may be given by number or by name; close misspellings are accepted.`,
	Example: "  tilawah play 1\n  tilawah play al-kahf --verses 1-10\n  tilawah play yasin --full --reciter 03",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		surah, err := findSurah(ctx, args[0])
		handleErr(err)
		surah, err = newClient().Surah(ctx, surah.Number)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("pick")) {
			reciter, err := pickReciter(viper.GetString(key.QuranReciter))
			handleErr(err)
			viper.Set(key.QuranReciter, reciter)
		}

		full := lo.Must(cmd.Flags().GetBool("full"))
		var verses []int
		if !full {
			verses, err = quran.ParseVerses(lo.Must(cmd.Flags().GetString("verses")), len(surah.Verses))
			handleErr(err)
		}

		engine, err := player.New(viper.GetString(key.PlayerBackend), player.Options{
			MpvPath: viper.GetString(key.PlayerMpvPath),
			Title:   constant.Tilawah + " - " + surah.NameLatin,
		})
		handleErr(err)
		defer util.Ignore(engine.Close)

		options := reader.OptionsFromConfig()
		if cmd.Flags().Changed("replay") {
			options.ReplayOnEnd = lo.Must(cmd.Flags().GetBool("replay"))
		}

		handleErr(recite(ctx, cmd.OutOrStdout(), surah, engine, options, full, verses))
	},
}

// recite plays the full surah or the given verses and blocks until playback is over or ctx is done.
func recite(
	ctx context.Context,
	out io.Writer,
	surah *quran.Surah,
	factory reader.ElementFactory,
	options reader.Options,
	full bool,
	verses []int,
) error {
	var (
		once sync.Once
		done = make(chan struct{})
	)
	finish := func() { once.Do(func() { close(done) }) }

	width := terminalWidth()

	options.Navigate = func(id playback.ID) {
		if n, ok := quran.VerseNumber(id); ok {
			printVerse(out, surah, n, width)
		}
	}
	options.OnItemFailed = func(id playback.ID, err error) {
		_, _ = fmt.Fprintf(out, "%s %s skipped: %s\n", icon.Get(icon.Fail), id, playback.Message(err))
	}
	if !full {
		options.OnPlaylist = func(p playback.Playlist) {
			if !p.Active {
				finish()
			}
		}
	}

	page, err := reader.Open(surah, factory, options)
	if err != nil {
		return err
	}
	defer util.Ignore(page.Close)

	reciter := quran.ReciterByID(page.Reciter()).MustGet()

	if full {
		failed := make(chan error, 1)
		cancel := page.Watch(func(event playback.Event) {
			if event.ID != quran.FullID {
				return
			}
			if event.Kind == playback.EventFailed {
				select {
				case failed <- event.Err:
				default:
				}
				finish()
				return
			}
			if event.Kind == playback.EventStopped || !options.ReplayOnEnd {
				finish()
			}
		})
		defer cancel()

		_, _ = fmt.Fprintf(out, "%s %s recited by %s\n", icon.Get(icon.Play), style.Bold(surah.NameLatin), reciter.Name)
		if err := page.Play(ctx, quran.FullID); err != nil {
			return err
		}

		select {
		case <-done:
		case <-ctx.Done():
			page.Stop()
		}

		select {
		case err := <-failed:
			return err
		default:
			return nil
		}
	}

	_, _ = fmt.Fprintf(out, "%s %s, %s recited by %s\n",
		icon.Get(icon.Sequence),
		style.Bold(surah.NameLatin),
		util.Quantify(len(verses), "verse", "verses"),
		reciter.Name,
	)

	if err := page.StartSelection(ctx, verses); err != nil {
		return err
	}

	select {
	case <-done:
	case <-ctx.Done():
		page.Stop()
	}
	return nil
}

func printVerse(out io.Writer, surah *quran.Surah, n int, width int) {
	verse, ok := surah.Verse(n)
	if !ok {
		return
	}

	_, _ = fmt.Fprintf(out, "\n%s\n%s\n", style.Number(fmt.Sprintf("%d:%d", surah.Number, n)), style.Arabic(width)(verse.Arabic))
	if viper.GetBool(key.TUIShowLatin) && verse.Latin != "" {
		_, _ = fmt.Fprintln(out, style.Italic(wordwrap.String(verse.Latin, width)))
	}
	if viper.GetBool(key.TUIShowTranslation) && verse.Translation != "" {
		_, _ = fmt.Fprintln(out, style.Faint(wordwrap.String(verse.Translation, width)))
	}
}

func terminalWidth() int {
	width, _, err := util.TerminalSize()
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

var errNotInteractive = errors.New("cannot pick a reciter without a terminal")

func pickReciter(current string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errNotInteractive
	}

	names := lo.Map(quran.Reciters, func(r quran.Reciter, _ int) string { return r.Name })
	prompt := &survey.Select{
		Message: "Reciter",
		Options: names,
		Default: quran.ReciterByID(current).OrElse(quran.Reciters[len(quran.Reciters)-1]).Name,
	}

	var index int
	if err := survey.AskOne(prompt, &index); err != nil {
		return "", err
	}
	return quran.Reciters[index].ID, nil
}
