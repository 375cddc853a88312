package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/icon"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/style"
	"github.com/tilawah-cli/tilawah/util"
)

const (
	headerHeight = 3
	detailHeight = 8
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case surahsState:
		output = listExtraPaddingStyle.Render(b.surahsC.View())
	case versesState:
		output = b.viewVerses()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewVerses() string {
	if b.page == nil {
		return b.viewLoading()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		paddingStyle.PaddingBottom(0).Render(b.viewHeader()),
		listExtraPaddingStyle.Render(b.versesC.View()),
		paddingStyle.PaddingTop(0).Render(b.viewDetail()),
	)
}

func (b *statefulBubble) viewHeader() string {
	s := b.page.Surah()
	reciter := quran.ReciterByID(b.page.Reciter())

	title := style.Title(fmt.Sprintf("%d. %s", s.Number, s.NameLatin)) + " " + style.Faint(s.Name)

	var status []string
	if r, ok := reciter.Get(); ok {
		status = append(status, r.Name)
	}

	full := icon.Get(icon.Book) + " full surah"
	if ic := statusIcon(b.full.Status, b.full.Holder); ic != "" {
		full += " " + ic
	}
	if b.full.Holder && b.full.Duration > 0 {
		full += " " + style.Faint(util.FormatDuration(b.full.Duration))
	}
	if b.full.ReplayOnEnd {
		full += " " + icon.Get(icon.Repeat)
	}
	status = append(status, full)

	if current, ok := b.playing.Current().Get(); ok {
		status = append(status, style.Playing(fmt.Sprintf("%s %s (%d/%d)",
			icon.Get(icon.Sequence), current, b.playing.Index+1, len(b.playing.Items))))
	}

	return title + "\n" + style.Faint(strings.Join(status, " • "))
}

// viewDetail shows the selected verse in full, wrapped to the terminal width.
func (b *statefulBubble) viewDetail() string {
	item, ok := b.versesC.SelectedItem().(*listItem)
	if !ok {
		return ""
	}
	entry := item.internal.(*verseEntry)
	width := max(b.width, 20)

	lines := []string{style.Arabic(width)(wrap.String(wordwrap.String(entry.verse.Arabic, width), width))}
	if viper.GetBool(key.TUIShowLatin) {
		lines = append(lines, style.Italic(wordwrap.String(entry.verse.Latin, width)))
	}
	if viper.GetBool(key.TUIShowTranslation) {
		lines = append(lines, style.Faint(wordwrap.String(entry.verse.Translation, width)))
	}

	detail := strings.Split(strings.Join(lines, "\n"), "\n")
	if len(detail) > detailHeight {
		detail = append(detail[:detailHeight-1], style.Faint("…"))
	}
	return strings.Join(detail, "\n")
}

func (b *statefulBubble) viewError() string {
	errorMsg := wrap.String(style.Failed(b.lastError.Error()), b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
