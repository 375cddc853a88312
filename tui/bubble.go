package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/color"
	"github.com/tilawah-cli/tilawah/constant"
	"github.com/tilawah-cli/tilawah/internal/ui"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/playback"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/reader"
	"github.com/tilawah-cli/tilawah/util"
)

// statefulBubble is the whole application model.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool

	keymap *statefulKeymap

	// components
	spinnerC spinner.Model
	surahsC  list.Model
	versesC  list.Model
	helpC    help.Model

	client  *quran.Client
	engine  reader.ElementFactory
	surahs  []*quran.Surah
	page    *reader.Page
	full    playback.Snapshot
	playing playback.Playlist

	// send delivers a message to the running program without blocking the caller.
	send func(tea.Msg)

	progressStatus string
	lastError      error

	width, height int
	notifier      *ui.Model

	options *Options
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState moves to s, remembering where to go back to.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if !lo.Contains([]state{loadingState, errorState}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	b.surahsC.SetSize(listWidth, listHeight)
	b.surahsC.Help.Width = listWidth

	// The verse list leaves room for the header and the detail pane.
	b.versesC.SetSize(listWidth, max(listHeight-detailHeight-headerHeight, 4))
	b.versesC.Help.Width = listWidth

	b.width = width - x
	b.height = height - y
	b.helpC.Width = listWidth
}

func (b *statefulBubble) startLoading(status string) tea.Cmd {
	b.loading = true
	b.progressStatus = status
	b.newState(loadingState)
	return b.spinnerC.Tick
}

func (b *statefulBubble) stopLoading() {
	b.loading = false
	b.progressStatus = ""
}

func newBubble(options *Options, client *quran.Client, engine reader.ElementFactory) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,
		client:        client,
		engine:        engine,
		notifier:      &ui.Model{},
		options:       options,
		send:          func(tea.Msg) {},
	}

	makeList := func(title string, titleStyle lipgloss.Style) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.SetSpacing(viper.GetInt(key.TUIItemSpacing))
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(color.Gold).
			Foreground(color.Gold).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(color.White)
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle.Foreground(color.Sand)

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.Title = titleStyle
		listC.Styles.NoItems = paddingStyle
		listC.StatusMessageLifetime = time.Hour * 999
		listC.SetShowPagination(false)
		listC.SetShowStatusBar(false)
		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(color.Teal)

	bubble.surahsC = makeList(
		fmt.Sprintf("%s v%s", constant.Tilawah, constant.Version),
		lipgloss.NewStyle().Foreground(color.Sand).Background(color.Ink).Padding(0, 1),
	)
	bubble.surahsC.Filter = filterSurahs
	bubble.surahsC.SetStatusBarItemName("surah", "surahs")

	bubble.versesC = makeList("", lipgloss.NewStyle().Foreground(color.Ink).Background(color.Gold).Padding(0, 1))
	bubble.versesC.SetFilteringEnabled(false)
	bubble.versesC.SetShowTitle(false)
	bubble.versesC.SetStatusBarItemName("verse", "verses")

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}

// closePage tears down the mounted surah, silencing its players.
func (b *statefulBubble) closePage() {
	if b.page == nil {
		return
	}
	_ = b.page.Close()
	b.page = nil
	b.playing = playback.Playlist{}
}
