package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/tilawah-cli/tilawah/playback"
	"github.com/tilawah-cli/tilawah/quran"
)

func (b *statefulBubble) Init() tea.Cmd {
	if number, ok := b.options.Surah.Get(); ok {
		return tea.Batch(b.startLoading("Opening surah"), b.openSurah(number))
	}
	return tea.Batch(b.startLoading("Loading surahs"), b.loadSurahs())
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Notifications are plain strings.
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = uiCmd
	}

	switch msg := msg.(type) {
	case error:
		b.stopLoading()
		b.raiseError(msg)
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		if b.loading {
			var tick tea.Cmd
			b.spinnerC, tick = b.spinnerC.Update(msg)
			return b, tea.Batch(cmd, tick)
		}
		return b, cmd
	case playbackErrMsg:
		return b, tea.Batch(cmd, b.notify(string(msg.id)+": "+playback.Message(msg.err)))
	case snapshotMsg:
		b.applySnapshot(playback.Snapshot(msg))
		return b, cmd
	case playlistMsg:
		b.playing = playback.Playlist(msg)
		return b, cmd
	case navigateMsg:
		if n, ok := quran.VerseNumber(playback.ID(msg)); ok && b.state == versesState {
			b.versesC.Select(n - 1)
		}
		return b, cmd
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}

		if bubblesKey.Matches(msg, b.keymap.back) {
			switch b.state {
			case surahsState:
				if b.surahsC.FilterState() != list.Unfiltered {
					b.surahsC, cmd = b.surahsC.Update(msg)
					return b, cmd
				}
				return b, tea.Quit
			case versesState:
				page := b.page
				b.page = nil
				b.playing = playback.Playlist{}
				if b.statesHistory.Peek() != surahsState {
					// Opened directly on a surah: load the list to go back to.
					b.setState(loadingState)
					return b, tea.Batch(closeCmd(page), b.startLoading("Loading surahs"), b.loadSurahs())
				}
				b.previousState()
				return b, closeCmd(page)
			case loadingState, errorState:
				b.stopLoading()
				if b.statesHistory.Len() == 0 {
					return b, tea.Quit
				}
				b.previousState()
				return b, cmd
			}
		}
	}

	switch b.state {
	case loadingState:
		return b.updateLoading(msg, cmd)
	case surahsState:
		return b.updateSurahs(msg, cmd)
	case versesState:
		return b.updateVerses(msg, cmd)
	case errorState:
		return b.updateError(msg, cmd)
	}

	return b, cmd
}

func (b *statefulBubble) notify(text string) tea.Cmd {
	return func() tea.Msg { return text }
}

func closeCmd(page interface{ Close() error }) tea.Cmd {
	if page == nil {
		return nil
	}
	return func() tea.Msg {
		_ = page.Close()
		return nil
	}
}

func (b *statefulBubble) updateLoading(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case surahsLoadedMsg:
		b.surahs = msg
		items := lo.Map(msg, func(s *quran.Surah, _ int) list.Item {
			return &listItem{internal: s}
		})
		b.stopLoading()
		b.setState(surahsState)
		return b, tea.Batch(cmd, b.surahsC.SetItems(items))
	case pageOpenedMsg:
		b.page = msg
		b.full = b.page.Full().Snapshot()
		b.playing = playback.Playlist{}

		s := b.page.Surah()
		items := lo.Map(s.Verses, func(v quran.Verse, _ int) list.Item {
			return &listItem{internal: &verseEntry{verse: v}}
		})
		b.stopLoading()
		b.setState(versesState)
		b.versesC.Select(0)
		return b, tea.Batch(cmd, b.versesC.SetItems(items))
	}

	return b, cmd
}

func (b *statefulBubble) updateSurahs(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.surahsC.FilterState() == list.Filtering {
			break
		}

		if bubblesKey.Matches(msg, b.keymap.confirm) {
			item, ok := b.surahsC.SelectedItem().(*listItem)
			if !ok {
				return b, cmd
			}
			s := item.internal.(*quran.Surah)
			b.newState(versesState)
			b.setState(loadingState)
			return b, tea.Batch(cmd, b.startLoading("Opening "+s.NameLatin), b.openSurah(s.Number))
		}
	}

	var listCmd tea.Cmd
	b.surahsC, listCmd = b.surahsC.Update(msg)
	return b, tea.Batch(cmd, listCmd)
}

func (b *statefulBubble) updateVerses(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if b.page == nil {
		return b, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		cursor := b.versesC.Index() + 1

		switch {
		case bubblesKey.Matches(msg, b.keymap.toggleVerse):
			return b, tea.Batch(cmd, b.toggle(quran.VerseID(cursor)))
		case bubblesKey.Matches(msg, b.keymap.toggleFull):
			return b, tea.Batch(cmd, b.toggle(quran.FullID))
		case bubblesKey.Matches(msg, b.keymap.sequential):
			return b, tea.Batch(cmd, b.startSequential(cursor))
		case bubblesKey.Matches(msg, b.keymap.stop):
			return b, tea.Batch(cmd, b.stopPlayback())
		case bubblesKey.Matches(msg, b.keymap.reciter):
			return b, tea.Batch(cmd, b.nextReciter())
		case bubblesKey.Matches(msg, b.keymap.replay):
			return b, tea.Batch(cmd, b.toggleReplay())
		case bubblesKey.Matches(msg, b.keymap.openWeb):
			return b, tea.Batch(cmd, b.openInBrowser(cursor))
		}
	}

	var listCmd tea.Cmd
	b.versesC, listCmd = b.versesC.Update(msg)
	return b, tea.Batch(cmd, listCmd)
}

func (b *statefulBubble) updateError(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.quit) {
		return b, tea.Quit
	}
	return b, cmd
}

// applySnapshot refreshes the row of the player the snapshot belongs to.
// Snapshots arrive asynchronously, so the status is re-read from the player itself.
func (b *statefulBubble) applySnapshot(s playback.Snapshot) {
	if b.page == nil {
		return
	}

	a, ok := b.page.Adapter(s.ID).Get()
	if !ok {
		return
	}
	status := a.Status()
	holder := b.page.Holder()

	if s.ID == quran.FullID {
		s.Status = status
		s.Holder = holder == quran.FullID
		b.full = s
		return
	}

	n, _ := quran.VerseNumber(s.ID)
	items := b.versesC.Items()
	if n < 1 || n > len(items) {
		return
	}
	entry := items[n-1].(*listItem).internal.(*verseEntry)
	entry.status = status
	entry.holder = holder == s.ID
	entry.message = ""
	if status == playback.StatusError {
		entry.message = s.ErrorMessage
	}

	// The previous holder's row is refreshed by its own snapshot; clear stale highlights meanwhile.
	for i, item := range items {
		if e := item.(*listItem).internal.(*verseEntry); i != n-1 && e.holder && holder != quran.VerseID(i+1) {
			e.holder = false
		}
	}
}
