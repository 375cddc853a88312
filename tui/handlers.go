package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tilawah-cli/tilawah/log"
	"github.com/tilawah-cli/tilawah/open"
	"github.com/tilawah-cli/tilawah/playback"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/reader"
)

type (
	surahsLoadedMsg []*quran.Surah
	pageOpenedMsg   *reader.Page
	snapshotMsg     playback.Snapshot
	playlistMsg     playback.Playlist
	navigateMsg     playback.ID

	// playbackErrMsg reports a failed play request. It is shown as a notification, never as a fatal error.
	playbackErrMsg struct {
		id  playback.ID
		err error
	}
)

func (b *statefulBubble) loadSurahs() tea.Cmd {
	client := b.client
	return func() tea.Msg {
		surahs, err := client.Surahs(context.Background())
		if err != nil {
			return fmt.Errorf("load surahs: %w", err)
		}
		return surahsLoadedMsg(surahs)
	}
}

func (b *statefulBubble) openSurah(number int) tea.Cmd {
	client, engine, send := b.client, b.engine, b.send

	return func() tea.Msg {
		s, err := client.Surah(context.Background(), number)
		if err != nil {
			return err
		}

		options := reader.OptionsFromConfig()
		options.Navigate = func(id playback.ID) { send(navigateMsg(id)) }
		options.OnChange = func(s playback.Snapshot) { send(snapshotMsg(s)) }
		options.OnPlaylist = func(p playback.Playlist) { send(playlistMsg(p)) }
		options.OnItemFailed = func(id playback.ID, err error) {
			send(fmt.Sprintf("skipped %s: %s", id, playback.Message(err)))
		}

		page, err := reader.Open(s, engine, options)
		if err != nil {
			return err
		}
		return pageOpenedMsg(page)
	}
}

// playbackCmd runs a blocking page operation off the UI goroutine.
func playbackCmd(id playback.ID, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := op(context.Background())
		if err == nil || errors.Is(err, playback.ErrClosed) || errors.Is(err, context.Canceled) {
			return nil
		}
		log.Warnf("tui: %s: %v", id, err)
		return playbackErrMsg{id: id, err: err}
	}
}

func (b *statefulBubble) toggle(id playback.ID) tea.Cmd {
	page := b.page
	return playbackCmd(id, func(ctx context.Context) error {
		return page.Toggle(ctx, id)
	})
}

func (b *statefulBubble) startSequential(from int) tea.Cmd {
	page := b.page
	return playbackCmd(quran.VerseID(from), func(ctx context.Context) error {
		return page.StartSequential(ctx, from)
	})
}

func (b *statefulBubble) stopPlayback() tea.Cmd {
	page := b.page
	return func() tea.Msg {
		page.Stop()
		return nil
	}
}

func (b *statefulBubble) nextReciter() tea.Cmd {
	page := b.page
	next := quran.NextReciter(page.Reciter())

	return tea.Batch(
		func() tea.Msg { return "reciter: " + next.Name },
		playbackCmd(page.Holder(), func(ctx context.Context) error {
			return page.SetReciter(ctx, next.ID, true)
		}),
	)
}

func (b *statefulBubble) toggleReplay() tea.Cmd {
	enabled := !b.full.ReplayOnEnd
	b.full.ReplayOnEnd = enabled
	b.page.Full().SetReplayOnEnd(enabled)

	return func() tea.Msg {
		if enabled {
			return "repeat surah: on"
		}
		return "repeat surah: off"
	}
}

var openURL = open.Start

func (b *statefulBubble) openInBrowser(verse int) tea.Cmd {
	url := quran.WebURL(b.page.Surah().Number, verse)
	return func() tea.Msg {
		if err := openURL(url); err != nil {
			log.Warnf("tui: open %s: %v", url, err)
			return err.Error()
		}
		return "opened " + url
	}
}
