package tui

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/viper"
	"github.com/tilawah-cli/tilawah/icon"
	"github.com/tilawah-cli/tilawah/key"
	"github.com/tilawah-cli/tilawah/playback"
	"github.com/tilawah-cli/tilawah/quran"
	"github.com/tilawah-cli/tilawah/style"
)

// verseEntry is a verse row together with the last known state of its player.
type verseEntry struct {
	verse   quran.Verse
	status  playback.Status
	holder  bool
	message string
}

// listItem implements list.Item for surahs and verses.
type listItem struct {
	internal any
}

// statusIcon renders the player state shown next to a verse or the full surah.
func statusIcon(status playback.Status, holder bool) string {
	switch status {
	case playback.StatusLoading:
		return style.Faint(icon.Get(icon.Loading))
	case playback.StatusPlaying:
		if holder {
			return style.Playing(icon.Get(icon.Mark))
		}
		return icon.Get(icon.Play)
	case playback.StatusPaused:
		return style.Faint(icon.Get(icon.Pause))
	case playback.StatusError:
		return style.Failed(icon.Get(icon.Fail))
	default:
		return ""
	}
}

func (t *listItem) Title() string {
	switch e := t.internal.(type) {
	case *quran.Surah:
		return fmt.Sprintf("%s %s %s", style.Number(strconv.Itoa(e.Number)), e.NameLatin, style.Faint(e.Name))
	case *verseEntry:
		title := style.Number(strconv.Itoa(e.verse.Number))
		if ic := statusIcon(e.status, e.holder); ic != "" {
			title += " " + ic
		}
		if e.holder {
			return title + " " + style.Playing(e.verse.Arabic)
		}
		return title + " " + e.verse.Arabic
	default:
		return t.FilterValue()
	}
}

func (t *listItem) Description() string {
	switch e := t.internal.(type) {
	case *quran.Surah:
		return fmt.Sprintf("%s • %d verses • %s", e.Revelation, e.VerseCount, e.Meaning)
	case *verseEntry:
		if e.status == playback.StatusError && e.message != "" {
			return style.Failed(e.message)
		}
		if viper.GetBool(key.TUIShowLatin) {
			return e.verse.Latin
		}
		return e.verse.Translation
	default:
		return ""
	}
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case *quran.Surah:
		return e.FilterValue()
	case *verseEntry:
		return e.verse.Latin
	default:
		return ""
	}
}

// filterSurahs ranks surahs for the list filter by fuzzy match over their latin names and meanings.
func filterSurahs(term string, targets []string) []list.Rank {
	ranks := fuzzy.RankFindNormalizedFold(term, targets)
	sort.Stable(ranks)

	result := make([]list.Rank, len(ranks))
	for i, r := range ranks {
		result[i] = list.Rank{Index: r.OriginalIndex}
	}
	return result
}
