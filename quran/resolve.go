package quran

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/tilawah-cli/tilawah/playback"
)

// FullID identifies the full-surah player on a page.
const FullID playback.ID = "full"

const versePrefix = "verse-"

// VerseID identifies the player of verse n.
func VerseID(n int) playback.ID {
	return playback.ID(versePrefix + strconv.Itoa(n))
}

// VerseNumber extracts n from a VerseID.
func VerseNumber(id playback.ID) (int, bool) {
	s, ok := strings.CutPrefix(string(id), versePrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// VerseIDs returns the ids of verses 1..count in order.
func VerseIDs(count int) []playback.ID {
	return lo.Times(count, func(i int) playback.ID { return VerseID(i + 1) })
}

// Resolve returns the audio URL for id in s as recited by reciter.
// It never fetches: s must already hold its verses.
func Resolve(s *Surah, id playback.ID, reciter string) mo.Option[string] {
	if s == nil {
		return mo.None[string]()
	}

	var audio map[string]string
	if id == FullID {
		audio = s.AudioFull
	} else if n, ok := VerseNumber(id); ok {
		verse, ok := s.Verse(n)
		if !ok {
			return mo.None[string]()
		}
		audio = verse.Audio
	}

	src, ok := audio[reciter]
	if !ok || src == "" {
		return mo.None[string]()
	}
	return mo.Some(src)
}

// WebURL links verse n of surah on quran.com. Verse 0 links the whole surah.
func WebURL(surah, n int) string {
	if n < 1 {
		return fmt.Sprintf("https://quran.com/%d", surah)
	}
	return fmt.Sprintf("https://quran.com/%d/%d", surah, n)
}
