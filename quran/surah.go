// Package quran fetches surahs, verses and recitation audio from the equran.id API.
package quran

import "strings"

// SurahCount is the number of surahs in the Qur'an.
const SurahCount = 114

// Surah is one chapter. Verses is only filled by Client.Surah.
type Surah struct {
	Number      int               `json:"nomor" jsonschema:"minimum=1,maximum=114"`
	Name        string            `json:"nama" jsonschema:"description=Arabic name"`
	NameLatin   string            `json:"namaLatin"`
	VerseCount  int               `json:"jumlahAyat"`
	Revelation  string            `json:"tempatTurun" jsonschema:"description=Place of revelation"`
	Meaning     string            `json:"arti"`
	Description string            `json:"deskripsi,omitempty"`
	AudioFull   map[string]string `json:"audioFull" jsonschema:"description=Full recitation URL by reciter id"`
	Verses      []Verse           `json:"ayat,omitempty"`
}

// Verse is one ayah with its per-reciter audio.
type Verse struct {
	Number      int               `json:"nomorAyat"`
	Arabic      string            `json:"teksArab"`
	Latin       string            `json:"teksLatin"`
	Translation string            `json:"teksIndonesia"`
	Audio       map[string]string `json:"audio"`
}

func (s *Surah) String() string {
	return s.NameLatin
}

// Verse returns verse n, counting from 1.
func (s *Surah) Verse(n int) (Verse, bool) {
	if n < 1 || n > len(s.Verses) {
		return Verse{}, false
	}
	return s.Verses[n-1], true
}

// FilterValue is matched by the TUI list filter.
func (s *Surah) FilterValue() string {
	return s.NameLatin + " " + s.Meaning
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "'", "", "`", "", " ", "").Replace(name)
}
