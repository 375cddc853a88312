package quran

import (
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Reciter is a qari whose recitations the API serves.
type Reciter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultReciter is used when the configured reciter is unknown.
const DefaultReciter = "05"

// Reciters lists every reciter in API order.
var Reciters = []Reciter{
	{ID: "01", Name: "Abdullah Al-Juhany"},
	{ID: "02", Name: "Abdul Muhsin Al-Qasim"},
	{ID: "03", Name: "Abdurrahman as-Sudais"},
	{ID: "04", Name: "Ibrahim Al-Dossari"},
	{ID: "05", Name: "Misyari Rasyid Al-Afasi"},
}

// ReciterByID finds a reciter by its two-digit id.
func ReciterByID(id string) mo.Option[Reciter] {
	r, ok := lo.Find(Reciters, func(r Reciter) bool { return r.ID == id })
	if !ok {
		return mo.None[Reciter]()
	}
	return mo.Some(r)
}

// NextReciter cycles through Reciters, wrapping around after the last one.
func NextReciter(id string) Reciter {
	_, i, ok := lo.FindIndexOf(Reciters, func(r Reciter) bool { return r.ID == id })
	if !ok {
		return Reciters[0]
	}
	return Reciters[(i+1)%len(Reciters)]
}
