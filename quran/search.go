package quran

import (
	"sort"
	"strconv"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Search returns the surahs whose latin name or meaning fuzzily matches query, best first.
// An empty query returns every surah.
func Search(surahs []*Surah, query string) []*Surah {
	query = normalize(query)
	if query == "" {
		return surahs
	}

	type ranked struct {
		surah *Surah
		rank  int
	}

	var matches []ranked
	for _, s := range surahs {
		rank := fuzzy.RankMatchNormalizedFold(query, normalize(s.NameLatin))
		if meaning := fuzzy.RankMatchNormalizedFold(query, normalize(s.Meaning)); meaning >= 0 && (rank < 0 || meaning < rank) {
			rank = meaning
		}
		if rank >= 0 {
			matches = append(matches, ranked{surah: s, rank: rank})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })
	return lo.Map(matches, func(m ranked, _ int) *Surah { return m.surah })
}

// Find resolves a user argument to a surah: a number, an exact latin name, or the closest name.
func Find(surahs []*Surah, arg string) mo.Option[*Surah] {
	arg = strings.TrimSpace(arg)
	if arg == "" || len(surahs) == 0 {
		return mo.None[*Surah]()
	}

	if n, err := strconv.Atoi(arg); err == nil {
		s, ok := lo.Find(surahs, func(s *Surah) bool { return s.Number == n })
		if !ok {
			return mo.None[*Surah]()
		}
		return mo.Some(s)
	}

	name := normalize(arg)
	if s, ok := lo.Find(surahs, func(s *Surah) bool { return normalize(s.NameLatin) == name }); ok {
		return mo.Some(s)
	}

	return Closest(surahs, arg)
}

// Closest returns the surah whose latin name has the smallest edit distance to name,
// unless even that one is too far off to be a typo.
func Closest(surahs []*Surah, name string) mo.Option[*Surah] {
	name = normalize(name)
	if name == "" || len(surahs) == 0 {
		return mo.None[*Surah]()
	}

	distance := func(s *Surah) int {
		return levenshtein.Distance(name, normalize(s.NameLatin))
	}

	closest := lo.MinBy(surahs, func(a, b *Surah) bool {
		return distance(a) < distance(b)
	})

	if distance(closest) > max(2, len(name)/3) {
		return mo.None[*Surah]()
	}
	return mo.Some(closest)
}
