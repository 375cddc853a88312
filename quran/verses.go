package quran

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ParseVerses expands a selection like "1-7", "255" or "1,3,5-7" into verse numbers
// within 1..count, in the given order with duplicates removed. An empty selection means all verses.
func ParseVerses(selection string, count int) ([]int, error) {
	selection = strings.TrimSpace(selection)
	if selection == "" {
		return lo.RangeFrom(1, count), nil
	}

	var verses []int
	for _, part := range strings.Split(selection, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")

		start, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid verse %q", part)
		}
		end := start
		if isRange {
			if end, err = strconv.Atoi(strings.TrimSpace(to)); err != nil {
				return nil, fmt.Errorf("invalid verse range %q", part)
			}
		}

		if start < 1 || end > count || start > end {
			return nil, fmt.Errorf("verse range %q is outside 1-%d", part, count)
		}
		verses = append(verses, lo.RangeFrom(start, end-start+1)...)
	}

	return lo.Uniq(verses), nil
}
